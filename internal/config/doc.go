// Package config loads, normalizes, and validates Lookout configuration.
//
// Defaults cover every field, so a missing file still yields a runnable
// config. Settings come from one TOML file; paths are tilde-expanded and
// made absolute, and LOOKOUT_LLM_API_KEY fills in provider keys left blank.
// The Config type carries every knob the daemon and CLI need, from the bind
// address to the ordered inference provider list. Store adds hot reloading:
// it watches the backing file and swaps in a fresh snapshot on rewrite,
// keeping the previous one if the new contents fail validation.
package config

// Package enhance rewrites notification text with a vision model.
//
// The pipeline gates cheap checks first (feature flag, media, providers),
// assembles the snapshot selection, builds the prompt, selects a provider
// in rotation, races the single inference call against the configured
// deadline, and validates the response against a strict three-field schema.
//
// Failure is always soft from the caller's point of view: Enhance either
// hands back validated replacement fields, a skip reason, or an error that
// the dispatcher converts into forwarding the original text. Nothing here
// retries, and nothing here blocks delivery.
package enhance

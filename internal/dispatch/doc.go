// Package dispatch routes inbound notification events through enhancement
// and guarantees exactly one downstream delivery per event.
//
// # Delivery Contract
//
// Dispatch forwards every event exactly once. An enhancement failure of any
// kind (timeout, provider error, malformed response) is logged and degrades
// to forwarding the original notification untouched; only a downstream
// delivery failure surfaces to the caller.
//
// # Counters
//
// Stats tracks how many events were processed and whether a snapshot
// selection reached a provider. Counters are atomic and may be shared
// across component rebuilds so totals survive configuration reloads.
package dispatch

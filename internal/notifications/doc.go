// Package notifications models inbound notification events and delivers the
// outgoing result downstream.
//
// An Event keeps the caller's options object as raw bytes so an unenhanced
// forward is byte-identical to what was received. Metadata accessors pull
// detection and source identifiers out of the recorded event with a fixed
// fallback order; enhancement rewrites only title, subtitle, and body while
// media and icon always pass through untouched.
//
// All pipeline code depends on the Forwarder interface; the webhook
// implementation is the only transport.
package notifications

// Package daemon coordinates the long-running lookout process.
//
// It wires the configuration store, the enhancement pipeline, the provider
// pool, and the downstream forwarder into a single lifecycle with
// flock-based locking to prevent multiple instances, and serves the HTTP
// intake and status API.
//
// Configuration reloads rebuild the pipeline components in place. The
// dispatch counters always survive a rebuild; the provider rotation is
// carried over when the provider list is unchanged. The bind address and
// API token are read once at construction.
package daemon

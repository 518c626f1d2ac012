// Package api defines the wire-format types shared by the daemon's HTTP
// surface and the CLI that consumes it.
//
// DTOs use camelCase JSON tags. Timestamps are RFC3339 strings. The types
// carry no behavior; the daemon fills them from its runtime state and the
// CLI renders them.
package api

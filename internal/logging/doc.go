// Package logging builds the slog loggers shared by every Lookout component.
//
// It owns the console and JSON handlers, level and output-path plumbing, and
// the context helpers that stamp log lines with event identifiers, sources,
// and component names. A no-op logger is available for tests and for wiring
// code that cannot fail.
//
// Construct loggers through this package rather than with raw slog so all
// components emit records with the same field names and routing.
package logging

// Package logging assembles the structured slog loggers used across the
// talisman CLI and pipeline.
//
// It owns the console and JSON handlers, centralizes level plumbing, and
// exposes attr helpers plus a no-op logger for tests and wiring code that
// cannot fail. Prefer these constructors over hand-rolled slog setup so all
// components emit data with the same shape.
package logging

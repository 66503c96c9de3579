// Package logging assembles structured slog loggers and formatting helpers used
// across vidmerge.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so the orchestrator can tag
// narration with the run ID and the attempt currently executing. Console
// output is colourized only when stdout is a terminal. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// narrates with the same shape.
package logging

// Package logging assembles the structured slog loggers used across
// tokenark components.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so backup code can automatically tag log
// lines with the wallet, chain, and asset being processed. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging

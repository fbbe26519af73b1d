// Package logging provides structured logging utilities for xks-validate.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// Create a logger from the CLI's log-level choice:
//
//	level, _ := logging.ParseLevel("DEBUG")
//	logger := logging.NewLogger(os.Stderr, level)
//
// Use the attribute constructors for consistent key naming:
//
//	logger.Info("check finished",
//	    logging.Check("crd_kserve"),
//	    logging.Status("passed"))
package logging

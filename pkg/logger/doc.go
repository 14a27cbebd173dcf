// Package logger provides structured logging for the harvester built on zerolog.
//
// All packages log through the Logger interface rather than zerolog directly,
// which keeps call sites uniform and lets tests substitute a capturing
// TestLogger. Console output goes to stderr; an optional log file can be
// configured in addition.
package logger

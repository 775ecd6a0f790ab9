// Package logx provides the module's diagnostics logger: a thin
// github.com/rs/zerolog wrapper with a library-not-daemon posture —
// callers own the writer; nothing is hardcoded to os.Stdout.
package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a logger writing to w at the given level. A nil w defaults
// to os.Stderr. This is diagnostics only (§7: "observable only via
// diagnostics") — nothing in the core requires a logger to function.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Disabled returns a logger that discards everything (zerolog.Nop).
func Disabled() zerolog.Logger {
	return zerolog.Nop()
}

// LevelFromEnv reads $TVWM_LOG_LEVEL (per SPEC_FULL.md's ambient-stack
// "Configuration" section: "one logx-driven debug-log-level read from
// $TVWM_LOG_LEVEL"), defaulting to zerolog.Disabled when unset or
// unrecognised.
func LevelFromEnv() zerolog.Level {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("TVWM_LOG_LEVEL")))
	switch v {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

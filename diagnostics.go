package tableau

import (
	"fmt"
	"log"
	"os"
)

// Level is the severity of a diagnostic message.
type Level uint8

const (
	LevelInfo  Level = iota // progress and bookkeeping
	LevelWarn               // a scene entry was skipped or ignored
	LevelError              // a load or compile was aborted
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", uint8(l))
	}
}

// Diagnostics receives leveled messages from the loader, compiler and stage.
// Implementations must not block and must not panic.
type Diagnostics interface {
	Logf(level Level, format string, args ...any)
}

// DiagnosticsFunc adapts a plain function to the Diagnostics interface.
type DiagnosticsFunc func(level Level, format string, args ...any)

// Logf calls f(level, format, args...).
func (f DiagnosticsFunc) Logf(level Level, format string, args ...any) {
	f(level, format, args...)
}

// DiscardDiagnostics drops every message.
var DiscardDiagnostics Diagnostics = DiagnosticsFunc(func(Level, string, ...any) {})

// logDiagnostics writes to a standard library logger, filtering below min.
type logDiagnostics struct {
	logger *log.Logger
	min    Level
}

// NewLogDiagnostics returns a Diagnostics that writes every message at or
// above min to logger. A nil logger writes to stderr with a "[tableau] "
// prefix.
func NewLogDiagnostics(logger *log.Logger, min Level) Diagnostics {
	if logger == nil {
		logger = log.New(os.Stderr, "[tableau] ", log.LstdFlags)
	}
	return &logDiagnostics{logger: logger, min: min}
}

func (d *logDiagnostics) Logf(level Level, format string, args ...any) {
	if level < d.min {
		return
	}
	d.logger.Printf("%s: %s", level, fmt.Sprintf(format, args...))
}

// defaultDiagnostics is used when no sink is configured. Info messages are
// dropped unless debug mode is on.
func defaultDiagnostics() Diagnostics {
	if globalDebug {
		return NewLogDiagnostics(nil, LevelInfo)
	}
	return NewLogDiagnostics(nil, LevelWarn)
}

// globalDebug mirrors the most recently set Stage debug flag so that the
// loader and compiler (which may be called without a Stage) can pick a
// default verbosity.
var globalDebug bool

// Package diag provides an optional Logger interface for progress and
// diagnostic output, modeled on the same nil-is-silent, Output(calldepth,
// string)-based design as package xlog: callers that want no output at all
// simply never set a Logger, and every call site stays a plain function
// call instead of a nil check sprinkled through the pipeline.
package diag

import "fmt"

// Logger is satisfied by *log.Logger, among others.
type Logger interface {
	Output(calldepth int, s string) error
}

// Printf logs a formatted diagnostic line. A nil logger makes this a no-op.
func Printf(l Logger, format string, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintf(format, v...))
	}
}

// Println logs a diagnostic line. A nil logger makes this a no-op.
func Println(l Logger, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintln(v...))
	}
}

// Result describes the outcome of recompressing a single file, the unit of
// progress reporting the CLI prints one line of per path processed.
type Result struct {
	Path         string
	OriginalSize int64
	NewSize      int64
	Skipped      bool
	Reason       string
	Err          error
}

// Line formats a Result the way a batch run reports progress for one file:
// either a skip reason, an error, or the before/after size and percentage
// saved.
func (r Result) Line() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s: error: %v", r.Path, r.Err)
	case r.Skipped:
		return fmt.Sprintf("%s: skipped (%s)", r.Path, r.Reason)
	default:
		saved := r.OriginalSize - r.NewSize
		pct := 0.0
		if r.OriginalSize > 0 {
			pct = float64(saved) / float64(r.OriginalSize) * 100
		}
		return fmt.Sprintf("%s: %d -> %d bytes (%.1f%% smaller)", r.Path, r.OriginalSize, r.NewSize, pct)
	}
}

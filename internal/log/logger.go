// Package log is the process-wide leveled logger. Verbosity follows the
// -v count; warnings and errors can also be mirrored as GitHub Actions
// workflow annotations.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Verbosity levels, one per -v.
const (
	LevelQuiet = iota // warnings and errors
	LevelInfo         // per-item decisions, counts
	LevelDebug        // API calls, cache operations, classified timelines
	LevelTrace        // everything
)

const slogLevelTrace = slog.LevelDebug - 4

// state guards everything written after Initialize. Progress lines are
// written from worker goroutines.
var state struct {
	sync.Mutex
	verbosity  int
	logger     *slog.Logger
	out        io.Writer
	inProgress bool
	annotate   io.Writer
}

func init() {
	Initialize(LevelQuiet, os.Stderr)
}

// Initialize replaces the logger. level is the -v count.
func Initialize(level int, w io.Writer) {
	threshold := slog.LevelWarn
	switch {
	case level >= LevelTrace:
		threshold = slogLevelTrace
	case level >= LevelDebug:
		threshold = slog.LevelDebug
	case level >= LevelInfo:
		threshold = slog.LevelInfo
	}

	state.Lock()
	defer state.Unlock()
	state.verbosity = level
	state.out = w
	state.inProgress = false
	state.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: threshold}))
}

// EnableAnnotations mirrors warnings and errors to w as "::warning::" and
// "::error::" workflow commands. A nil w turns them off.
func EnableAnnotations(w io.Writer) {
	state.Lock()
	defer state.Unlock()
	state.annotate = w
}

// InGitHubActions reports whether the process runs inside a GitHub Actions job.
func InGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// Verbosity returns the current -v count.
func Verbosity() int {
	state.Lock()
	defer state.Unlock()
	return state.verbosity
}

// IsInfo reports whether info messages are written.
func IsInfo() bool { return Verbosity() >= LevelInfo }

// IsDebug reports whether debug messages are written.
func IsDebug() bool { return Verbosity() >= LevelDebug }

// Info, Debug and Trace need -v, -vv and -vvv. Warn and Error always log.
func Info(msg string, args ...any) { write(slog.LevelInfo, "", msg, args) }
func Debug(msg string, args ...any) { write(slog.LevelDebug, "", msg, args) }
func Trace(msg string, args ...any) { write(slogLevelTrace, "", msg, args) }
func Warn(msg string, args ...any) { write(slog.LevelWarn, "warning", msg, args) }
func Error(msg string, args ...any) { write(slog.LevelError, "error", msg, args) }

// write logs msg at level and, when kind is set and annotations are on,
// emits the matching workflow command.
func write(level slog.Level, kind, msg string, args []any) {
	state.Lock()
	defer state.Unlock()

	ctx := context.Background()
	if state.logger.Enabled(ctx, level) {
		endProgressLine()
		state.logger.Log(ctx, level, msg, args...)
	}
	if kind != "" && state.annotate != nil {
		_, _ = fmt.Fprintf(state.annotate, "::%s::%s\n", kind, escapeAnnotation(flatten(msg, args)))
	}
}

// flatten appends slog-style key/value pairs to msg.
func flatten(msg string, args []any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	return b.String()
}

// escapeAnnotation applies the workflow command data escaping rules.
func escapeAnnotation(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

// Progress rewrites the current terminal line with a status message. It is
// shown at info level and above.
func Progress(format string, args ...any) {
	state.Lock()
	defer state.Unlock()
	if state.verbosity < LevelInfo {
		return
	}
	state.inProgress = true
	_, _ = fmt.Fprintf(state.out, "\r"+format, args...)
}

// ProgressDone finishes the current progress line with " done".
func ProgressDone() {
	state.Lock()
	defer state.Unlock()
	if state.inProgress {
		_, _ = fmt.Fprintln(state.out, " done")
		state.inProgress = false
	}
}

// endProgressLine moves past an unfinished progress line so a log record
// does not overwrite it. Callers hold state.
func endProgressLine() {
	if state.inProgress {
		_, _ = fmt.Fprintln(state.out)
		state.inProgress = false
	}
}

// Package tui draws the inline progress display for interactive runs.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ciMarkers are environment variables set by common CI runners. Any of
// them being non-empty means nobody is watching the terminal.
var ciMarkers = []string{"CI", "GITHUB_ACTIONS", "BUILDKITE", "CIRCLECI", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}

// Interactive reports whether the progress display should be drawn for a
// process whose stdout is (or is not) a terminal, given its environment.
func Interactive(stdoutIsTerminal bool, getenv func(string) string) bool {
	if !stdoutIsTerminal {
		return false
	}
	for _, name := range ciMarkers {
		if getenv(name) != "" {
			return false
		}
	}
	return true
}

// Run draws the display inline until a DoneEvent arrives or events closes.
func Run(events <-chan Event, opts ...ModelOption) error {
	_, err := tea.NewProgram(NewModel(events, opts...)).Run()
	return err
}

// SendEvent offers e to the display. Events are dropped rather than
// blocking the caller when the buffer is full. A nil channel is a no-op.
func SendEvent(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- e:
	default:
	}
}

// SendTaskEvent sends a status change for task.
func SendTaskEvent(ch chan<- Event, task TaskID, status TaskStatus, opts ...TaskEventOption) {
	e := TaskEvent{Task: task, Status: status}
	for _, o := range opts {
		o(&e)
	}
	SendEvent(ch, e)
}

// SendRateLimit reports a rate limit transition to the display.
func SendRateLimit(ch chan<- Event, limited bool, resetAt time.Time) {
	SendEvent(ch, RateLimitEvent{Limited: limited, ResetAt: resetAt})
}

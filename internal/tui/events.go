package tui

import "time"

// TaskID identifies a task in the TUI progress display.
type TaskID int

const (
	TaskAuth     TaskID = iota // Resolving the bot identity
	TaskFind                   // Searching open issues and pull requests
	TaskTimeline               // Reading item timelines
	TaskApply                  // Deciding and applying reminders
)

// TaskStatus represents the current status of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusSkipped
)

// Event is the interface for all TUI events.
type Event interface {
	isEvent()
}

// TaskEvent represents an update to a task's status.
type TaskEvent struct {
	Task     TaskID
	Status   TaskStatus
	Message  string  // Optional message (e.g., "12/30" for progress)
	Count    int     // Count of items (e.g., open items found)
	Progress float64 // Progress from 0.0 to 1.0
	Error    error   // Error if status is StatusError
}

func (TaskEvent) isEvent() {}

// RateLimitEvent reports that the primary API budget ran out.
type RateLimitEvent struct {
	Limited bool
	ResetAt time.Time
}

func (RateLimitEvent) isEvent() {}

// DoneEvent signals that all work is complete.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}

// TaskEventOption sets an optional field of a TaskEvent.
type TaskEventOption func(*TaskEvent)

// WithMessage attaches a short status message.
func WithMessage(msg string) TaskEventOption { return func(e *TaskEvent) { e.Message = msg } }

// WithCount attaches an item count.
func WithCount(n int) TaskEventOption { return func(e *TaskEvent) { e.Count = n } }

// WithProgress attaches a completion fraction between 0 and 1.
func WithProgress(p float64) TaskEventOption { return func(e *TaskEvent) { e.Progress = p } }

// WithError attaches the failure that ended the task.
func WithError(err error) TaskEventOption { return func(e *TaskEvent) { e.Error = err } }

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the Bubble Tea model behind Run.
type Model struct {
	tasks   []Task
	spinner spinner.Model
	bar     progress.Model
	events  <-chan Event

	identity    string
	limitedTill time.Time
	finished    bool
}

// eventsClosed is delivered when the sender closes the event channel.
type eventsClosed struct{}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithTasks replaces the default task list.
func WithTasks(tasks []Task) ModelOption {
	return func(m *Model) { m.tasks = tasks }
}

// DefaultTasks returns the steps of a normal run, in display order.
func DefaultTasks() []Task {
	return []Task{
		NewTask(TaskAuth, "Authenticating"),
		NewTask(TaskFind, "Finding items"),
		NewTask(TaskTimeline, "Reading timelines"),
		NewTask(TaskApply, "Applying decisions"),
	}
}

// DryRunTasks returns the steps of a run that applies nothing.
func DryRunTasks() []Task {
	tasks := DefaultTasks()
	tasks[len(tasks)-1].Name = "Deciding (dry run)"
	return tasks
}

// NewModel returns a model that reads from events.
func NewModel(events <-chan Event, opts ...ModelOption) Model {
	m := Model{
		tasks:   DefaultTasks(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar: progress.New(
			progress.WithScaledGradient("#34d399", "#065f46"),
			progress.WithWidth(24),
			progress.WithoutPercentage(),
		),
		events: events,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the spinner and the event pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, next(m.events))
}

// Update handles key presses, animation frames and run events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if k := msg.String(); k == "ctrl+c" || k == "q" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	case TaskEvent:
		return m, tea.Batch(m.applyTask(msg), next(m.events))
	case RateLimitEvent:
		m.limitedTill = time.Time{}
		if msg.Limited {
			m.limitedTill = msg.ResetAt
		}
		return m, next(m.events)
	case DoneEvent, eventsClosed:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) applyTask(e TaskEvent) tea.Cmd {
	for i := range m.tasks {
		if m.tasks[i].ID != e.Task {
			continue
		}
		m.tasks[i].apply(e)
		if e.Task == TaskAuth && e.Status == StatusComplete {
			m.identity = e.Message
		}
		if e.Progress > 0 {
			return m.bar.SetPercent(e.Progress)
		}
		return nil
	}
	return nil
}

// View renders every task line, then any rate limit warning and the
// cancel hint.
func (m Model) View() string {
	var b strings.Builder
	for _, t := range m.tasks {
		b.WriteString(m.taskLine(t))
		b.WriteString("\n")
	}

	if wait := time.Until(m.limitedTill).Round(time.Second); wait > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("\n  Rate limited - remaining items will fail (resets in %s)", wait)))
		b.WriteString("\n")
	}
	if !m.finished {
		b.WriteString(hintStyle.Render("\n  Press Ctrl+C to cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// taskLine renders t. The auth step names the bot account once known.
func (m Model) taskLine(t Task) string {
	if t.ID == TaskAuth && t.Status == StatusComplete && m.identity != "" {
		return fmt.Sprintf("  %s Checking in as %s", StatusIcon(StatusComplete, ""), botStyle.Render(m.identity))
	}
	return t.View(m.spinner.View(), m.bar)
}

// next waits for one event from events.
func next(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return eventsClosed{}
		}
		return e
	}
}

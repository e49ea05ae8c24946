package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
)

// Task is one line of the progress display.
type Task struct {
	ID       TaskID
	Name     string
	Status   TaskStatus
	Message  string
	Count    int
	Progress float64
	Error    error
}

// NewTask returns a pending task.
func NewTask(id TaskID, name string) Task {
	return Task{ID: id, Name: name, Status: StatusPending}
}

// apply merges the non-zero fields of e into t.
func (t *Task) apply(e TaskEvent) {
	t.Status = e.Status
	if e.Message != "" {
		t.Message = e.Message
	}
	if e.Count > 0 {
		t.Count = e.Count
	}
	if e.Progress > 0 {
		t.Progress = e.Progress
	}
	if e.Error != nil {
		t.Error = e.Error
	}
}

// View renders the task line. The progress bar is shown only while the
// task runs and has reported progress.
func (t Task) View(spinnerFrame string, bar progress.Model) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(StatusIcon(t.Status, spinnerFrame))
	b.WriteString(" ")
	if t.Status == StatusPending {
		b.WriteString(dimStyle.Render(t.Name))
	} else {
		b.WriteString(nameStyle.Render(t.Name))
	}

	var notes []string
	if t.Status == StatusRunning && t.Progress > 0 {
		fmt.Fprintf(&b, " %s %3.0f%%", bar.ViewAs(t.Progress), t.Progress*100)
	}
	if t.Message != "" {
		notes = append(notes, t.Message)
	} else if t.Count > 0 {
		notes = append(notes, pluralItems(t.Count))
	}
	if len(notes) > 0 {
		b.WriteString(" " + noteStyle.Render("("+strings.Join(notes, ", ")+")"))
	}
	if t.Error != nil {
		b.WriteString(" " + failStyle.Render(t.Error.Error()))
	}
	return b.String()
}

func pluralItems(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

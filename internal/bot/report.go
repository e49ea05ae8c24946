package bot

import (
	"errors"
	"time"

	"github.com/spiffcs/checkin/internal/model"
)

var (
	// ErrUnresolvedPlaceholders marks a reminder that was withheld because
	// its template still contained unbound placeholders.
	ErrUnresolvedPlaceholders = errors.New("unresolved template placeholders")

	// ErrItemsFailed is returned by callers when at least one item could not
	// be fetched or acted on.
	ErrItemsFailed = errors.New("some items failed")
)

// Outcome records what happened to one item during a run.
type Outcome struct {
	Item       model.TrackedItem     `json:"item"`
	Summary    model.ActivitySummary `json:"summary"`
	Decision   model.Decision        `json:"decision"`
	Applied    bool                  `json:"applied"`
	Unresolved []string              `json:"unresolved,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// Failed reports whether the item could not be processed.
func (o Outcome) Failed() bool {
	return o.Error != ""
}

// Totals are aggregate counts for a run.
// Commented and Labeled count effects that were actually applied. Planned
// counts decisions that called for an effect which was not made: dry runs,
// and stop labels that were already present.
type Totals struct {
	Processed int `json:"processed"`
	Commented int `json:"commented"`
	Labeled   int `json:"labeled"`
	Planned   int `json:"planned"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Report is the result of one Runner.Run.
type Report struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	DryRun     bool      `json:"dryRun"`
	Outcomes   []Outcome `json:"outcomes"`
	Totals     Totals    `json:"totals"`
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// add appends an outcome and updates the totals.
func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Totals.Processed++

	switch {
	case o.Failed():
		r.Totals.Failed++
	case o.Decision.Action == model.ActionNone:
		r.Totals.Skipped++
	case !o.Applied:
		r.Totals.Planned++
	case o.Decision.Action == model.ActionComment:
		r.Totals.Commented++
	case o.Decision.Action == model.ActionLabel:
		r.Totals.Labeled++
	}
}

// FilterByAction returns the outcomes whose decision matches action.
func FilterByAction(outcomes []Outcome, action model.Action) []Outcome {
	var result []Outcome
	for _, o := range outcomes {
		if o.Decision.Action == action {
			result = append(result, o)
		}
	}
	return result
}

// FilterActionable drops outcomes that asked for nothing and did not fail.
func FilterActionable(outcomes []Outcome) []Outcome {
	var result []Outcome
	for _, o := range outcomes {
		if o.Failed() || o.Decision.Action != model.ActionNone {
			result = append(result, o)
		}
	}
	return result
}

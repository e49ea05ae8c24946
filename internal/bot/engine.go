package bot

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spiffcs/checkin/internal/activity"
	"github.com/spiffcs/checkin/internal/model"
	"github.com/spiffcs/checkin/internal/policy"
	"github.com/spiffcs/checkin/internal/template"
)

// Binding names always available to reminder templates.
const (
	VarDaysInactive   = "days-inactive"
	VarCheckInMessage = "check-in-message"
	VarAuthor         = "author"
	VarNumber         = "number"
	VarTitle          = "title"
	VarRepo           = "repo"
	VarURL            = "url"
	VarDaysSince      = "days-since"
)

// Settings is the explicit configuration for one bot run.
type Settings struct {
	BotIdentity    string
	ThresholdDays  float64
	StopPhrase     string
	StopLabel      string
	Template       string
	CheckInMessage string
	// Extra bindings merged under the built-in ones.
	Vars map[string]string
}

// Evaluation is everything derived for one item in one decision.
type Evaluation struct {
	Item       model.TrackedItem
	Summary    model.ActivitySummary
	Decision   model.Decision
	Unresolved []string
}

// Engine evaluates items against a fixed Settings value.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	settings Settings
	now      func() time.Time
}

// EngineOption is a functional option for configuring an Engine.
type EngineOption func(*Engine)

// WithClock overrides the engine's notion of "now".
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new Engine with the given settings.
func NewEngine(settings Settings, opts ...EngineOption) *Engine {
	e := &Engine{
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Settings returns a copy of the engine's settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Evaluate runs the classifier and the policy for item, and renders the
// reminder body when the decision is to comment.
func (e *Engine) Evaluate(item model.TrackedItem, comments []model.Comment) Evaluation {
	return e.EvaluateAt(item, comments, e.now())
}

// EvaluateAt is Evaluate with an explicit reference time.
func (e *Engine) EvaluateAt(item model.TrackedItem, comments []model.Comment, now time.Time) Evaluation {
	s := e.settings
	summary := activity.Classify(item.CreatedAt, comments, s.BotIdentity, s.StopPhrase)
	decision := policy.Decide(summary, now, s.ThresholdDays, s.StopLabel)

	ev := Evaluation{
		Item:     item,
		Summary:  summary,
		Decision: decision,
	}

	if decision.Action == model.ActionComment {
		res := template.Render(s.Template, e.Bindings(item, decision.DaysSince))
		ev.Decision.Body = res.Output
		ev.Unresolved = res.Unresolved
	}

	return ev
}

// Bindings assembles the variables available to the reminder template for item.
func (e *Engine) Bindings(item model.TrackedItem, daysSince float64) template.Bindings {
	b := make(template.Bindings, len(e.settings.Vars)+8)
	for k, v := range e.settings.Vars {
		b[k] = v
	}

	b[VarDaysInactive] = FormatDays(e.settings.ThresholdDays)
	b[VarCheckInMessage] = e.settings.CheckInMessage
	b[VarAuthor] = item.Author
	b[VarNumber] = strconv.Itoa(item.Number)
	b[VarTitle] = item.Title
	b[VarRepo] = item.Repo
	b[VarURL] = item.HTMLURL
	b[VarDaysSince] = fmt.Sprintf("%.1f", daysSince)

	return b
}

// FormatDays renders a day count without trailing zeros ("7", "0.5").
func FormatDays(days float64) string {
	return strconv.FormatFloat(days, 'f', -1, 64)
}

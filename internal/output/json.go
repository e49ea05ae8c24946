package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/spiffcs/checkin/internal/bot"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// JSONOutcome is the flattened JSON form of one outcome.
type JSONOutcome struct {
	Repo              string     `json:"repo"`
	Number            int        `json:"number"`
	Type              string     `json:"type"`
	Title             string     `json:"title"`
	URL               string     `json:"url,omitempty"`
	Author            string     `json:"author"`
	Action            string     `json:"action"`
	Reason            string     `json:"reason,omitempty"`
	DaysSince         float64    `json:"daysSince"`
	Label             string     `json:"label,omitempty"`
	Body              string     `json:"body,omitempty"`
	Applied           bool       `json:"applied"`
	Unresolved        []string   `json:"unresolved,omitempty"`
	Error             string     `json:"error,omitempty"`
	LastHumanActivity *time.Time `json:"lastHumanActivity,omitempty"`
	LastBotActivity   *time.Time `json:"lastBotActivity,omitempty"`
	StopSignal        bool       `json:"stopSignal"`
}

// JSONOutput wraps the outcomes with run metadata
type JSONOutput struct {
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	DurationMs int64         `json:"durationMs"`
	DryRun     bool          `json:"dryRun"`
	Totals     bot.Totals    `json:"totals"`
	Outcomes   []JSONOutcome `json:"outcomes"`
}

// Format outputs the full report as JSON. Skipped items are always included.
func (f *JSONFormatter) Format(report *bot.Report, w io.Writer) error {
	out := JSONOutput{
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		DurationMs: report.Duration().Milliseconds(),
		DryRun:     report.DryRun,
		Totals:     report.Totals,
		Outcomes:   make([]JSONOutcome, 0, len(report.Outcomes)),
	}

	for _, o := range report.Outcomes {
		jo := JSONOutcome{
			Repo:            o.Item.Repo,
			Number:          o.Item.Number,
			Type:            string(o.Item.Type),
			Title:           o.Item.Title,
			URL:             o.Item.HTMLURL,
			Author:          o.Item.Author,
			Action:          string(o.Decision.Action),
			Reason:          string(o.Decision.Reason),
			DaysSince:       o.Decision.DaysSince,
			Label:           o.Decision.Label,
			Body:            o.Decision.Body,
			Applied:         o.Applied,
			Unresolved:      o.Unresolved,
			Error:           o.Error,
			LastBotActivity: o.Summary.LastBotActivity,
			StopSignal:      o.Summary.HasStopSignal,
		}
		if !o.Summary.LastHumanActivity.IsZero() {
			t := o.Summary.LastHumanActivity
			jo.LastHumanActivity = &t
		}
		out.Outcomes = append(out.Outcomes, jo)
	}

	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}

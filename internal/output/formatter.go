package output

import (
	"fmt"
	"io"
	"time"

	"github.com/spiffcs/checkin/internal/bot"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatMarkdown:
		return Format(s), nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be table, json or markdown)", s)
	}
}

// Formatter defines the interface for output formatters
type Formatter interface {
	Format(report *bot.Report, w io.Writer) error
}

// Options controls what formatters include.
type Options struct {
	// ShowAll includes skipped items; by default only reminded, labelled
	// and failed items are listed.
	ShowAll bool
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format, opts Options) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{ShowAll: opts.ShowAll}
	default:
		return &TableFormatter{ShowAll: opts.ShowAll}
	}
}

// selectOutcomes applies the ShowAll option.
func selectOutcomes(report *bot.Report, showAll bool) []bot.Outcome {
	if showAll {
		return report.Outcomes
	}
	return bot.FilterActionable(report.Outcomes)
}

// idleFor returns how long the item had been without human activity when
// the run started. Zero when the timeline was never read.
func idleFor(o bot.Outcome, reference time.Time) time.Duration {
	if o.Summary.LastHumanActivity.IsZero() {
		return 0
	}
	return reference.Sub(o.Summary.LastHumanActivity)
}

// note describes an outcome in a few words.
func note(o bot.Outcome) string {
	if o.Failed() {
		return o.Error
	}
	return o.Decision.Reason.Display()
}

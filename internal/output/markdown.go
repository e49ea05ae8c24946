package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spiffcs/checkin/internal/bot"
	"github.com/spiffcs/checkin/internal/format"
	"github.com/spiffcs/checkin/internal/model"
)

// MarkdownFormatter formats output as Markdown, suitable for a GitHub
// Actions job summary.
type MarkdownFormatter struct {
	ShowAll bool
}

// Format outputs the report as Markdown
func (f *MarkdownFormatter) Format(report *bot.Report, w io.Writer) error {
	title := "## checkin report"
	if report.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "\n*Run at %s, took %s*\n\n", report.StartedAt.UTC().Format("2006-01-02 15:04 MST"), report.Duration().Round(time.Millisecond))

	t := report.Totals
	fmt.Fprintln(w, "| Processed | Reminded | Labelled | Not applied | Skipped | Failed |")
	fmt.Fprintln(w, "|---:|---:|---:|---:|---:|---:|")
	fmt.Fprintf(w, "| %d | %d | %d | %d | %d | %d |\n", t.Processed, t.Commented, t.Labeled, t.Planned, t.Skipped, t.Failed)

	outcomes := selectOutcomes(report, f.ShowAll)
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "\nNothing to do.")
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Item | Title | Author | Action | Idle | Note |")
	fmt.Fprintln(w, "|---|---|---|---|---:|---|")
	for _, o := range outcomes {
		item := fmt.Sprintf("%s#%d", o.Item.Repo, o.Item.Number)
		if o.Item.HTMLURL != "" {
			item = fmt.Sprintf("[%s](%s)", item, o.Item.HTMLURL)
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n",
			item,
			escapeCell(o.Item.Title),
			escapeCell(format.DisplayAuthor(o.Item.Author)),
			markdownAction(o, report.DryRun),
			format.FormatAge(idleFor(o, report.StartedAt)),
			escapeCell(note(o)),
		)
	}

	return nil
}

func markdownAction(o bot.Outcome, dryRun bool) string {
	if o.Failed() {
		return "❌ failed"
	}
	action := o.Decision.Action.Display()
	switch o.Decision.Action {
	case model.ActionComment:
		action = format.ReminderIcon + " " + action
	case model.ActionLabel:
		action = format.SilencedIcon + " " + action + " `" + o.Decision.Label + "`"
	}
	if dryRun && o.Decision.Action != model.ActionNone {
		action += " (dry run)"
	}
	return action
}

// escapeCell keeps text from breaking a Markdown table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}

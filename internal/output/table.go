package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spiffcs/checkin/internal/bot"
	"github.com/spiffcs/checkin/internal/format"
	"github.com/spiffcs/checkin/internal/model"
	"golang.org/x/term"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	ShowAll bool
}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func hyperlink(text, url string) string {
	// Only use hyperlinks if stdout is a terminal
	if url == "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// Column widths
const (
	colAction = 8
	colType   = 4
	colItem   = 28
	colTitle  = 40
	colAuthor = 14
	colIdle   = 5
)

// Format outputs the report as a table followed by a totals footer
func (f *TableFormatter) Format(report *bot.Report, w io.Writer) error {
	outcomes := selectOutcomes(report, f.ShowAll)

	if len(outcomes) == 0 {
		if report.Totals.Processed == 0 {
			fmt.Fprintln(w, "No open items found.")
		} else {
			fmt.Fprintln(w, "Nothing to do.")
		}
		printFooter(report, len(outcomes), f.ShowAll, w)
		return nil
	}

	// Header
	fmt.Fprintf(w, "%s%-*s  %-*s  %-*s  %-*s  %-*s  %-*s  %s\n",
		strings.Repeat(" ", format.IconWidth),
		colAction, "Action",
		colType, "Type",
		colItem, "Item",
		colTitle, "Title",
		colAuthor, "Author",
		colIdle, "Idle",
		"Note")
	fmt.Fprintln(w, strings.Repeat("-", format.IconWidth+colAction+colType+colItem+colTitle+colAuthor+colIdle+24))

	for _, o := range outcomes {
		icon := format.DetermineIcon(format.IconInput{Action: string(o.Decision.Action), Failed: o.Failed()})

		action := o.Decision.Action.Display()
		if o.Failed() {
			action = "Failed"
		}
		actionStr := format.PadRight(colorAction(action), colAction)

		item, _ := format.Truncate(o.Item.Key(), colItem)
		title, _ := format.Truncate(o.Item.Title, colTitle)
		linkedTitle := format.PadRight(hyperlink(title, o.Item.HTMLURL), colTitle)

		author := format.TruncateUsername(format.DisplayAuthor(o.Item.Author), colAuthor)

		idle := "-"
		if d := idleFor(o, report.StartedAt); d > 0 {
			idle = format.FormatAge(d)
		}

		n := note(o)
		if o.Failed() {
			n = color.RedString(n)
		} else if len(o.Unresolved) > 0 {
			n += color.YellowString(" (unresolved: %s)", strings.Join(o.Unresolved, ", "))
		}

		fmt.Fprintf(w, "%s %s  %-*s  %s  %s  %-*s  %-*s  %s\n",
			icon.String(),
			actionStr,
			colType, o.Item.Type.Short(),
			format.PadRight(item, colItem),
			linkedTitle,
			colAuthor, author,
			colIdle, idle,
			n,
		)
	}

	printFooter(report, len(outcomes), f.ShowAll, w)
	return nil
}

func colorAction(action string) string {
	switch action {
	case model.ActionComment.Display():
		return color.CyanString(action)
	case model.ActionLabel.Display():
		return color.YellowString(action)
	case "Failed":
		return color.RedString(action)
	default:
		return color.WhiteString(action)
	}
}

// printFooter prints the run totals
func printFooter(report *bot.Report, listed int, showAll bool, w io.Writer) {
	t := report.Totals

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("━", 60))

	if report.DryRun {
		comments, labels := plannedCounts(report.Outcomes)
		fmt.Fprintf(w, "  %s %d reminders would be posted\n", format.ReminderIcon, comments)
		fmt.Fprintf(w, "  %s %d items would be silenced\n", format.SilencedIcon, labels)
	} else {
		fmt.Fprintf(w, "  %s %d reminders posted\n", format.ReminderIcon, t.Commented)
		fmt.Fprintf(w, "  %s %d items silenced\n", format.SilencedIcon, t.Labeled)
	}
	if t.Failed > 0 {
		fmt.Fprintf(w, "  %s %s\n", format.FailedIcon, color.RedString("%d items failed", t.Failed))
	}

	hidden := t.Processed - listed
	if !showAll && hidden > 0 {
		fmt.Fprintf(w, "  %d of %d items skipped (use --all to list them)\n", hidden, t.Processed)
	} else {
		fmt.Fprintf(w, "  %d items checked in %s\n", t.Processed, report.Duration().Round(time.Millisecond))
	}
	if report.DryRun {
		fmt.Fprintln(w, color.YellowString("  dry run: no comments or labels were written"))
	}
}

// plannedCounts counts the comment and label decisions that were not applied.
func plannedCounts(outcomes []bot.Outcome) (comments, labels int) {
	for _, o := range outcomes {
		if o.Applied || o.Failed() {
			continue
		}
		switch o.Decision.Action {
		case model.ActionComment:
			comments++
		case model.ActionLabel:
			labels++
		}
	}
	return comments, labels
}

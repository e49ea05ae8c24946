package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/checkin/internal/duration"
	"github.com/spiffcs/checkin/internal/stats"
)

// NewCmdHistory creates the history command.
func NewCmdHistory() *cobra.Command {
	var last int
	var since string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show summaries of recent runs",
		Long: `Show aggregate counts from recent non-dry runs. Only totals are
recorded; individual decisions are never stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := stats.NewStore()
			if err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}

			var runs []stats.RunSummary
			if since != "" {
				t, err := duration.Parse(since)
				if err != nil {
					return fmt.Errorf("invalid duration: %w", err)
				}
				runs = store.Since(t)
			} else {
				runs = store.Recent(last)
			}
			return writeHistory(cmd.OutOrStdout(), runs, outputFormat)
		},
	}

	cmd.Flags().IntVarP(&last, "last", "n", 10, "Number of runs to show")
	cmd.Flags().StringVarP(&since, "since", "s", "", "Show runs since (e.g., 1w, 30d, 6mo)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")

	return cmd
}

func writeHistory(w io.Writer, runs []stats.RunSummary, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if runs == nil {
			runs = []stats.RunSummary{}
		}
		return enc.Encode(runs)
	case "table":
	default:
		return fmt.Errorf("invalid format: %s (must be table or json)", format)
	}

	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "No runs recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "WHEN\tREPOS\tITEMS\tCOMMENTED\tLABELED\tFAILED\tMEDIAN IDLE\tTOOK")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.1fd\t%s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			strings.Join(r.Repos, ","),
			r.Processed,
			r.Commented,
			r.Labeled,
			r.Failed,
			r.MedianIdleHours/24,
			(time.Duration(r.DurationMs) * time.Millisecond).Round(time.Millisecond),
		)
	}
	return tw.Flush()
}


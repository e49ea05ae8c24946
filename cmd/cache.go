package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/checkin/internal/cache"
	"github.com/spiffcs/checkin/internal/format"
)

// NewCmdCache creates the cache command with subcommands.
func NewCmdCache() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the timeline cache",
	}

	cmd.AddCommand(newCmdCacheClear())
	cmd.AddCommand(newCmdCacheStats())

	return cmd
}

// newCmdCacheClear creates the cache clear subcommand.
func newCmdCacheClear() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the timeline cache",
		RunE:  runCacheClear,
	}
}

// newCmdCacheStats creates the cache stats subcommand.
func newCmdCacheStats() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE:  runCacheStats,
	}
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	c, err := cache.NewCache()
	if err != nil {
		return fmt.Errorf("failed to access cache: %w", err)
	}

	if err := c.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
	return nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	c, err := cache.NewCache()
	if err != nil {
		return fmt.Errorf("failed to access cache: %w", err)
	}

	stats, err := c.DetailedStats()
	if err != nil {
		return fmt.Errorf("failed to get cache stats: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Cache statistics (%s):\n", c.Dir())
	fmt.Fprintf(w, "  Timelines (TTL: 24h):\n")
	fmt.Fprintf(w, "    Total: %d\n", stats.Total)
	fmt.Fprintf(w, "    Valid: %d\n", stats.Valid)
	fmt.Fprintf(w, "    Expired: %d\n", stats.Expired())
	fmt.Fprintf(w, "    Size: %.1f KiB\n", float64(stats.SizeBytes)/1024)
	if stats.Total > 0 {
		fmt.Fprintf(w, "    Oldest: %s (%s)\n", stats.Oldest.Local().Format(time.DateTime), format.FormatAge(time.Since(stats.Oldest)))
		fmt.Fprintf(w, "    Newest: %s (%s)\n", stats.Newest.Local().Format(time.DateTime), format.FormatAge(time.Since(stats.Newest)))
	}
	return nil
}

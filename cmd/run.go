package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/checkin/config"
	"github.com/spiffcs/checkin/internal/bot"
	"github.com/spiffcs/checkin/internal/cache"
	"github.com/spiffcs/checkin/internal/constants"
	"github.com/spiffcs/checkin/internal/ghclient"
	"github.com/spiffcs/checkin/internal/log"
	"github.com/spiffcs/checkin/internal/model"
	"github.com/spiffcs/checkin/internal/output"
	"github.com/spiffcs/checkin/internal/stats"
	"github.com/spiffcs/checkin/internal/tui"
)

// envStepSummary is the file GitHub Actions renders as the job summary.
const envStepSummary = "GITHUB_STEP_SUMMARY"

// runRuntime bundles TUI-related state that's threaded through the run command.
type runRuntime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
}

// startTUI initializes and starts the TUI goroutine if TUI mode is enabled.
func (rt *runRuntime) startTUI(tasks []tui.Task) {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events, tui.WithTasks(tasks))
	}()
}

// close closes the event channel and waits for the TUI to finish.
func (rt *runRuntime) close() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	rt.events = nil
	if rt.tuiDone != nil {
		<-rt.tuiDone
	}
}

// sendEvent sends a task event to the TUI channel if it exists.
func (rt *runRuntime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	if rt.events == nil {
		return
	}
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

// NewCmdRun creates the run command.
func NewCmdRun(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check open items and post reminders (same as root checkin)",
		Long: `Lists the open issues and pull requests of each repository, reads
their comment timelines, and posts a reminder on every item that has had no
human activity for longer than the threshold. Items whose discussion
contains the stop phrase are labelled and skipped from then on.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheckin(cmd, opts)
		},
	}

	addRunFlags(cmd, opts)
	return cmd
}

// addRunFlags adds the run-specific flags to a command.
func addRunFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringSliceVarP(&opts.Repos, "repo", "r", nil, "Repository to check (owner/name, repeatable)")
	cmd.Flags().StringVar(&opts.DaysInactive, "days-inactive", "", "Inactivity threshold (e.g., 7, 0.5, 36h, 2w)")
	cmd.Flags().StringVar(&opts.BotUsername, "bot-username", "", "Login of the bot account (default: token owner)")
	cmd.Flags().StringVar(&opts.StopComment, "stop-comment", "", "Phrase that silences reminders on an item")
	cmd.Flags().StringVar(&opts.IgnoreLabel, "ignore-label", "", "Label applied to silenced items")
	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "Only check one item type (issue, pr)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "Maximum items per repository (0 = no limit)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Concurrent timeline fetches (default from config)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Decide without commenting or labelling")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Always fetch timelines from GitHub")
	cmd.Flags().BoolVar(&opts.StrictTemplates, "strict-templates", false, "Withhold reminders with unresolved placeholders")
	cmd.Flags().BoolVarP(&opts.ShowAll, "all", "a", false, "List skipped items too")
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")
	cmd.Flags().StringVar(&opts.SummaryFile, "summary-file", "", "Append a markdown report to this file (default: $GITHUB_STEP_SUMMARY)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(autoBool{&opts.TUI}, "tui", "Enable/disable TUI progress (default: auto-detect)")

	// Profiling flags
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
}

func runCheckin(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	// Setup
	rt, cleanup, err := setupRuntime(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := loadRunConfig(opts)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(firstNonEmpty(opts.Format, cfg.DefaultFormat))
	if err != nil {
		return err
	}

	tasks := tui.DefaultTasks()
	if opts.DryRun {
		tasks = tui.DryRunTasks()
	}
	rt.startTUI(tasks)
	defer rt.close()

	// Authenticate
	client, identity, err := authenticate(ctx, cfg, rt)
	if err != nil {
		return err
	}

	// Find
	items, err := findItems(ctx, client, cfg, opts.Limit, rt)
	if err != nil {
		return err
	}

	// Decide and apply
	report, err := runBot(ctx, client, cfg, identity, items, opts, rt)
	if err != nil {
		return err
	}

	// Output
	rt.close()
	if err := output.NewFormatter(format, output.Options{ShowAll: opts.ShowAll}).Format(report, os.Stdout); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if path := summaryPath(opts, os.Getenv); path != "" {
		if err := appendSummary(path, report); err != nil {
			log.Warn("could not write step summary", "path", path, "error", err)
		}
	}

	if !report.DryRun {
		recordRun(report, cfg.Repos)
	}

	if report.Totals.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", bot.ErrItemsFailed, report.Totals.Failed, report.Totals.Processed)
	}
	return nil
}

// setupRuntime starts profiling, initializes logging and returns a cleanup function.
func setupRuntime(opts *Options) (*runRuntime, func(), error) {
	stopProfiles, err := profiles{cpu: opts.CPUProfile, mem: opts.MemProfile, trace: opts.Trace}.start()
	if err != nil {
		return nil, nil, err
	}

	useTUI := shouldUseTUI(opts)

	// Suppress logs during TUI to avoid interleaving with the display
	if useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}
	log.EnableAnnotations(annotationOutput(log.InGitHubActions()))

	return &runRuntime{useTUI: useTUI}, stopProfiles, nil
}

// annotationOutput is where workflow commands go: stderr inside Actions,
// leaving stdout to the report. The runner reads commands from both streams.
func annotationOutput(inActions bool) io.Writer {
	if !inActions {
		return nil
	}
	return os.Stderr
}

// loadRunConfig loads configuration and overlays the command-line flags.
func loadRunConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyRunFlags(cfg, opts); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Repos) == 0 {
		return nil, fmt.Errorf("no repositories configured: pass --repo, set repos in the config file, or set %s", config.EnvRepository)
	}
	return cfg, nil
}

// applyRunFlags overlays explicitly passed flags on cfg.
func applyRunFlags(cfg *config.Config, opts *Options) error {
	if len(opts.Repos) > 0 {
		cfg.Repos = opts.Repos
	}
	if opts.DaysInactive != "" {
		if err := cfg.Set("days_inactive", opts.DaysInactive); err != nil {
			return err
		}
	}
	if opts.BotUsername != "" {
		cfg.BotUsername = opts.BotUsername
	}
	if opts.StopComment != "" {
		cfg.StopComment = opts.StopComment
	}
	if opts.IgnoreLabel != "" {
		cfg.IgnoreLabel = opts.IgnoreLabel
	}
	if opts.Type != "" {
		t, err := model.ParseItemType(opts.Type)
		if err != nil {
			return err
		}
		cfg.ItemTypes = []string{string(t)}
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if opts.StrictTemplates {
		strict := true
		cfg.StrictTemplates = &strict
	}
	return nil
}

// authenticate builds the GitHub client and resolves the bot identity.
func authenticate(ctx context.Context, cfg *config.Config, rt *runRuntime) (*ghclient.Client, string, error) {
	rt.sendEvent(tui.TaskAuth, tui.StatusRunning)

	client, err := ghclient.NewClient(ctx, cfg.GetGitHubToken())
	if err != nil {
		rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
		return nil, "", err
	}

	identity := cfg.BotUsername
	if identity == "" {
		identity, err = client.AuthenticatedUser(ctx)
		if err != nil {
			rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
			return nil, "", err
		}
	}
	log.Info("checking in", "as", identity)

	rt.sendEvent(tui.TaskAuth, tui.StatusComplete, tui.WithMessage(identity))
	return client, identity, nil
}

// findItems lists the open items of every configured repository.
func findItems(ctx context.Context, fetcher ghclient.Fetcher, cfg *config.Config, limit int, rt *runRuntime) ([]model.TrackedItem, error) {
	repos, err := model.UniqueRepos(cfg.Repos)
	if err != nil {
		rt.sendEvent(tui.TaskFind, tui.StatusError, tui.WithError(err))
		return nil, err
	}
	rt.sendEvent(tui.TaskFind, tui.StatusRunning, tui.WithMessage(fmt.Sprintf("searching %d repos", len(repos))))

	types, err := cfg.Types()
	if err != nil {
		return nil, err
	}
	listOpts := ghclient.ListOptions{
		IgnoreLabel: cfg.IgnoreLabel,
		Types:       types,
		Limit:       limit,
	}

	var items []model.TrackedItem
	for _, repo := range repos {
		found, err := fetcher.ListOpenItems(ctx, repo, listOpts)
		if err != nil {
			rt.sendEvent(tui.TaskFind, tui.StatusError, tui.WithError(err))
			return nil, err
		}
		found = filterExcludedAuthors(found, cfg)
		log.Info("found open items", "repo", repo, "count", len(found))
		items = append(items, found...)
	}

	rt.sendEvent(tui.TaskFind, tui.StatusComplete, tui.WithCount(len(items)))
	return items, nil
}

// filterExcludedAuthors drops items opened by excluded authors.
func filterExcludedAuthors(items []model.TrackedItem, cfg *config.Config) []model.TrackedItem {
	if len(cfg.ExcludeAuthors) == 0 {
		return items
	}
	kept := items[:0]
	for _, item := range items {
		if cfg.IsAuthorExcluded(item.Author) {
			log.Debug("skipping excluded author", "item", item.Key(), "author", item.Author)
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// newTimelineStore wires the on-disk timeline cache unless disabled.
func newTimelineStore(lister ghclient.CommentLister, noCache bool) *ghclient.TimelineStore {
	if noCache {
		return ghclient.NewTimelineStore(lister, nil)
	}
	c, err := cache.NewCache()
	if err != nil {
		log.Warn("failed to initialize cache", "error", err)
		return ghclient.NewTimelineStore(lister, nil)
	}
	return ghclient.NewTimelineStore(lister, c)
}

// settingsFromConfig builds the engine settings for one run.
func settingsFromConfig(cfg *config.Config, identity string) bot.Settings {
	return bot.Settings{
		BotIdentity:    identity,
		ThresholdDays:  cfg.Threshold(),
		StopPhrase:     cfg.StopComment,
		StopLabel:      cfg.IgnoreLabel,
		Template:       cfg.CommentMessage,
		CheckInMessage: cfg.CheckInMessage,
		Vars:           cfg.Vars,
	}
}

// runBot fetches timelines, decides and applies effects for items.
func runBot(ctx context.Context, client *ghclient.Client, cfg *config.Config, identity string, items []model.TrackedItem, opts *Options, rt *runRuntime) (*bot.Report, error) {
	store := newTimelineStore(client, opts.NoCache)
	engine := bot.NewEngine(settingsFromConfig(cfg, identity))

	rt.sendEvent(tui.TaskTimeline, tui.StatusRunning)
	runner := bot.NewRunner(engine, store, client,
		bot.WithWorkers(cfg.Workers),
		bot.WithDryRun(opts.DryRun),
		bot.WithStrictTemplates(cfg.Strict()),
		bot.WithProgress(timelineProgress(rt, client.RateLimitState())),
	)

	report, err := runner.Run(ctx, items)
	if !rt.useTUI {
		log.ProgressDone()
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("run cancelled: %w", err)
		}
		return nil, err
	}

	hits, misses := store.CacheStats()
	timelineMsg := fmt.Sprintf("%d/%d", len(items), len(items))
	if hits > 0 {
		timelineMsg = fmt.Sprintf("%d/%d (%d cached)", len(items), len(items), hits)
	}
	log.Debug("timeline cache", "hits", hits, "misses", misses)
	rt.sendEvent(tui.TaskTimeline, tui.StatusComplete, tui.WithMessage(timelineMsg))

	t := report.Totals
	applyMsg := fmt.Sprintf("%d commented, %d labeled, %d failed", t.Commented, t.Labeled, t.Failed)
	if t.Planned > 0 {
		applyMsg += fmt.Sprintf(", %d not applied", t.Planned)
	}
	if t.Failed > 0 {
		rt.sendEvent(tui.TaskApply, tui.StatusError, tui.WithError(errors.New(applyMsg)))
	} else {
		rt.sendEvent(tui.TaskApply, tui.StatusComplete, tui.WithMessage(applyMsg))
	}
	return report, nil
}

// timelineProgress returns a Runner progress callback that drives the TUI
// progress bar or throttled log lines.
func timelineProgress(rt *runRuntime, limits *ghclient.RateLimitState) func(completed, total int) {
	var lastLogPercent int64 = -1
	var lastTUIUpdate int64 // Unix nanoseconds
	var limitReported atomic.Bool
	tuiUpdateInterval := int64(constants.TUIUpdateInterval)
	events := rt.events

	return func(completed, total int) {
		if total == 0 {
			return
		}
		if limits != nil && limits.IsLimited(ghclient.ResourceCore) && limitReported.CompareAndSwap(false, true) {
			resetAt := limits.Snapshot(ghclient.ResourceCore).ResetAt
			log.Warn("rate limited by GitHub", "resetsAt", resetAt.Format(time.RFC3339))
			tui.SendRateLimit(events, true, resetAt)
		}

		if rt.useTUI {
			// Throttle TUI updates for smooth progress without overhead
			now := time.Now().UnixNano()
			lastUpdate := atomic.LoadInt64(&lastTUIUpdate)
			if now-lastUpdate >= tuiUpdateInterval || completed == total {
				if atomic.CompareAndSwapInt64(&lastTUIUpdate, lastUpdate, now) {
					tui.SendTaskEvent(events, tui.TaskTimeline, tui.StatusRunning,
						tui.WithProgress(float64(completed)/float64(total)),
						tui.WithMessage(fmt.Sprintf("%d/%d", completed, total)))
				}
			}
			if completed == total {
				tui.SendTaskEvent(events, tui.TaskApply, tui.StatusRunning)
			}
			return
		}

		// Throttle log output to configured percent intervals
		percent := int64(completed * 100 / total)
		if percent != atomic.LoadInt64(&lastLogPercent) && percent%constants.LogThrottlePercent == 0 {
			atomic.StoreInt64(&lastLogPercent, percent)
			log.Progress("Reading timelines: %d/%d (%d%%)...", completed, total, percent)
		}
	}
}

// summaryPath returns where the markdown report should be appended, if anywhere.
func summaryPath(opts *Options, getenv func(string) string) string {
	if opts.SummaryFile != "" {
		return opts.SummaryFile
	}
	return getenv(envStepSummary)
}

// appendSummary appends the markdown report to path.
func appendSummary(path string, report *bot.Report) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(output.FormatMarkdown, output.Options{})
	if err := formatter.Format(report, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// recordRun appends the run's aggregate counts to the history file.
func recordRun(report *bot.Report, repos []string) {
	store, err := stats.NewStore()
	if err != nil {
		log.Debug("could not open run history", "error", err)
		return
	}
	if err := store.Append(stats.FromReport(report, repos)); err != nil {
		log.Debug("could not record run", "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

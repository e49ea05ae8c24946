package bot

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spiffcs/checkin/internal/log"
	"github.com/spiffcs/checkin/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of timelines fetched concurrently when no
// worker count is configured.
const DefaultWorkers = 10

// Runner drives the Engine over a list of items and applies the resulting
// decisions through Effects. Timelines are fetched concurrently; decisions
// are made and applied sequentially in item order.
type Runner struct {
	engine     *Engine
	source     TimelineSource
	effects    Effects
	workers    int
	dryRun     bool
	strict     bool
	onProgress func(completed, total int)
	now        func() time.Time
}

// RunnerOption is a functional option for configuring a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the number of concurrent timeline fetches.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithDryRun decides without applying any effect.
func WithDryRun(dryRun bool) RunnerOption {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithStrictTemplates withholds reminders that still contain unresolved placeholders.
func WithStrictTemplates(strict bool) RunnerOption {
	return func(r *Runner) {
		r.strict = strict
	}
}

// WithProgress registers a callback invoked after each timeline fetch.
// It may be called from multiple goroutines.
func WithProgress(fn func(completed, total int)) RunnerOption {
	return func(r *Runner) {
		r.onProgress = fn
	}
}

// WithRunClock overrides the time source used for the run's reference time.
func WithRunClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a Runner.
func NewRunner(engine *Engine, source TimelineSource, effects Effects, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine:  engine,
		source:  source,
		effects: effects,
		workers: DefaultWorkers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// timeline is the fetch result for one item.
type timeline struct {
	comments []model.Comment
	err      error
}

// Run processes items and returns a report. Per-item failures are recorded
// in the report; an error is only returned when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, items []model.TrackedItem) (*Report, error) {
	report := &Report{
		StartedAt: r.now(),
		DryRun:    r.dryRun,
		Outcomes:  make([]Outcome, 0, len(items)),
	}
	now := report.StartedAt

	timelines, err := r.fetchTimelines(ctx, items)
	if err != nil {
		return nil, err
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = r.now()
			return report, err
		}
		log.Info("processing item", "item", item.Key(), "progress", fmt.Sprintf("%d/%d", i+1, len(items)), "title", item.Title)
		report.add(r.process(ctx, item, timelines[i], now))
	}

	report.FinishedAt = r.now()
	log.Info("run complete",
		"processed", report.Totals.Processed,
		"commented", report.Totals.Commented,
		"labeled", report.Totals.Labeled,
		"planned", report.Totals.Planned,
		"skipped", report.Totals.Skipped,
		"failed", report.Totals.Failed,
		"dryRun", r.dryRun)

	return report, nil
}

// fetchTimelines loads every item's comments with a bounded worker pool.
// Individual fetch errors are kept per item; only cancellation aborts.
func (r *Runner) fetchTimelines(ctx context.Context, items []model.TrackedItem) ([]timeline, error) {
	results := make([]timeline, len(items))
	total := len(items)
	var completed int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			comments, err := r.source.Comments(gctx, items[i])
			results[i] = timeline{comments: comments, err: err}

			done := atomic.AddInt64(&completed, 1)
			if r.onProgress != nil {
				r.onProgress(int(done), total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// process evaluates one item and applies its decision.
func (r *Runner) process(ctx context.Context, item model.TrackedItem, tl timeline, now time.Time) Outcome {
	if tl.err != nil {
		log.Warn("could not read timeline", "item", item.Key(), "error", tl.err)
		return Outcome{
			Item:     item,
			Decision: model.Decision{Action: model.ActionNone},
			Error:    fmt.Sprintf("list comments: %v", tl.err),
		}
	}

	ev := r.engine.EvaluateAt(item, tl.comments, now)
	out := Outcome{
		Item:       item,
		Summary:    ev.Summary,
		Decision:   ev.Decision,
		Unresolved: ev.Unresolved,
	}
	logEvaluation(ev, len(tl.comments))

	switch ev.Decision.Action {
	case model.ActionLabel:
		if item.HasLabel(ev.Decision.Label) {
			log.Debug("label already present", "item", item.Key(), "label", ev.Decision.Label)
			return out
		}
		if r.dryRun {
			return out
		}
		if err := r.effects.AddLabel(ctx, item.Repo, item.Number, ev.Decision.Label); err != nil {
			log.Warn("could not apply label", "item", item.Key(), "label", ev.Decision.Label, "error", err)
			out.Error = fmt.Sprintf("add label: %v", err)
			return out
		}
		out.Applied = true

	case model.ActionComment:
		if len(ev.Unresolved) > 0 {
			if r.strict {
				err := fmt.Errorf("%w: %s", ErrUnresolvedPlaceholders, strings.Join(ev.Unresolved, ", "))
				log.Error("reminder withheld", "item", item.Key(), "error", err)
				out.Error = err.Error()
				return out
			}
			log.Warn("reminder has unresolved placeholders", "item", item.Key(), "placeholders", strings.Join(ev.Unresolved, ","))
		}
		if r.dryRun {
			return out
		}
		if err := r.effects.CreateComment(ctx, item.Repo, item.Number, ev.Decision.Body); err != nil {
			log.Warn("could not post reminder", "item", item.Key(), "error", err)
			out.Error = fmt.Sprintf("create comment: %v", err)
			return out
		}
		out.Applied = true
	}

	return out
}

// logEvaluation explains the decision at info level and the raw facts at debug level.
func logEvaluation(ev Evaluation, commentCount int) {
	key := ev.Item.Key()
	lastBot := "none"
	if ev.Summary.LastBotActivity != nil {
		lastBot = ev.Summary.LastBotActivity.Format(time.RFC3339)
	}
	log.Debug("timeline classified",
		"item", key,
		"comments", commentCount,
		"lastHumanActivity", ev.Summary.LastHumanActivity.Format(time.RFC3339),
		"lastBotActivity", lastBot,
		"stopSignal", ev.Summary.HasStopSignal)

	d := ev.Decision
	switch d.Reason {
	case model.ReasonStopSignal:
		log.Info("stop signal found, silencing", "item", key, "label", d.Label)
	case model.ReasonNotInactive:
		log.Info("not inactive long enough", "item", key, "daysSince", fmt.Sprintf("%.1f", d.DaysSince))
	case model.ReasonNoPriorReminder:
		log.Info("reminding, no previous bot comment", "item", key, "daysSince", fmt.Sprintf("%.1f", d.DaysSince))
	case model.ReasonHumanReplied:
		log.Info("reminding, human replied after last bot comment", "item", key, "daysSince", fmt.Sprintf("%.1f", d.DaysSince))
	case model.ReasonAlreadyReminded:
		log.Info("latest bot comment is newer than human activity", "item", key, "lastBotActivity", lastBot)
	}
}

// Package stats keeps a rolling history of run summaries. Only aggregate
// counts are stored; per-item decisions are never persisted or read back.
package stats

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spiffcs/checkin/internal/bot"
	"github.com/spiffcs/checkin/internal/constants"
	"github.com/spiffcs/checkin/internal/log"
	"github.com/spiffcs/checkin/internal/model"
)

// RunSummary captures aggregate counts from a single run.
type RunSummary struct {
	Timestamp       time.Time `json:"ts"`
	Repos           []string  `json:"repos"`
	DryRun          bool      `json:"dryRun,omitempty"`
	DurationMs      int64     `json:"durationMs"`
	Processed       int       `json:"processed"`
	Commented       int       `json:"commented"`
	Labeled         int       `json:"labeled"`
	Planned         int       `json:"planned,omitempty"`
	Skipped         int       `json:"skipped"`
	Failed          int       `json:"failed"`
	IssueCount      int       `json:"issues"`
	PRCount         int       `json:"prs"`
	MedianIdleHours float64   `json:"medianIdleH"`
}

// FromReport summarizes a run report.
func FromReport(report *bot.Report, repos []string) RunSummary {
	s := RunSummary{
		Timestamp:  report.StartedAt,
		Repos:      repos,
		DryRun:     report.DryRun,
		DurationMs: report.Duration().Milliseconds(),
		Processed:  report.Totals.Processed,
		Commented:  report.Totals.Commented,
		Labeled:    report.Totals.Labeled,
		Planned:    report.Totals.Planned,
		Skipped:    report.Totals.Skipped,
		Failed:     report.Totals.Failed,
	}

	var idle []float64
	for _, o := range report.Outcomes {
		if o.Item.Type == model.ItemTypePullRequest {
			s.PRCount++
		} else {
			s.IssueCount++
		}
		if !o.Summary.LastHumanActivity.IsZero() {
			idle = append(idle, report.StartedAt.Sub(o.Summary.LastHumanActivity).Hours())
		}
	}
	s.MedianIdleHours = median(idle)

	return s
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Store manages persistence of run summaries as JSON Lines.
type Store struct {
	path string
	max  int
	mu   sync.Mutex
}

// NewStore creates a new stats store at ~/.cache/checkin/runs.jsonl.
func NewStore() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(cacheDir, "checkin")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Store{
		path: filepath.Join(dir, "runs.jsonl"),
		max:  constants.RunHistoryLimit,
	}, nil
}

// NewStoreWithPath creates a store at the given path (for testing).
func NewStoreWithPath(path string) *Store {
	return &Store{path: path, max: constants.RunHistoryLimit}
}

// Path returns the history file location.
func (s *Store) Path() string {
	return s.path
}

// Append adds a summary and prunes to the most recent entries.
func (s *Store) Append(summary RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		log.Debug("could not read run history, starting fresh", "error", err)
		records = nil
	}

	records = append(records, summary)

	if len(records) > s.max {
		records = records[len(records)-s.max:]
	}

	return s.writeAll(records)
}

// Recent returns the last n summaries (or fewer if not enough exist).
func (s *Store) Recent(n int) []RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil
	}

	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}

// Since returns the summaries recorded at or after t.
func (s *Store) Since(t time.Time) []RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return nil
	}

	var result []RunSummary
	for _, r := range records {
		if !r.Timestamp.Before(t) {
			result = append(result, r)
		}
	}
	return result
}

// readAll reads all summaries from disk.
func (s *Store) readAll() ([]RunSummary, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var records []RunSummary
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r RunSummary
		if err := json.Unmarshal(line, &r); err != nil {
			continue // skip malformed lines
		}
		records = append(records, r)
	}
	return records, scanner.Err()
}

// writeAll writes all summaries to disk atomically.
func (s *Store) writeAll(records []RunSummary) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, s.path)
}

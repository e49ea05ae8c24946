package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spiffcs/checkin/internal/bot"
	"github.com/spiffcs/checkin/internal/model"
)

func TestAppendAndRecent(t *testing.T) {
	dir := t.TempDir()
	s := NewStoreWithPath(filepath.Join(dir, "runs.jsonl"))

	// Empty store returns nil
	got := s.Recent(10)
	if len(got) != 0 {
		t.Fatalf("expected 0 records, got %d", len(got))
	}

	if err := s.Append(RunSummary{Timestamp: time.Now(), Processed: 42, Commented: 3}); err != nil {
		t.Fatal(err)
	}

	got = s.Recent(10)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Processed != 42 || got[0].Commented != 3 {
		t.Fatalf("unexpected record %+v", got[0])
	}

	if err := s.Append(RunSummary{Timestamp: time.Now(), Processed: 50}); err != nil {
		t.Fatal(err)
	}

	got = s.Recent(10)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[1].Processed != 50 {
		t.Fatalf("expected Processed 50, got %d", got[1].Processed)
	}
}

func TestRecentLimitsResults(t *testing.T) {
	s := NewStoreWithPath(filepath.Join(t.TempDir(), "runs.jsonl"))

	for i := range 10 {
		if err := s.Append(RunSummary{Processed: i}); err != nil {
			t.Fatal(err)
		}
	}

	got := s.Recent(3)
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	// Should be the last 3 entries
	if got[0].Processed != 7 || got[2].Processed != 9 {
		t.Fatalf("expected Processed 7..9, got %d..%d", got[0].Processed, got[2].Processed)
	}
}

func TestPrune(t *testing.T) {
	s := NewStoreWithPath(filepath.Join(t.TempDir(), "runs.jsonl"))
	s.max = 20

	for i := range s.max + 5 {
		if err := s.Append(RunSummary{Processed: i}); err != nil {
			t.Fatal(err)
		}
	}

	got := s.Recent(s.max + 100)
	if len(got) != s.max {
		t.Fatalf("expected %d records after prune, got %d", s.max, len(got))
	}
	// First record should be the 6th one written (0-indexed: 5)
	if got[0].Processed != 5 {
		t.Fatalf("expected first record Processed 5, got %d", got[0].Processed)
	}
}

func TestSince(t *testing.T) {
	s := NewStoreWithPath(filepath.Join(t.TempDir(), "runs.jsonl"))
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		if err := s.Append(RunSummary{Timestamp: base.Add(time.Duration(i) * 24 * time.Hour), Processed: i}); err != nil {
			t.Fatal(err)
		}
	}

	got := s.Since(base.Add(3 * 24 * time.Hour))
	if len(got) != 2 || got[0].Processed != 3 {
		t.Fatalf("Since() = %+v, want runs 3 and 4", got)
	}
}

func TestMissingFile(t *testing.T) {
	s := NewStoreWithPath(filepath.Join(t.TempDir(), "nonexistent", "runs.jsonl"))

	// Recent on non-existent file returns nil
	if got := s.Recent(10); len(got) != 0 {
		t.Fatalf("expected 0 records, got %d", len(got))
	}
}

func TestMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")

	content := `{"ts":"2024-01-01T00:00:00Z","processed":10}
not json at all
{"ts":"2024-01-02T00:00:00Z","processed":20}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got := NewStoreWithPath(path).Recent(10)
	if len(got) != 2 {
		t.Fatalf("expected 2 valid records, got %d", len(got))
	}
	if got[0].Processed != 10 || got[1].Processed != 20 {
		t.Fatalf("unexpected records %+v", got)
	}
}

func TestFromReport(t *testing.T) {
	start := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	report := &bot.Report{
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		Outcomes: []bot.Outcome{
			{Item: model.TrackedItem{Type: model.ItemTypeIssue}, Summary: model.ActivitySummary{LastHumanActivity: start.Add(-10 * time.Hour)}},
			{Item: model.TrackedItem{Type: model.ItemTypePullRequest}, Summary: model.ActivitySummary{LastHumanActivity: start.Add(-30 * time.Hour)}},
			{Item: model.TrackedItem{Type: model.ItemTypeIssue}, Error: "boom"},
		},
		Totals: bot.Totals{Processed: 3, Skipped: 2, Failed: 1},
	}

	got := FromReport(report, []string{"acme/widgets"})

	if got.DurationMs != 2000 {
		t.Errorf("DurationMs = %d, want 2000", got.DurationMs)
	}
	if got.IssueCount != 2 || got.PRCount != 1 {
		t.Errorf("IssueCount/PRCount = %d/%d, want 2/1", got.IssueCount, got.PRCount)
	}
	if got.MedianIdleHours != 20 {
		t.Errorf("MedianIdleHours = %v, want 20", got.MedianIdleHours)
	}
	if got.Processed != 3 || got.Failed != 1 || got.Repos[0] != "acme/widgets" {
		t.Errorf("unexpected summary %+v", got)
	}
}

package policy

import (
	"testing"
	"time"

	"github.com/spiffcs/checkin/internal/model"
)

func TestDecide(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	daysAgo := func(d float64) time.Time {
		return now.Add(-time.Duration(d * 24 * float64(time.Hour)))
	}

	tests := []struct {
		name       string
		summary    model.ActivitySummary
		threshold  float64
		wantAction model.Action
		wantReason model.DecisionReason
	}{
		{
			name:       "stop signal wins even when freshly active",
			summary:    model.ActivitySummary{LastHumanActivity: now, HasStopSignal: true},
			threshold:  7,
			wantAction: model.ActionLabel,
			wantReason: model.ReasonStopSignal,
		},
		{
			name: "stop signal wins over an already-sent reminder",
			summary: model.ActivitySummary{
				LastHumanActivity: daysAgo(30),
				LastBotActivity:   ptr(daysAgo(1)),
				HasStopSignal:     true,
			},
			threshold:  7,
			wantAction: model.ActionLabel,
			wantReason: model.ReasonStopSignal,
		},
		{
			name:       "not inactive long enough",
			summary:    model.ActivitySummary{LastHumanActivity: daysAgo(3)},
			threshold:  7,
			wantAction: model.ActionNone,
			wantReason: model.ReasonNotInactive,
		},
		{
			name:       "exactly at threshold is inclusive",
			summary:    model.ActivitySummary{LastHumanActivity: daysAgo(7)},
			threshold:  7,
			wantAction: model.ActionComment,
			wantReason: model.ReasonNoPriorReminder,
		},
		{
			name:       "just below threshold",
			summary:    model.ActivitySummary{LastHumanActivity: now.Add(-7*24*time.Hour + time.Second)},
			threshold:  7,
			wantAction: model.ActionNone,
			wantReason: model.ReasonNotInactive,
		},
		{
			name:       "half-day threshold is honored",
			summary:    model.ActivitySummary{LastHumanActivity: now.Add(-13 * time.Hour)},
			threshold:  0.5,
			wantAction: model.ActionComment,
			wantReason: model.ReasonNoPriorReminder,
		},
		{
			name:       "half-day threshold not yet reached",
			summary:    model.ActivitySummary{LastHumanActivity: now.Add(-11 * time.Hour)},
			threshold:  0.5,
			wantAction: model.ActionNone,
			wantReason: model.ReasonNotInactive,
		},
		{
			name: "human replied after reminder re-arms",
			summary: model.ActivitySummary{
				LastHumanActivity: daysAgo(10),
				LastBotActivity:   ptr(daysAgo(12)),
			},
			threshold:  7,
			wantAction: model.ActionComment,
			wantReason: model.ReasonHumanReplied,
		},
		{
			name: "bot reminded most recently",
			summary: model.ActivitySummary{
				LastHumanActivity: daysAgo(20),
				LastBotActivity:   ptr(daysAgo(10)),
			},
			threshold:  7,
			wantAction: model.ActionNone,
			wantReason: model.ReasonAlreadyReminded,
		},
		{
			name: "same instant does not re-arm",
			summary: model.ActivitySummary{
				LastHumanActivity: daysAgo(9),
				LastBotActivity:   ptr(daysAgo(9)),
			},
			threshold:  7,
			wantAction: model.ActionNone,
			wantReason: model.ReasonAlreadyReminded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.summary, now, tt.threshold, "ignore-checkin")
			if got.Action != tt.wantAction {
				t.Errorf("Decide().Action = %q, want %q", got.Action, tt.wantAction)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Decide().Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.Action == model.ActionLabel && got.Label != "ignore-checkin" {
				t.Errorf("Decide().Label = %q, want %q", got.Label, "ignore-checkin")
			}
		})
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	now := time.Now()
	summary := model.ActivitySummary{
		LastHumanActivity: now.Add(-10 * 24 * time.Hour),
		LastBotActivity:   ptr(now.Add(-11 * 24 * time.Hour)),
	}

	first := Decide(summary, now, 7, "stop")
	second := Decide(summary, now, 7, "stop")
	if first != second {
		t.Errorf("Decide() not deterministic: %+v vs %+v", first, second)
	}
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		then time.Time
		want float64
	}{
		{now, 0},
		{now.Add(-24 * time.Hour), 1},
		{now.Add(-36 * time.Hour), 1.5},
		{now.Add(-6 * time.Hour), 0.25},
	}
	for _, tt := range tests {
		if got := DaysSince(tt.then, now); got != tt.want {
			t.Errorf("DaysSince(%v) = %v, want %v", tt.then, got, tt.want)
		}
	}
}

func ptr(t time.Time) *time.Time { return &t }

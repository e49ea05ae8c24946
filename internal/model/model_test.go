package model

import "testing"

func TestParseItemType(t *testing.T) {
	tests := []struct {
		input   string
		want    ItemType
		wantErr bool
	}{
		{"pr", ItemTypePullRequest, false},
		{"pull_request", ItemTypePullRequest, false},
		{"issue", ItemTypeIssue, false},
		{"Issue", ItemTypeIssue, false},
		{"discussion", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseItemType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseItemType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseItemType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrackedItemKeyAndLabels(t *testing.T) {
	item := TrackedItem{Repo: "acme/widgets", Number: 42, Labels: []string{"bug", "ignore-checkin"}}

	if got := item.Key(); got != "acme/widgets#42" {
		t.Errorf("Key() = %q", got)
	}
	if !item.HasLabel("ignore-checkin") {
		t.Error("HasLabel(ignore-checkin) = false")
	}
	if item.HasLabel("Ignore-Checkin") {
		t.Error("HasLabel should be case sensitive")
	}
}

func TestDecisionConstructors(t *testing.T) {
	if d := NoAction(ReasonNotInactive, 1.5); d.Action != ActionNone || d.DaysSince != 1.5 || d.Body != "" {
		t.Errorf("NoAction() = %+v", d)
	}
	if d := ApplyLabel("quiet"); d.Action != ActionLabel || d.Label != "quiet" || d.Reason != ReasonStopSignal {
		t.Errorf("ApplyLabel() = %+v", d)
	}
	if d := PostComment("ping", ReasonHumanReplied, 9); d.Action != ActionComment || d.Body != "ping" || d.Label != "" {
		t.Errorf("PostComment() = %+v", d)
	}
}

func TestDisplay(t *testing.T) {
	if ActionComment.Display() != "Remind" || ActionLabel.Display() != "Label" || ActionNone.Display() != "Skip" {
		t.Error("unexpected Action.Display values")
	}
	if ReasonAlreadyReminded.Display() != "already reminded" {
		t.Errorf("Display() = %q", ReasonAlreadyReminded.Display())
	}
	if DecisionReason("custom").Display() != "custom" {
		t.Error("unknown reasons should display as-is")
	}
}

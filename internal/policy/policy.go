// Package policy decides what the bot should do with a single tracked item.
package policy

import (
	"time"

	"github.com/spiffcs/checkin/internal/model"
)

// DaysSince returns the elapsed wall-clock time between then and now in
// fractional days.
func DaysSince(then, now time.Time) float64 {
	return now.Sub(then).Hours() / 24
}

// Decide maps an activity summary to exactly one Decision.
//
// A stop signal always wins and yields ApplyLabel. Otherwise the item must
// have been quiet for at least thresholdDays (inclusive), and a reminder is
// only posted if the bot has never commented or a human commented strictly
// after the bot's last comment. The returned comment Decision has an empty
// Body; rendering the message is the caller's job.
func Decide(summary model.ActivitySummary, now time.Time, thresholdDays float64, stopLabel string) model.Decision {
	if summary.HasStopSignal {
		return model.ApplyLabel(stopLabel)
	}

	daysSince := DaysSince(summary.LastHumanActivity, now)
	if daysSince < thresholdDays {
		return model.NoAction(model.ReasonNotInactive, daysSince)
	}

	if summary.LastBotActivity == nil {
		return model.PostComment("", model.ReasonNoPriorReminder, daysSince)
	}

	if summary.LastHumanActivity.After(*summary.LastBotActivity) {
		return model.PostComment("", model.ReasonHumanReplied, daysSince)
	}

	return model.NoAction(model.ReasonAlreadyReminded, daysSince)
}

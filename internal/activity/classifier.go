// Package activity reduces an item's comment timeline to the facts the
// reminder policy needs.
package activity

import (
	"strings"
	"time"

	"github.com/spiffcs/checkin/internal/model"
)

// Classify partitions comments into bot-authored (Author == botIdentity,
// exact and case-sensitive) and human-authored, and summarizes them.
//
// Comments with an empty author are always human. A stop phrase only counts
// when a human wrote it, so the bot's own reminder text can never silence it.
func Classify(created time.Time, comments []model.Comment, botIdentity, stopPhrase string) model.ActivitySummary {
	summary := model.ActivitySummary{
		LastHumanActivity: created,
	}

	needle := strings.ToLower(stopPhrase)

	for _, c := range comments {
		if isBot(c.Author, botIdentity) {
			if summary.LastBotActivity == nil || c.CreatedAt.After(*summary.LastBotActivity) {
				t := c.CreatedAt
				summary.LastBotActivity = &t
			}
			continue
		}

		if c.CreatedAt.After(summary.LastHumanActivity) {
			summary.LastHumanActivity = c.CreatedAt
		}

		if !summary.HasStopSignal && containsStopPhrase(c.Body, needle) {
			summary.HasStopSignal = true
		}
	}

	return summary
}

func isBot(author, botIdentity string) bool {
	if author == "" {
		return false
	}
	return author == botIdentity
}

// containsStopPhrase expects needle to be lower-cased already.
func containsStopPhrase(body, needle string) bool {
	if needle == "" || body == "" {
		return false
	}
	return strings.Contains(strings.ToLower(body), needle)
}

package model

import "time"

// Comment is a single entry in an item's conversation.
// An empty Author means the author is unknown (e.g. a deleted account).
type Comment struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActivitySummary is the reduced view of an item's timeline.
type ActivitySummary struct {
	// LastHumanActivity is never zero: it falls back to the item's creation time.
	LastHumanActivity time.Time `json:"lastHumanActivity"`
	// LastBotActivity is nil when the bot has never commented.
	LastBotActivity *time.Time `json:"lastBotActivity,omitempty"`
	HasStopSignal   bool       `json:"hasStopSignal"`
}

// Package model contains domain types for the checkin bot.
// These types are independent of any external GitHub library.
package model

import (
	"fmt"
	"time"
)

// ItemType represents whether an item is an issue or pull request
type ItemType string

const (
	ItemTypeIssue       ItemType = "issue"
	ItemTypePullRequest ItemType = "pull_request"
)

// AllItemTypes contains all valid item types.
var AllItemTypes = []ItemType{
	ItemTypeIssue,
	ItemTypePullRequest,
}

// ParseItemType maps user input ("pr", "issue", ...) to an ItemType.
func ParseItemType(s string) (ItemType, error) {
	switch s {
	case "pr", "PR", "pull", "pull_request", "pullrequest", "PullRequest":
		return ItemTypePullRequest, nil
	case "issue", "Issue", "issues":
		return ItemTypeIssue, nil
	default:
		return "", fmt.Errorf("invalid item type: %s (must be 'issue' or 'pr')", s)
	}
}

// Short returns the compact label used in tables.
func (t ItemType) Short() string {
	if t == ItemTypePullRequest {
		return "PR"
	}
	return "ISS"
}

// TrackedItem is an open issue or pull request under consideration.
// It is treated as immutable for the duration of one decision.
type TrackedItem struct {
	Number    int       `json:"number"`
	Repo      string    `json:"repo"`
	Title     string    `json:"title"`
	Type      ItemType  `json:"type"`
	State     string    `json:"state"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	HTMLURL   string    `json:"htmlUrl"`
	Labels    []string  `json:"labels,omitempty"`
}

// Key returns the "owner/repo#number" identifier for the item.
func (i TrackedItem) Key() string {
	return fmt.Sprintf("%s#%d", i.Repo, i.Number)
}

// HasLabel reports whether the item already carries the label.
func (i TrackedItem) HasLabel(label string) bool {
	for _, l := range i.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Package ghclient provides GitHub API client functionality.
package ghclient

import (
	"context"

	"github.com/spiffcs/checkin/internal/bot"
	"github.com/spiffcs/checkin/internal/model"
)

// Fetcher defines the read side of the GitHub API used by a run.
// It has no caching logic; use TimelineStore for cache-aware timelines.
type Fetcher interface {
	AuthenticatedUser(ctx context.Context) (string, error)
	ListOpenItems(ctx context.Context, repo string, opts ListOptions) ([]model.TrackedItem, error)
	CommentLister
}

// CommentLister lists the comments of one issue or pull request.
type CommentLister interface {
	ListComments(ctx context.Context, repo string, number int) ([]model.Comment, error)
}

// Ensure Client implements the read and write sides of a run.
var (
	_ Fetcher     = (*Client)(nil)
	_ bot.Effects = (*Client)(nil)
)

// Ensure TimelineStore can feed the runner.
var _ bot.TimelineSource = (*TimelineStore)(nil)

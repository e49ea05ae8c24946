package ghclient

import (
	"context"
	"sync/atomic"

	"github.com/spiffcs/checkin/internal/cache"
	"github.com/spiffcs/checkin/internal/log"
	"github.com/spiffcs/checkin/internal/model"
)

// TimelineStore provides cache-aware comment timelines.
// It wraps a CommentLister and a cache keyed by repo and number; an entry
// is reused only while the item's updated_at is unchanged.
type TimelineStore struct {
	lister CommentLister
	cache  cache.Cacher

	hits   atomic.Int64
	misses atomic.Int64
}

// NewTimelineStore creates a TimelineStore. If c is nil, caching is disabled.
func NewTimelineStore(lister CommentLister, c cache.Cacher) *TimelineStore {
	return &TimelineStore{lister: lister, cache: c}
}

// Comments returns the item's comment timeline.
func (s *TimelineStore) Comments(ctx context.Context, item model.TrackedItem) ([]model.Comment, error) {
	key := cache.TimelineKey{Repo: item.Repo, Number: item.Number}

	if s.cache != nil && !item.UpdatedAt.IsZero() {
		if comments, ok := s.cache.Get(key, item.UpdatedAt); ok {
			s.hits.Add(1)
			log.Trace("timeline cache hit", "item", item.Key())
			return comments, nil
		}
	}
	s.misses.Add(1)

	comments, err := s.lister.ListComments(ctx, item.Repo, item.Number)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && !item.UpdatedAt.IsZero() {
		if err := s.cache.Set(key, item.UpdatedAt, comments); err != nil {
			log.Debug("failed to cache timeline", "item", item.Key(), "error", err)
		}
	}

	return comments, nil
}

// CacheStats returns the number of cache hits and misses so far.
func (s *TimelineStore) CacheStats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}

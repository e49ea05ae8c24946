package cache

import (
	"time"

	"github.com/spiffcs/checkin/internal/model"
)

// Version should be incremented when the cache format changes
// to invalidate old entries.
const Version = 1

// TimelineKey identifies one issue or pull request's comment timeline.
type TimelineKey struct {
	Repo   string
	Number int
}

// TimelineEntry is a cached comment timeline
type TimelineEntry struct {
	Comments  []model.Comment `json:"comments"`
	CachedAt  time.Time       `json:"cachedAt"`
	UpdatedAt time.Time       `json:"updatedAt"` // item's updated_at when the timeline was read
	Version   int             `json:"version"`
}

// CacheStats contains cache statistics
type CacheStats struct {
	Total     int
	Valid     int
	SizeBytes int64
	Oldest    time.Time
	Newest    time.Time
}

// Expired returns the number of entries past their TTL.
func (s *CacheStats) Expired() int {
	return s.Total - s.Valid
}

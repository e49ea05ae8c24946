// Package cache provides an on-disk cache of comment timelines.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spiffcs/checkin/internal/constants"
	"github.com/spiffcs/checkin/internal/log"
	"github.com/spiffcs/checkin/internal/model"
)

// Cacher defines the interface for caching operations.
// This interface enables mocking the cache in unit tests.
type Cacher interface {
	Get(key TimelineKey, updatedAt time.Time) ([]model.Comment, bool)
	Set(key TimelineKey, updatedAt time.Time, comments []model.Comment) error
	Clear() error
	DetailedStats() (*CacheStats, error)
}

// Ensure Cache implements Cacher interface.
var _ Cacher = (*Cache)(nil)

// Cache stores comment timelines to avoid repeated API calls
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewCache creates a cache under the user cache directory.
func NewCache() (*Cache, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return NewCacheAt(filepath.Join(cacheDir, "checkin", "timelines"))
}

// NewCacheAt creates a cache rooted at dir.
func NewCacheAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: constants.TimelineCacheTTL, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// fileName generates a file name for a cache key
func (c *Cache) fileName(key TimelineKey) string {
	// Replace slashes with underscores to avoid path issues while preserving uniqueness
	safeName := strings.ReplaceAll(key.Repo, "/", "_")
	return fmt.Sprintf("%s_%d.json", safeName, key.Number)
}

// Get returns the cached timeline for key. An entry is a miss when the
// item was updated after it was cached or when it is older than the TTL.
func (c *Cache) Get(key TimelineKey, updatedAt time.Time) ([]model.Comment, bool) {
	if key.Number == 0 {
		return nil, false
	}

	name := c.fileName(key)
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return nil, false
	}

	var entry TimelineEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.Version != Version {
		log.Debug("cache version mismatch", "cached", entry.Version, "current", Version, "key", name)
		return nil, false
	}

	if !updatedAt.Equal(entry.UpdatedAt) {
		log.Trace("cache entry outdated", "key", name, "cachedUpdatedAt", entry.UpdatedAt, "updatedAt", updatedAt)
		return nil, false
	}

	if c.now().Sub(entry.CachedAt) > c.ttl {
		return nil, false
	}

	return entry.Comments, true
}

// Set caches the timeline for key along with the item's updated time.
func (c *Cache) Set(key TimelineKey, updatedAt time.Time, comments []model.Comment) error {
	if key.Number == 0 {
		return nil
	}

	entry := TimelineEntry{
		Comments:  comments,
		CachedAt:  c.now(),
		UpdatedAt: updatedAt,
		Version:   Version,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(c.dir, c.fileName(key)), data, 0600)
}

// Clear removes all cached entries
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// DetailedStats returns entry counts, size and age range.
func (c *Cache) DetailedStats() (*CacheStats, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}

	stats := &CacheStats{}
	now := c.now()

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}

		var entry TimelineEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}

		stats.Total++
		stats.SizeBytes += int64(len(data))
		if entry.Version == Version && now.Sub(entry.CachedAt) <= c.ttl {
			stats.Valid++
		}
		if stats.Oldest.IsZero() || entry.CachedAt.Before(stats.Oldest) {
			stats.Oldest = entry.CachedAt
		}
		if entry.CachedAt.After(stats.Newest) {
			stats.Newest = entry.CachedAt
		}
	}

	return stats, nil
}

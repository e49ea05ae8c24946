package ghclient

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spiffcs/checkin/internal/constants"
	"github.com/spiffcs/checkin/internal/log"
)

// ErrRateLimited is returned for every request made after the primary rate
// limit is exhausted, until the reset time passes.
var ErrRateLimited = errors.New("rate limited")

// RateLimit is a point-in-time view of the primary rate limit.
type RateLimit struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
	// Limited is true while the budget is spent and ResetAt is in the future.
	Limited bool
}

// GitHub rate limit resources. Each has its own budget.
const (
	ResourceCore    = "core"
	ResourceSearch  = "search"
	ResourceGraphQL = "graphql"
)

// RateLimitState records the rate limits reported by response headers,
// one budget per resource. It is safe for concurrent use.
type RateLimitState struct {
	mu      sync.RWMutex
	buckets map[string]bucket
}

type bucket struct {
	last      RateLimit
	exhausted bool
}

// IsLimited reports whether requests against resource are being refused.
func (s *RateLimitState) IsLimited(resource string) bool {
	return s.Snapshot(resource).Limited
}

// Snapshot returns the last observed rate limit for resource.
func (s *RateLimitState) Snapshot(resource string) RateLimit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.buckets[resource]
	rl := b.last
	rl.Limited = b.exhausted && time.Now().Before(rl.ResetAt)
	return rl
}

func (s *RateLimitState) record(resource string, rl RateLimit, exhausted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets == nil {
		s.buckets = make(map[string]bucket)
	}
	s.buckets[resource] = bucket{last: rl, exhausted: exhausted}
}

// rateLimitTransport refuses requests locally once their resource's budget
// is spent, so a worker pool drains quickly instead of hammering the API.
type rateLimitTransport struct {
	base  http.RoundTripper
	state *RateLimitState
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resource := requestResource(req)
	if t.state.IsLimited(resource) {
		return nil, ErrRateLimited
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	if r := resp.Header.Get("X-RateLimit-Resource"); r != "" {
		resource = r
	}

	rl, ok := rateLimitFromHeaders(resp.Header)
	refused := resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden && ok && rl.Remaining == 0)
	if refused && rl.ResetAt.IsZero() {
		rl.ResetAt = time.Now().Add(retryAfter(resp.Header))
	}
	if ok || refused {
		t.state.record(resource, rl, refused || (ok && rl.Remaining == 0))
	}

	if ok && rl.Remaining > 0 && rl.Remaining <= constants.RateLimitLowWatermark {
		log.Debug("rate limit low", "resource", resource, "remaining", rl.Remaining, "resetsAt", rl.ResetAt.Format(time.RFC3339))
	}
	if refused {
		_ = resp.Body.Close()
		return nil, ErrRateLimited
	}
	return resp, nil
}

// requestResource guesses the budget a request draws from by its path.
// The response's X-RateLimit-Resource header takes precedence once known.
func requestResource(req *http.Request) string {
	switch path := req.URL.Path; {
	case strings.Contains(path, "/search/"):
		return ResourceSearch
	case strings.HasSuffix(path, "/graphql"):
		return ResourceGraphQL
	default:
		return ResourceCore
	}
}

// retryAfter reads a Retry-After header in seconds, defaulting to a minute.
func retryAfter(h http.Header) time.Duration {
	if secs, err := strconv.Atoi(h.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Minute
}

// rateLimitFromHeaders reads the X-RateLimit-* headers. ok is false when
// the remaining or limit header is missing or malformed.
func rateLimitFromHeaders(h http.Header) (rl RateLimit, ok bool) {
	remaining, errRemaining := strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	limit, errLimit := strconv.Atoi(h.Get("X-RateLimit-Limit"))
	if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		rl.ResetAt = time.Unix(reset, 0)
	}
	if errRemaining != nil || errLimit != nil || limit <= 0 {
		return rl, false
	}
	rl.Remaining, rl.Limit = remaining, limit
	return rl, true
}

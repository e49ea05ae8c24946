package ghclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/spiffcs/checkin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClientWithHTTPClient(server.Client(), server.URL+"/")
	require.NoError(t, err)
	return client
}

type userJSON struct {
	Login string `json:"login"`
}

type labelJSON struct {
	Name string `json:"name"`
}

type issueJSON struct {
	Number      int               `json:"number"`
	Title       string            `json:"title"`
	State       string            `json:"state"`
	HTMLURL     string            `json:"html_url"`
	User        userJSON          `json:"user"`
	Labels      []labelJSON       `json:"labels"`
	Created     string            `json:"created_at"`
	Updated     string            `json:"updated_at"`
	PullRequest map[string]string `json:"pull_request,omitempty"`
}

type commentJSON struct {
	User    userJSON `json:"user"`
	Body    string   `json:"body"`
	Created string   `json:"created_at"`
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestListOpenItems(t *testing.T) {
	var queries []string
	mux := http.NewServeMux()
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "asc", r.URL.Query().Get("order"))

		page := r.URL.Query().Get("page")
		if page == "" || page == "1" {
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/search/issues?page=2>; rel="next"`, r.Host))
			writeJSON(t, w, map[string]any{
				"total_count": 2,
				"items": []issueJSON{{
					Number:  1,
					Title:   "Widgets wobble",
					State:   "open",
					HTMLURL: "https://github.com/acme/widgets/issues/1",
					User:    userJSON{Login: "alice"},
					Labels:  []labelJSON{{Name: "bug"}},
					Created: "2024-01-01T00:00:00Z",
					Updated: "2024-01-02T00:00:00Z",
				}},
			})
			return
		}
		writeJSON(t, w, map[string]any{
			"total_count": 2,
			"items": []issueJSON{{
				Number:      2,
				Title:       "Fix wobble",
				State:       "open",
				User:        userJSON{Login: "bob"},
				Created:     "2024-01-03T00:00:00Z",
				Updated:     "2024-01-04T00:00:00Z",
				PullRequest: map[string]string{"url": "https://api.github.com/repos/acme/widgets/pulls/2"},
			}},
		})
	})

	client := newTestClient(t, mux)
	items, err := client.ListOpenItems(context.Background(), "acme/widgets", ListOptions{IgnoreLabel: "ignore-checkin"})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, model.TrackedItem{
		Number:    1,
		Repo:      "acme/widgets",
		Title:     "Widgets wobble",
		Type:      model.ItemTypeIssue,
		State:     "open",
		Author:    "alice",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		HTMLURL:   "https://github.com/acme/widgets/issues/1",
		Labels:    []string{"bug"},
	}, items[0])
	assert.Equal(t, model.ItemTypePullRequest, items[1].Type)
	assert.Equal(t, "bob", items[1].Author)

	require.Len(t, queries, 2)
	assert.Equal(t, `repo:acme/widgets is:open -label:"ignore-checkin"`, queries[0])
}

func TestListOpenItemsLimit(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/search/issues?page=2>; rel="next"`, r.Host))
		writeJSON(t, w, map[string]any{
			"total_count": 3,
			"items": []issueJSON{
				{Number: 1, Created: "2024-01-01T00:00:00Z"},
				{Number: 2, Created: "2024-01-01T00:00:00Z"},
				{Number: 3, Created: "2024-01-01T00:00:00Z"},
			},
		})
	})

	client := newTestClient(t, mux)
	items, err := client.ListOpenItems(context.Background(), "acme/widgets", ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 1, calls, "limit reached on the first page must stop paging")
}

func TestListOpenItemsInvalidRepo(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())
	_, err := client.ListOpenItems(context.Background(), "not-a-repo", ListOptions{})
	assert.Error(t, err)
}

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		name string
		opts ListOptions
		want string
	}{
		{"all types", ListOptions{}, "repo:acme/widgets is:open"},
		{"both types", ListOptions{Types: model.AllItemTypes}, "repo:acme/widgets is:open"},
		{"issues only", ListOptions{Types: []model.ItemType{model.ItemTypeIssue}}, "repo:acme/widgets is:open is:issue"},
		{"prs with label", ListOptions{Types: []model.ItemType{model.ItemTypePullRequest}, IgnoreLabel: "on hold"}, `repo:acme/widgets is:open is:pr -label:"on hold"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, searchQuery("acme/widgets", tt.opts))
		})
	}
}

func TestListComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			writeJSON(t, w, []commentJSON{
				{User: userJSON{Login: "checkin-bot"}, Body: "ping", Created: "2024-01-05T00:00:00Z"},
			})
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/repos/acme/widgets/issues/7/comments?page=2>; rel="next"`, r.Host))
		writeJSON(t, w, []commentJSON{
			{User: userJSON{Login: "alice"}, Body: "first", Created: "2024-01-01T00:00:00Z"},
			{User: userJSON{Login: "bob"}, Body: "second", Created: "2024-01-02T00:00:00Z"},
		})
	})

	client := newTestClient(t, mux)
	comments, err := client.ListComments(context.Background(), "acme/widgets", 7)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, model.Comment{Author: "alice", Body: "first", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, comments[0])
	assert.Equal(t, "checkin-bot", comments[2].Author)
}

func TestAuthenticatedUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, userJSON{Login: "checkin-bot"})
	})

	client := newTestClient(t, mux)
	login, err := client.AuthenticatedUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "checkin-bot", login)
}

func TestRateLimitedResponseStopsFurtherRequests(t *testing.T) {
	calls := 0
	reset := time.Now().Add(time.Hour).Unix()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/issues/1/comments", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	})

	client := newTestClient(t, mux)

	_, err := client.ListComments(context.Background(), "acme/widgets", 1)
	require.ErrorIs(t, err, ErrRateLimited)

	_, err = client.ListComments(context.Background(), "acme/widgets", 1)
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, calls, "second call must not reach the server")

	rl := client.RateLimitState().Snapshot(ResourceCore)
	assert.Equal(t, 0, rl.Remaining)
	assert.Equal(t, 5000, rl.Limit)
	assert.True(t, rl.Limited)
}

func TestSpentSearchBudgetLeavesCoreRequests(t *testing.T) {
	reset := strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10)
	mux := http.NewServeMux()
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Resource", "search")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Limit", "30")
		w.Header().Set("X-RateLimit-Reset", reset)
		writeJSON(t, w, map[string]any{
			"total_count": 1,
			"items":       []issueJSON{{Number: 1, Created: "2024-01-01T00:00:00Z"}},
		})
	})
	mux.HandleFunc("/repos/acme/widgets/issues/1/comments", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Resource", "core")
		w.Header().Set("X-RateLimit-Remaining", "4999")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Reset", reset)
		writeJSON(t, w, []commentJSON{{User: userJSON{Login: "alice"}, Body: "hi", Created: "2024-01-02T00:00:00Z"}})
	})

	client := newTestClient(t, mux)
	items, err := client.ListOpenItems(context.Background(), "acme/widgets", ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)

	comments, err := client.ListComments(context.Background(), "acme/widgets", 1)
	require.NoError(t, err, "core requests must not be refused when only search is spent")
	assert.Len(t, comments, 1)

	limits := client.RateLimitState()
	assert.True(t, limits.IsLimited(ResourceSearch))
	assert.False(t, limits.IsLimited(ResourceCore))
	assert.Equal(t, 4999, limits.Snapshot(ResourceCore).Remaining)
}

func TestRequestResource(t *testing.T) {
	tests := map[string]string{
		"https://api.github.com/search/issues":                      ResourceSearch,
		"https://ghe.example.com/api/v3/search/issues":              ResourceSearch,
		"https://api.github.com/graphql":                            ResourceGraphQL,
		"https://api.github.com/repos/acme/widgets/issues/1/labels": ResourceCore,
	}
	for url, want := range tests {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		require.NoError(t, err)
		assert.Equal(t, want, requestResource(req), url)
	}
}

func TestRateLimitHeadersTracked(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "4321")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
		writeJSON(t, w, userJSON{Login: "me"})
	})

	client := newTestClient(t, mux)
	_, err := client.AuthenticatedUser(context.Background())
	require.NoError(t, err)

	rl := client.RateLimitState().Snapshot(ResourceCore)
	assert.Equal(t, 4321, rl.Remaining)
	assert.Equal(t, 5000, rl.Limit)
	assert.False(t, rl.Limited)
}

func TestRateLimitFromHeaders(t *testing.T) {
	h := http.Header{}
	_, ok := rateLimitFromHeaders(h)
	assert.False(t, ok, "missing headers")

	h.Set("X-RateLimit-Remaining", "12")
	h.Set("X-RateLimit-Limit", "5000")
	h.Set("X-RateLimit-Reset", "1700000000")
	rl, ok := rateLimitFromHeaders(h)
	require.True(t, ok)
	assert.Equal(t, 12, rl.Remaining)
	assert.Equal(t, 5000, rl.Limit)
	assert.Equal(t, time.Unix(1700000000, 0), rl.ResetAt)

	h.Set("X-RateLimit-Limit", "lots")
	_, ok = rateLimitFromHeaders(h)
	assert.False(t, ok, "malformed limit")
}

func TestRateLimitStateExpires(t *testing.T) {
	var s RateLimitState
	s.record(ResourceCore, RateLimit{Limit: 5000, ResetAt: time.Now().Add(-time.Second)}, true)
	assert.False(t, s.IsLimited(ResourceCore), "limit must lift once the reset time passes")

	s.record(ResourceCore, RateLimit{Limit: 5000, ResetAt: time.Now().Add(time.Hour)}, true)
	assert.True(t, s.IsLimited(ResourceCore))
	assert.False(t, s.IsLimited(ResourceSearch))
}

func TestParseRepo(t *testing.T) {
	tests := []struct {
		in        string
		wantOwner string
		wantName  string
		wantErr   bool
	}{
		{"acme/widgets", "acme", "widgets", false},
		{" acme/widgets ", "acme", "widgets", false},
		{"https://github.com/acme/widgets", "acme", "widgets", false},
		{"https://github.com/acme/widgets.git", "acme", "widgets", false},
		{"github.com/acme/widgets/", "acme", "widgets", false},
		{"acme", "", "", true},
		{"acme/", "", "", true},
		{"acme/widgets/issues", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			owner, name, err := ParseRepo(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	_, err := NewClient(context.Background(), "")
	assert.Error(t, err)
}

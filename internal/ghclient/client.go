package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v57/github"
	"github.com/gregjones/httpcache"
	"github.com/spiffcs/checkin/internal/constants"
	"github.com/spiffcs/checkin/internal/log"
	"github.com/spiffcs/checkin/internal/model"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API client
type Client struct {
	client *gh.Client
	limits *RateLimitState
}

// NewClient creates a new GitHub client using a personal access token.
// Requests pass through, outermost first:
//  1. rateLimitTransport (fails fast once the primary budget is spent)
//  2. oauth2 (token auth)
//  3. go-github-ratelimit (sleeps on secondary rate limits)
//  4. httpcache (ETag conditional requests)
func NewClient(ctx context.Context, token string) (*Client, error) {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("GitHub token not provided. Set the GITHUB_TOKEN environment variable")
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	secondary := github_ratelimit.NewClient(cacheTransport)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, secondary), ts)

	limits := &RateLimitState{}
	tc.Transport = &rateLimitTransport{base: tc.Transport, state: limits}

	return &Client{
		client: gh.NewClient(tc),
		limits: limits,
	}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// Used in tests to point the client at an httptest server or a mocked transport.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	limits := &RateLimitState{}
	wrapped := *httpClient
	wrapped.Transport = &rateLimitTransport{base: base, state: limits}

	client := gh.NewClient(&wrapped)
	client.BaseURL = u

	return &Client{client: client, limits: limits}, nil
}

// AuthenticatedUser returns the authenticated user's login
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}

// RateLimitState returns the rate limit state observed by this client.
func (c *Client) RateLimitState() *RateLimitState {
	return c.limits
}

// ListOptions narrows the open items returned by ListOpenItems.
type ListOptions struct {
	// IgnoreLabel excludes items carrying this label.
	IgnoreLabel string
	// Types restricts results to these item types. Empty means all.
	Types []model.ItemType
	// Limit caps the number of items returned. Zero means no cap.
	Limit int
}

// searchQuery builds the issue search query for repo.
func searchQuery(repo string, opts ListOptions) string {
	parts := []string{"repo:" + repo, "is:open"}

	if len(opts.Types) == 1 {
		switch opts.Types[0] {
		case model.ItemTypeIssue:
			parts = append(parts, "is:issue")
		case model.ItemTypePullRequest:
			parts = append(parts, "is:pr")
		}
	}
	if opts.IgnoreLabel != "" {
		parts = append(parts, fmt.Sprintf("-label:%q", opts.IgnoreLabel))
	}

	return strings.Join(parts, " ")
}

// ListOpenItems fetches the open issues and pull requests of repo, least
// recently updated first.
func (c *Client) ListOpenItems(ctx context.Context, repo string, opts ListOptions) ([]model.TrackedItem, error) {
	if _, _, err := ParseRepo(repo); err != nil {
		return nil, err
	}

	query := searchQuery(repo, opts)
	searchOpts := &gh.SearchOptions{
		Sort:  "updated",
		Order: "asc",
		ListOptions: gh.ListOptions{
			PerPage: constants.DefaultSearchPageSize,
		},
	}

	var items []model.TrackedItem

	for {
		result, resp, err := c.client.Search.Issues(ctx, query, searchOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to search open items in %s: %w", repo, err)
		}
		log.Debug("searched open items", "repo", repo, "page", searchOpts.Page, "count", len(result.Issues), "total", result.GetTotal())

		for _, issue := range result.Issues {
			items = append(items, issueToItem(repo, issue))
			if opts.Limit > 0 && len(items) >= opts.Limit {
				return items, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		searchOpts.Page = resp.NextPage
	}

	return items, nil
}

// issueToItem converts a GitHub search result issue to a model.TrackedItem.
func issueToItem(repo string, issue *gh.Issue) model.TrackedItem {
	var labels []string
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	itemType := model.ItemTypeIssue
	if issue.IsPullRequest() {
		itemType = model.ItemTypePullRequest
	}

	return model.TrackedItem{
		Number:    issue.GetNumber(),
		Repo:      repo,
		Title:     issue.GetTitle(),
		Type:      itemType,
		State:     issue.GetState(),
		Author:    issue.GetUser().GetLogin(),
		CreatedAt: issue.GetCreatedAt().Time,
		UpdatedAt: issue.GetUpdatedAt().Time,
		HTMLURL:   issue.GetHTMLURL(),
		Labels:    labels,
	}
}

// ListComments fetches every comment on an issue or pull request in
// chronological order. Pull request review comments are not included.
func (c *Client) ListComments(ctx context.Context, repo string, number int) ([]model.Comment, error) {
	owner, name, err := ParseRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var comments []model.Comment

	for {
		page, resp, err := c.client.Issues.ListComments(ctx, owner, name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments for %s#%d: %w", repo, number, err)
		}

		for _, ic := range page {
			comments = append(comments, model.Comment{
				Author:    ic.GetUser().GetLogin(),
				Body:      ic.GetBody(),
				CreatedAt: ic.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	log.Trace("listed comments", "item", fmt.Sprintf("%s#%d", repo, number), "count", len(comments))
	return comments, nil
}

// AddLabel attaches label to an issue or pull request.
func (c *Client) AddLabel(ctx context.Context, repo string, number int, label string) error {
	owner, name, err := ParseRepo(repo)
	if err != nil {
		return err
	}
	if _, _, err := c.client.Issues.AddLabelsToIssue(ctx, owner, name, number, []string{label}); err != nil {
		return fmt.Errorf("failed to add label %q to %s#%d: %w", label, repo, number, err)
	}
	log.Debug("label added", "item", fmt.Sprintf("%s#%d", repo, number), "label", label)
	return nil
}

// CreateComment posts body as a new comment on an issue or pull request.
func (c *Client) CreateComment(ctx context.Context, repo string, number int, body string) error {
	owner, name, err := ParseRepo(repo)
	if err != nil {
		return err
	}
	comment := &gh.IssueComment{Body: gh.String(body)}
	if _, _, err := c.client.Issues.CreateComment(ctx, owner, name, number, comment); err != nil {
		return fmt.Errorf("failed to comment on %s#%d: %w", repo, number, err)
	}
	log.Debug("comment posted", "item", fmt.Sprintf("%s#%d", repo, number))
	return nil
}

// ParseRepo splits "owner/name" into its parts; see model.ParseRepo.
func ParseRepo(s string) (owner, name string, err error) {
	return model.ParseRepo(s)
}

package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nhle/marksync/internal/model"
)

// defaultQuery fetches open pull requests the token user participates in.
const defaultQuery = "is:open is:pr involves:@me archived:false"

// pageSize is the number of results requested per search page. The search
// API caps results at 1000 regardless of paging.
const pageSize = 100

// Adapter implements provider.Provider for GitHub.
type Adapter struct {
	client *Client
	id     string
	query  string
}

// NewAdapter creates a new GitHub provider adapter. An empty query falls
// back to the token user's open pull requests; an empty baseURL targets
// the public API.
func NewAdapter(id, baseURL, token, query string) *Adapter {
	if query == "" {
		query = defaultQuery
	}
	return &Adapter{
		client: NewClient(baseURL, token),
		id:     id,
		query:  query,
	}
}

// Type returns the provider kind identifier for GitHub.
func (a *Adapter) Type() model.ProviderType {
	return model.ProviderTypeGitHub
}

// ID returns the configured provider instance identifier.
func (a *Adapter) ID() string {
	return a.id
}

// ValidateConnection verifies credentials by calling GET /user.
// Returns the authenticated login on success.
func (a *Adapter) ValidateConnection(ctx context.Context) (string, error) {
	var viewer Viewer
	if err := a.client.Get(ctx, "/user", &viewer); err != nil {
		return "", fmt.Errorf("validating GitHub connection: %w", err)
	}
	if viewer.Name != "" {
		return viewer.Name, nil
	}
	return viewer.Login, nil
}

// FetchItems retrieves all issues and pull requests matching the configured
// search query, paging through the search results.
func (a *Adapter) FetchItems(ctx context.Context) ([]model.RemoteItem, error) {
	var items []model.RemoteItem

	for page := 1; ; page++ {
		path := fmt.Sprintf(
			"/search/issues?q=%s&per_page=%d&page=%d&sort=updated",
			url.QueryEscape(a.query), pageSize, page,
		)

		var searchResp SearchResponse
		if err := a.client.Get(ctx, path, &searchResp); err != nil {
			return nil, fmt.Errorf("fetching GitHub items: %w", err)
		}

		fetchedAt := time.Now()
		for _, issue := range searchResp.Items {
			items = append(items, a.issueToItem(issue, fetchedAt))
		}

		if len(items) >= searchResp.TotalCount || len(searchResp.Items) == 0 {
			break
		}
	}

	return items, nil
}

// issueToItem converts a GitHub search result to a model.RemoteItem.
func (a *Adapter) issueToItem(issue Issue, fetchedAt time.Time) model.RemoteItem {
	assignee := ""
	if issue.Assignee != nil {
		assignee = issue.Assignee.Login
	}

	creator := ""
	if issue.User != nil {
		creator = issue.User.Login
	}

	repo := repoFromURL(issue.RepositoryURL)

	return model.RemoteItem{
		ID:         fmt.Sprintf("%s#%d", repo, issue.Number),
		Provider:   model.ProviderTypeGitHub,
		ProviderID: a.id,
		Summary:    issue.Title,
		URL:        issue.HTMLURL,
		Status:     normalizeStatus(issue),
		Priority:   priorityFromLabels(issue.Labels),
		Type:       normalizeType(issue),
		Assignee:   assignee,
		Creator:    creator,
		CreatedAt:  parseGitHubTime(issue.CreatedAt),
		FetchedAt:  fetchedAt,
	}
}

// repoFromURL extracts "owner/repo" from a search result's repository_url
// (e.g., https://api.github.com/repos/owner/repo).
func repoFromURL(repositoryURL string) string {
	const marker = "/repos/"
	idx := strings.Index(repositoryURL, marker)
	if idx < 0 {
		return repositoryURL
	}
	return repositoryURL[idx+len(marker):]
}

// normalizeStatus maps GitHub issue state to a normalized status constant.
func normalizeStatus(issue Issue) string {
	if issue.PullRequest != nil && issue.PullRequest.MergedAt != "" {
		return model.StatusMerged
	}
	switch issue.State {
	case "closed":
		return model.StatusDone
	default:
		if issue.PullRequest != nil && !issue.Draft {
			return model.StatusReview
		}
		return model.StatusOpen
	}
}

// normalizeType maps a search result to a normalized item type. Pull
// requests win; otherwise labels decide between bug, story, and task.
func normalizeType(issue Issue) string {
	if issue.PullRequest != nil {
		return model.TypePullRequest
	}
	for _, label := range issue.Labels {
		switch strings.ToLower(label.Name) {
		case "bug", "defect":
			return model.TypeBug
		case "enhancement", "feature":
			return model.TypeStory
		}
	}
	return model.TypeTask
}

// priorityFromLabels derives a normalized priority from issue labels.
// GitHub has no native priority field; unlabeled items report zero,
// which renders no priority decoration.
func priorityFromLabels(labels []Label) int {
	for _, label := range labels {
		name := strings.ToLower(label.Name)
		switch {
		case strings.Contains(name, "critical"), strings.Contains(name, "urgent"):
			return model.PriorityCritical
		case strings.Contains(name, "high"):
			return model.PriorityHigh
		case strings.Contains(name, "medium"):
			return model.PriorityMedium
		case strings.Contains(name, "low"):
			return model.PriorityLow
		}
	}
	return 0
}

// parseGitHubTime parses an RFC 3339 timestamp from the API.
func parseGitHubTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

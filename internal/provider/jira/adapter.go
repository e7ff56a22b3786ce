package jira

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/marksync/internal/model"
)

// defaultJQL is used when no custom JQL is configured.
const defaultJQL = "assignee=currentUser() AND " +
	"resolution=Unresolved ORDER BY updated DESC"

// pageSize is the number of issues requested per search page.
const pageSize = 50

// fetchFields are the Jira fields requested during search queries.
var fetchFields = []string{
	"summary", "status", "priority", "assignee", "reporter",
	"issuetype", "project", "created", "updated",
}

// Adapter implements provider.Provider for Jira Server/DC.
type Adapter struct {
	client  *Client
	baseURL string
	id      string
	jql     string
}

// NewAdapter creates a new Jira provider adapter. An empty jql falls back
// to the current user's unresolved issues.
func NewAdapter(id, baseURL, token, jql string) *Adapter {
	if jql == "" {
		jql = defaultJQL
	}
	return &Adapter{
		client:  NewClient(baseURL, token),
		baseURL: strings.TrimRight(baseURL, "/"),
		id:      id,
		jql:     jql,
	}
}

// Type returns the provider kind identifier for Jira.
func (a *Adapter) Type() model.ProviderType {
	return model.ProviderTypeJira
}

// ID returns the configured provider instance identifier.
func (a *Adapter) ID() string {
	return a.id
}

// ValidateConnection verifies credentials by calling GET /rest/api/2/myself.
// Returns the user's display name on success.
func (a *Adapter) ValidateConnection(ctx context.Context) (string, error) {
	var me Myself
	if err := a.client.Get(ctx, "/rest/api/2/myself", &me); err != nil {
		return "", fmt.Errorf("validating Jira connection: %w", err)
	}
	return me.DisplayName, nil
}

// FetchItems retrieves all issues matching the configured JQL, paging
// through the search results.
func (a *Adapter) FetchItems(ctx context.Context) ([]model.RemoteItem, error) {
	var items []model.RemoteItem
	startAt := 0

	for {
		body := map[string]interface{}{
			"jql":        a.jql,
			"fields":     fetchFields,
			"startAt":    startAt,
			"maxResults": pageSize,
		}

		var searchResp SearchResponse
		err := a.client.Post(ctx, "/rest/api/2/search", body, &searchResp)
		if err != nil {
			return nil, fmt.Errorf("fetching Jira items: %w", err)
		}

		fetchedAt := time.Now()
		for _, issue := range searchResp.Issues {
			items = append(items, a.issueToItem(issue, fetchedAt))
		}

		startAt += len(searchResp.Issues)
		if startAt >= searchResp.Total || len(searchResp.Issues) == 0 {
			break
		}
	}

	return items, nil
}

// issueToItem converts a Jira Issue to a model.RemoteItem.
func (a *Adapter) issueToItem(issue Issue, fetchedAt time.Time) model.RemoteItem {
	assignee := ""
	if issue.Fields.Assignee != nil {
		assignee = issue.Fields.Assignee.DisplayName
	}

	creator := ""
	if issue.Fields.Reporter != nil {
		creator = issue.Fields.Reporter.DisplayName
	}

	return model.RemoteItem{
		ID:         issue.Key,
		Provider:   model.ProviderTypeJira,
		ProviderID: a.id,
		Summary:    issue.Fields.Summary,
		URL:        a.baseURL + "/browse/" + issue.Key,
		Status:     normalizeStatus(issue.Fields.Status),
		Priority:   normalizePriority(issue.Fields.Priority),
		Type:       normalizeType(issue.Fields.IssueType),
		Assignee:   assignee,
		Creator:    creator,
		CreatedAt:  parseJiraTime(issue.Fields.Created),
		FetchedAt:  fetchedAt,
	}
}

// normalizeStatus maps a Jira status to a normalized status constant.
// It first checks if the status name contains "review" (case-insensitive),
// then falls back to the status category key mapping.
func normalizeStatus(status Status) string {
	if strings.Contains(strings.ToLower(status.Name), "review") {
		return model.StatusReview
	}

	switch strings.ToLower(status.StatusCategory.Key) {
	case "new":
		return model.StatusOpen
	case "indeterminate":
		return model.StatusInProgress
	case "done":
		return model.StatusDone
	default:
		return model.StatusOpen
	}
}

// normalizePriority maps a Jira priority ID to a normalized priority level.
func normalizePriority(priority Priority) int {
	id, err := strconv.Atoi(priority.ID)
	if err != nil {
		return model.PriorityMedium
	}

	switch {
	case id <= 2:
		return model.PriorityCritical
	case id == 3:
		return model.PriorityHigh
	case id == 4:
		return model.PriorityMedium
	case id == 5:
		return model.PriorityLow
	default:
		return model.PriorityLowest
	}
}

// normalizeType maps a Jira issue type to a normalized item type.
func normalizeType(issueType IssueType) string {
	switch strings.ToLower(issueType.Name) {
	case "bug", "defect":
		return model.TypeBug
	case "story", "epic", "new feature":
		return model.TypeStory
	default:
		return model.TypeTask
	}
}

// parseJiraTime parses a Jira timestamp string. Jira uses the format
// "2006-01-02T15:04:05.000+0000".
func parseJiraTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	layouts := []string{
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05-0700",
		time.RFC3339,
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}

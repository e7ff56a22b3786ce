package github

// SearchResponse is the response from GET /search/issues.
type SearchResponse struct {
	TotalCount        int     `json:"total_count"`
	IncompleteResults bool    `json:"incomplete_results"`
	Items             []Issue `json:"items"`
}

// Issue represents an issue or pull request from the search API.
// Pull requests carry a non-nil PullRequest field.
type Issue struct {
	Number        int              `json:"number"`
	Title         string           `json:"title"`
	State         string           `json:"state"`
	HTMLURL       string           `json:"html_url"`
	RepositoryURL string           `json:"repository_url"`
	User          *User            `json:"user"`
	Assignee      *User            `json:"assignee"`
	Labels        []Label          `json:"labels"`
	PullRequest   *PullRequestRefs `json:"pull_request"`
	Draft         bool             `json:"draft"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
}

// PullRequestRefs marks a search result as a pull request and links to the
// PR endpoints. MergedAt is non-empty once the PR has been merged.
type PullRequestRefs struct {
	URL      string `json:"url"`
	HTMLURL  string `json:"html_url"`
	MergedAt string `json:"merged_at"`
}

// User represents a GitHub account.
type User struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

// Label represents an issue or pull request label.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Viewer is the response from GET /user.
type Viewer struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// ErrorResponse is the standard GitHub error response format.
type ErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nhle/marksync/internal/model"
	"github.com/nhle/marksync/internal/provider"
)

// maxRetryElapsed bounds the total time spent retrying rate-limited calls.
const maxRetryElapsed = 45 * time.Second

// Client is a thin HTTP client for the GitHub REST API v3. It handles
// token authentication, JSON unmarshaling, and retry with exponential
// backoff on rate-limit responses.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new GitHub HTTP client. The baseURL defaults to the
// public API when empty; set it for GitHub Enterprise instances.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Get performs an HTTP GET request and unmarshals the JSON response.
// Rate-limit responses (429, or 403 with a Retry-After header) are retried
// with exponential backoff; auth and other API errors stop immediately.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	url := c.baseURL + path

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxElapsedTime = maxRetryElapsed

	return backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return backoff.Permanent(
				fmt.Errorf("executing request GET %s: %w", path, err))
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return backoff.Permanent(
				fmt.Errorf("reading response body: %w", readErr))
		}

		if isRateLimited(resp) {
			if wait := retryAfterDuration(resp); wait > 0 {
				select {
				case <-ctx.Done():
					return backoff.Permanent(ctx.Err())
				case <-time.After(wait):
				}
			}
			return fmt.Errorf("rate limited (%d) on GET %s", resp.StatusCode, path)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return backoff.Permanent(&provider.AuthError{
				Provider: model.ProviderTypeGitHub,
				Message: fmt.Sprintf(
					"authentication failed (401): check your "+
						"access token for %s", c.baseURL),
			})
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			var ghErr ErrorResponse
			if json.Unmarshal(respBody, &ghErr) == nil && ghErr.Message != "" {
				return backoff.Permanent(fmt.Errorf(
					"github API error (%d) on GET %s: %s",
					resp.StatusCode, path, ghErr.Message))
			}
			return backoff.Permanent(fmt.Errorf(
				"unexpected status %d on GET %s: %s",
				resp.StatusCode, path, string(respBody)))
		}

		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return backoff.Permanent(fmt.Errorf(
				"unmarshaling response from GET %s: %w", path, err))
		}

		return nil
	}, backoff.WithContext(bo, ctx))
}

// isRateLimited reports whether the response is a primary (429) or
// secondary (403 + Retry-After) GitHub rate limit.
func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden &&
		resp.Header.Get("Retry-After") != ""
}

// retryAfterDuration reads the Retry-After header. Zero means the header
// was absent and the backoff interval alone decides the wait.
func retryAfterDuration(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

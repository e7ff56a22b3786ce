package jira

import (
	"bytes"
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

// maxRetryElapsed bounds the total time spent retrying a rate-limited call.
const maxRetryElapsed = 45 * time.Second

// Client is a thin HTTP client for the Jira Server/DC REST API v2.
// It handles Bearer token authentication, JSON marshaling, and retry with
// exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new Jira HTTP client. The baseURL should be the
// root URL of the Jira instance (e.g., https://jira.corp.example.com).
// The token is a Personal Access Token used for Bearer authentication.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// do builds the request, handles auth and JSON (de)serialization, and
// retries 429 responses with exponential backoff, honoring Retry-After.
// Auth failures and other API errors stop the retry loop immediately.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	url := c.baseURL + path

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxElapsedTime = maxRetryElapsed

	return backoff.Retry(func() error {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return backoff.Permanent(
				fmt.Errorf("executing request %s %s: %w", method, path, err))
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return backoff.Permanent(
				fmt.Errorf("reading response body: %w", readErr))
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if wait := retryAfterDuration(resp); wait > 0 {
				select {
				case <-ctx.Done():
					return backoff.Permanent(ctx.Err())
				case <-time.After(wait):
				}
			}
			return fmt.Errorf("rate limited (429) on %s %s", method, path)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return backoff.Permanent(&provider.AuthError{
				Provider: model.ProviderTypeJira,
				Message: fmt.Sprintf(
					"authentication failed (401): check your "+
						"Personal Access Token for %s", c.baseURL),
			})
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			var jiraErr ErrorResponse
			if json.Unmarshal(respBody, &jiraErr) == nil &&
				len(jiraErr.ErrorMessages) > 0 {
				return backoff.Permanent(fmt.Errorf(
					"jira API error (%d) on %s %s: %s",
					resp.StatusCode, method, path,
					strings.Join(jiraErr.ErrorMessages, "; ")))
			}
			return backoff.Permanent(fmt.Errorf(
				"unexpected status %d on %s %s: %s",
				resp.StatusCode, method, path, string(respBody)))
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return backoff.Permanent(fmt.Errorf(
				"unmarshaling response from %s %s: %w", method, path, err))
		}

		return nil
	}, backoff.WithContext(bo, ctx))
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

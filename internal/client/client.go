// Package client provides the API client for communicating with the Lineup platform.
//
// The client handles authentication and provides methods for:
//   - Validating access tokens
//   - Managing the outstanding submission request (create/update/refresh/delete)
//   - Fetching assigned work items and queue positions
//   - Fetching feedback records and unread counts
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lineup-dev/lineup/internal/buildinfo"
)

const (
	// DefaultBaseURL is the default API endpoint.
	DefaultBaseURL = "https://api.lineup.dev"
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second
)

// Client is the Lineup API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Identity represents the authenticated account.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProjectFilter is one (project, language) pair a request is scoped to.
type ProjectFilter struct {
	ProjectID string `json:"projectId"`
	Language  string `json:"language,omitempty"`
}

// Request is the outstanding submission request held against the queue.
// The server expires it at ClosedAt unless refreshed.
type Request struct {
	ID             string          `json:"id"`
	ProjectFilters []ProjectFilter `json:"projectFilters"`
	ClosedAt       time.Time       `json:"closedAt"`
}

// Project is a minimal project descriptor attached to assignments and feedback.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AssignedItem is a work item the queue has assigned to this account.
type AssignedItem struct {
	ID         string    `json:"id"`
	AssignedAt time.Time `json:"assignedAt"`
	Project    Project   `json:"project"`
}

// FeedbackRecord is a piece of feedback left on submitted work.
// ReadAt is nil while the record is unread.
type FeedbackRecord struct {
	ID      string     `json:"id"`
	Rating  int        `json:"rating"`
	Project Project    `json:"project"`
	ReadAt  *time.Time `json:"readAt,omitempty"`
}

// QueuePosition is this account's rank in one project queue. Lower is sooner.
type QueuePosition struct {
	ProjectID string `json:"projectId"`
	Position  int    `json:"position"`
	Language  string `json:"language,omitempty"`
}

type countResponse struct {
	AssignedCount int `json:"assignedCount"`
}

type feedbackStatsResponse struct {
	UnreadCount int `json:"unreadCount"`
}

type requestBody struct {
	ProjectFilters []ProjectFilter `json:"projectFilters"`
}

// New creates a new API client. The transport is instrumented so requests
// carry trace spans when telemetry is enabled.
func New(token string) *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// WithBaseURL sets a custom base URL.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ValidateToken validates the access token and returns the account identity.
func (c *Client) ValidateToken(ctx context.Context) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/me", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("invalid or expired access token")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus("validate token", resp.StatusCode, resp.Body)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to parse identity: %w", err)
	}

	return &identity, nil
}

// Count returns the number of work items currently assigned to this account.
func (c *Client) Count(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/assignments:count", http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, unexpectedStatus("count assignments", resp.StatusCode, resp.Body)
	}

	var result countResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to parse count: %w", err)
	}

	return result.AssignedCount, nil
}

// GetRequest fetches the current outstanding request.
// Returns (nil, nil) when no request exists.
func (c *Client) GetRequest(ctx context.Context) (*Request, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/requests/current", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current request: %w", err)
	}
	defer resp.Body.Close()

	// 204 or 404 = no outstanding request
	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus("get request", resp.StatusCode, resp.Body)
	}

	return decodeRequest(resp.Body)
}

// CreateRequest creates a new outstanding request scoped to the given filters.
func (c *Client) CreateRequest(ctx context.Context, filters []ProjectFilter) (*Request, error) {
	jsonBody, err := json.Marshal(requestBody{ProjectFilters: filters})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/requests", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create submission request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus("create request", resp.StatusCode, resp.Body)
	}

	return decodeRequest(resp.Body)
}

// UpdateRequest replaces the filters of an existing request. The request
// keeps its identity; the server may extend its expiry.
func (c *Client) UpdateRequest(ctx context.Context, id string, filters []ProjectFilter) (*Request, error) {
	jsonBody, err := json.Marshal(requestBody{ProjectFilters: filters})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/requests/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, "PUT", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to update submission request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus("update request", resp.StatusCode, resp.Body)
	}

	return decodeRequest(resp.Body)
}

// RefreshRequest extends the expiry of an existing request without
// changing its identity or filters.
func (c *Client) RefreshRequest(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/api/v1/requests/%s:refresh", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader([]byte(`{}`)))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to refresh submission request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return unexpectedStatus("refresh request", resp.StatusCode, resp.Body)
	}

	return nil
}

// DeleteRequest removes the outstanding request. Called on shutdown.
func (c *Client) DeleteRequest(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/api/v1/requests/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, "DELETE", url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete submission request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return unexpectedStatus("delete request", resp.StatusCode, resp.Body)
	}

	return nil
}

// Assigned fetches the full list of work items assigned to this account.
func (c *Client) Assigned(ctx context.Context) ([]AssignedItem, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/assignments", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus("list assignments", resp.StatusCode, resp.Body)
	}

	var items []AssignedItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse assignments: %w", err)
	}

	return items, nil
}

// Positions fetches the queue positions for a request. Error statuses and
// malformed payloads yield an empty list rather than an error: positions are
// purely informational and a bad response must not fail a cycle.
func (c *Client) Positions(ctx context.Context, id string) ([]QueuePosition, error) {
	url := fmt.Sprintf("%s/api/v1/requests/%s/positions", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, "GET", url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return []QueuePosition{}, nil
	}

	var positions []QueuePosition
	if err := json.NewDecoder(resp.Body).Decode(&positions); err != nil {
		return []QueuePosition{}, nil //nolint:nilerr // malformed payload means no known positions
	}

	return positions, nil
}

// FeedbackStats returns the number of unread feedback records.
func (c *Client) FeedbackStats(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/feedbacks/stats", http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch feedback stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, unexpectedStatus("feedback stats", resp.StatusCode, resp.Body)
	}

	var result feedbackStatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to parse feedback stats: %w", err)
	}

	return result.UnreadCount, nil
}

// Feedbacks fetches the full feedback collection, read and unread.
func (c *Client) Feedbacks(ctx context.Context) ([]FeedbackRecord, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/feedbacks", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setRequestHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feedbacks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus("list feedbacks", resp.StatusCode, resp.Body)
	}

	var records []FeedbackRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse feedbacks: %w", err)
	}

	return records, nil
}

func decodeRequest(body io.Reader) (*Request, error) {
	var request Request
	if err := json.NewDecoder(body).Decode(&request); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	return &request, nil
}

func (c *Client) setRequestHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "lineup/"+buildinfo.Version)
}

// unexpectedStatus creates a formatted error from an unexpected HTTP status code.
func unexpectedStatus(operation string, statusCode int, body io.Reader) error {
	respBody, readErr := io.ReadAll(body)
	if readErr != nil {
		return fmt.Errorf("%s failed with status %d (failed to read body: %v)", operation, statusCode, readErr)
	}
	return fmt.Errorf("%s failed with status %d: %s", operation, statusCode, string(respBody))
}

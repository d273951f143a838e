package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lineup-dev/lineup/internal/buildinfo"
)

const (
	// DefaultPushBaseURL is the default push gateway endpoint.
	DefaultPushBaseURL = "https://push.lineup.dev"
	// defaultPushTimeout keeps push delivery from stalling a cycle.
	defaultPushTimeout = 30 * time.Second
)

// Device is a registered push target.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type pushMessage struct {
	Title string `json:"title"`
	Link  string `json:"link,omitempty"`
}

// Push delivers notifications to registered devices over the push API.
type Push struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewPush creates a push notifier authenticated with the given access token.
func NewPush(accessToken string) *Push {
	return &Push{
		baseURL:     DefaultPushBaseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: defaultPushTimeout,
		},
	}
}

// WithBaseURL sets a custom push gateway URL.
func (p *Push) WithBaseURL(url string) *Push {
	p.baseURL = url
	return p
}

// ListDevices fetches the devices registered for this access token.
// Called once at startup so a missing push target fails fast.
func (p *Push) ListDevices(ctx context.Context) ([]Device, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/api/v1/devices", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	p.setRequestHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list push devices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("invalid push access token")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, pushUnexpectedStatus("list devices", resp.StatusCode, resp.Body)
	}

	var devices []Device
	if err := json.NewDecoder(resp.Body).Decode(&devices); err != nil {
		return nil, fmt.Errorf("failed to parse devices: %w", err)
	}

	return devices, nil
}

// Notify delivers a notification to all registered devices.
func (p *Push) Notify(ctx context.Context, n Notification) error {
	jsonBody, err := json.Marshal(pushMessage{Title: n.Title, Link: n.Link})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/api/v1/notifications", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	p.setRequestHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return pushUnexpectedStatus("send notification", resp.StatusCode, resp.Body)
	}

	return nil
}

func (p *Push) setRequestHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "lineup/"+buildinfo.Version)
}

func pushUnexpectedStatus(operation string, statusCode int, body io.Reader) error {
	respBody, readErr := io.ReadAll(body)
	if readErr != nil {
		return fmt.Errorf("%s failed with status %d (failed to read body: %v)", operation, statusCode, readErr)
	}
	return fmt.Errorf("%s failed with status %d: %s", operation, statusCode, string(respBody))
}

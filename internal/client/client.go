// ABOUTME: Typed HTTP client for the minidg API
// ABOUTME: Wraps health, service info, and member-list calls with error decoding

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Phinfire/miniDiscordGateway/internal/roster"
)

// APIError is a non-2xx response decoded from the service's error shape.
type APIError struct {
	Status  int
	Message string
	Detail  *string
}

func (e *APIError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s (status %d): %s", e.Message, e.Status, *e.Detail)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// HealthStatus mirrors the /health response.
type HealthStatus struct {
	Status             string `json:"status"`
	DiscordClientReady bool   `json:"discord_client_ready"`
	DiscordBotName     string `json:"discord_bot_name"`
}

// ServiceInfo mirrors the / response.
type ServiceInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	DocsURL    string `json:"docs_url"`
	OpenAPIURL string `json:"openapi_url"`
}

// Client talks to a running minidg instance over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:8000".
// A bare host:port is accepted and treated as plain HTTP.
func New(baseURL string) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Health fetches /health. The endpoint answers 200 whether or not the
// Discord session is ready; check DiscordClientReady for that.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.get(ctx, "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ServiceInfo fetches the service metadata from the root endpoint.
func (c *Client) ServiceInfo(ctx context.Context) (*ServiceInfo, error) {
	var out ServiceInfo
	if err := c.get(ctx, "/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Members fetches the member list for a guild.
func (c *Client) Members(ctx context.Context, guildID int64) (*roster.MemberList, error) {
	var out roster.MemberList
	if err := c.get(ctx, fmt.Sprintf("/guild/%d/users", guildID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// decodeAPIError turns a non-200 response into an *APIError. A body that
// is not the service's error shape still yields a usable error.
func decodeAPIError(resp *http.Response) error {
	var body struct {
		Error  string  `json:"error"`
		Detail *string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		return &APIError{Status: resp.StatusCode, Message: resp.Status}
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error, Detail: body.Detail}
}

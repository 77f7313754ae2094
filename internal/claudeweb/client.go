// Package claudeweb talks to the claude.ai web API with a browser session cookie.
package claudeweb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/janekbaraniewski/usagebar/internal/core"
)

const (
	DefaultBaseURL        = "https://claude.ai/api"
	DefaultRequestTimeout = 20 * time.Second
	DashboardURL          = "https://claude.ai/settings/usage"

	userAgent     = "Mozilla/5.0 (X11; Linux x86_64; rv:146.0) Gecko/20100101 Firefox/146.0"
	clientVersion = "1.0.0"
	maxBodyBytes  = 1 << 20
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues the organizations and usage requests. A single http.Client is shared by
// both calls so the connection to claude.ai is reused between cycles.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: base, http: client}
}

func (c *Client) BaseURL() string { return c.baseURL }

// ResolveOrganizationID returns the uuid of the first organization visible to the
// session.
func (c *Client) ResolveOrganizationID(ctx context.Context, sessionKey string) (string, error) {
	body, status, err := c.get(ctx, c.baseURL+"/organizations", sessionKey, "https://claude.ai/")
	if err != nil {
		return "", &core.FetchError{Op: "organizations", Err: err}
	}
	if status != http.StatusOK {
		return "", &core.FetchError{Op: "organizations", StatusCode: status}
	}

	var orgs []organization
	if err := json.Unmarshal(body, &orgs); err != nil {
		return "", &core.FetchError{
			Op:      "organizations",
			Message: fmt.Sprintf("Failed to parse organizations: %v", err),
			Err:     err,
		}
	}
	if len(orgs) == 0 {
		return "", &core.FetchError{Op: "organizations", Message: "No organizations found"}
	}
	if strings.TrimSpace(orgs[0].UUID) == "" {
		return "", &core.FetchError{Op: "organizations", Message: "Organization has no uuid"}
	}
	return orgs[0].UUID, nil
}

// FetchUsage returns the usage windows for an organization.
func (c *Client) FetchUsage(ctx context.Context, sessionKey, orgID string) (UsageResponse, error) {
	endpoint := fmt.Sprintf("%s/organizations/%s/usage", c.baseURL, url.PathEscape(orgID))
	body, status, err := c.get(ctx, endpoint, sessionKey, DashboardURL)
	if err != nil {
		return UsageResponse{}, &core.FetchError{Op: "usage", Err: err}
	}
	if status != http.StatusOK {
		return UsageResponse{}, &core.FetchError{Op: "usage", StatusCode: status}
	}
	return ParseUsage(body)
}

// ParseUsage decodes a usage body. A JSON object with neither window present is not a
// usage payload.
func ParseUsage(body []byte) (UsageResponse, error) {
	var usage UsageResponse
	if err := json.Unmarshal(body, &usage); err != nil {
		return UsageResponse{}, &core.InvalidResponseError{Reason: "malformed JSON", Err: err}
	}
	if usage.FiveHour == nil && usage.SevenDay == nil {
		return UsageResponse{}, &core.InvalidResponseError{}
	}
	return usage, nil
}

func (c *Client) get(ctx context.Context, endpoint, sessionKey, referer string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	setHeaders(req, sessionKey, referer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func setHeaders(req *http.Request, sessionKey, referer string) {
	req.Header.Set("Cookie", "sessionKey="+sessionKey)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)
	req.Header.Set("anthropic-client-platform", "web_claude_ai")
	req.Header.Set("anthropic-client-version", clientVersion)
	req.Header.Set("Content-Type", "application/json")
}

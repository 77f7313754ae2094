package claudeweb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/janekbaraniewski/usagebar/internal/core"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Options{BaseURL: server.URL, HTTPClient: server.Client()}), server
}

func TestResolveOrganizationIDSendsSessionHeaders(t *testing.T) {
	var gotPath string
	var gotHeaders http.Header
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		_, _ = w.Write([]byte(`[{"uuid":"abc","name":"Personal"},{"uuid":"def"}]`))
	})

	id, err := client.ResolveOrganizationID(context.Background(), "sk-ant-sid01-test")
	if err != nil {
		t.Fatalf("ResolveOrganizationID() error = %v", err)
	}
	if id != "abc" {
		t.Fatalf("id = %q, want abc", id)
	}
	if gotPath != "/organizations" {
		t.Fatalf("path = %q", gotPath)
	}

	want := map[string]string{
		"Cookie":                    "sessionKey=sk-ant-sid01-test",
		"Accept":                    "*/*",
		"Referer":                   "https://claude.ai/",
		"Anthropic-Client-Platform": "web_claude_ai",
		"Anthropic-Client-Version":  "1.0.0",
		"Content-Type":              "application/json",
	}
	for key, value := range want {
		if got := gotHeaders.Get(key); got != value {
			t.Errorf("header %s = %q, want %q", key, got, value)
		}
	}
	if gotHeaders.Get("User-Agent") == "" {
		t.Error("expected a browser user agent")
	}
}

func TestResolveOrganizationIDFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, wantMsg: "Failed to fetch organizations: 401"},
		{name: "empty array", status: http.StatusOK, body: `[]`, wantMsg: "No organizations found"},
		{name: "null body", status: http.StatusOK, body: `null`, wantMsg: "No organizations found"},
		{name: "missing uuid", status: http.StatusOK, body: `[{"name":"x"}]`, wantMsg: "Organization has no uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.ResolveOrganizationID(context.Background(), "key")
			var fe *core.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want *core.FetchError", err)
			}
			if err.Error() != tt.wantMsg {
				t.Fatalf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestResolveOrganizationIDInvalidJSON(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>cloudflare</html>`))
	})

	_, err := client.ResolveOrganizationID(context.Background(), "key")
	var fe *core.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *core.FetchError", err)
	}
	if fe.Err == nil {
		t.Fatal("expected the JSON error to be wrapped")
	}
}

func TestFetchUsage(t *testing.T) {
	var gotPath, gotReferer string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotReferer = r.Header.Get("Referer")
		_, _ = w.Write([]byte(`{
			"five_hour": {"utilization": 1.0, "resets_at": "2026-03-01T15:00:00.000000+00:00"},
			"seven_day": {"utilization": 62.0, "resets_at": null},
			"seven_day_opus": null
		}`))
	})

	usage, err := client.FetchUsage(context.Background(), "key", "abc")
	if err != nil {
		t.Fatalf("FetchUsage() error = %v", err)
	}
	if gotPath != "/organizations/abc/usage" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotReferer != DashboardURL {
		t.Fatalf("referer = %q", gotReferer)
	}

	five, seven := usage.Windows()
	if five.Utilization != 1.0 || five.ResetsAt == nil {
		t.Fatalf("five-hour = %+v", five)
	}
	if !five.ResetsAt.Equal(time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("five-hour reset = %v", five.ResetsAt)
	}
	if seven.Utilization != 62.0 || seven.ResetsAt != nil {
		t.Fatalf("seven-day = %+v", seven)
	}
}

func TestFetchUsageNon200(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.FetchUsage(context.Background(), "key", "abc")
	if err == nil || err.Error() != "API Error: 403" {
		t.Fatalf("error = %v, want API Error: 403", err)
	}
	if !core.IsUnauthorized(err) {
		t.Fatal("expected 403 to be reported as unauthorized")
	}
}

func TestParseUsage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "both windows", body: `{"five_hour":{"utilization":3},"seven_day":{"utilization":4}}`},
		{name: "only five hour", body: `{"five_hour":{"utilization":3}}`},
		{name: "only seven day", body: `{"seven_day":{}}`},
		{name: "empty object", body: `{}`, wantErr: true},
		{name: "unrelated keys", body: `{"extra_usage":{"utilization":3}}`, wantErr: true},
		{name: "null", body: `null`, wantErr: true},
		{name: "array", body: `[]`, wantErr: true},
		{name: "garbage", body: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUsage([]byte(tt.body))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ParseUsage() error = %v", err)
				}
				return
			}
			var ie *core.InvalidResponseError
			if !errors.As(err, &ie) {
				t.Fatalf("error = %v, want *core.InvalidResponseError", err)
			}
		})
	}
}

func TestMissingWindowDefaultsToZero(t *testing.T) {
	usage, err := ParseUsage([]byte(`{"seven_day":{"utilization":40}}`))
	if err != nil {
		t.Fatal(err)
	}
	five, seven := usage.Windows()
	if five.Utilization != 0 || five.ResetsAt != nil || five.ID != core.WindowFiveHour {
		t.Fatalf("five-hour = %+v, want zero window", five)
	}
	if seven.Utilization != 40 {
		t.Fatalf("seven-day = %+v", seven)
	}
}

func TestClientReusesHTTPClient(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/organizations" {
			_, _ = w.Write([]byte(`[{"uuid":"abc"}]`))
			return
		}
		_, _ = w.Write([]byte(`{"five_hour":{"utilization":5}}`))
	})

	ctx := context.Background()
	id, err := client.ResolveOrganizationID(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.FetchUsage(ctx, "key", id); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestNewDefaults(t *testing.T) {
	c := New(Options{BaseURL: "https://example.test/api/ "})
	if c.BaseURL() != "https://example.test/api" {
		t.Fatalf("BaseURL = %q", c.BaseURL())
	}
	if c.http.Timeout != DefaultRequestTimeout {
		t.Fatalf("timeout = %v", c.http.Timeout)
	}
	if New(Options{}).BaseURL() != DefaultBaseURL {
		t.Fatal("expected default base URL")
	}
}

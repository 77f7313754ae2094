package core

import (
	"errors"
	"fmt"
)

// ErrNoSessionKey is returned when a live refresh is attempted without a session key.
var ErrNoSessionKey = &ConfigError{Message: "No session key configured"}

// ConfigError reports a local configuration problem. It is never retried within a
// cycle; the next scheduled cycle re-reads the settings.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// FetchError reports a transport failure or an unexpected HTTP status.
type FetchError struct {
	Op         string // "organizations" or "usage"
	StatusCode int    // 0 for transport failures
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		if e.Op == "organizations" {
			return fmt.Sprintf("Failed to fetch organizations: %d", e.StatusCode)
		}
		return fmt.Sprintf("API Error: %d", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
	}
	return e.Op + " request failed"
}

func (e *FetchError) Unwrap() error { return e.Err }

// InvalidResponseError reports a 200 response whose body is not a usage payload.
type InvalidResponseError struct {
	Reason string
	Err    error
}

func (e *InvalidResponseError) Error() string {
	if e.Reason == "" {
		return "Invalid API response"
	}
	return "Invalid API response: " + e.Reason
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err carries a 401 or 403 from the API.
func IsUnauthorized(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	return fe.StatusCode == 401 || fe.StatusCode == 403
}

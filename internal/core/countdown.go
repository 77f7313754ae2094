package core

import (
	"fmt"
	"time"
)

const (
	// CountdownUnknown is shown when the reset time is not known.
	CountdownUnknown = "--"
	// CountdownSoon is shown once the reset time has passed.
	CountdownSoon = "Soon"
)

const day = 24 * time.Hour

// FormatCountdown renders the time left until resetsAt. Durations of a day or more
// are shown as "{d}d {h}h", shorter ones as "{h}h {m}m". Seconds are truncated.
func FormatCountdown(resetsAt *time.Time, now time.Time) string {
	if resetsAt == nil {
		return CountdownUnknown
	}
	diff := resetsAt.Sub(now)
	if diff <= 0 {
		return CountdownSoon
	}

	days := int(diff / day)
	hours := int((diff % day) / time.Hour)
	minutes := int((diff % time.Hour) / time.Minute)

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// ParseResetTime parses the resets_at strings returned by the usage endpoint.
// Empty or unparseable values yield nil.
func ParseResetTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range resetLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

var resetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

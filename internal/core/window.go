package core

import "time"

// WindowID names one of the two rolling quota windows reported by the usage endpoint.
type WindowID string

const (
	WindowFiveHour WindowID = "five_hour"
	WindowSevenDay WindowID = "seven_day"
)

// Label returns the row title shown next to the window's gauge.
func (id WindowID) Label() string {
	switch id {
	case WindowFiveHour:
		return "5-Hour Usage"
	case WindowSevenDay:
		return "7-Day Usage"
	default:
		return string(id)
	}
}

// Section returns the heading the window is grouped under.
func (id WindowID) Section() string {
	switch id {
	case WindowFiveHour:
		return "CURRENT SESSION"
	case WindowSevenDay:
		return "WEEKLY LIMITS"
	default:
		return ""
	}
}

// UsageWindow is one quota window. Utilization is the percentage already used and
// may exceed 100 on over-limit accounts. A nil ResetsAt means the reset time is unknown.
type UsageWindow struct {
	ID          WindowID   `json:"id"`
	Utilization float64    `json:"utilization"`
	ResetsAt    *time.Time `json:"resets_at,omitempty"`
}

// RoundedUtilization is the integer percentage the panel displays and classifies.
func (w UsageWindow) RoundedUtilization() int {
	return roundPercent(w.Utilization)
}

func (w UsageWindow) Tier() Tier {
	return Classify(float64(w.RoundedUtilization()))
}

// RemainingPercent is 100 minus the rounded utilization. It is not clamped, so an
// over-limit window reports a negative remainder.
func (w UsageWindow) RemainingPercent() int {
	return 100 - w.RoundedUtilization()
}

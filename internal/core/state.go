package core

import "time"

// StateKind identifies which of the mutually exclusive poller states is active.
type StateKind string

const (
	StateUninitialized StateKind = "uninitialized"
	StateConnected     StateKind = "connected"
	StateDemo          StateKind = "demo"
	StateError         StateKind = "error"
)

// State is the poller's published display state. Only the fields belonging to Kind
// are set; a transition always builds a fresh State rather than patching the old one.
type State struct {
	Kind        StateKind    `json:"kind"`
	FiveHour    *UsageWindow `json:"five_hour,omitempty"`
	SevenDay    *UsageWindow `json:"seven_day,omitempty"`
	RefreshedAt time.Time    `json:"refreshed_at,omitempty"`
	Message     string       `json:"message,omitempty"`
}

func UninitializedState() State {
	return State{Kind: StateUninitialized}
}

func ConnectedState(fiveHour, sevenDay UsageWindow, at time.Time) State {
	return State{
		Kind:        StateConnected,
		FiveHour:    &fiveHour,
		SevenDay:    &sevenDay,
		RefreshedAt: at,
	}
}

func ErrorState(err error) State {
	msg := "Unknown error"
	if err != nil {
		msg = err.Error()
	}
	return State{Kind: StateError, Message: msg}
}

// Demo values shown without touching the network.
const (
	DemoFiveHourUtilization = 8.0
	DemoSevenDayUtilization = 77.0
	DemoFiveHourReset       = 2*time.Hour + 53*time.Minute
	DemoSevenDayReset       = 2*day + 11*time.Hour
)

// DemoState builds the fixed synthetic state with reset times relative to now.
func DemoState(now time.Time) State {
	fiveReset := now.Add(DemoFiveHourReset)
	sevenReset := now.Add(DemoSevenDayReset)
	return State{
		Kind:        StateDemo,
		FiveHour:    &UsageWindow{ID: WindowFiveHour, Utilization: DemoFiveHourUtilization, ResetsAt: &fiveReset},
		SevenDay:    &UsageWindow{ID: WindowSevenDay, Utilization: DemoSevenDayUtilization, ResetsAt: &sevenReset},
		RefreshedAt: now,
	}
}

// HasUsage reports whether the state carries window data to display.
func (s State) HasUsage() bool {
	return (s.Kind == StateConnected || s.Kind == StateDemo) && s.FiveHour != nil && s.SevenDay != nil
}

// Windows returns both windows in display order, or nil when the state has no usage.
func (s State) Windows() []UsageWindow {
	if !s.HasUsage() {
		return nil
	}
	return []UsageWindow{*s.FiveHour, *s.SevenDay}
}

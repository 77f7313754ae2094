// Package panel turns poller states into the display model shared by every front end:
// the terminal popup, the waybar module and the local HTTP API.
package panel

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/janekbaraniewski/usagebar/internal/claudeweb"
	"github.com/janekbaraniewski/usagebar/internal/core"
)

const (
	StatusConnecting = "Connecting..."
	StatusConnected  = "Account Session"
	StatusDemo       = "Demo Mode"

	ClassConnected = "connected"
	ClassDemo      = "demo"
	ClassError     = "error"

	Placeholder        = "--"
	PercentPlaceholder = "--%"
	JustNow            = "just now"

	// BarMaxWidthPx is the width of a full progress bar in the popup.
	BarMaxWidthPx = 250
)

// Row is one usage window as the popup shows it.
type Row struct {
	ID            core.WindowID `json:"id"`
	Section       string        `json:"section"`
	Label         string        `json:"label"`
	Utilization   float64       `json:"utilization"`
	PercentText   string        `json:"percent_text"`
	Tier          core.Tier     `json:"tier,omitempty"`
	Badge         string        `json:"badge"`
	BadgeClass    string        `json:"badge_class,omitempty"`
	ProgressClass string        `json:"progress_class,omitempty"`
	Fill          float64       `json:"fill"`
	BarWidthPx    int           `json:"bar_width_px"`
	ResetsAt      *time.Time    `json:"resets_at,omitempty"`
	Countdown     string        `json:"countdown"`
}

type View struct {
	Kind          core.StateKind `json:"kind"`
	PanelLabel    string         `json:"panel_label"`
	Remaining     *int           `json:"remaining_percent,omitempty"`
	Status        string         `json:"status"`
	StatusClass   string         `json:"status_class,omitempty"`
	Rows          []Row          `json:"rows"`
	RefreshedAt   *time.Time     `json:"refreshed_at,omitempty"`
	LastRefreshed string         `json:"last_refreshed"`
	DashboardURL  string         `json:"dashboard_url"`
}

// Build renders state at now. lastRefresh is the time of the last Connected or Demo
// cycle, which an Error state does not clear.
func Build(state core.State, lastRefresh time.Time, now time.Time) View {
	v := View{
		Kind:          state.Kind,
		PanelLabel:    Placeholder,
		LastRefreshed: RefreshedLabel(lastRefresh, now),
		DashboardURL:  claudeweb.DashboardURL,
	}
	if !lastRefresh.IsZero() {
		at := lastRefresh
		v.RefreshedAt = &at
	}

	switch state.Kind {
	case core.StateConnected:
		v.Status, v.StatusClass = StatusConnected, ClassConnected
	case core.StateDemo:
		v.Status, v.StatusClass = StatusDemo, ClassDemo
	case core.StateError:
		v.Status, v.StatusClass = state.Message, ClassError
	default:
		v.Status = StatusConnecting
	}

	if !state.HasUsage() {
		v.Rows = []Row{
			placeholderRow(core.WindowFiveHour),
			placeholderRow(core.WindowSevenDay),
		}
		return v
	}

	remaining := state.FiveHour.RemainingPercent()
	v.Remaining = &remaining
	v.PanelLabel = fmt.Sprintf("%d%%", remaining)
	v.Rows = []Row{
		usageRow(*state.FiveHour, now),
		usageRow(*state.SevenDay, now),
	}
	return v
}

func usageRow(w core.UsageWindow, now time.Time) Row {
	used := w.RoundedUtilization()
	tier := w.Tier()
	fill := core.ProgressFill(float64(used))
	return Row{
		ID:            w.ID,
		Section:       w.ID.Section(),
		Label:         w.ID.Label(),
		Utilization:   w.Utilization,
		PercentText:   fmt.Sprintf("%d%%", used),
		Tier:          tier,
		Badge:         tier.Label(),
		BadgeClass:    "badge-" + string(tier),
		ProgressClass: "progress-" + string(tier),
		Fill:          fill,
		BarWidthPx:    BarWidthPx(fill),
		ResetsAt:      w.ResetsAt,
		Countdown:     CountdownText(w.ResetsAt, now),
	}
}

func placeholderRow(id core.WindowID) Row {
	return Row{
		ID:          id,
		Section:     id.Section(),
		Label:       id.Label(),
		PercentText: PercentPlaceholder,
		Badge:       Placeholder,
		Countdown:   CountdownText(nil, time.Time{}),
	}
}

// BarWidthPx converts a 0..100 fill into the bar width in pixels.
func BarWidthPx(fill float64) int {
	return int(math.Round(BarMaxWidthPx * fill / 100))
}

// CountdownText is the full "Resets in ..." line for a window.
func CountdownText(resetsAt *time.Time, now time.Time) string {
	switch cd := core.FormatCountdown(resetsAt, now); cd {
	case core.CountdownSoon:
		return "Resets in: " + cd
	default:
		return "Resets in " + cd
	}
}

// RefreshedLabel describes how long ago the last successful refresh happened.
func RefreshedLabel(at, now time.Time) string {
	if at.IsZero() {
		return Placeholder
	}
	if now.Sub(at) < time.Minute {
		return JustNow
	}
	return humanize.RelTime(at, now, "ago", "from now")
}

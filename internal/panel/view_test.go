package panel

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/janekbaraniewski/usagebar/internal/core"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestBuildDemo(t *testing.T) {
	v := Build(core.DemoState(now), now, now)

	if v.PanelLabel != "92%" {
		t.Errorf("PanelLabel = %q, want 92%%", v.PanelLabel)
	}
	if v.Status != "Demo Mode" || v.StatusClass != "demo" {
		t.Errorf("status = %q/%q", v.Status, v.StatusClass)
	}
	if v.LastRefreshed != "just now" {
		t.Errorf("LastRefreshed = %q", v.LastRefreshed)
	}

	five, seven := v.Rows[0], v.Rows[1]
	if five.PercentText != "8%" || five.Badge != "Good" || five.BadgeClass != "badge-good" {
		t.Errorf("five-hour row = %+v", five)
	}
	if five.Countdown != "Resets in 2h 53m" {
		t.Errorf("five-hour countdown = %q", five.Countdown)
	}
	if five.BarWidthPx != 20 {
		t.Errorf("five-hour bar = %dpx, want 20", five.BarWidthPx)
	}
	if seven.PercentText != "77%" || seven.Badge != "Warning" || seven.BadgeClass != "badge-warning" {
		t.Errorf("seven-day row = %+v", seven)
	}
	if seven.Countdown != "Resets in 2d 11h" {
		t.Errorf("seven-day countdown = %q", seven.Countdown)
	}
	if seven.Section != "WEEKLY LIMITS" || seven.Label != "7-Day Usage" {
		t.Errorf("seven-day labels = %q/%q", seven.Section, seven.Label)
	}
}

func TestBuildConnected(t *testing.T) {
	state := core.ConnectedState(
		core.UsageWindow{ID: core.WindowFiveHour, Utilization: 1.0, ResetsAt: at(-time.Minute)},
		core.UsageWindow{ID: core.WindowSevenDay, Utilization: 62.0},
		now,
	)
	v := Build(state, now, now)

	if v.PanelLabel != "99%" || v.Remaining == nil || *v.Remaining != 99 {
		t.Fatalf("panel = %q remaining=%v", v.PanelLabel, v.Remaining)
	}
	if v.Status != "Account Session" || v.StatusClass != "connected" {
		t.Errorf("status = %q/%q", v.Status, v.StatusClass)
	}
	if got := v.Rows[0].Countdown; got != "Resets in: Soon" {
		t.Errorf("past reset countdown = %q", got)
	}
	if got := v.Rows[1].Countdown; got != "Resets in --" {
		t.Errorf("unknown reset countdown = %q", got)
	}
	if v.Rows[1].Tier != core.TierWarning || v.Rows[1].ProgressClass != "progress-warning" {
		t.Errorf("seven-day row = %+v", v.Rows[1])
	}
	if v.DashboardURL != "https://claude.ai/settings/usage" {
		t.Errorf("DashboardURL = %q", v.DashboardURL)
	}
}

func TestBuildRoundsBeforeClassifying(t *testing.T) {
	state := core.ConnectedState(
		core.UsageWindow{ID: core.WindowFiveHour, Utilization: 79.6},
		core.UsageWindow{ID: core.WindowSevenDay, Utilization: 112},
		now,
	)
	v := Build(state, now, now)

	five, seven := v.Rows[0], v.Rows[1]
	if five.PercentText != "80%" || five.Badge != "Critical" {
		t.Errorf("five-hour row = %+v", five)
	}
	if v.PanelLabel != "20%" {
		t.Errorf("PanelLabel = %q", v.PanelLabel)
	}
	if seven.Fill != 100 || seven.BarWidthPx != BarMaxWidthPx {
		t.Errorf("over-limit row fill=%v bar=%d", seven.Fill, seven.BarWidthPx)
	}
}

func TestBuildErrorUsesPlaceholders(t *testing.T) {
	last := now.Add(-3 * time.Minute)
	v := Build(core.ErrorState(&core.FetchError{Op: "usage", StatusCode: 500}), last, now)

	if v.Status != "API Error: 500" || v.StatusClass != "error" {
		t.Errorf("status = %q/%q", v.Status, v.StatusClass)
	}
	if v.PanelLabel != "--" || v.Remaining != nil {
		t.Errorf("panel = %q remaining=%v", v.PanelLabel, v.Remaining)
	}
	for _, r := range v.Rows {
		if r.PercentText != "--%" || r.Badge != "--" || r.BadgeClass != "" || r.Fill != 0 || r.BarWidthPx != 0 || r.Countdown != "Resets in --" {
			t.Errorf("row %s not reset: %+v", r.ID, r)
		}
	}
	if v.LastRefreshed != "3 minutes ago" {
		t.Errorf("LastRefreshed = %q, want the previous refresh kept", v.LastRefreshed)
	}
}

func TestBuildUninitialized(t *testing.T) {
	v := Build(core.UninitializedState(), time.Time{}, now)
	if v.Status != "Connecting..." || v.StatusClass != "" {
		t.Errorf("status = %q/%q", v.Status, v.StatusClass)
	}
	if v.LastRefreshed != "--" || v.RefreshedAt != nil {
		t.Errorf("LastRefreshed = %q", v.LastRefreshed)
	}
	if len(v.Rows) != 2 || v.Rows[0].ID != core.WindowFiveHour || v.Rows[1].ID != core.WindowSevenDay {
		t.Errorf("rows = %+v", v.Rows)
	}
}

func TestBarWidthPx(t *testing.T) {
	tests := []struct {
		fill float64
		want int
	}{
		{0, 0},
		{1, 3},
		{50, 125},
		{62, 155},
		{77, 193},
		{100, 250},
	}
	for _, tt := range tests {
		if got := BarWidthPx(tt.fill); got != tt.want {
			t.Errorf("BarWidthPx(%v) = %d, want %d", tt.fill, got, tt.want)
		}
	}
}

func TestRefreshedLabel(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"never", time.Time{}, "--"},
		{"now", now, "just now"},
		{"seconds", now.Add(-59 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"hours", now.Add(-2 * time.Hour), "2 hours ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RefreshedLabel(tt.at, now); got != tt.want {
				t.Errorf("RefreshedLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestViewJSONShape(t *testing.T) {
	data, err := json.Marshal(Build(core.DemoState(now), now, now))
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"kind", "panel_label", "status", "rows", "last_refreshed", "dashboard_url"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing %q in %s", key, data)
		}
	}
}

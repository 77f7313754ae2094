package claudeweb

import "github.com/janekbaraniewski/usagebar/internal/core"

type organization struct {
	UUID string `json:"uuid"`
	Name string `json:"name,omitempty"`
}

// UsageResponse is the body of GET /organizations/{id}/usage. Only the two windows the
// panel renders are decoded; both are optional on the wire.
type UsageResponse struct {
	FiveHour *UsageBucket `json:"five_hour"`
	SevenDay *UsageBucket `json:"seven_day"`
}

type UsageBucket struct {
	Utilization *float64 `json:"utilization"`
	ResetsAt    *string  `json:"resets_at"`
}

// Window converts a bucket into a core window. A nil bucket yields zero utilization
// and an unknown reset time.
func (b *UsageBucket) Window(id core.WindowID) core.UsageWindow {
	w := core.UsageWindow{ID: id}
	if b == nil {
		return w
	}
	if b.Utilization != nil {
		w.Utilization = *b.Utilization
	}
	if b.ResetsAt != nil {
		w.ResetsAt = core.ParseResetTime(*b.ResetsAt)
	}
	return w
}

// Windows returns the five-hour and seven-day windows in display order.
func (r UsageResponse) Windows() (core.UsageWindow, core.UsageWindow) {
	return r.FiveHour.Window(core.WindowFiveHour), r.SevenDay.Window(core.WindowSevenDay)
}

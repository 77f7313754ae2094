// Package waybar renders panel views as waybar custom-module JSON lines.
package waybar

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/janekbaraniewski/usagebar/internal/core"
	"github.com/janekbaraniewski/usagebar/internal/panel"
	"github.com/samber/lo"
)

// Output represents the JSON format expected by waybar custom modules.
type Output struct {
	Text       string `json:"text"`
	Tooltip    string `json:"tooltip"`
	Class      string `json:"class"`
	Percentage int    `json:"percentage"`
}

func FromView(v panel.View) Output {
	out := Output{
		Text:    v.PanelLabel,
		Tooltip: tooltip(v),
		Class:   class(v),
	}
	if len(v.Rows) > 0 && v.Remaining != nil {
		out.Percentage = int(lo.Clamp(v.Rows[0].Fill, 0, 100))
	}
	return out
}

func class(v panel.View) string {
	switch v.Kind {
	case core.StateDemo:
		return "demo"
	case core.StateError:
		return "error"
	case core.StateConnected:
		if len(v.Rows) > 0 && v.Rows[0].Tier != "" {
			return string(v.Rows[0].Tier)
		}
	}
	return ""
}

func tooltip(v panel.View) string {
	lines := []string{"Claude Usage", v.Status, ""}
	for _, r := range v.Rows {
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", r.Label, r.PercentText, r.Badge))
		lines = append(lines, "  "+r.Countdown)
	}
	lines = append(lines, "", "Updated "+v.LastRefreshed)
	return strings.Join(lines, "\n")
}

// Writer emits one JSON object per line, as waybar expects from a continuous module.
type Writer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

func (w *Writer) Write(v panel.View) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(FromView(v)); err != nil {
		return fmt.Errorf("encoding waybar output: %w", err)
	}
	return nil
}

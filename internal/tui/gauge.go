package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/janekbaraniewski/usagebar/internal/core"
)

// RenderUsageGauge produces a text-based gauge that fills from left to right as usage
// increases. fill is 0-100; the tier picks the color.
func RenderUsageGauge(fill float64, tier core.Tier, width int) string {
	if width < 5 {
		width = 5
	}
	if fill < 0 {
		fill = 0
	}
	if fill > 100 {
		fill = 100
	}

	filled := int(fill / 100 * float64(width))
	empty := width - filled

	filledStyle := lipgloss.NewStyle().Foreground(tierColor(tier))
	return filledStyle.Render(strings.Repeat("━", filled)) +
		gaugeTrackStyle.Render(strings.Repeat("━", empty))
}

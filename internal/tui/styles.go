package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/janekbaraniewski/usagebar/internal/core"
	"github.com/janekbaraniewski/usagebar/internal/panel"
)

// ─── Color Palette (Catppuccin Mocha) ───────────────────────────────────────

var (
	colorMantle   = lipgloss.Color("#181825")
	colorSurface0 = lipgloss.Color("#313244")
	colorSurface1 = lipgloss.Color("#45475A")
	colorText     = lipgloss.Color("#CDD6F4")
	colorSubtext  = lipgloss.Color("#A6ADC8")
	colorDim      = lipgloss.Color("#585B70")

	colorAccent   = lipgloss.Color("#CBA6F7")
	colorBlue     = lipgloss.Color("#89B4FA")
	colorSapphire = lipgloss.Color("#74C7EC")
	colorGreen    = lipgloss.Color("#A6E3A1")
	colorYellow   = lipgloss.Color("#F9E2AF")
	colorRed      = lipgloss.Color("#F38BA8")
	colorPeach    = lipgloss.Color("#FAB387")
	colorLavender = lipgloss.Color("#B4BEFE")

	colorOK   = colorGreen
	colorWarn = colorYellow
	colorCrit = colorRed
)

// ─── Reusable Styles ────────────────────────────────────────────────────────

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLavender)

	headerValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorSapphire).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	gaugeTrackStyle = lipgloss.NewStyle().
			Foreground(colorSurface1)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorPeach)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)

	// Status pill: colored background badge
	statusPillOKStyle = lipgloss.NewStyle().
				Foreground(colorMantle).
				Background(colorGreen).
				Bold(true).
				Padding(0, 1)

	statusPillWarnStyle = lipgloss.NewStyle().
				Foreground(colorMantle).
				Background(colorYellow).
				Bold(true).
				Padding(0, 1)

	statusPillCritStyle = lipgloss.NewStyle().
				Foreground(colorMantle).
				Background(colorRed).
				Bold(true).
				Padding(0, 1)

	statusPillDimStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorSurface0).
				Padding(0, 1)
)

func tierColor(t core.Tier) lipgloss.Color {
	switch t {
	case core.TierCritical:
		return colorCrit
	case core.TierWarning:
		return colorWarn
	case core.TierGood:
		return colorOK
	default:
		return colorDim
	}
}

func badgeStyle(t core.Tier) lipgloss.Style {
	switch t {
	case core.TierCritical:
		return statusPillCritStyle
	case core.TierWarning:
		return statusPillWarnStyle
	case core.TierGood:
		return statusPillOKStyle
	default:
		return statusPillDimStyle
	}
}

func statusDotColor(class string) lipgloss.Color {
	switch class {
	case panel.ClassConnected:
		return colorGreen
	case panel.ClassDemo:
		return colorSapphire
	case panel.ClassError:
		return colorRed
	default:
		return colorDim
	}
}

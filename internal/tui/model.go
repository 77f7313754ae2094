// Package tui renders the usage popup in the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/janekbaraniewski/usagebar/internal/core"
	"github.com/janekbaraniewski/usagebar/internal/panel"
)

const (
	defaultWidth = 46
	maxWidth     = 64
	minWidth     = 30
	labelTick    = 30 * time.Second
)

// StateMsg carries a state published by the poller.
type StateMsg core.State

// HistoryMsg carries recent five-hour utilizations, oldest first.
type HistoryMsg []float64

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(labelTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type Model struct {
	presenter *panel.Presenter
	history   []float64
	width     int
	height    int

	refreshing bool
	notice     string

	onRefresh func() bool
	now       func() time.Time
}

func NewModel(presenter *panel.Presenter) Model {
	if presenter == nil {
		presenter = panel.NewPresenter()
	}
	return Model{presenter: presenter, now: time.Now}
}

// SetOnRefresh sets a callback invoked when the user requests a manual refresh. It
// reports whether a refresh was started.
func (m *Model) SetOnRefresh(fn func() bool) {
	m.onRefresh = fn
}

func (m Model) Init() tea.Cmd { return tickCmd() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case StateMsg:
		m.presenter.Apply(core.State(msg))
		m.refreshing = false
		if m.notice == noticeRefreshBusy {
			m.notice = ""
		}
		return m, nil
	case HistoryMsg:
		m.history = append(m.history[:0:0], msg...)
		return m, nil
	case tickMsg:
		// Re-render so the "last refreshed" label ages.
		return m, tickCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

const (
	noticeRefreshBusy = "Refresh already in progress"
	noticeDashboard   = "Dashboard: "
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "r":
		m = m.requestRefresh()
	case "d":
		m.notice = noticeDashboard + m.presenter.ViewAt(m.now()).DashboardURL
	}
	return m, nil
}

func (m Model) requestRefresh() Model {
	if m.onRefresh == nil {
		return m
	}
	if m.onRefresh() {
		m.refreshing = true
		m.notice = ""
	} else {
		m.notice = noticeRefreshBusy
	}
	return m
}

func (m Model) contentWidth() int {
	w := defaultWidth
	if m.width > 0 {
		w = m.width - 4
	}
	if w > maxWidth {
		w = maxWidth
	}
	if w < minWidth {
		w = minWidth
	}
	return w
}

func (m Model) View() string {
	v := m.presenter.ViewAt(m.now())
	w := m.contentWidth()

	var b strings.Builder
	b.WriteString(m.renderHeader(v, w))
	b.WriteString("\n\n")
	for i, row := range v.Rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderRow(row, w))
		b.WriteString("\n")
	}
	if trend := m.renderTrend(w); trend != "" {
		b.WriteString("\n")
		b.WriteString(trend)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter(v, w))

	return popupStyle.Width(w + 2).Render(b.String())
}

func (m Model) renderHeader(v panel.View, w int) string {
	title := headerStyle.Render("Claude Usage")
	label := headerValueStyle.Render(v.PanelLabel)
	gap := w - lipgloss.Width(title) - lipgloss.Width(label)
	if gap < 1 {
		gap = 1
	}
	top := title + strings.Repeat(" ", gap) + label

	dot := lipgloss.NewStyle().Foreground(statusDotColor(v.StatusClass)).Render("●")
	status := v.Status
	if m.refreshing && v.Kind != core.StateUninitialized {
		status += " (refreshing)"
	}
	status = ansi.Truncate(status, w-2, "…")
	return top + "\n" + dot + " " + valueStyle.Render(status)
}

func renderRow(row panel.Row, w int) string {
	section := sectionHeaderStyle.Render(row.Section)

	badge := badgeStyle(row.Tier).Render(row.Badge)
	pct := valueStyle.Bold(true).Render(row.PercentText)
	label := labelStyle.Render(row.Label)
	right := badge + " " + pct
	gap := w - lipgloss.Width(label) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := label + strings.Repeat(" ", gap) + right

	gauge := RenderUsageGauge(row.Fill, row.Tier, w)
	reset := dimStyle.Render(row.Countdown)
	return section + "\n" + line + "\n" + gauge + "\n" + reset
}

func (m Model) renderTrend(w int) string {
	if len(m.history) < 2 {
		return ""
	}
	chartW := w - 8
	if chartW < 8 {
		chartW = 8
	}
	sl := sparkline.New(chartW, 2,
		sparkline.WithMaxValue(100),
		sparkline.WithStyle(lipgloss.NewStyle().Foreground(colorAccent)),
	)
	sl.PushAll(m.history)
	sl.Draw()
	return sectionHeaderStyle.Render("TREND") + dimStyle.Render(fmt.Sprintf("  last %d readings, 5-hour", len(m.history))) +
		"\n" + sl.View()
}

func (m Model) renderFooter(v panel.View, w int) string {
	updated := labelStyle.Render("Updated " + v.LastRefreshed)
	keys := helpKeyStyle.Render("r") + helpStyle.Render(" refresh  ") +
		helpKeyStyle.Render("d") + helpStyle.Render(" dashboard  ") +
		helpKeyStyle.Render("q") + helpStyle.Render(" quit")

	out := updated + "\n" + keys
	if m.notice != "" {
		out += "\n" + noticeStyle.Render(ansi.Truncate(m.notice, w, "…"))
	}
	return out
}

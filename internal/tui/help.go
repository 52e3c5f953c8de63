package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct {
	hasStrava bool
	viewport  viewport.Model
	width     int
	height    int
	ready     bool
}

// NewHelpModel creates a new help model
func NewHelpModel(hasStrava bool, width, height int) HelpModel {
	m := HelpModel{
		hasStrava: hasStrava,
		width:     width,
		height:    height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.viewport.SetContent(m.renderContent())
		m.ready = true
	}

	return m
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		m.viewport.SetContent(m.renderContent())
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the help screen
func (m HelpModel) View() string {
	if !m.ready {
		return m.renderContent()
	}

	footer := statusStyle.Render("  j/k or arrows: scroll  esc: close")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m HelpModel) renderContent() string {
	sections := []string{cardTitleStyle.Render("Keyboard Shortcuts")}

	sections = append(sections, m.renderSection("Navigation", []keyHelp{
		{"1", "Dashboard"},
		{"2", "Activities list"},
		{"3", "Fitness chart"},
		{"4 or s", "Sync screen"},
		{"?", "Help (this screen)"},
		{"esc", "Close help"},
		{"q", "Quit"},
	}))

	sections = append(sections, m.renderSection("Activities", []keyHelp{
		{"j / down", "Move cursor down"},
		{"k / up", "Move cursor up"},
		{"pgup / pgdn", "Page through the list"},
		{"r", "Refresh"},
	}))

	syncKeys := []keyHelp{
		{"s / enter", "Sync recent activities"},
		{"f", "Full re-sync"},
	}
	if m.hasStrava {
		syncKeys = append(syncKeys, keyHelp{"i", "Import from Strava"})
	}
	sections = append(sections, m.renderSection("Sync", syncKeys))

	sections = append(sections, m.renderSection("Fitness Chart", []keyHelp{
		{"+ / -", "Zoom the date range"},
		{"r", "Refresh"},
	}))

	sections = append(sections, m.renderMetricsHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	lines := []string{"", successStyle.Bold(true).Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	lines := []string{"", successStyle.Bold(true).Render("Metrics Explained"), ""}

	metrics := []struct {
		name string
		desc string
	}{
		{"TSS (Load)", "Per-ride training stress score."},
		{"CTL (Fitness)", "42-day weighted average of daily load."},
		{"ATL (Fatigue)", "7-day weighted average of daily load."},
		{"TSB (Form)", "CTL minus ATL. Positive = fresh, negative = fatigued."},
	}

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+helpDescStyle.Render(metric.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

package tui

import (
	"fmt"
	"strings"

	"cycleiq/internal/analysis"
	"cycleiq/internal/service"
	"cycleiq/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	data         *dashboardData
	loading      bool
	err          error
}

type dashboardData struct {
	today  analysis.DailyLoadPoint
	week   analysis.PeriodSummary
	weeks  []analysis.WeeklyLoad
	recent []store.Activity
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService) DashboardModel {
	return DashboardModel{queryService: qs, loading: true}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

type dashboardDataMsg struct {
	data *dashboardData
	err  error
}

func (m DashboardModel) loadData() tea.Msg {
	// A short trend is enough for today's values; the fitness screen
	// owns the long view.
	points, err := m.queryService.FitnessTrend(7)
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	week, err := m.queryService.WeekSummary()
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	weeks, err := m.queryService.WeeklyLoads(8)
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	recent, err := m.queryService.RecentActivities(5)
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	data := &dashboardData{week: week, weeks: weeks, recent: recent}
	if len(points) > 0 {
		data.today = points[len(points)-1]
	}
	return dashboardDataMsg{data: data}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.data == nil || (m.data.week.Rides == 0 && len(m.data.recent) == 0) {
		return "\n  No data yet. Press 's' to sync."
	}

	formCard := m.renderFormCard()
	weekCard := m.renderWeekCard()
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, formCard, "  ", weekCard)

	sections := []string{
		topRow,
		m.renderWeeklyLoads(),
		m.renderRecentActivities(),
		statusStyle.Render("Press 'r' to refresh, 's' to sync, '3' for the fitness chart"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderFormCard() string {
	title := cardTitleStyle.Render("Today")
	p := m.data.today

	lines := []string{
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.1f", p.CTL)),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.1f", p.ATL)),
		RenderMetric("Form (TSB)", fmt.Sprintf("%.1f", p.TSB)),
		"",
		statusStyle.Render(analysis.FormDescription(p.TSB)),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderWeekCard() string {
	title := cardTitleStyle.Render("This Week")
	w := m.data.week

	lines := []string{
		RenderMetric("Rides", fmt.Sprintf("%d", w.Rides)),
		RenderMetric("Distance", fmt.Sprintf("%.1f km", w.Distance/1000)),
		RenderMetric("Time", formatDuration(w.MovingTime)),
		RenderMetric("Climbing", fmt.Sprintf("%.0f m", w.Elevation)),
		RenderMetric("Load", fmt.Sprintf("%.0f", w.Load)),
	}
	if w.AvgPower > 0 {
		lines = append(lines, RenderMetric("Avg Power", fmt.Sprintf("%.0f W", w.AvgPower)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(32).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderWeeklyLoads() string {
	title := cardTitleStyle.Render("Weekly Load")

	max := 0.0
	for _, w := range m.data.weeks {
		if w.Load > max {
			max = w.Load
		}
	}
	if max == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No load recorded yet"))
	}

	const barWidth = 30
	rows := make([]string, 0, len(m.data.weeks))
	for _, w := range m.data.weeks {
		n := int(w.Load / max * barWidth)
		row := fmt.Sprintf("%s  %-*s %5.0f",
			w.WeekStart[5:], barWidth, strings.Repeat("█", n), w.Load)
		rows = append(rows, tableRowStyle.Render(row))
	}

	chart := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, chart))
}

func (m DashboardModel) renderRecentActivities() string {
	title := cardTitleStyle.Render("Recent Activities")

	if len(m.data.recent) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No activities yet"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-24s  %8s  %7s  %5s",
		"Date", "Name", "Distance", "Time", "Load"))

	rows := []string{header}
	for _, a := range m.data.recent {
		row := tableRowStyle.Render(fmt.Sprintf("%-10s  %-24s  %6.1fkm  %7s  %5.0f",
			a.StartDateLocal.Format("Jan 02"),
			truncateName(a.Name, 24),
			a.Distance/1000,
			formatDuration(a.Duration()),
			a.TrainingLoad,
		))
		rows = append(rows, row)
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

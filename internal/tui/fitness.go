package tui

import (
	"fmt"

	"cycleiq/internal/analysis"
	"cycleiq/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// FitnessModel charts the reconstructed CTL/ATL/TSB series
type FitnessModel struct {
	queryService *service.QueryService
	days         int
	points       []analysis.DailyLoadPoint
	months       []analysis.MonthlySummary
	loading      bool
	err          error
}

// NewFitnessModel creates a fitness chart model
func NewFitnessModel(qs *service.QueryService, days int) FitnessModel {
	if days <= 0 {
		days = 90
	}
	return FitnessModel{queryService: qs, days: days, loading: true}
}

// Init initializes the fitness screen
func (m FitnessModel) Init() tea.Cmd {
	return m.loadData
}

type fitnessDataMsg struct {
	points []analysis.DailyLoadPoint
	months []analysis.MonthlySummary
	err    error
}

func (m FitnessModel) loadData() tea.Msg {
	points, err := m.queryService.FitnessTrend(m.days)
	if err != nil {
		return fitnessDataMsg{err: err}
	}
	months, err := m.queryService.MonthlySummaries(6)
	return fitnessDataMsg{points: points, months: months, err: err}
}

// Update handles messages
func (m FitnessModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fitnessDataMsg:
		m.loading = false
		m.err = msg.err
		m.points = msg.points
		m.months = msg.months
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		case "+", "=":
			if m.days < 365 {
				m.days *= 2
				if m.days > 365 {
					m.days = 365
				}
				m.loading = true
				return m, m.loadData
			}
		case "-":
			if m.days > 14 {
				m.days /= 2
				if m.days < 14 {
					m.days = 14
				}
				m.loading = true
				return m, m.loadData
			}
		}
	}
	return m, nil
}

// View renders the fitness screen
func (m FitnessModel) View() string {
	if m.loading {
		return "\n  Loading fitness trend..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if len(m.points) < 2 {
		return "\n  Not enough data to chart. Press 's' to sync."
	}

	sections := []string{
		m.renderChart("Fitness (CTL)", func(p analysis.DailyLoadPoint) float64 { return p.CTL }),
		m.renderChart("Form (TSB)", func(p analysis.DailyLoadPoint) float64 { return p.TSB }),
		m.renderCurrent(),
		m.renderMonthlyTable(),
		statusStyle.Render("Press '+' / '-' to zoom, 'r' to refresh"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m FitnessModel) renderChart(title string, value func(analysis.DailyLoadPoint) float64) string {
	series := make([]float64, len(m.points))
	for i, p := range m.points {
		series[i] = value(p)
	}

	graph := asciigraph.Plot(series,
		asciigraph.Height(8),
		asciigraph.Width(72),
		asciigraph.Precision(1),
	)

	caption := statusStyle.Render(fmt.Sprintf("%s to %s (%d days)",
		m.points[0].Date, m.points[len(m.points)-1].Date, len(m.points)))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		cardTitleStyle.Render(title), graph, caption))
}

func (m FitnessModel) renderMonthlyTable() string {
	if len(m.months) == 0 {
		return ""
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-8s  %6s  %9s  %7s  %9s  %6s",
		"Month", "Rides", "Distance", "Time", "Climbing", "Load"))

	rows := []string{header}
	for _, mo := range m.months {
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-8s  %6d  %7.0fkm  %7s  %8.0fm  %6.0f",
			mo.Month, mo.Rides, mo.Distance/1000,
			formatDuration(mo.MovingTime), mo.Elevation, mo.Load)))
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		cardTitleStyle.Render("Monthly Totals"), table))
}

func (m FitnessModel) renderCurrent() string {
	p := m.points[len(m.points)-1]
	line := fmt.Sprintf("CTL %.1f   ATL %.1f   TSB %.1f   %s",
		p.CTL, p.ATL, p.TSB, analysis.FormDescription(p.TSB))
	return statusStyle.Render("  " + line)
}

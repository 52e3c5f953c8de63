package tui

import (
	"fmt"

	"cycleiq/internal/service"
	"cycleiq/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ActivitiesModel is the activities list screen model
type ActivitiesModel struct {
	queryService *service.QueryService
	activities   []store.Activity
	cursor       int
	offset       int
	pageSize     int
	loading      bool
	err          error
}

// NewActivitiesModel creates a new activities model
func NewActivitiesModel(qs *service.QueryService) ActivitiesModel {
	return ActivitiesModel{
		queryService: qs,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the activities screen
func (m ActivitiesModel) Init() tea.Cmd {
	return m.loadActivities
}

type activitiesLoadedMsg struct {
	activities []store.Activity
	err        error
}

func (m ActivitiesModel) loadActivities() tea.Msg {
	activities, err := m.queryService.RecentActivities(0)
	return activitiesLoadedMsg{activities: activities, err: err}
}

// Update handles messages
func (m ActivitiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activitiesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.activities = msg.activities
		m.cursor = 0
		m.offset = 0

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
			}
		case "down", "j":
			if m.cursor < m.pageLen()-1 {
				m.cursor++
			} else if m.offset+m.pageSize < len(m.activities) {
				m.offset += m.pageSize
				m.cursor = 0
			}
		case "pgup":
			if m.offset > 0 {
				m.offset -= m.pageSize
				if m.offset < 0 {
					m.offset = 0
				}
				m.cursor = 0
			}
		case "pgdown":
			if m.offset+m.pageSize < len(m.activities) {
				m.offset += m.pageSize
				m.cursor = 0
			}
		case "r":
			m.loading = true
			return m, m.loadActivities
		}
	}
	return m, nil
}

func (m ActivitiesModel) pageLen() int {
	n := len(m.activities) - m.offset
	if n > m.pageSize {
		n = m.pageSize
	}
	return n
}

// View renders the activities list
func (m ActivitiesModel) View() string {
	if m.loading {
		return "\n  Loading activities..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if len(m.activities) == 0 {
		return "\n  No activities yet. Press 's' to sync."
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-26s  %-12s  %8s  %7s  %5s",
		"Date", "Name", "Type", "Distance", "Time", "Load"))

	rows := []string{header}
	page := m.activities[m.offset : m.offset+m.pageLen()]
	for i, a := range page {
		line := fmt.Sprintf("%-10s  %-26s  %-12s  %6.1fkm  %7s  %5.0f",
			a.StartDateLocal.Format("2006-01-02"),
			truncateName(a.Name, 26),
			a.Type,
			a.Distance/1000,
			formatDuration(a.Duration()),
			a.TrainingLoad,
		)
		if i == m.cursor {
			rows = append(rows, tableSelectedStyle.Render(line))
		} else {
			rows = append(rows, tableRowStyle.Render(line))
		}
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)

	pos := statusStyle.Render(fmt.Sprintf("  %d-%d of %d",
		m.offset+1, m.offset+m.pageLen(), len(m.activities)))

	return lipgloss.JoinVertical(lipgloss.Left, table, pos)
}

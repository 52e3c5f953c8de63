package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cycleiq/internal/icu"
	"cycleiq/internal/service"
	"cycleiq/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SyncModel is the sync screen model
type SyncModel struct {
	syncService   *service.SyncService
	importService *service.ImportService
	queryService  *service.QueryService

	lastSync time.Time
	history  []store.SyncRecord

	busy         bool
	result       *service.SyncResult
	importResult *service.ImportResult
	err          error
	done         bool
}

// NewSyncModel creates a new sync model. importService is nil when Strava
// is not configured.
func NewSyncModel(ss *service.SyncService, is *service.ImportService, qs *service.QueryService) SyncModel {
	return SyncModel{syncService: ss, importService: is, queryService: qs}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return m.loadInfo
}

// syncInfoMsg carries the persisted sync ledger for the idle view
type syncInfoMsg struct {
	lastSync time.Time
	history  []store.SyncRecord
}

func (m SyncModel) loadInfo() tea.Msg {
	// Best effort; an unreadable ledger just leaves the idle view bare
	lastSync, _ := m.queryService.LastSync()
	history, _ := m.queryService.SyncHistory()
	return syncInfoMsg{lastSync: lastSync, history: history}
}

// SyncDoneMsg is sent when a sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

// ImportDoneMsg is sent when a Strava import finishes
type ImportDoneMsg struct {
	Result *service.ImportResult
	Err    error
}

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncInfoMsg:
		m.lastSync = msg.lastSync
		m.history = msg.history
		return m, nil

	case SyncDoneMsg:
		m.busy = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		if m.err == nil {
			return m, func() tea.Msg { return SyncCompleteMsg{} }
		}
		return m, m.loadInfo

	case ImportDoneMsg:
		m.busy = false
		m.done = true
		m.importResult = msg.Result
		m.err = msg.Err
		if m.err == nil {
			return m, func() tea.Msg { return SyncCompleteMsg{} }
		}
		return m, m.loadInfo

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "enter", "s":
			m.busy = true
			m.done = false
			m.err = nil
			m.result = nil
			m.importResult = nil
			return m, m.runSync(service.ModeAuto)
		case "f":
			m.busy = true
			m.done = false
			m.err = nil
			m.result = nil
			m.importResult = nil
			return m, m.runSync(service.ModeFull)
		case "i":
			if m.importService != nil {
				m.busy = true
				m.done = false
				m.err = nil
				m.result = nil
				m.importResult = nil
				return m, m.runImport
			}
		}
	}
	return m, nil
}

func (m SyncModel) runSync(mode service.Mode) tea.Cmd {
	return func() tea.Msg {
		result, err := m.syncService.Sync(context.Background(), mode, nil)
		return SyncDoneMsg{Result: result, Err: err}
	}
}

func (m SyncModel) runImport() tea.Msg {
	result, err := m.importService.Import(context.Background(), nil)
	return ImportDoneMsg{Result: result, Err: err}
}

// View renders the sync screen
func (m SyncModel) View() string {
	sections := []string{cardTitleStyle.Render("Sync")}

	switch {
	case m.err != nil:
		sections = append(sections, m.renderError())
	case m.done:
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' for the dashboard"))
	case m.busy:
		sections = append(sections, "\n  Syncing...")
		sections = append(sections, statusStyle.Render("  This may take a moment"))
	default:
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderError() string {
	var lines []string

	var authErr *icu.AuthError
	if errors.As(m.err, &authErr) {
		lines = append(lines, errorStyle.Render("\n  Authentication failed."))
		lines = append(lines, "  Check intervals.api_key in your config file.")
	} else if errors.Is(m.err, service.ErrSyncInProgress) {
		lines = append(lines, warningStyle.Render("\n  A sync is already running."))
	} else {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
	}

	lines = append(lines, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderStartPrompt() string {
	last := "never"
	if !m.lastSync.IsZero() {
		last = m.lastSync.Format("Jan 02 15:04")
	}

	lines := []string{
		"",
		"  Last sync: " + last,
		"",
		"  [s / enter]  Sync recent activities",
		"  [f]          Full re-sync (rebuilds local history)",
	}
	if m.importService != nil {
		lines = append(lines, "  [i]          Import from Strava")
	}
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  Incremental sync is automatic once a snapshot exists"))

	if h := m.renderHistory(); h != "" {
		lines = append(lines, h)
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderHistory() string {
	if len(m.history) == 0 {
		return ""
	}

	lines := []string{"", cardTitleStyle.Render("Recent Syncs")}
	for i, r := range m.history {
		if i == 5 {
			break
		}
		status := successStyle.Render("ok")
		if r.Errored {
			status = errorStyle.Render("failed")
		}
		lines = append(lines, tableRowStyle.Render(fmt.Sprintf("  %s  %-11s  %4d fetched  %s",
			r.At.Format("Jan 02 15:04"), r.Mode, r.Fetched, status)))
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	var lines []string
	lines = append(lines, successStyle.Render("\n  Done."))

	if r := m.result; r != nil {
		lines = append(lines, fmt.Sprintf("  Mode: %s", r.Mode))
		lines = append(lines, fmt.Sprintf("  Fetched %d, merged %d (%d replaced)", r.Fetched, r.Merged, r.Replaced))
		if r.WellnessDays > 0 {
			lines = append(lines, fmt.Sprintf("  Wellness: %d days refreshed", r.WellnessDays))
		}
		if r.WellnessRefresh != nil {
			lines = append(lines, warningStyle.Render("  Wellness refresh failed; charts use the last known values"))
		}
		if r.GuardTripped {
			lines = append(lines, warningStyle.Render("  Walk stopped at the page guard; oldest history may be incomplete"))
		}
		if r.Stalled {
			lines = append(lines, warningStyle.Render("  Source stopped returning new items; stopped early"))
		}
		if !r.Persisted {
			lines = append(lines, warningStyle.Render("  Storage full: results kept in memory only this session"))
		}
	}

	if r := m.importResult; r != nil {
		lines = append(lines, fmt.Sprintf("  Strava: %d fetched, %d imported, %d duplicates skipped",
			r.Fetched, r.Imported, r.Duplicates))
	}

	return strings.Join(lines, "\n")
}

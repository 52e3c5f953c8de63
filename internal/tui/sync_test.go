package tui

import (
	"strings"
	"testing"
	"time"

	"cycleiq/internal/service"
	"cycleiq/internal/store"
)

func TestSyncScreenShowsLedger(t *testing.T) {
	db := store.NewTestDB(t)

	at := time.Date(2026, 3, 14, 7, 30, 0, 0, time.UTC)
	if err := db.SaveSnapshot(nil, at); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := db.AddSyncRecord(&store.SyncRecord{At: at, Mode: "full", Fetched: 12}); err != nil {
		t.Fatalf("AddSyncRecord() error = %v", err)
	}
	if err := db.AddSyncRecord(&store.SyncRecord{At: at.Add(time.Hour), Mode: "incremental", Fetched: 3, Errored: true}); err != nil {
		t.Fatalf("AddSyncRecord() error = %v", err)
	}

	m := NewSyncModel(nil, nil, service.NewQueryService(db))
	updated, _ := m.Update(m.loadInfo())
	m = updated.(SyncModel)

	view := m.View()
	if !strings.Contains(view, "Last sync: Mar 14 07:30") {
		t.Errorf("idle view missing last sync time:\n%s", view)
	}
	if !strings.Contains(view, "incremental") || !strings.Contains(view, "failed") {
		t.Errorf("idle view missing history entries:\n%s", view)
	}
	if !strings.Contains(view, "full") || !strings.Contains(view, "12 fetched") {
		t.Errorf("idle view missing fetch counts:\n%s", view)
	}
}

func TestSyncScreenLedgerEmptyWhenNeverSynced(t *testing.T) {
	db := store.NewTestDB(t)

	m := NewSyncModel(nil, nil, service.NewQueryService(db))
	updated, _ := m.Update(m.loadInfo())
	m = updated.(SyncModel)

	if !strings.Contains(m.View(), "Last sync: never") {
		t.Errorf("idle view should report no sync yet:\n%s", m.View())
	}
}

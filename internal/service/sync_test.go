package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cycleiq/internal/icu"
	"cycleiq/internal/store"
)

type fakeRemote struct {
	windowedSource
	wellness    []store.WellnessEntry
	listErr     error
	wellnessErr error
}

func (f *fakeRemote) ListActivities(ctx context.Context, oldest, newest time.Time, limit int) ([]store.Activity, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.windowedSource.ListActivities(ctx, oldest, newest, limit)
}

func (f *fakeRemote) GetWellness(ctx context.Context, oldest, newest time.Time) ([]store.WellnessEntry, error) {
	if f.wellnessErr != nil {
		return nil, f.wellnessErr
	}
	return f.wellness, nil
}

func newTestSync(t *testing.T, remote *fakeRemote) (*SyncService, *store.DB) {
	t.Helper()
	db := store.NewTestDB(t)
	s := NewSyncService(remote, db)
	s.now = func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return s, db
}

// fullStore rejects snapshot writes like a disk that has run out of space
type fullStore struct {
	*store.DB
	full bool
}

func (f *fullStore) SaveSnapshot(activities []store.Activity, lastSync time.Time) error {
	if f.full {
		return store.ErrCapacityExceeded
	}
	return f.DB.SaveSnapshot(activities, lastSync)
}

func remoteActivity(id, date string, load float64) store.Activity {
	return store.Activity{
		ID:             id,
		Name:           "Ride",
		Type:           "Ride",
		Source:         store.SourceIntervals,
		StartDateLocal: day(date).Add(8 * time.Hour),
		Distance:       25000,
		MovingTime:     3600,
		TrainingLoad:   load,
	}
}

func TestFirstSyncRunsFull(t *testing.T) {
	remote := &fakeRemote{
		windowedSource: windowedSource{activities: []store.Activity{
			remoteActivity("a", "2025-04-10", 80),
			remoteActivity("b", "2026-03-14", 95),
		}},
		wellness: []store.WellnessEntry{{Date: "2026-03-14", CTL: ptrF(52)}},
	}
	s, db := newTestSync(t, remote)

	result, err := s.Sync(context.Background(), ModeAuto, nil)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if result.Mode != ModeFull {
		t.Errorf("Mode = %v, want ModeFull on empty store", result.Mode)
	}
	if !result.Persisted {
		t.Error("Persisted = false")
	}
	if result.Merged != 2 {
		t.Errorf("Merged = %d, want 2", result.Merged)
	}
	if result.WellnessDays != 1 {
		t.Errorf("WellnessDays = %d, want 1", result.WellnessDays)
	}

	snap, err := db.LoadSnapshot()
	if err != nil || snap == nil {
		t.Fatalf("LoadSnapshot() = %v, %v", snap, err)
	}
	if len(snap.Activities) != 2 {
		t.Errorf("stored activities = %d, want 2", len(snap.Activities))
	}
	if !snap.LastSync.Equal(s.now()) {
		t.Errorf("LastSync = %v, want %v", snap.LastSync, s.now())
	}
}

func TestIncrementalSyncIsIdempotent(t *testing.T) {
	remote := &fakeRemote{
		windowedSource: windowedSource{activities: []store.Activity{
			remoteActivity("old", "2025-02-01", 70),
			remoteActivity("recent", "2026-03-14", 95),
		}},
	}
	s, db := newTestSync(t, remote)

	if _, err := s.Sync(context.Background(), ModeAuto, nil); err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}

	result, err := s.Sync(context.Background(), ModeAuto, nil)
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	if result.Mode != ModeIncremental {
		t.Errorf("Mode = %v, want ModeIncremental with existing snapshot", result.Mode)
	}
	if result.Merged != 2 {
		t.Errorf("Merged = %d, want 2", result.Merged)
	}

	activities, err := db.ListActivities()
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}
	seen := make(map[string]bool)
	for _, a := range activities {
		if seen[a.ID] {
			t.Errorf("duplicate id %s after repeated sync", a.ID)
		}
		seen[a.ID] = true
	}
	if !seen["old"] || !seen["recent"] {
		t.Errorf("ids = %v, want old and recent retained", seen)
	}
}

func TestIncrementalSyncReplacesEditedActivity(t *testing.T) {
	recent := remoteActivity("recent", "2026-03-14", 95)
	remote := &fakeRemote{
		windowedSource: windowedSource{activities: []store.Activity{recent}},
	}
	s, db := newTestSync(t, remote)

	if _, err := s.Sync(context.Background(), ModeAuto, nil); err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}

	// Upstream edit: same id, corrected load
	recent.TrainingLoad = 110
	recent.Name = "Ride (corrected)"
	remote.windowedSource.activities = []store.Activity{recent}

	result, err := s.Sync(context.Background(), ModeIncremental, nil)
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	if result.Replaced != 1 {
		t.Errorf("Replaced = %d, want 1", result.Replaced)
	}

	activities, _ := db.ListActivities()
	if len(activities) != 1 {
		t.Fatalf("len = %d, want 1", len(activities))
	}
	if activities[0].TrainingLoad != 110 || activities[0].Name != "Ride (corrected)" {
		t.Errorf("stored = %+v, want corrected version", activities[0])
	}
}

func TestFailedSyncLeavesSnapshotUntouched(t *testing.T) {
	remote := &fakeRemote{
		windowedSource: windowedSource{activities: []store.Activity{
			remoteActivity("a", "2026-03-10", 80),
		}},
	}
	s, db := newTestSync(t, remote)

	if _, err := s.Sync(context.Background(), ModeAuto, nil); err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}
	before, _ := db.LoadSnapshot()

	remote.listErr = &icu.AuthError{Status: 401, Body: "expired"}
	_, err := s.Sync(context.Background(), ModeAuto, nil)
	if err == nil {
		t.Fatal("Sync() error = nil, want auth failure")
	}
	var authErr *icu.AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("error = %v, want AuthError surfaced distinctly", err)
	}

	after, _ := db.LoadSnapshot()
	if after == nil || !after.LastSync.Equal(before.LastSync) {
		t.Errorf("LastSync changed after failed sync: %v -> %v", before.LastSync, after)
	}
	if len(after.Activities) != len(before.Activities) {
		t.Errorf("activities changed after failed sync")
	}
}

func TestSyncBusyGuard(t *testing.T) {
	s, _ := newTestSync(t, &fakeRemote{})

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.Sync(context.Background(), ModeAuto, nil)
	if !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("error = %v, want ErrSyncInProgress", err)
	}
}

func TestWellnessFailureIsNonFatal(t *testing.T) {
	remote := &fakeRemote{
		windowedSource: windowedSource{activities: []store.Activity{
			remoteActivity("a", "2026-03-10", 80),
		}},
		wellnessErr: &icu.UpstreamError{Status: 502},
	}
	s, db := newTestSync(t, remote)

	result, err := s.Sync(context.Background(), ModeAuto, nil)
	if err != nil {
		t.Fatalf("Sync() error = %v, want wellness failure swallowed", err)
	}
	if result.WellnessRefresh == nil {
		t.Error("WellnessRefresh = nil, want recorded error")
	}
	if !result.Persisted {
		t.Error("Persisted = false")
	}

	snap, _ := db.LoadSnapshot()
	if snap == nil || len(snap.Activities) != 1 {
		t.Errorf("snapshot = %v, want 1 activity", snap)
	}
}

func TestFullSyncRetainsSecondaryImports(t *testing.T) {
	remote := &fakeRemote{
		windowedSource: windowedSource{activities: []store.Activity{
			remoteActivity("fresh", "2026-03-14", 95),
		}},
	}
	s, db := newTestSync(t, remote)

	stravaRide := remoteActivity("strava_9", "2026-01-20", 60)
	stravaRide.Source = store.SourceStrava
	stale := remoteActivity("gone", "2026-02-01", 70)
	if err := db.SaveSnapshot([]store.Activity{stravaRide, stale}, s.now().AddDate(0, 0, -30)); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	if _, err := s.Sync(context.Background(), ModeFull, nil); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	activities, _ := db.ListActivities()
	ids := make(map[string]bool)
	for _, a := range activities {
		ids[a.ID] = true
	}
	if !ids["strava_9"] {
		t.Error("strava import dropped by full sync")
	}
	if !ids["fresh"] {
		t.Error("fresh activity missing")
	}
	if ids["gone"] {
		t.Error("stale primary activity survived a full refresh")
	}
}

func TestForcedIncrementalFallsBackToFull(t *testing.T) {
	remote := &fakeRemote{
		windowedSource: windowedSource{activities: []store.Activity{
			remoteActivity("a", "2025-04-10", 80),
		}},
	}
	s, _ := newTestSync(t, remote)

	result, err := s.Sync(context.Background(), ModeIncremental, nil)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if result.Mode != ModeFull {
		t.Errorf("Mode = %v, want ModeFull when no snapshot exists", result.Mode)
	}
}

func TestCapacityExceededDropsWriteAndForcesFullSync(t *testing.T) {
	remote := &fakeRemote{
		windowedSource: windowedSource{activities: []store.Activity{
			remoteActivity("a", "2026-03-10", 80),
			remoteActivity("b", "2026-03-14", 95),
		}},
	}
	s, db := newTestSync(t, remote)
	fs := &fullStore{DB: db}
	s.db = fs

	// Establish a usable snapshot first
	if _, err := s.Sync(context.Background(), ModeAuto, nil); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	// Storage fills up: the write is dropped, not surfaced as an error
	fs.full = true
	result, err := s.Sync(context.Background(), ModeAuto, nil)
	if err != nil {
		t.Fatalf("Sync() error = %v, want dropped write to stay silent", err)
	}
	if result.Mode != ModeIncremental {
		t.Errorf("Mode = %v, want ModeIncremental against the existing snapshot", result.Mode)
	}
	if result.Persisted {
		t.Error("Persisted = true, want false")
	}
	if result.Merged != 2 {
		t.Errorf("Merged = %d, want in-memory result intact", result.Merged)
	}

	// The previous snapshot survives the dropped write
	activities, _ := db.ListActivities()
	if len(activities) != 2 {
		t.Errorf("stored = %d, want previous snapshot untouched", len(activities))
	}

	// With the sync timestamp cleared, the next auto sync starts over
	fs.full = false
	result, err = s.Sync(context.Background(), ModeAuto, nil)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if result.Mode != ModeFull {
		t.Errorf("Mode = %v, want ModeFull after the dropped write", result.Mode)
	}
	if !result.Persisted {
		t.Error("Persisted = false after space recovered")
	}
}

func TestSyncRecordsHistory(t *testing.T) {
	remote := &fakeRemote{
		windowedSource: windowedSource{activities: []store.Activity{
			remoteActivity("a", "2026-03-10", 80),
		}},
	}
	s, db := newTestSync(t, remote)

	if _, err := s.Sync(context.Background(), ModeAuto, nil); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	records, err := db.ListSyncHistory()
	if err != nil {
		t.Fatalf("ListSyncHistory() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	if records[0].Mode != "full" || records[0].Errored {
		t.Errorf("record = %+v, want successful full sync", records[0])
	}
}

func TestSyncProgressReported(t *testing.T) {
	remote := &fakeRemote{
		windowedSource: windowedSource{activities: []store.Activity{
			remoteActivity("a", "2026-03-10", 80),
		}},
	}
	s, _ := newTestSync(t, remote)

	var stages []string
	_, err := s.Sync(context.Background(), ModeAuto, func(p SyncProgress) {
		stages = append(stages, p.Stage)
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(stages) == 0 || stages[0] != "fetching activities" {
		t.Errorf("stages = %v, want fetching first", stages)
	}
	if stages[len(stages)-1] != "saving" {
		t.Errorf("stages = %v, want saving last", stages)
	}
}

func ptrF(v float64) *float64 { return &v }

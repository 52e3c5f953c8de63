package service

import (
	"testing"
	"time"

	"cycleiq/internal/store"
)

func newTestQuery(t *testing.T) (*QueryService, *store.DB) {
	t.Helper()
	db := store.NewTestDB(t)
	q := NewQueryService(db)
	q.now = func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return q, db
}

func TestRecentActivitiesSkipsPlaceholders(t *testing.T) {
	q, db := newTestQuery(t)

	activities := []store.Activity{
		remoteActivity("a", "2026-03-14", 95),
		{ID: "planned", StartDateLocal: day("2026-03-16")},
		remoteActivity("b", "2026-03-10", 70),
	}
	if err := db.SaveSnapshot(activities, q.now()); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err := q.RecentActivities(10)
	if err != nil {
		t.Fatalf("RecentActivities() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, a := range got {
		if a.IsPlaceholder() {
			t.Errorf("placeholder %s in list", a.ID)
		}
	}
}

func TestRecentActivitiesLimit(t *testing.T) {
	q, db := newTestQuery(t)

	activities := []store.Activity{
		remoteActivity("a", "2026-03-14", 95),
		remoteActivity("b", "2026-03-13", 80),
		remoteActivity("c", "2026-03-12", 60),
	}
	if err := db.SaveSnapshot(activities, q.now()); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err := q.RecentActivities(2)
	if err != nil {
		t.Fatalf("RecentActivities() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" {
		t.Errorf("got %v, want newest 2", got)
	}
}

func TestFitnessTrendLength(t *testing.T) {
	q, db := newTestQuery(t)

	if err := db.SaveSnapshot([]store.Activity{
		remoteActivity("a", "2026-03-10", 80),
	}, q.now()); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	points, err := q.FitnessTrend(30)
	if err != nil {
		t.Fatalf("FitnessTrend() error = %v", err)
	}
	if len(points) != 30 {
		t.Fatalf("len = %d, want 30", len(points))
	}
	if points[len(points)-1].Date != "2026-03-15" {
		t.Errorf("last date = %s, want today", points[len(points)-1].Date)
	}
}

func TestWeekSummaryWindow(t *testing.T) {
	q, db := newTestQuery(t)

	activities := []store.Activity{
		remoteActivity("in1", "2026-03-14", 95),
		remoteActivity("in2", "2026-03-09", 70),
		remoteActivity("out", "2026-03-01", 120),
	}
	if err := db.SaveSnapshot(activities, q.now()); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	summary, err := q.WeekSummary()
	if err != nil {
		t.Fatalf("WeekSummary() error = %v", err)
	}
	if summary.Rides != 2 {
		t.Errorf("Rides = %d, want 2", summary.Rides)
	}
	if summary.Load != 165 {
		t.Errorf("Load = %v, want 165", summary.Load)
	}
}

func TestWeeklyLoadsBuckets(t *testing.T) {
	q, db := newTestQuery(t)

	// now is Sunday 2026-03-15; its week starts Monday 2026-03-09
	activities := []store.Activity{
		remoteActivity("a", "2026-03-14", 95),
		remoteActivity("b", "2026-03-09", 70),
		remoteActivity("c", "2026-03-04", 50),
	}
	if err := db.SaveSnapshot(activities, q.now()); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	weeks, err := q.WeeklyLoads(2)
	if err != nil {
		t.Fatalf("WeeklyLoads() error = %v", err)
	}
	if len(weeks) != 2 {
		t.Fatalf("len = %d, want 2", len(weeks))
	}
	if weeks[0].WeekStart != "2026-03-02" || weeks[0].Load != 50 {
		t.Errorf("week 0 = %+v, want 2026-03-02 load 50", weeks[0])
	}
	if weeks[1].WeekStart != "2026-03-09" || weeks[1].Load != 165 {
		t.Errorf("week 1 = %+v, want 2026-03-09 load 165", weeks[1])
	}
}

func TestLastSyncZeroWhenNeverSynced(t *testing.T) {
	q, _ := newTestQuery(t)

	ts, err := q.LastSync()
	if err != nil {
		t.Fatalf("LastSync() error = %v", err)
	}
	if !ts.IsZero() {
		t.Errorf("LastSync() = %v, want zero", ts)
	}
}

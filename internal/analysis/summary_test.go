package analysis

import (
	"testing"

	"cycleiq/internal/store"
)

func TestSummarizeWindow(t *testing.T) {
	withPower := activityOn("a1", "2026-03-09", 80)
	withPower.AvgPower = ptr(220)
	activities := []store.Activity{
		withPower,
		activityOn("a2", "2026-03-12", 60),
		activityOn("a3", "2026-03-01", 100), // before the window
		placeholderOn("p1", "2026-03-10"),
	}

	got := Summarize(activities, day("2026-03-09"), day("2026-03-15"))
	if got.Rides != 2 {
		t.Errorf("Rides = %d, want 2", got.Rides)
	}
	if got.Load != 140 {
		t.Errorf("Load = %v, want 140", got.Load)
	}
	if got.MovingTime != 7200 {
		t.Errorf("MovingTime = %d, want 7200", got.MovingTime)
	}
	// Rides without power data stay out of the mean
	if got.AvgPower != 220 {
		t.Errorf("AvgPower = %v, want 220", got.AvgPower)
	}
}

func TestWeeklyLoads(t *testing.T) {
	// 2026-03-09 and 2026-03-16 are Mondays.
	activities := []store.Activity{
		activityOn("a1", "2026-03-09", 80),
		activityOn("a2", "2026-03-11", 40),
		activityOn("a3", "2026-03-17", 90),
		placeholderOn("p1", "2026-03-18"),
	}

	got := WeeklyLoads(activities, 3, day("2026-03-20"))
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	want := []WeeklyLoad{
		{WeekStart: "2026-03-02", Load: 0},
		{WeekStart: "2026-03-09", Load: 120},
		{WeekStart: "2026-03-16", Load: 90},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("week %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestWeeklyLoadsSundayBelongsToPriorMonday(t *testing.T) {
	// 2026-03-15 is a Sunday; its week starts Monday 2026-03-09.
	got := WeeklyLoads([]store.Activity{activityOn("a1", "2026-03-15", 50)}, 1, day("2026-03-15"))
	if len(got) != 1 || got[0].WeekStart != "2026-03-09" || got[0].Load != 50 {
		t.Errorf("got %+v, want week 2026-03-09 with load 50", got)
	}
}

func TestMonthlySummaries(t *testing.T) {
	activities := []store.Activity{
		activityOn("a1", "2026-03-05", 80),
		activityOn("a2", "2026-03-20", 70),
		activityOn("a3", "2026-02-10", 60),
		placeholderOn("p1", "2026-03-08"),
	}

	got := MonthlySummaries(activities, 3, day("2026-03-25"))
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Month != "2026-03" || got[0].Rides != 2 || got[0].Load != 150 {
		t.Errorf("month 0 = %+v, want 2026-03 with 2 rides load 150", got[0])
	}
	if got[1].Month != "2026-02" || got[1].Rides != 1 {
		t.Errorf("month 1 = %+v, want 2026-02 with 1 ride", got[1])
	}
	if got[2].Month != "2026-01" || got[2].Rides != 0 {
		t.Errorf("month 2 = %+v, want empty 2026-01", got[2])
	}
}

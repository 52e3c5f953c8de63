package analysis

import (
	"time"

	"cycleiq/internal/store"
)

// PeriodSummary aggregates completed activities over a date range.
type PeriodSummary struct {
	Rides      int
	Distance   float64 // meters
	MovingTime int     // seconds
	Elevation  float64 // meters
	Load       float64
	AvgPower   float64 // mean over rides with power data, 0 when none
}

// Summarize totals the non-placeholder activities whose local date falls in
// [start, end].
func Summarize(activities []store.Activity, start, end time.Time) PeriodSummary {
	startKey := truncateDay(start).Format("2006-01-02")
	endKey := truncateDay(end).Format("2006-01-02")

	var s PeriodSummary
	var powerSum float64
	var powerRides int
	for _, a := range activities {
		if a.IsPlaceholder() {
			continue
		}
		key := a.DateKey()
		if key < startKey || key > endKey {
			continue
		}
		s.Rides++
		s.Distance += a.Distance
		s.MovingTime += a.Duration()
		s.Elevation += a.ElevationGain
		s.Load += a.TrainingLoad
		if a.AvgPower != nil {
			powerSum += *a.AvgPower
			powerRides++
		}
	}
	if powerRides > 0 {
		s.AvgPower = powerSum / float64(powerRides)
	}
	return s
}

// WeeklyLoad is one calendar week's total training load.
type WeeklyLoad struct {
	WeekStart string // Monday, YYYY-MM-DD
	Load      float64
}

// WeeklyLoads buckets completed activities into Monday-based weeks and
// returns the trailing number of weeks ending with the week containing end,
// oldest first. Weeks without activities appear with zero load.
func WeeklyLoads(activities []store.Activity, weeks int, end time.Time) []WeeklyLoad {
	byWeek := make(map[string]float64)
	for _, a := range activities {
		if a.IsPlaceholder() {
			continue
		}
		key := weekStart(a.StartDateLocal).Format("2006-01-02")
		byWeek[key] += a.TrainingLoad
	}

	out := make([]WeeklyLoad, 0, weeks)
	last := weekStart(end)
	for i := weeks - 1; i >= 0; i-- {
		key := last.AddDate(0, 0, -7*i).Format("2006-01-02")
		out = append(out, WeeklyLoad{WeekStart: key, Load: byWeek[key]})
	}
	return out
}

// MonthlySummary aggregates one calendar month.
type MonthlySummary struct {
	Month string // YYYY-MM
	PeriodSummary
}

// MonthlySummaries returns per-month totals for the trailing number of
// months ending with the month containing end, newest first.
func MonthlySummaries(activities []store.Activity, months int, end time.Time) []MonthlySummary {
	byMonth := make(map[string]PeriodSummary)
	powerSum := make(map[string]float64)
	powerRides := make(map[string]int)
	for _, a := range activities {
		if a.IsPlaceholder() {
			continue
		}
		key := a.DateKey()[:7]
		s := byMonth[key]
		s.Rides++
		s.Distance += a.Distance
		s.MovingTime += a.Duration()
		s.Elevation += a.ElevationGain
		s.Load += a.TrainingLoad
		byMonth[key] = s
		if a.AvgPower != nil {
			powerSum[key] += *a.AvgPower
			powerRides[key]++
		}
	}
	for key, n := range powerRides {
		s := byMonth[key]
		s.AvgPower = powerSum[key] / float64(n)
		byMonth[key] = s
	}

	out := make([]MonthlySummary, 0, months)
	first := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	for i := 0; i < months; i++ {
		key := first.AddDate(0, -i, 0).Format("2006-01")
		out = append(out, MonthlySummary{Month: key, PeriodSummary: byMonth[key]})
	}
	return out
}

// weekStart returns the Monday of t's week.
func weekStart(t time.Time) time.Time {
	t = truncateDay(t)
	back := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -back)
}

// Completed filters out placeholder activities, preserving order.
func Completed(activities []store.Activity) []store.Activity {
	out := make([]store.Activity, 0, len(activities))
	for _, a := range activities {
		if !a.IsPlaceholder() {
			out = append(out, a)
		}
	}
	return out
}

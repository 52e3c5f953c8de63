package service

import (
	"time"

	"cycleiq/internal/analysis"
	"cycleiq/internal/store"
)

// QueryService answers read-only questions from the local snapshot. It never
// touches the network, so every view works offline.
type QueryService struct {
	db  *store.DB
	now func() time.Time
}

// NewQueryService creates a query service
func NewQueryService(db *store.DB) *QueryService {
	return &QueryService{db: db, now: time.Now}
}

// FitnessTrend reconstructs the daily CTL/ATL/TSB series for the trailing
// number of days, ending today.
func (q *QueryService) FitnessTrend(days int) ([]analysis.DailyLoadPoint, error) {
	now := q.now()
	start := now.AddDate(0, 0, -(days - 1))

	activities, err := q.db.ListActivities()
	if err != nil {
		return nil, err
	}

	// The wellness window reaches back past start to cover the seed search
	seedStart := start.AddDate(0, 0, -90)
	wellness, err := q.db.GetWellnessRange(seedStart.Format("2006-01-02"), now.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	return analysis.ReconstructLoadSeries(activities, wellness, start, now), nil
}

// RecentActivities returns the newest completed activities, up to limit.
// Placeholders stay in the snapshot but never appear in lists.
func (q *QueryService) RecentActivities(limit int) ([]store.Activity, error) {
	activities, err := q.db.ListActivities()
	if err != nil {
		return nil, err
	}

	completed := analysis.Completed(activities)
	if limit > 0 && len(completed) > limit {
		completed = completed[:limit]
	}
	return completed, nil
}

// WeekSummary aggregates the trailing 7 days of completed activities
func (q *QueryService) WeekSummary() (analysis.PeriodSummary, error) {
	activities, err := q.db.ListActivities()
	if err != nil {
		return analysis.PeriodSummary{}, err
	}
	now := q.now()
	return analysis.Summarize(activities, now.AddDate(0, 0, -6), now), nil
}

// WeeklyLoads returns per-week training load for the trailing weeks,
// oldest first.
func (q *QueryService) WeeklyLoads(weeks int) ([]analysis.WeeklyLoad, error) {
	activities, err := q.db.ListActivities()
	if err != nil {
		return nil, err
	}
	return analysis.WeeklyLoads(activities, weeks, q.now()), nil
}

// MonthlySummaries returns per-month totals for the trailing months,
// newest first.
func (q *QueryService) MonthlySummaries(months int) ([]analysis.MonthlySummary, error) {
	activities, err := q.db.ListActivities()
	if err != nil {
		return nil, err
	}
	return analysis.MonthlySummaries(activities, months, q.now()), nil
}

// LastSync returns the time of the last successful sync, zero if none
func (q *QueryService) LastSync() (time.Time, error) {
	snap, err := q.db.LoadSnapshot()
	if err != nil || snap == nil {
		return time.Time{}, err
	}
	return snap.LastSync, nil
}

// SyncHistory returns recent sync records, newest first
func (q *QueryService) SyncHistory() ([]store.SyncRecord, error) {
	return q.db.ListSyncHistory()
}

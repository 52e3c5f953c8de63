package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cycleiq/internal/store"
	"cycleiq/internal/strava"
)

// stravaImportKey tracks the timestamp of the last completed Strava import
const stravaImportKey = "strava_last_import"

// importBufferHours re-covers the tail of the previous import so activities
// uploaded late are not missed; re-fetched ones fall to the duplicate check
const importBufferHours = 48

// StravaLister is the slice of the Strava client the importer needs.
type StravaLister interface {
	GetAllActivities(ctx context.Context, after time.Time, onProgress func(fetched int)) ([]strava.Activity, error)
}

// importStore is the slice of the local store the importer needs.
type importStore interface {
	LoadSnapshot() (*store.Snapshot, error)
	SaveSnapshot(activities []store.Activity, lastSync time.Time) error
	GetSyncState(key string) (string, error)
	SetSyncState(key, value string) error
}

// ImportService pulls activities from a connected Strava account into the
// snapshot. Strava is a secondary source: rides already present from the
// primary source are detected by fuzzy match and skipped.
type ImportService struct {
	client StravaLister
	db     importStore
	now    func() time.Time
}

// NewImportService creates a Strava import service
func NewImportService(client StravaLister, db *store.DB) *ImportService {
	return &ImportService{client: client, db: db, now: time.Now}
}

// ImportResult summarizes a completed import
type ImportResult struct {
	Fetched    int
	Imported   int
	Duplicates int
	Persisted  bool
}

// Import fetches Strava activities newer than the last import and merges
// the non-duplicate ones into the snapshot.
func (s *ImportService) Import(ctx context.Context, onProgress func(fetched int)) (*ImportResult, error) {
	after, err := s.lastImport()
	if err != nil {
		return nil, err
	}

	fetched, err := s.client.GetAllActivities(ctx, after, onProgress)
	if err != nil {
		return nil, fmt.Errorf("fetching strava activities: %w", err)
	}

	snap, err := s.db.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	var existing []store.Activity
	lastSync := time.Time{}
	if snap != nil {
		existing = snap.Activities
		lastSync = snap.LastSync
	}

	result := &ImportResult{Fetched: len(fetched)}
	merged := append([]store.Activity(nil), existing...)
	for _, sa := range fetched {
		a := strava.ToActivity(sa)
		if strava.IsDuplicate(a, merged) {
			result.Duplicates++
			continue
		}
		merged = append(merged, a)
		result.Imported++
	}

	if result.Imported == 0 {
		result.Persisted = true
		return result, s.db.SetSyncState(stravaImportKey, s.now().UTC().Format(time.RFC3339))
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].StartDateLocal.After(merged[j].StartDateLocal)
	})

	switch err := s.db.SaveSnapshot(merged, lastSync); {
	case err == nil:
		result.Persisted = true
	case errors.Is(err, store.ErrCapacityExceeded):
		// Dropped silently. The marker stays put so the next import
		// re-fetches what was lost.
		return result, nil
	default:
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	return result, s.db.SetSyncState(stravaImportKey, s.now().UTC().Format(time.RFC3339))
}

func (s *ImportService) lastImport() (time.Time, error) {
	raw, err := s.db.GetSyncState(stravaImportKey)
	if err != nil || raw == "" {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return ts.Add(-importBufferHours * time.Hour), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"cycleiq/internal/store"
)

// Mode selects how far back a sync reaches.
type Mode int

const (
	// ModeAuto picks Incremental when a usable snapshot exists, Full otherwise
	ModeAuto Mode = iota
	ModeFull
	ModeIncremental
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeIncremental:
		return "incremental"
	default:
		return "auto"
	}
}

// ErrSyncInProgress is returned when a sync is requested while one is running
var ErrSyncInProgress = errors.New("sync already in progress")

const (
	// defaultPageLimit is the per-query item cap the source enforces
	defaultPageLimit = 100

	// fullSyncBufferDays pads the full-sync bound past January 1 of the
	// previous year so year-over-year views are populated on first sync
	fullSyncBufferDays = 7

	// incrementalBufferHours absorbs timezone skew and late-arriving edits
	incrementalBufferHours = 48

	// wellnessLookbackDays covers the reconstruction seed search plus a
	// year of charting
	wellnessLookbackDays = 400
)

// SourceClient is the remote API surface the orchestrator drives.
type SourceClient interface {
	ActivityLister
	GetWellness(ctx context.Context, oldest, newest time.Time) ([]store.WellnessEntry, error)
}

// syncStore is the slice of the local store the orchestrator needs.
type syncStore interface {
	LoadSnapshot() (*store.Snapshot, error)
	SaveSnapshot(activities []store.Activity, lastSync time.Time) error
	ClearSyncState(key string) error
	UpsertWellness(w *store.WellnessEntry) error
	AddSyncRecord(r *store.SyncRecord) error
}

// SyncService orchestrates fetching, merging, and persisting activities.
// Sync invocations for the same athlete are serialized: a second concurrent
// call is rejected rather than queued.
type SyncService struct {
	client SourceClient
	db     syncStore

	mu        sync.Mutex
	pageLimit int
	now       func() time.Time
}

// NewSyncService creates a sync service
func NewSyncService(client SourceClient, db *store.DB) *SyncService {
	return &SyncService{
		client:    client,
		db:        db,
		pageLimit: defaultPageLimit,
		now:       time.Now,
	}
}

// SyncProgress reports progress during a sync
type SyncProgress struct {
	Stage   string
	Fetched int
}

// SyncResult summarizes a completed sync
type SyncResult struct {
	Mode     Mode
	Fetched  int // activities returned by the walk
	Merged   int // size of the merged set
	Replaced int // stored activities overwritten by fresh versions

	GuardTripped bool
	Stalled      bool

	WellnessDays    int
	WellnessRefresh error // non-fatal; nil when the refresh succeeded

	// Persisted is false when the snapshot write was dropped because
	// storage is full. The merged data is still usable this session and
	// the next auto sync falls back to Full.
	Persisted bool

	Duration time.Duration
}

// Sync fetches remote activities and merges them into the local snapshot.
// A failed sync leaves the previous snapshot and sync timestamp untouched.
func (s *SyncService) Sync(ctx context.Context, mode Mode, onProgress func(SyncProgress)) (*SyncResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.mu.Unlock()

	started := s.now()
	progress := func(stage string, fetched int) {
		if onProgress != nil {
			onProgress(SyncProgress{Stage: stage, Fetched: fetched})
		}
	}

	snap, err := s.db.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	usable := snap != nil && len(snap.Activities) > 0 && !snap.LastSync.IsZero()
	if mode == ModeAuto {
		if usable {
			mode = ModeIncremental
		} else {
			mode = ModeFull
		}
	}
	if mode == ModeIncremental && !usable {
		mode = ModeFull
	}

	oldest := s.oldestBound(mode, snap, started)

	progress("fetching activities", 0)
	walk, err := WalkActivities(ctx, s.client, oldest, started, s.pageLimit, func(fetched int) {
		progress("fetching activities", fetched)
	})
	if err != nil {
		s.recordHistory(started, mode, 0, 0, true)
		return nil, err
	}

	result := &SyncResult{
		Mode:         mode,
		Fetched:      len(walk.Activities),
		GuardTripped: walk.GuardTripped,
		Stalled:      walk.Stalled,
	}

	var merged []store.Activity
	switch {
	case snap == nil:
		merged = walk.Activities
	case mode == ModeFull:
		// A full refresh rebuilds the primary set from scratch, but
		// imports from secondary sources are not covered by the walk
		// and must survive.
		var imports []store.Activity
		for _, a := range snap.Activities {
			if a.Source != store.SourceIntervals {
				imports = append(imports, a)
			}
		}
		merged, result.Replaced = mergeActivities(imports, walk.Activities)
	default:
		merged, result.Replaced = mergeActivities(snap.Activities, walk.Activities)
	}
	result.Merged = len(merged)

	progress("refreshing wellness", result.Fetched)
	wellnessDays, werr := s.refreshWellness(ctx, started)
	result.WellnessDays = wellnessDays
	result.WellnessRefresh = werr

	progress("saving", result.Fetched)
	switch err := s.db.SaveSnapshot(merged, started); {
	case err == nil:
		result.Persisted = true
	case errors.Is(err, store.ErrCapacityExceeded):
		// Dropped silently. Clearing the sync timestamp makes the next
		// auto sync treat the store as absent and go Full.
		s.db.ClearSyncState("last_sync")
	default:
		s.recordHistory(started, mode, result.Fetched, result.Merged, true)
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	s.recordHistory(started, mode, result.Fetched, result.Merged, false)
	result.Duration = s.now().Sub(started)
	return result, nil
}

// oldestBound computes the fetch window's inclusive oldest date.
func (s *SyncService) oldestBound(mode Mode, snap *store.Snapshot, now time.Time) time.Time {
	if mode == ModeIncremental && snap != nil {
		return snap.LastSync.Add(-incrementalBufferHours * time.Hour)
	}
	jan1 := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location())
	return jan1.AddDate(0, 0, -fullSyncBufferDays)
}

// mergeActivities combines the stored set with a freshly fetched window.
// Stored activities older than the window, or absent from the fresh ids,
// are retained; fresh versions replace stored ones with the same id.
func mergeActivities(stored, fresh []store.Activity) (merged []store.Activity, replaced int) {
	freshIDs := make(map[string]bool, len(fresh))
	for _, a := range fresh {
		freshIDs[a.ID] = true
	}

	merged = append(merged, fresh...)
	for _, a := range stored {
		// Fresh versions win for shared ids so edits propagate. Anything
		// the window did not cover, or that vanished upstream, is kept.
		if freshIDs[a.ID] {
			replaced++
			continue
		}
		merged = append(merged, a)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].StartDateLocal.Equal(merged[j].StartDateLocal) {
			return merged[i].ID < merged[j].ID
		}
		return merged[i].StartDateLocal.After(merged[j].StartDateLocal)
	})
	return merged, replaced
}

// refreshWellness pulls the wellness history window. Failures here never
// fail the sync; stale wellness only degrades the reconstruction seed.
func (s *SyncService) refreshWellness(ctx context.Context, now time.Time) (int, error) {
	entries, err := s.client.GetWellness(ctx, now.AddDate(0, 0, -wellnessLookbackDays), now)
	if err != nil {
		return 0, err
	}
	for i := range entries {
		if err := s.db.UpsertWellness(&entries[i]); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}

func (s *SyncService) recordHistory(at time.Time, mode Mode, fetched, merged int, errored bool) {
	// Best effort; history loss never fails a sync
	s.db.AddSyncRecord(&store.SyncRecord{
		At:      at,
		Mode:    mode.String(),
		Fetched: fetched,
		Merged:  merged,
		Errored: errored,
	})
}

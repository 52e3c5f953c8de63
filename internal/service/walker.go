package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cycleiq/internal/store"
)

// maxWalkPages bounds the backward walk so a misbehaving source cannot spin
// the loop forever.
const maxWalkPages = 30

// ActivityLister is the slice of the remote client the walker needs.
type ActivityLister interface {
	ListActivities(ctx context.Context, oldest, newest time.Time, limit int) ([]store.Activity, error)
}

// WalkResult is the outcome of a backward pagination walk.
type WalkResult struct {
	Activities []store.Activity // deduplicated, newest first

	Pages int

	// GuardTripped means the page guard fired before the window was
	// exhausted. The accumulated activities are still usable.
	GuardTripped bool

	// Stalled means a full page contributed zero new ids, which looks
	// like a non-advancing cursor upstream.
	Stalled bool
}

// WalkActivities fetches every activity in [oldest, newest] from a source
// that only serves up to limit items per windowed query and offers no
// cursor. It walks backward from newest, moving the window ceiling to one
// day before each full page's minimum start date. The one-day step-back
// means a boundary day can be re-queried but never skipped; duplicates are
// dropped by id.
func WalkActivities(ctx context.Context, lister ActivityLister, oldest, newest time.Time, limit int, onProgress func(fetched int)) (*WalkResult, error) {
	seen := make(map[string]store.Activity)
	result := &WalkResult{}
	ceiling := newest

	for result.Pages < maxWalkPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := lister.ListActivities(ctx, oldest, ceiling, limit)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", result.Pages+1, err)
		}
		result.Pages++

		if len(page) == 0 {
			return finishWalk(result, seen), nil
		}

		newItems := 0
		minStart := page[0].StartDateLocal
		for _, a := range page {
			if a.StartDateLocal.Before(minStart) {
				minStart = a.StartDateLocal
			}
			if _, ok := seen[a.ID]; !ok {
				seen[a.ID] = a
				newItems++
			}
		}

		if onProgress != nil {
			onProgress(len(seen))
		}

		if len(page) < limit {
			// Short page: the oldest part of the range is reached
			return finishWalk(result, seen), nil
		}

		if newItems == 0 {
			result.Stalled = true
			return finishWalk(result, seen), nil
		}

		minDay := time.Date(minStart.Year(), minStart.Month(), minStart.Day(), 0, 0, 0, 0, minStart.Location())
		if !minDay.After(oldest) {
			return finishWalk(result, seen), nil
		}
		ceiling = minDay.AddDate(0, 0, -1)
	}

	result.GuardTripped = true
	return finishWalk(result, seen), nil
}

func finishWalk(result *WalkResult, seen map[string]store.Activity) *WalkResult {
	activities := make([]store.Activity, 0, len(seen))
	for _, a := range seen {
		activities = append(activities, a)
	}
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].StartDateLocal.Equal(activities[j].StartDateLocal) {
			return activities[i].ID < activities[j].ID
		}
		return activities[i].StartDateLocal.After(activities[j].StartDateLocal)
	})
	result.Activities = activities
	return result
}

package strava

import (
	"fmt"
	"time"

	"cycleiq/internal/store"
)

// Fuzzy-match tolerances for spotting the same ride recorded twice
const (
	dupStartWindow    = 2 * time.Minute
	dupDurationWindow = 120 // seconds
)

// ToActivity converts a Strava activity into the canonical form. Strava ids
// get a source prefix so they can never collide with the primary source's ids.
func ToActivity(a Activity) store.Activity {
	out := store.Activity{
		ID:             fmt.Sprintf("strava_%d", a.ID),
		Name:           a.Name,
		Type:           mapSportType(firstNonEmpty(a.Type, a.SportType)),
		Source:         store.SourceStrava,
		StartDateLocal: wallClock(a.StartDateLocal),
		Distance:       a.Distance,
		MovingTime:     a.MovingTime,
		ElapsedTime:    a.ElapsedTime,
		ElevationGain:  a.TotalElevationGain,
		TrainingLoad:   a.SufferScore,
	}
	if out.Name == "" {
		out.Name = "Strava Activity"
	}

	if a.DeviceWatts {
		watts := a.WeightedAvgWatts
		if watts == 0 {
			watts = a.AverageWatts
		}
		if watts > 0 {
			out.AvgPower = &watts
		}
	}
	if a.AverageHeartrate > 0 {
		hr := a.AverageHeartrate
		out.AvgHeartRate = &hr
	}
	return out
}

// IsDuplicate reports whether the converted activity matches one already in
// the snapshot: start within two minutes and durations within tolerance (or
// either duration unknown). Same-id matches count too, covering re-imports.
func IsDuplicate(candidate store.Activity, existing []store.Activity) bool {
	dur := candidate.Duration()
	for _, a := range existing {
		if a.ID == candidate.ID {
			return true
		}
		delta := candidate.StartDateLocal.Sub(a.StartDateLocal)
		if delta < 0 {
			delta = -delta
		}
		if delta >= dupStartWindow {
			continue
		}
		aDur := a.Duration()
		if dur == 0 || aDur == 0 {
			return true
		}
		diff := dur - aDur
		if diff < 0 {
			diff = -diff
		}
		if diff < dupDurationWindow {
			return true
		}
	}
	return false
}

// wallClock strips the zone so the athlete's local day survives storage
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package analysis

import (
	"math"
	"time"

	"cycleiq/internal/store"
)

// EMA time constants in days. CTL tracks fitness, ATL tracks fatigue.
const (
	ctlDays = 42
	atlDays = 7
)

// defaultSeed is the neutral prior used when no wellness history exists. It
// converges quickly and avoids misleadingly large first-week deltas.
const defaultSeed = 30.0

// seedLookbackDays bounds the backward search for a wellness seed.
const seedLookbackDays = 90

// DailyLoadPoint is one day's reconstructed fitness state.
type DailyLoadPoint struct {
	Date string
	CTL  float64
	ATL  float64
	TSB  float64
}

// DailyLoads sums training load per calendar day. Placeholder activities
// contribute nothing.
func DailyLoads(activities []store.Activity) map[string]float64 {
	loads := make(map[string]float64)
	for _, a := range activities {
		if a.IsPlaceholder() {
			continue
		}
		loads[a.DateKey()] += a.TrainingLoad
	}
	return loads
}

// ReconstructLoadSeries produces one DailyLoadPoint per day in [start, end].
// Days with a real wellness entry adopt its values; gaps are filled by the
// EMA model, seeded from the most recent wellness entry before start.
func ReconstructLoadSeries(activities []store.Activity, wellness map[string]store.WellnessEntry, start, end time.Time) []DailyLoadPoint {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil
	}

	loads := DailyLoads(activities)
	ctl, atl := seedState(wellness, loads, start)

	var points []DailyLoadPoint
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")

		tsb := 0.0
		if w, ok := wellness[key]; ok && w.CTL != nil {
			// Real data always overrides the model. The running state
			// carries forward so a later gap continues from here.
			ctl = *w.CTL
			if w.ATL != nil {
				atl = *w.ATL
			}
			if w.TSB != nil {
				tsb = *w.TSB
			} else {
				tsb = ctl - atl
			}
		} else {
			ctl, atl = emaStep(ctl, atl, loads[key])
			tsb = ctl - atl
		}

		points = append(points, DailyLoadPoint{
			Date: key,
			CTL:  round1(ctl),
			ATL:  round1(atl),
			TSB:  round1(tsb),
		})
	}

	return points
}

// seedState finds the EMA starting values for the day before start. It
// searches back up to seedLookbackDays for the most recent wellness entry
// with a real CTL, then replays the model over the gap so the first
// displayed day reflects recent load rather than a cold start.
func seedState(wellness map[string]store.WellnessEntry, loads map[string]float64, start time.Time) (ctl, atl float64) {
	ctl, atl = defaultSeed, defaultSeed

	for k := 1; k <= seedLookbackDays; k++ {
		day := start.AddDate(0, 0, -k)
		w, ok := wellness[day.Format("2006-01-02")]
		if !ok || w.CTL == nil {
			continue
		}

		ctl = *w.CTL
		if w.ATL != nil {
			atl = *w.ATL
		}

		// Bridge: replay from the seed date up to the day before start.
		for d := day; d.Before(start); d = d.AddDate(0, 0, 1) {
			ctl, atl = emaStep(ctl, atl, loads[d.Format("2006-01-02")])
		}
		return ctl, atl
	}

	return ctl, atl
}

func emaStep(ctl, atl, load float64) (float64, float64) {
	return ctl + (load-ctl)/ctlDays, atl + (load-atl)/atlDays
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// round1 rounds to one decimal place. Internal accumulation stays at full
// precision; rounding happens only at emission.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormDescription interprets a TSB value for display
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (detraining risk)"
	case tsb > 5:
		return "Fresh (race ready)"
	case tsb > -10:
		return "Neutral (normal training)"
	case tsb > -30:
		return "Fatigued (productive training)"
	default:
		return "Very fatigued (overtraining risk)"
	}
}

package icu

import (
	"encoding/json"
	"fmt"
	"time"

	"cycleiq/internal/store"
)

// rawActivity mirrors the upstream activity JSON. The API has grown several
// generations of field names for the same metric, so every variant is decoded
// and resolved in toActivity.
type rawActivity struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
	Type string     `json:"type"`

	StartDateLocal string `json:"start_date_local"`
	StartDate      string `json:"start_date"`

	Distance    *float64 `json:"distance"`
	ICUDistance *float64 `json:"icu_distance"`

	MovingTime         *int `json:"moving_time"`
	ElapsedTime        *int `json:"elapsed_time"`
	MovingTimeSeconds  *int `json:"moving_time_seconds"`
	ElapsedTimeSeconds *int `json:"elapsed_time_seconds"`

	TotalElevationGain    *float64 `json:"total_elevation_gain"`
	ICUTotalElevationGain *float64 `json:"icu_total_elevation_gain"`

	ICUTrainingLoad     *float64 `json:"icu_training_load"`
	TSS                 *float64 `json:"tss"`
	TrainingStressScore *float64 `json:"training_stress_score"`

	ICUWeightedAvgWatts *float64 `json:"icu_weighted_avg_watts"`
	AverageWatts        *float64 `json:"average_watts"`
	ICUAverageWatts     *float64 `json:"icu_average_watts"`

	AverageHeartrate *float64 `json:"average_heartrate"`
}

// flexString decodes a JSON string or number id into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// toActivity resolves the variant field names into the canonical activity.
// Resolution happens once here; nothing downstream looks at raw fields.
func (r rawActivity) toActivity() (store.Activity, error) {
	a := store.Activity{
		ID:     string(r.ID),
		Name:   r.Name,
		Type:   r.Type,
		Source: store.SourceIntervals,
	}

	dateStr := r.StartDateLocal
	if dateStr == "" {
		dateStr = r.StartDate
	}
	if dateStr == "" {
		return a, fmt.Errorf("activity %s: no start date", a.ID)
	}
	t, err := parseWallClock(dateStr)
	if err != nil {
		return a, fmt.Errorf("activity %s: parsing start date %q: %w", a.ID, dateStr, err)
	}
	a.StartDateLocal = t

	a.Distance = firstFloat(r.Distance, r.ICUDistance)
	a.MovingTime = firstInt(r.MovingTime, r.ElapsedTime, r.MovingTimeSeconds, r.ElapsedTimeSeconds)
	a.ElapsedTime = firstInt(r.ElapsedTime, r.ElapsedTimeSeconds)
	a.ElevationGain = firstFloat(r.TotalElevationGain, r.ICUTotalElevationGain)
	a.TrainingLoad = firstFloat(r.ICUTrainingLoad, r.TSS, r.TrainingStressScore)

	if p := firstFloatPtr(r.ICUWeightedAvgWatts, r.AverageWatts, r.ICUAverageWatts); p != nil {
		a.AvgPower = p
	}
	if r.AverageHeartrate != nil && *r.AverageHeartrate > 0 {
		a.AvgHeartRate = r.AverageHeartrate
	}

	return a, nil
}

// parseWallClock reads an upstream timestamp as a wall-clock time. Zone
// suffixes are cut, not converted: converting to UTC shifts late-evening
// rides onto the wrong day for athletes east of UTC.
func parseWallClock(s string) (time.Time, error) {
	if len(s) > 19 {
		s = s[:19]
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// The first* resolvers skip zero as well as null: the API serves zero for
// metrics a generation of the schema never recorded, so a present-but-zero
// key must fall through to the next candidate.
func firstFloat(ptrs ...*float64) float64 {
	if p := firstFloatPtr(ptrs...); p != nil {
		return *p
	}
	return 0
}

func firstFloatPtr(ptrs ...*float64) *float64 {
	for _, p := range ptrs {
		if p != nil && *p != 0 {
			return p
		}
	}
	return nil
}

func firstInt(ptrs ...*int) int {
	for _, p := range ptrs {
		if p != nil && *p != 0 {
			return *p
		}
	}
	return 0
}

// decodeActivities accepts both response envelopes the API serves: a bare
// array, or an object wrapping the array under "activities" or "list".
func decodeActivities(data []byte) ([]rawActivity, error) {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			var raw []rawActivity
			if err := json.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("decoding activity array: %w", err)
			}
			return raw, nil
		default:
			var envelope struct {
				Activities []rawActivity `json:"activities"`
				List       []rawActivity `json:"list"`
			}
			if err := json.Unmarshal(data, &envelope); err != nil {
				return nil, fmt.Errorf("decoding activity envelope: %w", err)
			}
			if envelope.Activities != nil {
				return envelope.Activities, nil
			}
			return envelope.List, nil
		}
	}
	return nil, nil
}

// Stream is one recorded sample series for an activity, e.g. "watts" or
// "heartrate". Samples are aligned across streams of the same activity.
type Stream struct {
	Type string    `json:"type"`
	Data []float64 `json:"data"`
}

// rawWellness mirrors an upstream wellness day. The id is the date.
type rawWellness struct {
	ID        string   `json:"id"`
	CTL       *float64 `json:"ctl"`
	ATL       *float64 `json:"atl"`
	TSB       *float64 `json:"tsb"`
	RestingHR *float64 `json:"restingHR"`
	HRV       *float64 `json:"hrv"`
	SleepSecs *float64 `json:"sleepSecs"`
	Weight    *float64 `json:"weight"`
}

func (r rawWellness) toEntry() store.WellnessEntry {
	return store.WellnessEntry{
		Date:      r.ID,
		CTL:       r.CTL,
		ATL:       r.ATL,
		TSB:       r.TSB,
		RestingHR: r.RestingHR,
		HRV:       r.HRV,
		SleepSecs: r.SleepSecs,
		Weight:    r.Weight,
	}
}

func formatDay(t time.Time) string {
	return t.Format("2006-01-02")
}

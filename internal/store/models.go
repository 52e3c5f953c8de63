package store

import "time"

// Activity is one recorded or planned session, with metrics already resolved
// from the source's variant field names at ingestion time.
type Activity struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Type           string    `db:"type"` // sport type, e.g. "Ride", "VirtualRide"
	Source         string    `db:"source"`
	StartDateLocal time.Time `db:"start_date_local"` // wall clock; authoritative for day bucketing
	Distance       float64   `db:"distance"`     // meters
	MovingTime     int       `db:"moving_time"`  // seconds
	ElapsedTime    int       `db:"elapsed_time"` // seconds
	ElevationGain  float64   `db:"elevation_gain"`
	TrainingLoad   float64   `db:"training_load"`
	AvgPower       *float64  `db:"avg_power"`      // watts, weighted where available
	AvgHeartRate   *float64  `db:"avg_heartrate"`  // bpm
}

// Activity sources
const (
	SourceIntervals = "intervals"
	SourceStrava    = "strava"
)

// DateKey returns the local calendar day this activity belongs to.
// The local timestamp is never converted to UTC here: doing so shifts day
// attribution for athletes east of UTC.
func (a Activity) DateKey() string {
	return a.StartDateLocal.Format("2006-01-02")
}

// Duration returns moving time, falling back to elapsed time.
func (a Activity) Duration() int {
	if a.MovingTime > 0 {
		return a.MovingTime
	}
	return a.ElapsedTime
}

// IsPlaceholder reports whether this is a planned-but-not-completed calendar
// entry: a valid date but no recorded distance, time, or load. Placeholders
// stay in the snapshot but are excluded from all aggregates.
func (a Activity) IsPlaceholder() bool {
	return a.Distance == 0 && a.Duration() == 0 && a.TrainingLoad == 0
}

// WellnessEntry is one calendar day's fitness snapshot from the source.
// Days are sparse; gaps are expected and bridged by the reconstructor.
type WellnessEntry struct {
	Date      string   `db:"date"` // YYYY-MM-DD, the source's id
	CTL       *float64 `db:"ctl"`
	ATL       *float64 `db:"atl"`
	TSB       *float64 `db:"tsb"`
	RestingHR *float64 `db:"resting_hr"`
	HRV       *float64 `db:"hrv"`
	SleepSecs *float64 `db:"sleep_secs"`
	Weight    *float64 `db:"weight"`
}

// FormBalance returns the entry's TSB, deriving ctl - atl when the source
// omitted it.
func (w WellnessEntry) FormBalance() float64 {
	if w.TSB != nil {
		return *w.TSB
	}
	var ctl, atl float64
	if w.CTL != nil {
		ctl = *w.CTL
	}
	if w.ATL != nil {
		atl = *w.ATL
	}
	return ctl - atl
}

// Snapshot is the persisted result of the last successful sync.
type Snapshot struct {
	Activities []Activity
	LastSync   time.Time
}

// StravaAuth holds OAuth tokens for the Strava import source
type StravaAuth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// SyncRecord is one entry in the persisted sync history.
type SyncRecord struct {
	At       time.Time `db:"at"`
	Mode     string    `db:"mode"` // "full", "incremental", "strava"
	Fetched  int       `db:"fetched"`
	Merged   int       `db:"merged"`
	Errored  bool      `db:"errored"`
}

package store

import "database/sql"

// UpsertWellness inserts or updates a wellness entry for its day
func (db *DB) UpsertWellness(w *WellnessEntry) error {
	_, err := db.Exec(`
		INSERT INTO wellness (
			date, ctl, atl, tsb, resting_hr, hrv, sleep_secs, weight, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET
			ctl = excluded.ctl,
			atl = excluded.atl,
			tsb = excluded.tsb,
			resting_hr = excluded.resting_hr,
			hrv = excluded.hrv,
			sleep_secs = excluded.sleep_secs,
			weight = excluded.weight,
			updated_at = CURRENT_TIMESTAMP
	`, w.Date, w.CTL, w.ATL, w.TSB, w.RestingHR, w.HRV, w.SleepSecs, w.Weight)
	return err
}

// GetWellnessRange returns wellness entries keyed by date for [oldest, newest].
// Missing days are simply absent from the map.
func (db *DB) GetWellnessRange(oldest, newest string) (map[string]WellnessEntry, error) {
	rows, err := db.Query(`
		SELECT date, ctl, atl, tsb, resting_hr, hrv, sleep_secs, weight
		FROM wellness
		WHERE date >= ? AND date <= ?
		ORDER BY date
	`, oldest, newest)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]WellnessEntry)
	for rows.Next() {
		var w WellnessEntry
		if err := scanWellness(rows, &w); err != nil {
			return nil, err
		}
		entries[w.Date] = w
	}
	return entries, rows.Err()
}

func scanWellness(rows *sql.Rows, w *WellnessEntry) error {
	return rows.Scan(&w.Date, &w.CTL, &w.ATL, &w.TSB, &w.RestingHR, &w.HRV, &w.SleepSecs, &w.Weight)
}

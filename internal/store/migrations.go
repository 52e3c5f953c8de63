package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Activities snapshot (summary data from the remote sources)
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			source TEXT NOT NULL,
			start_date_local TEXT NOT NULL,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			elapsed_time INTEGER NOT NULL,
			elevation_gain REAL NOT NULL,
			training_load REAL NOT NULL,
			avg_power REAL,
			avg_heartrate REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_start_date ON activities(start_date_local)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(type)`,

		// Wellness (one row per calendar day, sparse)
		`CREATE TABLE IF NOT EXISTS wellness (
			date TEXT PRIMARY KEY,
			ctl REAL,
			atl REAL,
			tsb REAL,
			resting_hr REAL,
			hrv REAL,
			sleep_secs REAL,
			weight REAL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sync state (key-value pairs for tracking sync progress)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sync history (capped, newest first)
		`CREATE TABLE IF NOT EXISTS sync_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			mode TEXT NOT NULL,
			fetched INTEGER NOT NULL,
			merged INTEGER NOT NULL,
			errored INTEGER NOT NULL DEFAULT 0
		)`,

		// Strava OAuth tokens (singleton row)
		`CREATE TABLE IF NOT EXISTS strava_auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCapacityExceeded is returned when the snapshot cannot be persisted
// because the underlying storage is out of space.
var ErrCapacityExceeded = errors.New("storage capacity exceeded")

const lastSyncKey = "last_sync"

// LoadSnapshot returns the persisted snapshot, or nil if no sync has ever
// completed.
func (db *DB) LoadSnapshot() (*Snapshot, error) {
	lastSync, err := db.GetSyncState(lastSyncKey)
	if err != nil {
		return nil, fmt.Errorf("reading last sync: %w", err)
	}
	if lastSync == "" {
		return nil, nil
	}

	ts, err := time.Parse(time.RFC3339, lastSync)
	if err != nil {
		return nil, fmt.Errorf("parsing last sync time: %w", err)
	}

	activities, err := db.ListActivities()
	if err != nil {
		return nil, err
	}

	return &Snapshot{Activities: activities, LastSync: ts}, nil
}

// SaveSnapshot atomically replaces the stored activity set and records the
// sync timestamp. On a full disk it returns ErrCapacityExceeded and leaves
// the previous snapshot in place.
func (db *DB) SaveSnapshot(activities []Activity, lastSync time.Time) error {
	tx, err := db.Begin()
	if err != nil {
		return capacityErr(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM activities`); err != nil {
		return capacityErr(err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO activities (
			id, name, type, source, start_date_local,
			distance, moving_time, elapsed_time, elevation_gain,
			training_load, avg_power, avg_heartrate, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return capacityErr(err)
	}
	defer stmt.Close()

	for _, a := range activities {
		_, err := stmt.Exec(
			a.ID, a.Name, a.Type, a.Source,
			a.StartDateLocal.Format("2006-01-02T15:04:05"),
			a.Distance, a.MovingTime, a.ElapsedTime, a.ElevationGain,
			a.TrainingLoad, a.AvgPower, a.AvgHeartRate,
		)
		if err != nil {
			return capacityErr(err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, lastSyncKey, lastSync.UTC().Format(time.RFC3339)); err != nil {
		return capacityErr(err)
	}

	if err := tx.Commit(); err != nil {
		return capacityErr(err)
	}
	return nil
}

// ListActivities returns all stored activities ordered newest first.
func (db *DB) ListActivities() ([]Activity, error) {
	rows, err := db.Query(`
		SELECT id, name, type, source, start_date_local,
			distance, moving_time, elapsed_time, elevation_gain,
			training_load, avg_power, avg_heartrate
		FROM activities
		ORDER BY start_date_local DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ListActivitiesSince returns stored activities on or after the given day,
// ordered newest first.
func (db *DB) ListActivitiesSince(oldest time.Time) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT id, name, type, source, start_date_local,
			distance, moving_time, elapsed_time, elevation_gain,
			training_load, avg_power, avg_heartrate
		FROM activities
		WHERE start_date_local >= ?
		ORDER BY start_date_local DESC
	`, oldest.Format("2006-01-02T15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

func scanActivities(rows *sql.Rows) ([]Activity, error) {
	var activities []Activity
	for rows.Next() {
		var a Activity
		var startLocal string
		err := rows.Scan(
			&a.ID, &a.Name, &a.Type, &a.Source, &startLocal,
			&a.Distance, &a.MovingTime, &a.ElapsedTime, &a.ElevationGain,
			&a.TrainingLoad, &a.AvgPower, &a.AvgHeartRate,
		)
		if err != nil {
			return nil, err
		}
		a.StartDateLocal, err = parseLocalTime(startLocal)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// parseLocalTime reads a stored wall-clock timestamp. No zone conversion:
// the local day the athlete saw is the day we bucket by.
func parseLocalTime(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// capacityErr maps SQLite's disk-full errors to ErrCapacityExceeded and
// passes everything else through.
func capacityErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "database or disk is full") || strings.Contains(msg, "disk I/O error") {
		return fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
	}
	return err
}

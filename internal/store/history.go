package store

import "time"

// maxSyncHistory caps the persisted sync history
const maxSyncHistory = 20

// AddSyncRecord appends a sync record and trims the history to its cap
func (db *DB) AddSyncRecord(r *SyncRecord) error {
	_, err := db.Exec(`
		INSERT INTO sync_history (at, mode, fetched, merged, errored)
		VALUES (?, ?, ?, ?, ?)
	`, r.At.UTC().Format(time.RFC3339), r.Mode, r.Fetched, r.Merged, boolToInt(r.Errored))
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		DELETE FROM sync_history
		WHERE id NOT IN (
			SELECT id FROM sync_history ORDER BY id DESC LIMIT ?
		)
	`, maxSyncHistory)
	return err
}

// ListSyncHistory returns sync records newest first
func (db *DB) ListSyncHistory() ([]SyncRecord, error) {
	rows, err := db.Query(`
		SELECT at, mode, fetched, merged, errored
		FROM sync_history
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SyncRecord
	for rows.Next() {
		var r SyncRecord
		var at string
		var errored int
		if err := rows.Scan(&at, &r.Mode, &r.Fetched, &r.Merged, &errored); err != nil {
			return nil, err
		}
		r.At, err = time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, err
		}
		r.Errored = errored != 0
		records = append(records, r)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

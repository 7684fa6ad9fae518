package persist

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"polisee/internal/store"
)

// StorageKey names the single row holding the aggregate snapshot.
const StorageKey = "polisee_storage_v1"

// ErrSave marks a failed snapshot write. Mutations still take effect in
// memory; callers surface the warning instead of rolling back.
var ErrSave = errors.New("snapshot save failed")

// Adapter persists the whole aggregate as one JSON blob keyed by
// StorageKey. One row, replaced on every save.
type Adapter struct {
	DB  *sql.DB
	Now func() time.Time
}

// Load reads the stored snapshot. A missing row or an unparseable payload
// both yield an empty snapshot with no error: corrupt state degrades to a
// fresh start rather than blocking the application.
func (a Adapter) Load() (store.Snapshot, error) {
	var payload string
	err := a.DB.QueryRow(`SELECT payload_json FROM snapshots WHERE key=?`, StorageKey).Scan(&payload)
	if err == sql.ErrNoRows {
		return store.Empty(), nil
	}
	if err != nil {
		return store.Empty(), fmt.Errorf("load snapshot: %w", err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return store.Empty(), nil
	}
	snap.Normalize()
	return snap, nil
}

// Save serializes the snapshot and replaces the stored row. Failures are
// reported as ErrSave so callers can warn without discarding the mutation.
func (a Adapter) Save(snap store.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrSave, err)
	}
	now := a.Now
	if now == nil {
		now = time.Now
	}
	_, err = a.DB.Exec(`
		INSERT INTO snapshots(key, payload_json, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload_json=excluded.payload_json, saved_at=excluded.saved_at
	`, StorageKey, string(payload), now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSave, err)
	}
	return nil
}

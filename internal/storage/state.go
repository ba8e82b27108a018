// Package storage persists the last known brightness of each device so it
// can be restored later.
package storage

import (
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/brightctl/internal/brightness"
)

// Saved is a stored brightness snapshot.
type Saved struct {
	Class     string
	ID        string
	Value     int64
	Max       int64
	UpdatedAt time.Time
}

// Store keeps the last known brightness keyed by (class, id).
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new state store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save records the device's current brightness, replacing any previous entry.
func (s *Store) Save(d brightness.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Unix()

	_, err := s.db.Exec(`
		INSERT INTO brightness_state (class, id, value, max, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(class, id) DO UPDATE SET
			value = excluded.value,
			max = excluded.max,
			updated_at = excluded.updated_at
	`, d.Class, d.ID, d.Current, d.Max, now)

	if err == nil {
		log.Debug().
			Str("class", d.Class).
			Str("device", d.ID).
			Int64("value", d.Current).
			Msg("Brightness saved")
	}

	return err
}

// Load returns the saved snapshot for a device.
// ok is false if nothing was saved.
func (s *Store) Load(class, id string) (saved Saved, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var updatedAt int64
	err = s.db.QueryRow(`
		SELECT class, id, value, max, updated_at FROM brightness_state
		WHERE class = ? AND id = ?
	`, class, id).Scan(&saved.Class, &saved.ID, &saved.Value, &saved.Max, &updatedAt)

	if err == sql.ErrNoRows {
		return Saved{}, false, nil
	}
	if err != nil {
		return Saved{}, false, err
	}

	saved.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return saved, true, nil
}

// Delete removes the saved snapshot for a device.
func (s *Store) Delete(class, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		DELETE FROM brightness_state WHERE class = ? AND id = ?
	`, class, id)

	return err
}

// Clear removes all saved state for a class. If class is empty, clears everything.
func (s *Store) Clear(class string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if class == "" {
		_, err = s.db.Exec(`DELETE FROM brightness_state`)
	} else {
		_, err = s.db.Exec(`DELETE FROM brightness_state WHERE class = ?`, class)
	}

	return err
}

// List returns all saved snapshots ordered by class and id.
func (s *Store) List() ([]Saved, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT class, id, value, max, updated_at FROM brightness_state
		ORDER BY class, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Saved
	for rows.Next() {
		var saved Saved
		var updatedAt int64

		if err := rows.Scan(&saved.Class, &saved.ID, &saved.Value, &saved.Max, &updatedAt); err != nil {
			return nil, err
		}

		saved.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		result = append(result, saved)
	}

	return result, rows.Err()
}

// Package ledger provides an append-only history of brightness changes.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dokzlo13/brightctl/internal/brightness"
)

// Source identifies what requested a change
type Source string

const (
	SourceSet     Source = "set"
	SourceRestore Source = "restore"
)

// Change represents a single recorded brightness change
type Change struct {
	ID        uuid.UUID
	Timestamp time.Time
	Class     string
	DeviceID  string
	Source    Source
	Update    string // Update expression as typed, normalized
	Previous  int64
	Target    int64
	Minimum   int64
	Value     int64
	Max       int64
	Outcome   brightness.Outcome
	Error     string
}

// FromResult builds a Change from an executed plan
func FromResult(source Source, res brightness.Result) Change {
	c := Change{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Class:     res.Plan.Device.Class,
		DeviceID:  res.Plan.Device.ID,
		Source:    source,
		Update:    res.Plan.Update.String(),
		Previous:  res.Plan.Device.Current,
		Target:    res.Plan.Target,
		Minimum:   res.Plan.Minimum,
		Value:     res.Plan.Value,
		Max:       res.Plan.Device.Max,
		Outcome:   res.Outcome,
	}
	if res.Err != nil {
		c.Error = res.Err.Error()
	}
	return c
}

// Ledger provides append-only change logging
type Ledger struct {
	db *sql.DB
}

// New creates a new Ledger using the provided database connection
func New(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// Append adds a change to the ledger. A nil ID is replaced with a fresh one.
func (l *Ledger) Append(c *Change) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}

	var errText sql.NullString
	if c.Error != "" {
		errText = sql.NullString{String: c.Error, Valid: true}
	}

	_, err := l.db.Exec(`
		INSERT INTO change_ledger (
			change_id, timestamp, class, device_id, source, update_expr,
			previous, target, minimum, value, max, outcome, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID.String(), c.Timestamp.UnixNano(), c.Class, c.DeviceID, string(c.Source), c.Update,
		c.Previous, c.Target, c.Minimum, c.Value, c.Max, c.Outcome.String(), errText)
	if err != nil {
		return fmt.Errorf("failed to append change: %w", err)
	}

	return nil
}

// Recent returns the newest changes first
func (l *Ledger) Recent(limit int) ([]*Change, error) {
	rows, err := l.db.Query(`
		SELECT change_id, timestamp, class, device_id, source, update_expr,
			previous, target, minimum, value, max, outcome, error
		FROM change_ledger
		ORDER BY timestamp DESC, seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return l.scanChanges(rows)
}

// ForDevice returns the newest changes of one device first
func (l *Ledger) ForDevice(class, id string, limit int) ([]*Change, error) {
	rows, err := l.db.Query(`
		SELECT change_id, timestamp, class, device_id, source, update_expr,
			previous, target, minimum, value, max, outcome, error
		FROM change_ledger
		WHERE class = ? AND device_id = ?
		ORDER BY timestamp DESC, seq DESC
		LIMIT ?
	`, class, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return l.scanChanges(rows)
}

// DeleteOlderThan removes entries older than the specified duration (retention policy)
func (l *Ledger) DeleteOlderThan(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UnixNano()
	result, err := l.db.Exec(`
		DELETE FROM change_ledger WHERE timestamp < ?
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (l *Ledger) scanChanges(rows *sql.Rows) ([]*Change, error) {
	var changes []*Change
	for rows.Next() {
		var c Change
		var id, source, outcome string
		var errText sql.NullString
		var timestamp int64

		err := rows.Scan(
			&id, &timestamp, &c.Class, &c.DeviceID, &source, &c.Update,
			&c.Previous, &c.Target, &c.Minimum, &c.Value, &c.Max, &outcome, &errText,
		)
		if err != nil {
			return nil, err
		}

		c.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("failed to parse change id %q: %w", id, err)
		}
		c.Timestamp = time.Unix(0, timestamp).UTC()
		c.Source = Source(source)
		c.Outcome = parseOutcome(outcome)
		if errText.Valid {
			c.Error = errText.String
		}

		changes = append(changes, &c)
	}

	return changes, rows.Err()
}

func parseOutcome(s string) brightness.Outcome {
	switch s {
	case brightness.OutcomePretended.String():
		return brightness.OutcomePretended
	case brightness.OutcomeFailed.String():
		return brightness.OutcomeFailed
	default:
		return brightness.OutcomeApplied
	}
}

package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dokzlo13/brightctl/internal/brightness"
	"github.com/dokzlo13/brightctl/internal/db"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "ledger.sqlite"))
	if err != nil {
		t.Fatalf("db.Open error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return New(database.DB)
}

type failingWriter struct{}

func (failingWriter) Write(context.Context, brightness.Device, int64) (brightness.Device, error) {
	return brightness.Device{}, errors.New("read-only file system")
}

func TestFromResult(t *testing.T) {
	d := brightness.Device{ID: "intel", Class: "backlight", Current: 100, Max: 200}
	plan := brightness.NewPlan(d, brightness.Relative(-70), brightness.Direct(1))
	res := brightness.Apply(context.Background(), failingWriter{}, plan, false)

	c := FromResult(SourceSet, res)
	if c.ID == uuid.Nil {
		t.Error("ID should be generated")
	}
	if c.Update != "70%-" {
		t.Errorf("Update = %q, want 70%%-", c.Update)
	}
	if c.Previous != 100 || c.Target != 0 || c.Minimum != 1 || c.Value != 1 || c.Max != 200 {
		t.Errorf("Change values = %+v", c)
	}
	if c.Outcome != brightness.OutcomeFailed || c.Error == "" {
		t.Errorf("Outcome = %v, Error = %q", c.Outcome, c.Error)
	}
}

func TestLedger_AppendRecent(t *testing.T) {
	l := newTestLedger(t)

	base := time.Now().UTC().Add(-time.Minute)
	for i, outcome := range []brightness.Outcome{
		brightness.OutcomeApplied,
		brightness.OutcomePretended,
		brightness.OutcomeFailed,
	} {
		c := &Change{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Class:     "backlight",
			DeviceID:  "intel",
			Source:    SourceSet,
			Update:    "10%+",
			Previous:  int64(i),
			Value:     int64(i + 1),
			Max:       100,
			Outcome:   outcome,
		}
		if outcome == brightness.OutcomeFailed {
			c.Error = "boom"
		}
		if err := l.Append(c); err != nil {
			t.Fatalf("Append error = %v", err)
		}
		if c.ID == uuid.Nil {
			t.Error("Append should assign an ID")
		}
	}

	other := &Change{Class: "leds", DeviceID: "kbd", Source: SourceRestore, Update: "1", Value: 1, Max: 3}
	if err := l.Append(other); err != nil {
		t.Fatalf("Append error = %v", err)
	}

	recent, err := l.Recent(10)
	if err != nil {
		t.Fatalf("Recent error = %v", err)
	}
	if len(recent) != 4 {
		t.Fatalf("Recent len = %d, want 4", len(recent))
	}
	if recent[0].ID != other.ID || recent[0].Source != SourceRestore {
		t.Errorf("newest entry = %+v, want the restore", recent[0])
	}
	if recent[1].Outcome != brightness.OutcomeFailed || recent[1].Error != "boom" {
		t.Errorf("recent[1] = %+v", recent[1])
	}
	if recent[2].Outcome != brightness.OutcomePretended {
		t.Errorf("recent[2].Outcome = %v", recent[2].Outcome)
	}

	limited, err := l.Recent(2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("Recent(2) = %d entries, err %v", len(limited), err)
	}

	mine, err := l.ForDevice("backlight", "intel", 10)
	if err != nil {
		t.Fatalf("ForDevice error = %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("ForDevice len = %d, want 3", len(mine))
	}
}

func TestLedger_DeleteOlderThan(t *testing.T) {
	l := newTestLedger(t)

	old := &Change{Timestamp: time.Now().Add(-48 * time.Hour), Class: "leds", DeviceID: "a", Source: SourceSet, Update: "1", Max: 1}
	fresh := &Change{Class: "leds", DeviceID: "b", Source: SourceSet, Update: "1", Max: 1}
	for _, c := range []*Change{old, fresh} {
		if err := l.Append(c); err != nil {
			t.Fatalf("Append error = %v", err)
		}
	}

	n, err := l.DeleteOlderThan(24 * time.Hour)
	if err != nil {
		t.Fatalf("DeleteOlderThan error = %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	recent, _ := l.Recent(10)
	if len(recent) != 1 || recent[0].DeviceID != "b" {
		t.Errorf("remaining = %+v", recent)
	}
}

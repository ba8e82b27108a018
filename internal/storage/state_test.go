package storage

import (
	"path/filepath"
	"testing"

	"github.com/dokzlo13/brightctl/internal/brightness"
	"github.com/dokzlo13/brightctl/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "state.sqlite"))
	if err != nil {
		t.Fatalf("db.Open error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database.DB)
}

func TestStore_SaveLoad(t *testing.T) {
	s := newTestStore(t)

	if _, ok, err := s.Load("backlight", "intel"); err != nil || ok {
		t.Fatalf("Load on empty store = ok %v, err %v", ok, err)
	}

	d := brightness.Device{ID: "intel", Class: "backlight", Current: 300, Max: 1000}
	if err := s.Save(d); err != nil {
		t.Fatalf("Save error = %v", err)
	}

	saved, ok, err := s.Load("backlight", "intel")
	if err != nil || !ok {
		t.Fatalf("Load = ok %v, err %v", ok, err)
	}
	if saved.Value != 300 || saved.Max != 1000 {
		t.Errorf("Load = %+v", saved)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}

	d.Current = 450
	if err := s.Save(d); err != nil {
		t.Fatalf("Save (overwrite) error = %v", err)
	}
	saved, _, _ = s.Load("backlight", "intel")
	if saved.Value != 450 {
		t.Errorf("Value after overwrite = %d, want 450", saved.Value)
	}
}

func TestStore_ListDeleteClear(t *testing.T) {
	s := newTestStore(t)

	devices := []brightness.Device{
		{ID: "kbd", Class: "leds", Current: 1, Max: 3},
		{ID: "intel", Class: "backlight", Current: 10, Max: 100},
		{ID: "caps", Class: "leds", Current: 0, Max: 1},
	}
	for _, d := range devices {
		if err := s.Save(d); err != nil {
			t.Fatalf("Save error = %v", err)
		}
	}

	all, err := s.List()
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List len = %d, want 3", len(all))
	}
	if all[0].Class != "backlight" || all[1].ID != "caps" || all[2].ID != "kbd" {
		t.Errorf("List order = %+v", all)
	}

	if err := s.Delete("leds", "kbd"); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, ok, _ := s.Load("leds", "kbd"); ok {
		t.Error("kbd should be deleted")
	}

	if err := s.Clear("leds"); err != nil {
		t.Fatalf("Clear error = %v", err)
	}
	all, _ = s.List()
	if len(all) != 1 || all[0].ID != "intel" {
		t.Errorf("after Clear(leds) = %+v", all)
	}

	if err := s.Clear(""); err != nil {
		t.Fatalf("Clear(all) error = %v", err)
	}
	all, _ = s.List()
	if len(all) != 0 {
		t.Errorf("after Clear(\"\") = %+v", all)
	}
}

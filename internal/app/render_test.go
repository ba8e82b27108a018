package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dokzlo13/brightctl/internal/brightness"
	"github.com/dokzlo13/brightctl/internal/ledger"
	"github.com/dokzlo13/brightctl/internal/storage"
)

func TestWriteDevice(t *testing.T) {
	d := brightness.Device{ID: "intel_backlight", Class: "backlight", Current: 100, Max: 200}

	tests := []struct {
		name    string
		machine bool
		want    string
	}{
		{
			name:    "machine readable",
			machine: true,
			want:    "intel_backlight,backlight,100,50%,200\n",
		},
		{
			name: "human readable",
			want: "Device 'intel_backlight' of class 'backlight':\n\tCurrent brightness: 100 (50%)\n\tMax brightness: 200\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			WriteDevice(&buf, d, tt.machine)
			if got := buf.String(); got != tt.want {
				t.Errorf("WriteDevice() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteDevices(t *testing.T) {
	devices := []brightness.Device{
		{ID: "intel_backlight", Class: "backlight", Current: 100, Max: 200},
		{ID: "capslock", Class: "leds", Current: 1, Max: 1},
	}

	var csv bytes.Buffer
	WriteDevices(&csv, devices, true)
	want := "intel_backlight,backlight,100,50%,200\ncapslock,leds,1,100%,1\n"
	if csv.String() != want {
		t.Errorf("WriteDevices(machine) = %q, want %q", csv.String(), want)
	}

	var tbl bytes.Buffer
	WriteDevices(&tbl, devices, false)
	out := tbl.String()
	for _, s := range []string{"DEVICE", "intel_backlight", "capslock", "50%", "100%"} {
		if !strings.Contains(out, s) {
			t.Errorf("WriteDevices(table) missing %q in:\n%s", s, out)
		}
	}
}

func TestWriteResult(t *testing.T) {
	d := brightness.Device{ID: "kbd", Class: "leds", Current: 1, Max: 3}
	plan := brightness.NewPlan(d, brightness.Direct(3), brightness.Direct(1))

	tests := []struct {
		name    string
		res     brightness.Result
		machine bool
		want    string
	}{
		{
			name: "pretended",
			res:  brightness.Result{Plan: plan, Outcome: brightness.OutcomePretended, Device: d},
			want: "Would set leds 'kbd' brightness to 3\n",
		},
		{
			name:    "pretended machine readable",
			res:     brightness.Result{Plan: plan, Outcome: brightness.OutcomePretended, Device: d},
			machine: true,
			want:    "kbd,leds,3,100%,3\n",
		},
		{
			name:    "applied",
			res:     brightness.Result{Plan: plan, Outcome: brightness.OutcomeApplied, Device: brightness.Device{ID: "kbd", Class: "leds", Current: 3, Max: 3}},
			machine: true,
			want:    "kbd,leds,3,100%,3\n",
		},
		{
			name: "failed prints nothing",
			res:  brightness.Result{Plan: plan, Outcome: brightness.OutcomeFailed, Device: d},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			WriteResult(&buf, tt.res, tt.machine)
			if got := buf.String(); got != tt.want {
				t.Errorf("WriteResult() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteHistory(t *testing.T) {
	id := uuid.MustParse("6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10")
	changes := []*ledger.Change{{
		ID:        id,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Class:     "backlight",
		DeviceID:  "intel_backlight",
		Source:    ledger.SourceSet,
		Update:    "10%+",
		Previous:  100,
		Value:     120,
		Max:       200,
		Outcome:   brightness.OutcomeApplied,
	}}

	var csv bytes.Buffer
	WriteHistory(&csv, changes, true)
	want := "2024-05-01T12:00:00Z," + id.String() + ",backlight,intel_backlight,set,10%+,100,120,200,applied\n"
	if csv.String() != want {
		t.Errorf("WriteHistory(machine) = %q, want %q", csv.String(), want)
	}

	var tbl bytes.Buffer
	WriteHistory(&tbl, changes, false)
	for _, s := range []string{"backlight/intel_backlight", "10%+", "applied"} {
		if !strings.Contains(tbl.String(), s) {
			t.Errorf("WriteHistory(table) missing %q in:\n%s", s, tbl.String())
		}
	}
}

func TestWriteSaved(t *testing.T) {
	saved := []storage.Saved{{
		Class:     "backlight",
		ID:        "intel_backlight",
		Value:     150,
		Max:       200,
		UpdatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}}

	var csv bytes.Buffer
	WriteSaved(&csv, saved, true)
	want := "intel_backlight,backlight,150,75%,200,2024-05-01T12:00:00Z\n"
	if csv.String() != want {
		t.Errorf("WriteSaved(machine) = %q, want %q", csv.String(), want)
	}

	var tbl bytes.Buffer
	WriteSaved(&tbl, saved, false)
	for _, s := range []string{"intel_backlight", "75%", "150"} {
		if !strings.Contains(tbl.String(), s) {
			t.Errorf("WriteSaved(table) missing %q in:\n%s", s, tbl.String())
		}
	}
}

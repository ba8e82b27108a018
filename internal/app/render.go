package app

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dokzlo13/brightctl/internal/brightness"
	"github.com/dokzlo13/brightctl/internal/ledger"
	"github.com/dokzlo13/brightctl/internal/storage"
)

// WriteDevice prints one device. The machine readable form is
// "id,class,current,percent%,max".
func WriteDevice(w io.Writer, d brightness.Device, machine bool) {
	if machine {
		fmt.Fprintf(w, "%s,%s,%d,%d%%,%d\n", d.ID, d.Class, d.Current, d.Percent(), d.Max)
		return
	}
	fmt.Fprintf(w, "Device '%s' of class '%s':\n\tCurrent brightness: %d (%d%%)\n\tMax brightness: %d\n\n",
		d.ID, d.Class, d.Current, d.Percent(), d.Max)
}

// WriteDevices prints a device list as a table, or one CSV line per device.
func WriteDevices(w io.Writer, devices []brightness.Device, machine bool) {
	if machine {
		for _, d := range devices {
			WriteDevice(w, d, true)
		}
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Device", "Class", "Current", "Percent", "Max"})
	for _, d := range devices {
		t.AppendRow(table.Row{d.ID, d.Class, d.Current, fmt.Sprintf("%d%%", d.Percent()), d.Max})
	}
	t.Render()
}

// WriteResult prints the outcome of a change. Failures print nothing; the
// error is reported by the caller.
func WriteResult(w io.Writer, res brightness.Result, machine bool) {
	switch res.Outcome {
	case brightness.OutcomePretended:
		if machine {
			fmt.Fprintf(w, "%s,%s,%d,%d%%,%d\n", res.Device.ID, res.Device.Class,
				res.Plan.Value, brightness.ValueToPercent(res.Plan.Value, res.Device.Max), res.Device.Max)
			return
		}
		fmt.Fprintf(w, "Would set %s '%s' brightness to %d\n", res.Device.Class, res.Device.ID, res.Plan.Value)
	case brightness.OutcomeApplied:
		WriteDevice(w, res.Device, machine)
	}
}

// WriteHistory prints ledger entries as a table, or CSV lines of
// "timestamp,id,class,device,source,update,previous,value,max,outcome".
func WriteHistory(w io.Writer, changes []*ledger.Change, machine bool) {
	if machine {
		for _, c := range changes {
			fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%d,%d,%d,%s\n",
				c.Timestamp.Format(time.RFC3339), c.ID, c.Class, c.DeviceID, c.Source,
				c.Update, c.Previous, c.Value, c.Max, c.Outcome)
		}
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Time", "Device", "Source", "Update", "Previous", "Value", "Outcome", "Error"})
	for _, c := range changes {
		t.AppendRow(table.Row{
			c.Timestamp.Local().Format("2006-01-02 15:04:05"),
			c.Class + "/" + c.DeviceID,
			c.Source,
			c.Update,
			c.Previous,
			c.Value,
			c.Outcome,
			c.Error,
		})
	}
	t.Render()
}

// WriteSaved prints saved snapshots as a table, or CSV lines of
// "id,class,value,percent%,max,saved_at".
func WriteSaved(w io.Writer, saved []storage.Saved, machine bool) {
	if machine {
		for _, s := range saved {
			fmt.Fprintf(w, "%s,%s,%d,%d%%,%d,%s\n", s.ID, s.Class, s.Value,
				brightness.ValueToPercent(s.Value, s.Max), s.Max, s.UpdatedAt.Format(time.RFC3339))
		}
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Device", "Class", "Saved", "Percent", "Max", "Saved At"})
	for _, s := range saved {
		t.AppendRow(table.Row{
			s.ID,
			s.Class,
			s.Value,
			fmt.Sprintf("%d%%", brightness.ValueToPercent(s.Value, s.Max)),
			s.Max,
			s.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	t.Render()
}

// Package testutil provides dataset fixtures and assertions shared by the
// tests of the packages built on thermal.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/thermal.report/internal/thermal"
)

// SensorIDs returns 16 ids per module, numbered 1..16 within BMS groups
// "01", "02", ... in module order.
func SensorIDs(modules int) []thermal.SensorID {
	ids := make([]thermal.SensorID, 0, modules*16)
	for m := 1; m <= modules; m++ {
		for i := 1; i <= 16; i++ {
			ids = append(ids, thermal.SensorID{Index: i, Group: fmt.Sprintf("%02d", m)})
		}
	}
	return ids
}

// ChannelName is the recorder's channel name for id.
func ChannelName(id thermal.SensorID) string {
	return fmt.Sprintf("ModuleTemperature%d_BMS%s", id.Index, strings.TrimLeft(id.Group, "0"))
}

// Records returns one record per id, in order.
func Records(ids []thermal.SensorID) []thermal.SensorRecord {
	recs := make([]thermal.SensorRecord, len(ids))
	for i, id := range ids {
		recs[i] = thermal.SensorRecord{ID: id, Channel: ChannelName(id)}
	}
	return recs
}

// ConstantCoolant returns samples copies of one coolant reading.
func ConstantCoolant(samples int, inlet, outlet, flow float64) thermal.CoolantSeries {
	c := thermal.CoolantSeries{
		Inlet:  make([]float64, samples),
		Outlet: make([]float64, samples),
		Flow:   make([]float64, samples),
	}
	for i := 0; i < samples; i++ {
		c.Inlet[i], c.Outlet[i], c.Flow[i] = inlet, outlet, flow
	}
	return c
}

// NewDataset builds a dataset with one row per id and samples columns, cell
// (row, col) set to value(row, col).
func NewDataset(t testing.TB, ids []thermal.SensorID, samples int, value func(row, col int) float64, coolant thermal.CoolantSeries) *thermal.Dataset {
	t.Helper()
	rows := make([][]float64, len(ids))
	for r := range rows {
		rows[r] = make([]float64, samples)
		for c := range rows[r] {
			rows[r][c] = value(r, c)
		}
	}
	raw, err := thermal.RawMatrixFromRows(rows)
	if err != nil {
		t.Fatalf("build matrix: %v", err)
	}
	ds, err := thermal.NewDataset(Records(ids), raw, coolant)
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	return ds
}

// WriteChannelCSV writes a column-per-channel export for ids, with a leading
// Time column, into dir and returns its path.
func WriteChannelCSV(t testing.TB, dir, name string, ids []thermal.SensorID, samples int, value func(row, col int) float64) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Time")
	for _, id := range ids {
		b.WriteString(",")
		b.WriteString(ChannelName(id))
	}
	b.WriteString("\n")
	for c := 0; c < samples; c++ {
		fmt.Fprintf(&b, "%d", c)
		for r := range ids {
			fmt.Fprintf(&b, ",%g", value(r, c))
		}
		b.WriteString("\n")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

package testutil

import (
	"math"
	"os"
	"strings"
	"testing"

	"github.com/banshee-data/thermal.report/internal/thermal"
)

func TestSensorIDs(t *testing.T) {
	t.Parallel()

	ids := SensorIDs(2)
	if len(ids) != 32 {
		t.Fatalf("len = %d, want 32", len(ids))
	}
	if want := (thermal.SensorID{Index: 1, Group: "02"}); ids[16] != want {
		t.Errorf("ids[16] = %v, want %v", ids[16], want)
	}
	if got := ChannelName(ids[16]); got != "ModuleTemperature1_BMS2" {
		t.Errorf("ChannelName = %q", got)
	}
}

func TestNewDataset(t *testing.T) {
	t.Parallel()

	ds := NewDataset(t, SensorIDs(1), 4, func(r, c int) float64 { return float64(r + c) }, ConstantCoolant(3, 20, 25, 2))
	if ds.Len() != 3 {
		t.Errorf("Len = %d, want 3 after coolant alignment", ds.Len())
	}
	if got := ds.Matrix.At(15, 2); got != 17 {
		t.Errorf("At(15, 2) = %v, want 17", got)
	}
	if got := ds.Coolant.At(0).HeatFlux; math.IsNaN(got) || got <= 0 {
		t.Errorf("HeatFlux = %v, want positive", got)
	}
}

func TestWriteChannelCSV(t *testing.T) {
	t.Parallel()

	path := WriteChannelCSV(t, t.TempDir(), "run.csv", SensorIDs(1)[:2], 2, func(r, c int) float64 { return float64(20 + r + c) })
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Time,ModuleTemperature1_BMS1,ModuleTemperature2_BMS1\n0,20,21\n1,21,22\n"
	if string(data) != want {
		t.Errorf("csv = %q, want %q", data, want)
	}
	if !strings.HasSuffix(path, "run.csv") {
		t.Errorf("path = %q", path)
	}
}

func TestAssertStatusCode(t *testing.T) {
	t.Parallel()

	AssertStatusCode(t, 200, 200)
}

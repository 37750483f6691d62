package thermal

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// moduleIDs returns 16 sensor ids per module, one BMS group per module,
// in the order an extractor that groups by layer would emit them.
func moduleIDs(modules int) []SensorID {
	ids := make([]SensorID, 0, modules*16)
	for m := 1; m <= modules; m++ {
		for i := 1; i <= 16; i++ {
			ids = append(ids, SensorID{Index: i, Group: fmt.Sprintf("%02d", m)})
		}
	}
	return ids
}

func recordsFor(ids []SensorID) []SensorRecord {
	recs := make([]SensorRecord, len(ids))
	for i, id := range ids {
		recs[i] = SensorRecord{ID: id, Channel: fmt.Sprintf("ModuleTemperature%d_BMS%s", id.Index, id.Group)}
	}
	return recs
}

// buildDataset makes a dataset with one row per id and cols samples.
func buildDataset(t *testing.T, ids []SensorID, cols int, value func(row, col int) float64) *Dataset {
	t.Helper()
	values := make([]float64, 0, len(ids)*cols)
	for r := range ids {
		for c := 0; c < cols; c++ {
			values = append(values, value(r, c))
		}
	}
	raw, err := NewRawMatrix(len(ids), cols, values)
	require.NoError(t, err)
	ds, err := NewDataset(recordsFor(ids), raw, CoolantSeries{})
	require.NoError(t, err)
	return ds
}

func rowValue(row, col int) float64 { return float64(row*100 + col) }

func countFinite(grid [][]float64) int {
	n := 0
	for _, row := range grid {
		for _, v := range row {
			if !math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

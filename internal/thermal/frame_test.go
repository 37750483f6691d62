package thermal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateFrameShapes(t *testing.T) {
	t.Parallel()

	cfg := ModuleConfig{ModulesPerLayer: []int{2, 1, 3}}
	ids := moduleIDs(6)
	ds := buildDataset(t, ids, 4, rowValue)
	idx := Resolve(LayoutOrder(ids), ds.Records)

	for _, ti := range []int{0, 1, 3} {
		frame := AggregateFrame(ds.Matrix, ds.Records, idx, cfg, ti)
		require.Len(t, frame.Layers, 3)
		for l, lf := range frame.Layers {
			require.Len(t, lf.Values, GridRows, "layer %d", l)
			require.Len(t, lf.Sensors, GridRows, "layer %d", l)
			for i := range lf.Values {
				assert.Len(t, lf.Values[i], 4*cfg.ModulesPerLayer[l])
				assert.Len(t, lf.Sensors[i], 4*cfg.ModulesPerLayer[l])
			}
		}
	}
}

func TestAggregateFrameRowMajorFill(t *testing.T) {
	t.Parallel()

	cfg := ModuleConfig{ModulesPerLayer: []int{2, 1}}
	ids := moduleIDs(3)
	ds := buildDataset(t, ids, 2, rowValue)
	frame := AggregateFrame(ds.Matrix, ds.Records, Resolve(LayoutOrder(ids), ds.Records), cfg, 1)

	// layer 1 starts at position 32; cell (2, 3) is position 32 + 2*4 + 3
	assert.Equal(t, rowValue(43, 1), frame.Layers[1].Values[2][3])
	assert.Equal(t, ids[43], frame.Layers[1].Sensors[2][3].ID)
	// layer 0 cell (1, 5) is position 1*8 + 5
	assert.Equal(t, rowValue(13, 1), frame.Layers[0].Values[1][5])

	assert.Equal(t, 48, frame.Overall.Count)
	assert.Equal(t, rowValue(47, 1), frame.Overall.Max)
	assert.Equal(t, rowValue(0, 1), frame.Overall.Min)
}

func TestAggregateFrameShortLayout(t *testing.T) {
	t.Parallel()

	ids := []SensorID{{1, "01"}, {2, "01"}, {3, "01"}, {4, "01"}}
	cfg := ModuleConfig{ModulesPerLayer: []int{1}}
	ds := buildDataset(t, ids, 1, func(row, _ int) float64 { return 20 + float64(row) })

	frame := AggregateFrame(ds.Matrix, ds.Records, Resolve(LayoutOrder(ids), ds.Records), cfg, 0)
	grid := frame.Layers[0].Values

	assert.Equal(t, 4, countFinite(grid))
	assert.Equal(t, []float64{20, 21, 22, 23}, grid[0])
	for i := 1; i < GridRows; i++ {
		for j := range grid[i] {
			assert.True(t, math.IsNaN(grid[i][j]), "cell (%d,%d)", i, j)
			assert.Nil(t, frame.Layers[0].Sensors[i][j])
		}
	}
	assert.Equal(t, 4, frame.Layers[0].Stats.Count)
	assert.Equal(t, 21.5, frame.Layers[0].Stats.Mean)
}

func TestAggregateFrameAbsentSensorIsolated(t *testing.T) {
	t.Parallel()

	ids := moduleIDs(1)
	cfg := ModuleConfig{ModulesPerLayer: []int{1}}
	ds := buildDataset(t, ids, 3, rowValue)

	full := AggregateFrame(ds.Matrix, ds.Records, Resolve(LayoutOrder(ids), ds.Records), cfg, 2)

	order := append(LayoutOrder(nil), ids...)
	order[6] = SensorID{Index: 77, Group: "99"}
	partial := AggregateFrame(ds.Matrix, ds.Records, Resolve(order, ds.Records), cfg, 2)

	// position 6 is cell (1, 2)
	assert.True(t, math.IsNaN(partial.Layers[0].Values[1][2]))
	assert.Nil(t, partial.Layers[0].Sensors[1][2])

	for i := range full.Layers[0].Values {
		for j := range full.Layers[0].Values[i] {
			if i == 1 && j == 2 {
				continue
			}
			assert.Equal(t, full.Layers[0].Values[i][j], partial.Layers[0].Values[i][j], "cell (%d,%d)", i, j)
			assert.Equal(t, full.Layers[0].Sensors[i][j], partial.Layers[0].Sensors[i][j])
		}
	}
	assert.Equal(t, 15, partial.Layers[0].Stats.Count)
}

func TestAggregateFrameClampsTimeIndex(t *testing.T) {
	t.Parallel()

	ids := moduleIDs(1)
	cfg := ModuleConfig{ModulesPerLayer: []int{1}}
	ds := buildDataset(t, ids, 5, rowValue)
	idx := Resolve(LayoutOrder(ids), ds.Records)

	tests := []struct {
		in, want int
	}{
		{-3, 0},
		{0, 0},
		{4, 4},
		{5, 4},
		{1000, 4},
	}
	for _, tt := range tests {
		frame := AggregateFrame(ds.Matrix, ds.Records, idx, cfg, tt.in)
		assert.Equal(t, tt.want, frame.TimeIndex, "t=%d", tt.in)
		assert.Equal(t, rowValue(0, tt.want), frame.Layers[0].Values[0][0])
	}
}

func TestAggregateFrameEmptyMatrix(t *testing.T) {
	t.Parallel()

	ids := moduleIDs(1)
	raw, err := NewRawMatrix(len(ids), 0, nil)
	require.NoError(t, err)
	ds, err := NewDataset(recordsFor(ids), raw, CoolantSeries{})
	require.NoError(t, err)

	cfg := ModuleConfig{ModulesPerLayer: []int{1}}
	frame := AggregateFrame(ds.Matrix, ds.Records, Resolve(LayoutOrder(ids), ds.Records), cfg, 3)

	assert.Equal(t, 0, frame.TimeIndex)
	assert.Zero(t, countFinite(frame.Layers[0].Values))
	assert.True(t, math.IsNaN(frame.Layers[0].Stats.Mean))
	assert.True(t, math.IsNaN(frame.Overall.Mean))
	assert.True(t, math.IsNaN(frame.Coolant.HeatFlux))
}

func TestResolvedLayoutFrameTrends(t *testing.T) {
	t.Parallel()

	ids := moduleIDs(2)
	cfg := ModuleConfig{ModulesPerLayer: []int{1, 1}}
	// layer 0 rows are t, layer 1 rows are 10+2t
	ds := buildDataset(t, ids, 4, func(row, col int) float64 {
		if row < 16 {
			return float64(col)
		}
		return 10 + 2*float64(col)
	})
	rl := ResolveLayout("test", LayoutOrder(ids), ds, cfg)

	frame := rl.Frame(ds, cfg, 2)
	assert.Equal(t, []float64{10, 11, 12}, frame.CellRangeTrend)
	assert.Equal(t, []float64{10, 11, 12}, frame.LayerMeanRangeTrend)
	assert.Equal(t, 12.0, frame.LayerMeanRange)
	assert.Empty(t, rl.Warnings)
}

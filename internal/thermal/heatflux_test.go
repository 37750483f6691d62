package thermal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/thermal.report/internal/units"
)

func TestHeatFluxZero(t *testing.T) {
	t.Parallel()

	temps := []float64{-10, 0, 20, 25.5, 80}
	for _, tin := range temps {
		for _, tout := range temps {
			assert.Equal(t, 0.0, HeatFlux(0, tin, tout), "flow=0 tin=%v tout=%v", tin, tout)
		}
	}
	for _, flow := range []float64{1e-6, 2.0 / 60000, -0.001, 5} {
		for _, temp := range temps {
			assert.Equal(t, 0.0, HeatFlux(flow, temp, temp), "flow=%v t=%v", flow, temp)
		}
	}
}

func TestHeatFluxFormula(t *testing.T) {
	t.Parallel()

	flow := units.LitersPerMinuteToCubicMetersPerSecond(2)
	assert.Equal(t, 2.0/60000, flow)

	mix := 0.5*4186*1000 + 0.5*3350*1070
	want := flow * 5 * mix
	assert.Equal(t, want, HeatFlux(flow, 20, 25))
	assert.InDelta(t, 647.5416666, HeatFlux(flow, 20, 25), 1e-6)

	// cooling reads negative
	assert.Less(t, HeatFlux(flow, 25, 20), 0.0)
}

func TestCoolantReadout(t *testing.T) {
	t.Parallel()

	c := CoolantSeries{
		Inlet:  []float64{20, 21},
		Outlet: []float64{25, 21},
		Flow:   []float64{2, 2},
	}
	r := c.At(0)
	assert.Equal(t, 20.0, r.Inlet)
	assert.Equal(t, 25.0, r.Outlet)
	assert.Equal(t, 2.0, r.Flow)
	assert.Equal(t, HeatFlux(2.0/60000, 20, 25), r.HeatFlux)

	assert.Equal(t, 0.0, c.At(1).HeatFlux)

	out := c.At(2)
	assert.True(t, math.IsNaN(out.Inlet))
	assert.True(t, math.IsNaN(out.HeatFlux))

	partial := CoolantSeries{Inlet: []float64{20}, Outlet: []float64{25}}.At(0)
	assert.True(t, math.IsNaN(partial.Flow))
	assert.True(t, math.IsNaN(partial.HeatFlux), "heat flux needs every signal")
}

func TestAlign(t *testing.T) {
	t.Parallel()

	raw, err := RawMatrixFromRows([][]float64{{1, 2, 3, 4, 5}, {6, 7, 8, 9, 10}})
	require.NoError(t, err)

	t.Run("shortest series wins", func(t *testing.T) {
		m, c := Align(raw, CoolantSeries{
			Inlet:  []float64{1, 2, 3, 4},
			Outlet: []float64{1, 2, 3},
			Flow:   []float64{1, 2, 3, 4, 5, 6},
		})
		assert.Equal(t, 3, m.Cols())
		assert.Len(t, c.Inlet, 3)
		assert.Len(t, c.Outlet, 3)
		assert.Len(t, c.Flow, 3)
	})

	t.Run("absent series ignored", func(t *testing.T) {
		m, c := Align(raw, CoolantSeries{Flow: []float64{1, 2, 3, 4, 5, 6, 7}})
		assert.Equal(t, 5, m.Cols())
		assert.Nil(t, c.Inlet)
		assert.Len(t, c.Flow, 5)
	})

	t.Run("matrix shorter than series", func(t *testing.T) {
		short := raw.Trim(2)
		m, c := Align(short, CoolantSeries{Inlet: []float64{1, 2, 3}})
		assert.Equal(t, 2, m.Cols())
		assert.Equal(t, []float64{1, 2}, c.Inlet)
	})
}

func TestNewDatasetShapeMismatch(t *testing.T) {
	t.Parallel()

	raw, err := RawMatrixFromRows([][]float64{{1}, {2}})
	require.NoError(t, err)
	_, err = NewDataset(recordsFor([]SensorID{{1, "01"}}), raw, CoolantSeries{})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

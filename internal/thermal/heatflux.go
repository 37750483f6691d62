package thermal

import (
	"math"

	"github.com/banshee-data/thermal.report/internal/units"
)

// Coolant properties for a 50/50 water-glycol mix.
const (
	WaterHeatCapacity  = 4186.0 // J/(kg*K)
	GlycolHeatCapacity = 3350.0 // J/(kg*K)
	WaterDensity       = 1000.0 // kg/m^3
	GlycolDensity      = 1070.0 // kg/m^3
	WaterFraction      = 0.5
	GlycolFraction     = 0.5

	// CoolantVolumetricHeatCapacity is J/(m^3*K) of the mix.
	CoolantVolumetricHeatCapacity = WaterFraction*WaterHeatCapacity*WaterDensity +
		GlycolFraction*GlycolHeatCapacity*GlycolDensity
)

// HeatFlux returns the thermal power in watts carried away by a coolant flow
// of flow m^3/s warming from tin to tout degrees. It is exactly zero when
// either the flow or the temperature delta is zero.
func HeatFlux(flow, tin, tout float64) float64 {
	delta := tout - tin
	if flow == 0 || delta == 0 {
		return 0
	}
	return flow * delta * CoolantVolumetricHeatCapacity
}

// CoolantSeries holds the coolant loop signals on the same time axis as the
// raw matrix. Temperatures are in degrees Celsius and Flow in litres per
// minute. A nil or empty series means the signal is unavailable.
type CoolantSeries struct {
	Inlet  []float64 `json:"inlet,omitempty"`
	Outlet []float64 `json:"outlet,omitempty"`
	Flow   []float64 `json:"flow,omitempty"`
}

// CoolantReadout is the coolant state at one time index. Unavailable values
// are NaN. HeatFlux is NaN unless all three signals are present.
type CoolantReadout struct {
	Inlet    float64 `json:"inlet"`
	Outlet   float64 `json:"outlet"`
	Flow     float64 `json:"flow"`
	HeatFlux float64 `json:"heat_flux"`
}

// At returns the readout at time index t.
func (c CoolantSeries) At(t int) CoolantReadout {
	r := CoolantReadout{
		Inlet:  sampleAt(c.Inlet, t),
		Outlet: sampleAt(c.Outlet, t),
		Flow:   sampleAt(c.Flow, t),
	}
	if math.IsNaN(r.Inlet) || math.IsNaN(r.Outlet) || math.IsNaN(r.Flow) {
		r.HeatFlux = math.NaN()
	} else {
		r.HeatFlux = HeatFlux(units.LitersPerMinuteToCubicMetersPerSecond(r.Flow), r.Inlet, r.Outlet)
	}
	return r
}

func sampleAt(series []float64, t int) float64 {
	if t < 0 || t >= len(series) {
		return math.NaN()
	}
	return series[t]
}

// Align trims the matrix and every present coolant series to the shortest
// length among them. Absent series do not shorten the others.
func Align(raw *RawMatrix, coolant CoolantSeries) (*RawMatrix, CoolantSeries) {
	n := raw.Cols()
	for _, s := range [][]float64{coolant.Inlet, coolant.Outlet, coolant.Flow} {
		if len(s) > 0 && len(s) < n {
			n = len(s)
		}
	}
	return raw.Trim(n), CoolantSeries{
		Inlet:  trimSeries(coolant.Inlet, n),
		Outlet: trimSeries(coolant.Outlet, n),
		Flow:   trimSeries(coolant.Flow, n),
	}
}

func trimSeries(s []float64, n int) []float64 {
	if len(s) == 0 {
		return nil
	}
	if len(s) > n {
		s = s[:n]
	}
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

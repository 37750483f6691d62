package thermal

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises a set of temperatures. Count is the number of non-NaN
// values the other fields were computed from; when it is zero every other
// field is NaN.
type Stats struct {
	Mean   float64 `json:"mean"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
	Range  float64 `json:"range"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// NaNStats is the result for input with no finite values.
func NaNStats() Stats {
	nan := math.NaN()
	return Stats{Mean: nan, Max: nan, Min: nan, Range: nan, StdDev: nan}
}

// ComputeStats returns mean, max, min, range and population standard
// deviation of values, ignoring NaN.
func ComputeStats(values []float64) Stats {
	valid := dropNaN(values)
	if len(valid) == 0 {
		return NaNStats()
	}
	mean, std := stat.PopMeanStdDev(valid, nil)
	hi, lo := floats.Max(valid), floats.Min(valid)
	return Stats{
		Mean:   mean,
		Max:    hi,
		Min:    lo,
		Range:  hi - lo,
		StdDev: std,
		Count:  len(valid),
	}
}

// nanMean is the mean of the non-NaN values, or NaN if there are none.
func nanMean(values []float64) float64 {
	valid := dropNaN(values)
	if len(valid) == 0 {
		return math.NaN()
	}
	return stat.Mean(valid, nil)
}

// nanRange is max-min over the non-NaN values, or NaN if there are none.
func nanRange(values []float64) float64 {
	valid := dropNaN(values)
	if len(valid) == 0 {
		return math.NaN()
	}
	return floats.Max(valid) - floats.Min(valid)
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

package thermal

import "math"

// LayerMeanSeries returns, for every layer, the NaN-ignoring mean of the raw
// rows [LayerOffset(l), LayerOffset(l)+LayerSpan(l)) at each time index.
//
// It works on storage order, not on the layout: it assumes the extractor
// emitted sensors grouped by layer. A reordered layout changes the grids but
// not this series.
func LayerMeanSeries(raw *RawMatrix, cfg ModuleConfig) [][]float64 {
	out := make([][]float64, cfg.Layers())
	for l := range out {
		series := make([]float64, raw.Cols())
		start := min(cfg.LayerOffset(l), raw.Rows())
		end := min(start+cfg.LayerSpan(l), raw.Rows())
		buf := make([]float64, 0, end-start)
		for t := range series {
			buf = buf[:0]
			for r := start; r < end; r++ {
				buf = append(buf, raw.At(r, t))
			}
			series[t] = nanMean(buf)
		}
		out[l] = series
	}
	return out
}

// LayerMeanRangeSeries returns max-min across layer means at each time index.
func LayerMeanRangeSeries(layerMeans [][]float64, cols int) []float64 {
	out := make([]float64, cols)
	buf := make([]float64, len(layerMeans))
	for t := range out {
		for l, series := range layerMeans {
			buf[l] = sampleAt(series, t)
		}
		out[t] = nanRange(buf)
	}
	return out
}

// CellRangeSeries returns max-min over every sensor at each time index.
func CellRangeSeries(raw *RawMatrix) []float64 {
	out := make([]float64, raw.Cols())
	for t := range out {
		out[t] = nanRange(raw.Column(t))
	}
	return out
}

// PeakIndex returns the time index holding the hottest sample in the matrix.
// It reports false when every sample is NaN.
func PeakIndex(raw *RawMatrix) (int, bool) {
	best, at := math.Inf(-1), -1
	for t := 0; t < raw.Cols(); t++ {
		for r := 0; r < raw.Rows(); r++ {
			if v := raw.At(r, t); !math.IsNaN(v) && v > best {
				best, at = v, t
			}
		}
	}
	return at, at >= 0
}

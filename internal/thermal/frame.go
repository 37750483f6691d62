package thermal

import "math"

// LayerFrame is one layer's grid at a time index. Values and Sensors are
// GridRows x LayerWidth, row-major; Sensors is nil where the layout position
// is missing or refers to a sensor absent from the data.
type LayerFrame struct {
	Layer   int
	Values  [][]float64
	Sensors [][]*SensorRecord
	Stats   Stats
}

// FrameResult is everything a consumer needs to draw one time index.
type FrameResult struct {
	TimeIndex int
	// Layout names the layout the frame was built from.
	Layout    string
	Layers    []LayerFrame
	Overall   Stats

	// LayerMeanRange is max-min across layer means at TimeIndex.
	LayerMeanRange float64
	// CellRangeTrend and LayerMeanRangeTrend cover [0, TimeIndex].
	CellRangeTrend      []float64
	LayerMeanRangeTrend []float64

	Coolant CoolantReadout
}

// ClampTimeIndex limits t to [0, cols-1]. With no columns it returns 0.
func ClampTimeIndex(t, cols int) int {
	if cols <= 0 || t < 0 {
		return 0
	}
	if t >= cols {
		return cols - 1
	}
	return t
}

// AggregateFrame builds the per-layer grids and statistics at time index t.
// Layer L reads layout positions [LayerOffset(L), LayerOffset(L)+LayerSpan(L))
// and fills cell (i, j) from position i*LayerWidth(L)+j. Positions past the
// end of idx stay NaN. t is clamped; an empty matrix yields all-NaN layers.
func AggregateFrame(raw *RawMatrix, records []SensorRecord, idx IndexMap, cfg ModuleConfig, t int) FrameResult {
	t = ClampTimeIndex(t, raw.Cols())
	hasData := !raw.Empty()

	res := FrameResult{
		TimeIndex: t,
		Layers:    make([]LayerFrame, cfg.Layers()),
	}

	for l := range res.Layers {
		width := cfg.LayerWidth(l)
		offset := cfg.LayerOffset(l)
		lf := LayerFrame{
			Layer:   l,
			Values:  make([][]float64, GridRows),
			Sensors: make([][]*SensorRecord, GridRows),
		}
		cells := make([]float64, 0, GridRows*width)
		for i := 0; i < GridRows; i++ {
			lf.Values[i] = make([]float64, width)
			lf.Sensors[i] = make([]*SensorRecord, width)
			for j := 0; j < width; j++ {
				v := math.NaN()
				if row, ok := idx.Lookup(offset + i*width + j); ok && hasData && row < raw.Rows() {
					v = raw.At(row, t)
					if row < len(records) {
						lf.Sensors[i][j] = &records[row]
					}
				}
				lf.Values[i][j] = v
				cells = append(cells, v)
			}
		}
		lf.Stats = ComputeStats(cells)
		res.Layers[l] = lf
	}

	if hasData {
		res.Overall = ComputeStats(raw.Column(t))
	} else {
		res.Overall = NaNStats()
	}
	res.LayerMeanRange = math.NaN()
	res.Coolant = CoolantSeries{}.At(t)

	return res
}

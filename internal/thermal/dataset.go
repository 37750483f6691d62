package thermal

import "fmt"

// Dataset is an extracted recording: sensor records, their samples and the
// optional coolant signals, all on one time axis.
type Dataset struct {
	Records []SensorRecord
	Matrix  *RawMatrix
	Coolant CoolantSeries

	cellRange []float64
}

// NewDataset checks that matrix rows and records agree and aligns the
// coolant series with the matrix.
func NewDataset(records []SensorRecord, raw *RawMatrix, coolant CoolantSeries) (*Dataset, error) {
	if raw == nil {
		raw = &RawMatrix{}
	}
	if raw.Rows() != len(records) {
		return nil, fmt.Errorf("%w: matrix has %d rows for %d sensor records", ErrShapeMismatch, raw.Rows(), len(records))
	}
	raw, coolant = Align(raw, coolant)
	return &Dataset{
		Records:   records,
		Matrix:    raw,
		Coolant:   coolant,
		cellRange: CellRangeSeries(raw),
	}, nil
}

// Len is the number of time samples.
func (d *Dataset) Len() int { return d.Matrix.Cols() }

// ResolvedLayout is a layout bound to a dataset: the order, its index map,
// the validation findings and the layer-mean series for the trend line.
// It is immutable once built.
type ResolvedLayout struct {
	Name     string
	Order    LayoutOrder
	Index    IndexMap
	Warnings []Warning

	layerMeans     [][]float64
	layerMeanRange []float64
}

// ResolveLayout resolves order against ds and precomputes its series.
func ResolveLayout(name string, order LayoutOrder, ds *Dataset, cfg ModuleConfig) *ResolvedLayout {
	means := LayerMeanSeries(ds.Matrix, cfg)
	return &ResolvedLayout{
		Name:           name,
		Order:          order,
		Index:          Resolve(order, ds.Records),
		Warnings:       Validate(order, ds.Records, cfg),
		layerMeans:     means,
		layerMeanRange: LayerMeanRangeSeries(means, ds.Len()),
	}
}

// LayerMeans returns the per-layer mean series.
func (r *ResolvedLayout) LayerMeans() [][]float64 { return r.layerMeans }

// Frame aggregates time index t and attaches the trend prefixes and coolant
// readout.
func (r *ResolvedLayout) Frame(ds *Dataset, cfg ModuleConfig, t int) FrameResult {
	res := AggregateFrame(ds.Matrix, ds.Records, r.Index, cfg, t)
	res.Layout = r.Name
	if ds.Len() == 0 {
		return res
	}
	t = res.TimeIndex
	res.LayerMeanRange = r.layerMeanRange[t]
	res.CellRangeTrend = append([]float64(nil), ds.cellRange[:t+1]...)
	res.LayerMeanRangeTrend = append([]float64(nil), r.layerMeanRange[:t+1]...)
	res.Coolant = ds.Coolant.At(t)
	return res
}

package thermal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// SensorID names one physical temperature sensor: its index within a module
// and the module (BMS) group tag. Equality is exact on both fields, so
// group "1" and group "01" are different sensors.
type SensorID struct {
	Index int
	Group string
}

// String renders the id as "index/group".
func (id SensorID) String() string {
	return strconv.Itoa(id.Index) + "/" + id.Group
}

// MarshalJSON encodes the id as a two element array: [index, "group"].
func (id SensorID) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{id.Index, id.Group})
}

// UnmarshalJSON decodes [index, "group"]. The index must be an integer >= 1
// and the group a string.
func (id *SensorID) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: sensor entry %s is not an array", ErrLayoutMalformed, data)
	}
	if len(parts) != 2 {
		return fmt.Errorf("%w: sensor entry %s has %d elements, want 2", ErrLayoutMalformed, data, len(parts))
	}
	if isNull(parts[0]) || isNull(parts[1]) {
		return fmt.Errorf("%w: sensor entry %s contains null", ErrLayoutMalformed, data)
	}

	var index float64
	if err := json.Unmarshal(parts[0], &index); err != nil {
		return fmt.Errorf("%w: sensor index %s is not a number", ErrLayoutMalformed, parts[0])
	}
	if index != math.Trunc(index) || index < 1 || index > math.MaxInt32 {
		return fmt.Errorf("%w: sensor index %s must be an integer >= 1", ErrLayoutMalformed, parts[0])
	}

	var group string
	if err := json.Unmarshal(parts[1], &group); err != nil {
		return fmt.Errorf("%w: sensor group %s is not a string", ErrLayoutMalformed, parts[1])
	}

	id.Index = int(index)
	id.Group = group
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// SensorRecord ties a raw matrix row to the sensor it was extracted from.
// Records are kept in extraction order.
type SensorRecord struct {
	ID      SensorID `json:"id"`
	Channel string   `json:"channel"`
}

// RawMatrix holds sensor samples: one row per sensor, one column per time
// index. Missing samples are NaN. A matrix with zero rows or zero columns is
// valid and empty.
type RawMatrix struct {
	rows, cols int
	data       *mat.Dense // nil when empty
}

// NewRawMatrix builds a rows x cols matrix from row-major values.
func NewRawMatrix(rows, cols int, values []float64) (*RawMatrix, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrShapeMismatch, rows, cols)
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for a %dx%d matrix", ErrShapeMismatch, len(values), rows, cols)
	}
	m := &RawMatrix{rows: rows, cols: cols}
	if rows > 0 && cols > 0 {
		buf := make([]float64, len(values))
		copy(buf, values)
		m.data = mat.NewDense(rows, cols, buf)
	}
	return m, nil
}

// RawMatrixFromRows builds a matrix from per-sensor sample slices. All rows
// must have the same length.
func RawMatrixFromRows(rows [][]float64) (*RawMatrix, error) {
	if len(rows) == 0 {
		return &RawMatrix{}, nil
	}
	cols := len(rows[0])
	values := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d samples, want %d", ErrShapeMismatch, i, len(r), cols)
		}
		values = append(values, r...)
	}
	return NewRawMatrix(len(rows), cols, values)
}

// Rows returns the number of sensors.
func (m *RawMatrix) Rows() int { return m.rows }

// Cols returns the number of time samples.
func (m *RawMatrix) Cols() int { return m.cols }

// Empty reports whether the matrix has no samples.
func (m *RawMatrix) Empty() bool { return m.data == nil }

// At returns the sample of sensor row r at time index c.
func (m *RawMatrix) At(r, c int) float64 {
	return m.data.At(r, c)
}

// Column copies every sensor's sample at time index c.
func (m *RawMatrix) Column(c int) []float64 {
	if m.data == nil {
		return nil
	}
	return mat.Col(nil, c, m.data)
}

// Row copies the full time series of sensor row r.
func (m *RawMatrix) Row(r int) []float64 {
	if m.data == nil {
		return nil
	}
	return mat.Row(nil, r, m.data)
}

// Trim returns a copy holding only the first n time samples. n larger than
// Cols is clamped.
func (m *RawMatrix) Trim(n int) *RawMatrix {
	if n > m.cols {
		n = m.cols
	}
	if n < 0 {
		n = 0
	}
	out := &RawMatrix{rows: m.rows, cols: n}
	if m.data != nil && n > 0 {
		out.data = mat.DenseCopyOf(m.data.Slice(0, m.rows, 0, n))
	}
	return out
}

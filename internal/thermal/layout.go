package thermal

import (
	"fmt"
	"strings"
)

const (
	// Absent marks a layout position whose sensor is not in the dataset.
	Absent = -1

	// GridRows is the number of grid rows in every layer.
	GridRows = 4
	// ModuleColumns is the number of grid columns one module occupies.
	ModuleColumns = 4
)

// LayoutOrder lists sensors in display order, layers concatenated.
type LayoutOrder []SensorID

// ModuleConfig describes how many modules sit in each layer.
type ModuleConfig struct {
	ModulesPerLayer []int `json:"modules_per_layer"`
}

// DefaultModuleConfig is six layers of two modules each.
func DefaultModuleConfig() ModuleConfig {
	return ModuleConfig{ModulesPerLayer: []int{2, 2, 2, 2, 2, 2}}
}

// Validate checks that there is at least one layer and every module count is positive.
func (c ModuleConfig) Validate() error {
	if len(c.ModulesPerLayer) == 0 {
		return fmt.Errorf("%w: no layers", ErrModuleConfig)
	}
	for i, m := range c.ModulesPerLayer {
		if m <= 0 {
			return fmt.Errorf("%w: layer %d has %d modules", ErrModuleConfig, i, m)
		}
	}
	return nil
}

// Layers returns the layer count.
func (c ModuleConfig) Layers() int { return len(c.ModulesPerLayer) }

// LayerWidth returns the grid column count of layer l.
func (c ModuleConfig) LayerWidth(l int) int {
	return ModuleColumns * c.ModulesPerLayer[l]
}

// LayerSpan returns how many layout entries layer l consumes.
func (c ModuleConfig) LayerSpan(l int) int {
	return GridRows * c.LayerWidth(l)
}

// LayerOffset returns the position of layer l's first entry in the layout.
func (c ModuleConfig) LayerOffset(l int) int {
	off := 0
	for i := 0; i < l; i++ {
		off += c.LayerSpan(i)
	}
	return off
}

// ExpectedLength is the total number of entries a complete layout holds.
func (c ModuleConfig) ExpectedLength() int {
	return c.LayerOffset(c.Layers())
}

// IndexMap is parallel to a LayoutOrder: each position holds the raw matrix
// row of that sensor, or Absent.
type IndexMap []int

// Lookup returns the row for layout position pos.
func (m IndexMap) Lookup(pos int) (int, bool) {
	if pos < 0 || pos >= len(m) || m[pos] == Absent {
		return Absent, false
	}
	return m[pos], true
}

// Resolve maps every layout entry to its raw matrix row. If a sensor appears
// more than once in records the first occurrence wins. Resolve never fails.
func Resolve(order LayoutOrder, records []SensorRecord) IndexMap {
	rows := firstRows(records)
	idx := make(IndexMap, len(order))
	for i, id := range order {
		if r, ok := rows[id]; ok {
			idx[i] = r
		} else {
			idx[i] = Absent
		}
	}
	return idx
}

func firstRows(records []SensorRecord) map[SensorID]int {
	rows := make(map[SensorID]int, len(records))
	for i, rec := range records {
		if _, seen := rows[rec.ID]; !seen {
			rows[rec.ID] = i
		}
	}
	return rows
}

// WarningKind classifies a layout validation finding.
type WarningKind int

// Warning kinds, in the order Validate reports them.
const (
	WarnLengthMismatch WarningKind = iota
	WarnLayerShort
	WarnMissingSensor
	WarnUnreferencedSensor
	WarnDuplicateSensor
)

var warningKindNames = map[WarningKind]string{
	WarnLengthMismatch:     "length_mismatch",
	WarnLayerShort:         "layer_short",
	WarnMissingSensor:      "missing_sensor",
	WarnUnreferencedSensor: "unreferenced_sensor",
	WarnDuplicateSensor:    "duplicate_sensor",
}

func (k WarningKind) String() string {
	if s, ok := warningKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("warning(%d)", int(k))
}

// MarshalText renders the kind by name.
func (k WarningKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Warning is a non-fatal layout finding. Layer is -1 for findings that
// concern the whole layout. Sensors lists the ids involved, in order of
// first appearance.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Layer    int         `json:"layer"`
	Expected int         `json:"expected,omitempty"`
	Actual   int         `json:"actual,omitempty"`
	Sensors  []SensorID  `json:"sensors,omitempty"`
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnLengthMismatch:
		return fmt.Sprintf("layout has %d entries, expected %d", w.Actual, w.Expected)
	case WarnLayerShort:
		return fmt.Sprintf("layer %d has %d of %d entries", w.Layer, w.Actual, w.Expected)
	case WarnMissingSensor:
		return fmt.Sprintf("%d layout sensors not in data: %s", len(w.Sensors), joinIDs(w.Sensors))
	case WarnUnreferencedSensor:
		return fmt.Sprintf("%d data sensors not in layout: %s", len(w.Sensors), joinIDs(w.Sensors))
	case WarnDuplicateSensor:
		return fmt.Sprintf("%d sensors recorded more than once, first row used: %s", len(w.Sensors), joinIDs(w.Sensors))
	}
	return w.Kind.String()
}

func joinIDs(ids []SensorID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}

// Validate reports every mismatch between a layout, the dataset's sensor
// records and the module configuration. None of them stop a frame from being
// built: short layouts leave NaN cells, extra entries are ignored and missing
// sensors render as NaN.
func Validate(order LayoutOrder, records []SensorRecord, cfg ModuleConfig) []Warning {
	var warnings []Warning

	expected := cfg.ExpectedLength()
	if len(order) != expected {
		warnings = append(warnings, Warning{
			Kind: WarnLengthMismatch, Layer: -1, Expected: expected, Actual: len(order),
		})
	}

	for l := 0; l < cfg.Layers(); l++ {
		span := cfg.LayerSpan(l)
		available := len(order) - cfg.LayerOffset(l)
		if available < 0 {
			available = 0
		}
		if available < span {
			warnings = append(warnings, Warning{
				Kind: WarnLayerShort, Layer: l, Expected: span, Actual: available,
			})
		}
	}

	rows := firstRows(records)

	// Entries past the expected length are never drawn, so they neither
	// reference a sensor nor count as missing.
	drawn := order[:min(len(order), expected)]

	var missing []SensorID
	inLayout := make(map[SensorID]bool, len(drawn))
	for _, id := range drawn {
		if inLayout[id] {
			continue
		}
		inLayout[id] = true
		if _, ok := rows[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		warnings = append(warnings, Warning{Kind: WarnMissingSensor, Layer: -1, Sensors: missing})
	}

	var unreferenced, duplicates []SensorID
	seen := make(map[SensorID]int, len(records))
	for _, rec := range records {
		seen[rec.ID]++
		switch seen[rec.ID] {
		case 1:
			if !inLayout[rec.ID] {
				unreferenced = append(unreferenced, rec.ID)
			}
		case 2:
			duplicates = append(duplicates, rec.ID)
		}
	}
	if len(unreferenced) > 0 {
		warnings = append(warnings, Warning{Kind: WarnUnreferencedSensor, Layer: -1, Sensors: unreferenced})
	}
	if len(duplicates) > 0 {
		warnings = append(warnings, Warning{Kind: WarnDuplicateSensor, Layer: -1, Sensors: duplicates})
	}

	return warnings
}

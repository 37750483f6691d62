// Package extract turns decoded telemetry channels into thermal sensor
// records and a raw sample matrix.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/banshee-data/thermal.report/internal/monitoring"
	"github.com/banshee-data/thermal.report/internal/thermal"
)

// ErrNoChannels is returned when no channel name matches the module
// temperature pattern.
var ErrNoChannels = errors.New("no module temperature channels found")

// channelPattern matches names like ModuleTemperature12_BMS3.
var channelPattern = regexp.MustCompile(`(?i)^moduletemperature(\d+)_bms(\d+)$`)

// Channel is one decoded telemetry signal in file order.
type Channel struct {
	Name    string
	Samples []float64
	// Numeric is false for signals whose samples are not numbers (strings,
	// byte arrays). Such channels are skipped.
	Numeric bool
}

// ParseChannelName extracts the sensor id from a module temperature channel
// name. The BMS number is zero-padded to two digits.
func ParseChannelName(name string) (thermal.SensorID, bool) {
	m := channelPattern.FindStringSubmatch(name)
	if m == nil {
		return thermal.SensorID{}, false
	}
	index, err := strconv.Atoi(m[1])
	if err != nil || index < 1 {
		return thermal.SensorID{}, false
	}
	group := m[2]
	if len(group) < 2 {
		group = strings.Repeat("0", 2-len(group)) + group
	}
	return thermal.SensorID{Index: index, Group: group}, true
}

// FromChannels keeps the module temperature channels, in order, and trims
// them all to the shortest one.
func FromChannels(channels []Channel) ([]thermal.SensorRecord, *thermal.RawMatrix, error) {
	var records []thermal.SensorRecord
	var rows [][]float64

	for _, ch := range channels {
		id, ok := ParseChannelName(ch.Name)
		if !ok {
			continue
		}
		if !ch.Numeric {
			monitoring.Logf("extract: ignored non-numeric signal %s", ch.Name)
			continue
		}
		records = append(records, thermal.SensorRecord{ID: id, Channel: ch.Name})
		rows = append(rows, ch.Samples)
	}

	if len(records) == 0 {
		return nil, nil, ErrNoChannels
	}

	minLen := len(rows[0])
	for _, r := range rows[1:] {
		minLen = min(minLen, len(r))
	}
	for i := range rows {
		rows[i] = rows[i][:minLen]
	}

	raw, err := thermal.RawMatrixFromRows(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build sample matrix: %w", err)
	}
	monitoring.Logf("extract: %d temperature channels, %d samples", raw.Rows(), raw.Cols())
	return records, raw, nil
}

package extract

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/thermal.report/internal/monitoring"
	"github.com/banshee-data/thermal.report/internal/thermal"
)

func init() {
	monitoring.SetLogger(nil)
}

func TestParseChannelName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		want   thermal.SensorID
		wantOK bool
	}{
		{"ModuleTemperature1_BMS1", thermal.SensorID{Index: 1, Group: "01"}, true},
		{"moduletemperature16_bms12", thermal.SensorID{Index: 16, Group: "12"}, true},
		{"MODULETEMPERATURE3_BMS007", thermal.SensorID{Index: 3, Group: "007"}, true},
		{"ModuleTemperature5_BMS03", thermal.SensorID{Index: 5, Group: "03"}, true},
		{"ModuleTemperature0_BMS1", thermal.SensorID{}, false},
		{"ModuleTemperature1_BMS1_raw", thermal.SensorID{}, false},
		{"xModuleTemperature1_BMS1", thermal.SensorID{}, false},
		{"ModuleTemperature_BMS1", thermal.SensorID{}, false},
		{"CoolantInlet", thermal.SensorID{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseChannelName(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromChannels(t *testing.T) {
	t.Parallel()

	channels := []Channel{
		{Name: "Time", Samples: []float64{0, 1, 2, 3}, Numeric: true},
		{Name: "ModuleTemperature2_BMS1", Samples: []float64{20, 21, 22, 23}, Numeric: true},
		{Name: "ModuleTemperature1_BMS1", Samples: []float64{30, 31, 32}, Numeric: true},
		{Name: "ModuleTemperature3_BMS1", Samples: nil, Numeric: false},
		{Name: "moduletemperature1_bms2", Samples: []float64{40, 41, 42, 43, 44}, Numeric: true},
	}

	records, raw, err := FromChannels(channels)
	require.NoError(t, err)

	want := []thermal.SensorRecord{
		{ID: thermal.SensorID{Index: 2, Group: "01"}, Channel: "ModuleTemperature2_BMS1"},
		{ID: thermal.SensorID{Index: 1, Group: "01"}, Channel: "ModuleTemperature1_BMS1"},
		{ID: thermal.SensorID{Index: 1, Group: "02"}, Channel: "moduletemperature1_bms2"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, raw.Rows())
	assert.Equal(t, 3, raw.Cols(), "trimmed to shortest channel")
	assert.Equal(t, []float64{40, 41, 42}, raw.Row(2))
}

func TestFromChannelsNoMatches(t *testing.T) {
	t.Parallel()

	_, _, err := FromChannels([]Channel{{Name: "Speed", Samples: []float64{1}, Numeric: true}})
	assert.ErrorIs(t, err, ErrNoChannels)

	_, _, err = FromChannels(nil)
	assert.ErrorIs(t, err, ErrNoChannels)
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		"time, ModuleTemperature1_BMS1, ModuleTemperature2_BMS1, Status",
		"0, 20.5, , ok",
		"1, 21.0, 19.5, ok",
		"2, bad, 19.0",
	}, "\n")

	channels, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, channels, 4)

	assert.Equal(t, "ModuleTemperature1_BMS1", channels[1].Name)
	assert.True(t, channels[1].Numeric)
	assert.Equal(t, 20.5, channels[1].Samples[0])
	assert.True(t, math.IsNaN(channels[1].Samples[2]))

	assert.True(t, math.IsNaN(channels[2].Samples[0]))
	assert.Equal(t, 19.0, channels[2].Samples[2])

	assert.False(t, channels[3].Numeric)
	assert.Len(t, channels[3].Samples, 3, "short rows padded with NaN")

	records, raw, err := FromChannels(channels)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 3, raw.Cols())
}

func TestReadCSVEmpty(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

package api

import (
	"math"

	"github.com/banshee-data/thermal.report/internal/thermal"
	"github.com/banshee-data/thermal.report/internal/units"
)

// JSON has no NaN, so missing values are encoded as null.
func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func nums(vs []float64, conv func(float64) float64) []*float64 {
	out := make([]*float64, len(vs))
	for i, v := range vs {
		out[i] = num(conv(v))
	}
	return out
}

type statsDTO struct {
	Mean   *float64 `json:"mean"`
	Max    *float64 `json:"max"`
	Min    *float64 `json:"min"`
	Range  *float64 `json:"range"`
	StdDev *float64 `json:"std_dev"`
	Count  int      `json:"count"`
}

func newStatsDTO(st thermal.Stats, u string) statsDTO {
	return statsDTO{
		Mean:   num(units.ConvertTemperature(st.Mean, u)),
		Max:    num(units.ConvertTemperature(st.Max, u)),
		Min:    num(units.ConvertTemperature(st.Min, u)),
		Range:  num(units.ConvertDelta(st.Range, u)),
		StdDev: num(units.ConvertDelta(st.StdDev, u)),
		Count:  st.Count,
	}
}

type layerDTO struct {
	Layer   int                   `json:"layer"`
	Values  [][]*float64          `json:"values"`
	Sensors [][]*thermal.SensorID `json:"sensors"`
	Stats   statsDTO              `json:"stats"`
}

type coolantDisplay struct {
	Inlet    string `json:"inlet"`
	Outlet   string `json:"outlet"`
	Flow     string `json:"flow"`
	HeatFlux string `json:"heat_flux"`
}

type coolantDTO struct {
	Inlet    *float64       `json:"inlet"`
	Outlet   *float64       `json:"outlet"`
	Flow     *float64       `json:"flow_lpm"`
	HeatFlux *float64       `json:"heat_flux_w"`
	Display  coolantDisplay `json:"display"`
}

type frameDTO struct {
	TimeIndex           int        `json:"t"`
	Length              int        `json:"length"`
	Layout              string     `json:"layout"`
	Playing             bool       `json:"playing"`
	Units               string     `json:"units"`
	Layers              []layerDTO `json:"layers"`
	Overall             statsDTO   `json:"overall"`
	LayerMeanRange      *float64   `json:"layer_mean_range"`
	CellRangeTrend      []*float64 `json:"cell_range_trend"`
	LayerMeanRangeTrend []*float64 `json:"layer_mean_range_trend"`
	Coolant             coolantDTO `json:"coolant"`
}

func (s *Server) newFrameDTO(f thermal.FrameResult, u string) frameDTO {
	temp := func(v float64) float64 { return units.ConvertTemperature(v, u) }
	delta := func(v float64) float64 { return units.ConvertDelta(v, u) }

	layers := make([]layerDTO, len(f.Layers))
	for l, lf := range f.Layers {
		values := make([][]*float64, len(lf.Values))
		sensors := make([][]*thermal.SensorID, len(lf.Sensors))
		for i := range lf.Values {
			values[i] = nums(lf.Values[i], temp)
			sensors[i] = make([]*thermal.SensorID, len(lf.Sensors[i]))
			for j, rec := range lf.Sensors[i] {
				if rec != nil {
					id := rec.ID
					sensors[i][j] = &id
				}
			}
		}
		layers[l] = layerDTO{Layer: lf.Layer, Values: values, Sensors: sensors, Stats: newStatsDTO(lf.Stats, u)}
	}

	c := f.Coolant
	return frameDTO{
		TimeIndex:           f.TimeIndex,
		Length:              s.session.Len(),
		Layout:              f.Layout,
		Playing:             s.player.Playing(),
		Units:               u,
		Layers:              layers,
		Overall:             newStatsDTO(f.Overall, u),
		LayerMeanRange:      num(delta(f.LayerMeanRange)),
		CellRangeTrend:      nums(f.CellRangeTrend, delta),
		LayerMeanRangeTrend: nums(f.LayerMeanRangeTrend, delta),
		Coolant: coolantDTO{
			Inlet:    num(temp(c.Inlet)),
			Outlet:   num(temp(c.Outlet)),
			Flow:     num(c.Flow),
			HeatFlux: num(c.HeatFlux),
			Display: coolantDisplay{
				Inlet:    units.FormatTemperature(c.Inlet, u),
				Outlet:   units.FormatTemperature(c.Outlet, u),
				Flow:     units.FormatFlow(c.Flow),
				HeatFlux: units.FormatWatts(c.HeatFlux),
			},
		},
	}
}

type warningDTO struct {
	thermal.Warning
	Message string `json:"message"`
}

func newWarningDTOs(ws []thermal.Warning) []warningDTO {
	out := make([]warningDTO, len(ws))
	for i, w := range ws {
		out[i] = warningDTO{Warning: w, Message: w.String()}
	}
	return out
}

type warningsResponse struct {
	Layout   string       `json:"layout"`
	Warnings []warningDTO `json:"warnings"`
}

type layoutsResponse struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
}

type layoutResponse struct {
	Requested string       `json:"requested"`
	Active    string       `json:"active"`
	Applied   bool         `json:"applied"`
	Error     string       `json:"error,omitempty"`
	Warnings  []warningDTO `json:"warnings"`
}

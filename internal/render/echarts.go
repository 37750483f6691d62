// Package render draws frames from the thermal package: echarts HTML pages
// for the browser, pterm blocks for the terminal and a gonum/plot PNG of the
// range trends.
package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/thermal.report/internal/thermal"
	"github.com/banshee-data/thermal.report/internal/units"
)

// AssetsHost is where rendered pages load the echarts scripts from.
var AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// viridis, low to high.
var heatColors = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// missing marks a gap in an echarts series.
const missing = "-"

// PageOptions controls FramePage.
type PageOptions struct {
	Title  string
	Layout string
	// VMin and VMax bound the heatmap colour scale in °C.
	VMin, VMax float64
}

// FramePage writes an HTML page with one heatmap per layer followed by the
// cell-range and layer-mean-range trend lines.
func FramePage(w io.Writer, f thermal.FrameResult, o PageOptions) error {
	title := o.Title
	if title == "" {
		title = "Battery temperatures"
	}

	page := components.NewPage()
	page.SetAssetsHost(AssetsHost)
	page.PageTitle = title

	for _, lf := range f.Layers {
		page.AddCharts(layerHeatMap(lf, f.TimeIndex, o))
	}
	page.AddCharts(trendLine(f))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render frame page: %w", err)
	}
	return nil
}

func layerHeatMap(lf thermal.LayerFrame, t int, o PageOptions) *charts.HeatMap {
	width := 0
	if len(lf.Values) > 0 {
		width = len(lf.Values[0])
	}
	xs := make([]string, width)
	for j := range xs {
		xs[j] = fmt.Sprintf("%d", j+1)
	}
	ys := make([]string, len(lf.Values))
	for i := range ys {
		ys[i] = fmt.Sprintf("%d", i+1)
	}

	data := make([]opts.HeatMapData, 0, len(lf.Values)*width)
	for i, row := range lf.Values {
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			name := ""
			if rec := lf.Sensors[i][j]; rec != nil {
				name = rec.ID.String()
			}
			data = append(data, opts.HeatMapData{Name: name, Value: [3]interface{}{j, i, v}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "260px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Layer %d", lf.Layer+1),
			Subtitle: fmt.Sprintf("t=%d %s mean=%s range=%s", t, o.Layout, units.FormatCelsius(lf.Stats.Mean), units.FormatDelta(lf.Stats.Range, units.Celsius)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xs, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ys, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(o.VMin),
			Max:        float32(o.VMax),
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)
	hm.SetXAxis(xs).AddSeries(fmt.Sprintf("layer %d", lf.Layer+1), data)
	return hm
}

func trendLine(f thermal.FrameResult) *charts.Line {
	xs := make([]int, len(f.CellRangeTrend))
	for i := range xs {
		xs[i] = i
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "320px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Temperature spread", Subtitle: fmt.Sprintf("t=0..%d", f.TimeIndex)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "time index"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "°C"}),
	)
	line.SetXAxis(xs).
		AddSeries("cell range", lineData(f.CellRangeTrend)).
		AddSeries("layer mean range", lineData(f.LayerMeanRangeTrend))
	return line
}

func lineData(series []float64) []opts.LineData {
	out := make([]opts.LineData, len(series))
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = opts.LineData{Value: missing}
			continue
		}
		out[i] = opts.LineData{Value: v}
	}
	return out
}

package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/thermal.report/internal/security"
)

// ErrNoTrendData is returned when neither trend series has a finite sample.
var ErrNoTrendData = errors.New("no finite trend samples")

const (
	plotWidth  = 14 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// TrendSeries is the pair of spread series shown on the trend plot, indexed
// by time.
type TrendSeries struct {
	CellRange      []float64
	LayerMeanRange []float64
}

func trendPlot(title string, s TrendSeries) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time index"
	p.Y.Label.Text = "range (°C)"
	p.Add(plotter.NewGrid())

	lines := []struct {
		name   string
		series []float64
		colour color.Color
	}{
		{"cell range", s.CellRange, color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}},
		{"layer mean range", s.LayerMeanRange, color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}},
	}

	added := 0
	for _, l := range lines {
		pts := finiteXYs(l.series)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("create %s line: %w", l.name, err)
		}
		line.Color = l.colour
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(l.name, line)
		added++
	}
	if added == 0 {
		return nil, ErrNoTrendData
	}
	p.Legend.Top = true
	return p, nil
}

// finiteXYs drops NaN and infinite samples, which plotter rejects.
func finiteXYs(series []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(series))
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i), Y: v})
	}
	return pts
}

// SaveTrendPlot writes the trend plot to path; the format follows the file
// extension. path must be under the working or temp directory.
func SaveTrendPlot(path, title string, s TrendSeries) error {
	if err := security.ValidateOutputPath(path); err != nil {
		return fmt.Errorf("invalid plot path: %w", err)
	}
	p, err := trendPlot(title, s)
	if err != nil {
		return err
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("save trend plot: %w", err)
	}
	return nil
}

// WriteTrendPNG writes the trend plot to w as PNG.
func WriteTrendPNG(w io.Writer, title string, s TrendSeries) error {
	p, err := trendPlot(title, s)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("encode trend plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pterm/pterm"

	"github.com/banshee-data/thermal.report/internal/thermal"
	"github.com/banshee-data/thermal.report/internal/units"
)

// TerminalFrame returns the frame as coloured blocks, one box per layer,
// followed by the overall and coolant readouts. Colours are scaled to
// [vmin, vmax].
func TerminalFrame(f thermal.FrameResult, vmin, vmax float64) string {
	var b strings.Builder
	for _, lf := range f.Layers {
		title := fmt.Sprintf("Layer %d | mean %s | max %s | min %s | range %s | std %s",
			lf.Layer+1,
			units.FormatCelsius(lf.Stats.Mean),
			units.FormatCelsius(lf.Stats.Max),
			units.FormatCelsius(lf.Stats.Min),
			units.FormatDelta(lf.Stats.Range, units.Celsius),
			units.FormatDelta(lf.Stats.StdDev, units.Celsius))
		b.WriteString(pterm.DefaultBox.WithTitle(title).WithTitleTopLeft().Sprint(layerBlocks(lf, vmin, vmax)))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("t=%d  overall mean %s  range %s  layer mean range %s\n",
		f.TimeIndex,
		units.FormatCelsius(f.Overall.Mean),
		units.FormatDelta(f.Overall.Range, units.Celsius),
		units.FormatDelta(f.LayerMeanRange, units.Celsius)))
	b.WriteString(fmt.Sprintf("coolant in %s  out %s  flow %s  heat flux %s\n",
		units.FormatCelsius(f.Coolant.Inlet),
		units.FormatCelsius(f.Coolant.Outlet),
		units.FormatFlow(f.Coolant.Flow),
		units.FormatWatts(f.Coolant.HeatFlux)))
	b.WriteString(heatLegend(vmin, vmax))
	return b.String()
}

// PrintFrame writes TerminalFrame to w, clearing the screen first when clear
// is set.
func PrintFrame(w io.Writer, f thermal.FrameResult, vmin, vmax float64, clear bool) error {
	if clear {
		if _, err := io.WriteString(w, "\033[H\033[2J"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, TerminalFrame(f, vmin, vmax))
	return err
}

// layerBlocks draws grid row 0 on the bottom line, matching the heatmap's
// y axis.
func layerBlocks(lf thermal.LayerFrame, vmin, vmax float64) string {
	var b strings.Builder
	for i := len(lf.Values) - 1; i >= 0; i-- {
		if i < len(lf.Values)-1 {
			b.WriteString("\n")
		}
		for j, v := range lf.Values[i] {
			if j > 0 && j%thermal.ModuleColumns == 0 {
				b.WriteString(" ")
			}
			b.WriteString(heatBlock(v, vmin, vmax))
		}
	}
	return b.String()
}

// heatBlock is a two-character cell; missing values show as dots.
func heatBlock(v, vmin, vmax float64) string {
	if math.IsNaN(v) {
		return pterm.FgGray.Sprint("··")
	}
	return heatStyle(v, vmin, vmax).Sprint("▄▄")
}

func heatStyle(v, vmin, vmax float64) *pterm.Style {
	if vmax <= vmin {
		return pterm.NewStyle(pterm.BgGray, pterm.FgWhite)
	}
	normalized := (v - vmin) / (vmax - vmin)
	switch {
	case normalized < 0.2:
		return pterm.NewStyle(pterm.BgBlue, pterm.FgWhite)
	case normalized < 0.4:
		return pterm.NewStyle(pterm.BgCyan, pterm.FgBlack)
	case normalized < 0.6:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgBlack)
	case normalized < 0.8:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	default:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	}
}

func heatLegend(vmin, vmax float64) string {
	step := (vmax - vmin) / 5
	var b strings.Builder
	b.WriteString("scale:")
	for i := 0; i < 5; i++ {
		lo := vmin + float64(i)*step
		b.WriteString(" ")
		b.WriteString(heatStyle(lo+step/2, vmin, vmax).Sprint("▄▄"))
		b.WriteString(fmt.Sprintf(" %.0f", lo))
	}
	b.WriteString(fmt.Sprintf("-%.0f°C\n", vmax))
	return b.String()
}

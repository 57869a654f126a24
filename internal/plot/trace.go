package plot

import (
	"github.com/guptarohit/asciigraph"
)

// PhaseHeading overlays the VR heading and the bump phase, both in radians.
// heading may be nil. Empty input renders a placeholder.
func PhaseHeading(caption string, bump, heading []float64, width, height int) string {
	if len(bump) == 0 {
		return titleStyle.Render(caption) + "\n" + axisStyle.Render(emptyPlaceholder)
	}

	series := [][]float64{bump}
	colors := []asciigraph.AnsiColor{asciigraph.Blue}
	if len(heading) > 0 {
		series = [][]float64{heading, bump}
		colors = []asciigraph.AnsiColor{asciigraph.Default, asciigraph.Blue}
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	)
}

// Package plot renders recordings and persistence diagrams for the terminal.
package plot

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gonum/matrix/mat64"
)

const (
	// heatmap colour limits, in ΔF/F0
	vmin = 0.0
	vmax = 2.0

	emptyPlaceholder = "(no frames)"
)

// matplotlib's Blues, light to dark
var blues = [][3]float64{
	{0xf7, 0xfb, 0xff},
	{0xde, 0xeb, 0xf7},
	{0xc6, 0xdb, 0xef},
	{0x9e, 0xca, 0xe1},
	{0x6b, 0xae, 0xd6},
	{0x42, 0x92, 0xc6},
	{0x21, 0x71, 0xb5},
	{0x08, 0x51, 0x9c},
	{0x08, 0x30, 0x6b},
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
)

// blueHex maps v onto the Blues colormap between vmin and vmax
func blueHex(v float64) string {
	if math.IsNaN(v) {
		v = vmin
	}
	x := (v - vmin) / (vmax - vmin)
	x = math.Max(0, math.Min(1, x))

	pos := x * float64(len(blues)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)

	var rgb [3]int
	for c := 0; c < 3; c++ {
		rgb[c] = int(math.Round(blues[lo][c] + frac*(blues[hi][c]-blues[lo][c])))
	}

	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

// Heatmap draws neural (glomeruli by frames) with one text row per
// glomerulus and time binned into at most width columns. Row 0 is drawn at
// the bottom. A nil matrix renders a placeholder.
func Heatmap(title string, neural mat64.Matrix, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	if d, ok := neural.(*mat64.Dense); neural == nil || ok && d == nil {
		sb.WriteString(axisStyle.Render(emptyPlaceholder))
		return sb.String()
	}

	rows, cols := neural.Dims()
	if width <= 0 || width > cols {
		width = cols
	}

	for r := rows - 1; r >= 0; r-- {
		sb.WriteString(axisStyle.Render(fmt.Sprintf("%2d ", r)))
		for b := 0; b < width; b++ {
			start := b * cols / width
			end := (b + 1) * cols / width

			var acc float64
			for t := start; t < end; t++ {
				acc += neural.At(r, t)
			}
			mean := acc / float64(end-start)

			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(blueHex(mean))).Render("█"))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(axisStyle.Render(fmt.Sprintf("   %d frames, ΔF/F0 %.1f..%.1f", cols, vmin, vmax)))

	return sb.String()
}

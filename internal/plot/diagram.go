package plot

import (
	"fmt"
	"strings"

	"github.com/StephenThornquist/nico-ripser/internal/analysis"
	"github.com/charmbracelet/lipgloss"
)

// one colour per homology dimension, matplotlib's C0, C1, C2, ...
var dimColors = []lipgloss.Color{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728"}

// Braille dots, 2 wide by 4 tall, offset from 0x2800
var pixelMap = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

type canvas struct {
	width, height int
	grid          [][]rune
	// highest dimension drawn into each cell, -1 for the diagonal only
	dim [][]int
}

func newCanvas(w, h int) *canvas {
	c := &canvas{width: w, height: h, grid: make([][]rune, h), dim: make([][]int, h)}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
		c.dim[i] = make([]int, w)
		for j := range c.grid[i] {
			c.grid[i][j] = 0x2800
			c.dim[i][j] = -2
		}
	}
	return c
}

// set lights the sub-pixel (x, y), y growing downwards
func (c *canvas) set(x, y, dim int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.width || row >= c.height {
		return
	}

	c.grid[row][col] |= pixelMap[y%4][x%2]
	if dim > c.dim[row][col] {
		c.dim[row][col] = dim
	}
}

func (c *canvas) render() string {
	var sb strings.Builder
	for row := 0; row < c.height; row++ {
		sb.WriteString(axisStyle.Render("│"))
		for col := 0; col < c.width; col++ {
			cell := string(c.grid[row][col])
			switch d := c.dim[row][col]; {
			case d >= 0:
				sb.WriteString(lipgloss.NewStyle().Foreground(dimColors[d%len(dimColors)]).Render(cell))
			case d == -1:
				sb.WriteString(axisStyle.Render(cell))
			default:
				sb.WriteString(cell)
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString(axisStyle.Render("└" + strings.Repeat("─", c.width)))

	return sb.String()
}

// Diagram scatters birth against death for every interval of res, with the
// diagonal for reference. Infinite deaths are pinned to the top edge. An
// empty result renders a placeholder.
func Diagram(title string, res *analysis.Result, width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	if res == nil || res.Len() == 0 {
		sb.WriteString(axisStyle.Render("(no intervals)"))
		return sb.String()
	}

	limit := res.MaxFinite() * 1.05
	if limit == 0 {
		limit = 1
	}

	c := newCanvas(width, height)
	px, py := width*2, height*4
	toX := func(v float64) int { return int(v / limit * float64(px-1)) }
	toY := func(v float64) int { return py - 1 - int(v/limit*float64(py-1)) }

	for x := 0; x < px; x++ {
		v := float64(x) / float64(px-1) * limit
		c.set(x, toY(v), -1)
	}

	for _, d := range res.Diagrams {
		for _, p := range d.Pairs {
			y := 0
			if !p.Infinite() {
				y = toY(p.Death)
			}
			c.set(toX(p.Birth), y, d.Dim)
		}
	}

	sb.WriteString(axisStyle.Render(fmt.Sprintf("death (top = ∞, max %.3g)", limit)))
	sb.WriteString("\n")
	sb.WriteString(c.render())
	sb.WriteString("\n")

	legend := make([]string, 0, len(res.Diagrams))
	for _, d := range res.Diagrams {
		legend = append(legend, lipgloss.NewStyle().Foreground(dimColors[d.Dim%len(dimColors)]).
			Render(fmt.Sprintf("H%d: %d", d.Dim, len(d.Pairs))))
	}
	sb.WriteString(" birth   " + strings.Join(legend, "  "))

	return sb.String()
}

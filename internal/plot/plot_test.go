package plot

import (
	"math"
	"strings"
	"testing"

	"github.com/StephenThornquist/nico-ripser/internal/analysis"
	"github.com/gonum/matrix/mat64"
)

func TestBlueHex(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{-1, "#f7fbff"},
		{0, "#f7fbff"},
		{2, "#08306b"},
		{5, "#08306b"},
		{math.NaN(), "#f7fbff"},
	}
	for _, tt := range tests {
		if got := blueHex(tt.v); got != tt.want {
			t.Errorf("blueHex(%v): expected %s, got %s", tt.v, tt.want, got)
		}
	}
}

func TestHeatmap(t *testing.T) {
	neural := mat64.NewDense(16, 40, nil)
	out := Heatmap("dfof", neural, 10)

	if n := strings.Count(out, "█"); n != 160 {
		t.Errorf("expected 16x10 cells, got %d", n)
	}
	if !strings.Contains(out, "40 frames") {
		t.Errorf("expected frame count in footer, got %q", out)
	}
}

func TestHeatmapNarrowRecording(t *testing.T) {
	out := Heatmap("dfof", mat64.NewDense(16, 3, nil), 100)
	if n := strings.Count(out, "█"); n != 48 {
		t.Errorf("expected one cell per frame, got %d", n)
	}
}

func TestEmptyPlots(t *testing.T) {
	if out := Heatmap("Pre VR", nil, 80); !strings.Contains(out, emptyPlaceholder) {
		t.Errorf("expected placeholder heatmap, got %q", out)
	}
	if out := PhaseHeading("Pre VR", nil, nil, 80, 10); !strings.Contains(out, emptyPlaceholder) {
		t.Errorf("expected placeholder trace, got %q", out)
	}
	if out := Diagram("Pre VR", &analysis.Result{}, 40, 10); !strings.Contains(out, "no intervals") {
		t.Errorf("expected placeholder diagram, got %q", out)
	}
}

func TestPhaseHeading(t *testing.T) {
	bump := []float64{0, 1, 2, 3, 2, 1}
	out := PhaseHeading("phase", bump, []float64{0, 1, 2, 3, 2, 1}, 30, 5)
	if !strings.Contains(out, "phase") {
		t.Errorf("expected caption in plot, got %q", out)
	}
}

func TestDiagram(t *testing.T) {
	res := &analysis.Result{Diagrams: []analysis.Diagram{
		{Dim: 0, Pairs: []analysis.Pair{{Birth: 0, Death: 0.5}, {Birth: 0, Death: math.Inf(1)}}},
		{Dim: 1, Pairs: []analysis.Pair{{Birth: 0.6, Death: 0.9}}},
	}}
	out := Diagram("During VR", res, 20, 8)

	if !strings.Contains(out, "H0: 2") || !strings.Contains(out, "H1: 1") {
		t.Errorf("expected legend counts, got %q", out)
	}
	if lines := strings.Count(out, "│"); lines != 8 {
		t.Errorf("expected 8 canvas rows, got %d", lines)
	}
}

func TestCanvasSet(t *testing.T) {
	c := newCanvas(2, 1)
	c.set(0, 0, 0)
	c.set(3, 3, 1)
	c.set(-1, 0, 0)
	c.set(10, 10, 0)

	if c.grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1 in cell 0, got %U", c.grid[0][0])
	}
	if c.grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8 in cell 1, got %U", c.grid[0][1])
	}
	if c.dim[0][1] != 1 {
		t.Errorf("expected cell 1 coloured as H1, got %d", c.dim[0][1])
	}
}

func TestHeatmapNilDense(t *testing.T) {
	var empty *mat64.Dense
	if out := Heatmap("Pre VR", empty, 80); !strings.Contains(out, emptyPlaceholder) {
		t.Errorf("expected placeholder for nil view, got %q", out)
	}
}

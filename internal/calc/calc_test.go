package calc

import (
	"math"
	"testing"

	"github.com/gonum/matrix/mat64"
)

func TestCorrelationDistance(t *testing.T) {
	cloud := mat64.NewDense(4, 3, []float64{
		1, 2, 3,
		2, 4, 6, // scaled copy of row 0
		3, 2, 1, // reversed
		5, 5, 5, // constant
	})
	dist := mat64.NewDense(4, 4, nil)

	if err := Init(2).CorrelationDistance(cloud, dist); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		i, j int
		want float64
	}{
		{0, 0, 0},
		{0, 1, 0},
		{0, 2, 2},
		{1, 2, 2},
		{0, 3, 1},
		{3, 3, 0},
	}
	for _, tt := range tests {
		if got := dist.At(tt.i, tt.j); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("d(%d,%d): expected %f, got %f", tt.i, tt.j, tt.want, got)
		}
		if dist.At(tt.i, tt.j) != dist.At(tt.j, tt.i) {
			t.Errorf("d(%d,%d) not symmetric", tt.i, tt.j)
		}
	}
}

func TestCorrelationDistanceExact(t *testing.T) {
	// scaled and shifted copies, on a large baseline
	cloud := mat64.NewDense(3, 5, []float64{
		1, 2, 3, 5, 8,
		2, 4, 6, 10, 16,
		1e6 + 1, 1e6 + 2, 1e6 + 3, 1e6 + 5, 1e6 + 8,
	})
	dist := mat64.NewDense(3, 3, nil)

	if err := Init(1).CorrelationDistance(cloud, dist); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if got := dist.At(i, j); got != 0 {
				t.Errorf("d(%d,%d): expected exactly 0, got %g", i, j, got)
			}
		}
	}

	reversed := mat64.NewDense(2, 3, []float64{1, 2, 3, 6, 4, 2})
	dist = mat64.NewDense(2, 2, nil)
	if err := Init(1).CorrelationDistance(reversed, dist); err != nil {
		t.Fatal(err)
	}
	if got := dist.At(0, 1); got != 2 {
		t.Errorf("expected exactly 2 for anti-correlated rows, got %g", got)
	}
}

func TestCorrelationDistanceDims(t *testing.T) {
	cloud := mat64.NewDense(3, 2, nil)
	if err := Init(1).CorrelationDistance(cloud, mat64.NewDense(2, 2, nil)); err == nil {
		t.Fatal("expected dimension error")
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	tests := []struct {
		q, want float64
	}{
		{0, 1},
		{50, 3},
		{100, 5},
		{5, 1.2},
		{25, 2},
	}
	for _, tt := range tests {
		if got := Percentile(values, tt.q); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Percentile(%v): expected %f, got %f", tt.q, tt.want, got)
		}
	}
	if values[0] != 5 {
		t.Error("Percentile modified its input")
	}
}

func TestDFoF(t *testing.T) {
	raw := mat64.NewDense(2, 5, []float64{
		10, 10, 10, 20, 10,
		2, 4, 6, 8, 10,
	})
	out := Init(0).DFoF(raw, 0)

	if got := out.At(0, 3); got != 1 {
		t.Errorf("expected ΔF/F0 1 at (0,3), got %f", got)
	}
	if got := out.At(1, 4); got != 4 {
		t.Errorf("expected ΔF/F0 4 at (1,4), got %f", got)
	}
	if got := out.At(1, 0); got != 0 {
		t.Errorf("expected ΔF/F0 0 at baseline, got %f", got)
	}
}

package analysis

import (
	"math"

	"github.com/gonum/matrix/mat64"
)

// Pair is one persistence interval. Death is +Inf for classes that never die.
type Pair struct {
	Birth float64
	Death float64
}

// Infinite reports whether the class survives the whole filtration
func (p Pair) Infinite() bool {
	return math.IsInf(p.Death, 1)
}

// Diagram holds the intervals of one homology dimension
type Diagram struct {
	Dim   int
	Pairs []Pair
}

// Result is the set of diagrams computed for one point cloud
type Result struct {
	Points   int
	Diagrams []Diagram
}

// Computer computes persistence diagrams for a point cloud whose rows are
// observations. A nil or empty cloud yields an empty Result.
type Computer interface {
	Compute(cloud *mat64.Dense) (*Result, error)
}

func emptyResult(maxDim int) *Result {
	res := &Result{Diagrams: make([]Diagram, maxDim+1)}
	for d := range res.Diagrams {
		res.Diagrams[d].Dim = d
	}
	return res
}

// Len returns the total number of intervals across dimensions
func (r *Result) Len() int {
	n := 0
	for _, d := range r.Diagrams {
		n += len(d.Pairs)
	}
	return n
}

// Dense lays the intervals out as (dim, birth, death) rows, nil when there
// are none.
func (r *Result) Dense() *mat64.Dense {
	n := r.Len()
	if n == 0 {
		return nil
	}

	m := mat64.NewDense(n, 3, nil)
	i := 0
	for _, d := range r.Diagrams {
		for _, p := range d.Pairs {
			m.SetRow(i, []float64{float64(d.Dim), p.Birth, p.Death})
			i++
		}
	}

	return m
}

// MaxFinite returns the largest finite birth or death value, 0 if none
func (r *Result) MaxFinite() float64 {
	var max float64
	for _, d := range r.Diagrams {
		for _, p := range d.Pairs {
			max = math.Max(max, p.Birth)
			if !p.Infinite() {
				max = math.Max(max, p.Death)
			}
		}
	}
	return max
}

package calc

import (
	"math"
	"sort"

	"github.com/gonum/matrix/mat64"
)

// BaselinePercentile is the fluorescence percentile taken as F0.
const BaselinePercentile = 5

// DFoF returns (F - F0) / F0 for every row of raw, F0 being the row's
// percentile-th fluorescence over the whole recording.
func (p *PipeLine) DFoF(raw mat64.Matrix, percentile float64) *mat64.Dense {
	rows, cols := raw.Dims()
	outputMat := mat64.NewDense(rows, cols, nil)

	p.run(rows, func(index int) {
		trace := mat64.Row(nil, index, raw)
		f0 := Percentile(trace, percentile)

		for t, f := range trace {
			outputMat.Set(index, t, (f-f0)/f0)
		}
	})

	return outputMat
}

// Percentile returns the q-th percentile of values, interpolating linearly
// between the closest ranks. values is not modified.
func Percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		return sorted[0]
	}
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Package analysis adapts recording phases into the inputs of persistent
// homology and computes persistence diagrams from them.
package analysis

import (
	"github.com/StephenThornquist/nico-ripser/internal/calc"
	"github.com/StephenThornquist/nico-ripser/internal/recording"
	"github.com/gonum/matrix/mat64"
)

// PointCloud transposes a phase's neural view into one row per time sample
// and one column per glomerulus, keeping every downsample-th sample starting
// with the first. It returns nil for an empty phase.
func PointCloud(phase *recording.Phase, downsample int) *mat64.Dense {
	if phase == nil || phase.Empty() {
		return nil
	}
	if downsample < 1 {
		downsample = 1
	}

	neural := phase.Neural()
	features, samples := neural.Dims()
	n := (samples + downsample - 1) / downsample

	cloud := mat64.NewDense(n, features, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < features; j++ {
			cloud.Set(i, j, neural.At(j, i*downsample))
		}
	}

	return cloud
}

// Distances returns the correlation distance matrix between the rows of cloud.
func Distances(pl *calc.PipeLine, cloud mat64.Matrix) (*mat64.Dense, error) {
	if pl == nil {
		pl = calc.Init(0)
	}
	n, _ := cloud.Dims()
	dist := mat64.NewDense(n, n, nil)
	if err := pl.CorrelationDistance(cloud, dist); err != nil {
		return nil, err
	}

	return dist, nil
}

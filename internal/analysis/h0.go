package analysis

import (
	"math"
	"sort"

	"github.com/StephenThornquist/nico-ripser/internal/calc"
	"github.com/gonum/matrix/mat64"
)

// H0 computes 0-dimensional persistence of the Vietoris-Rips filtration on
// the correlation distance. Every point is born at 0; a component dies at
// the length of the edge that merges it into an older one.
type H0 struct {
	Pipe      *calc.PipeLine
	Threshold float64 // 0 means no threshold
}

// Merges shorter than this are zero-persistence and not reported
const minPersistence = 1e-12

type edge struct {
	i, j int
	w    float64
}

// Compute implements Computer
func (h *H0) Compute(cloud *mat64.Dense) (*Result, error) {
	res := emptyResult(0)
	if cloud == nil {
		return res, nil
	}
	n, _ := cloud.Dims()
	res.Points = n
	if n == 1 {
		res.Diagrams[0].Pairs = []Pair{{0, math.Inf(1)}}
		return res, nil
	}

	dist, err := Distances(h.Pipe, cloud)
	if err != nil {
		return nil, err
	}

	edges := make([]edge, 0, n*(n-1)/2)
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			w := dist.At(i, j)
			if h.Threshold > 0 && w > h.Threshold {
				continue
			}
			edges = append(edges, edge{i, j, w})
		}
	}
	sort.SliceStable(edges, func(a, b int) bool {
		return edges[a].w < edges[b].w
	})

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}

	components := n
	for _, e := range edges {
		a, b := find(e.i), find(e.j)
		if a == b {
			continue
		}
		parent[a] = b
		components--
		if e.w > minPersistence {
			res.Diagrams[0].Pairs = append(res.Diagrams[0].Pairs, Pair{0, e.w})
		}
	}
	for ; components > 0; components-- {
		res.Diagrams[0].Pairs = append(res.Diagrams[0].Pairs, Pair{0, math.Inf(1)})
	}

	return res, nil
}

package recording

import (
	"github.com/gonum/matrix/mat64"
)

const (
	PreVR    = "Pre VR"
	DuringVR = "During VR"
)

// Phase is a contiguous column range [Start, End) of a recording. Its
// matrices are views into the recording and must be treated as read-only.
// An empty phase has nil matrices.
type Phase struct {
	Name       string
	Start      int
	End        int
	neural     *mat64.Dense
	vr         *mat64.Dense
	timestamps []float64
}

// Cols returns the number of frames in the phase
func (p *Phase) Cols() int {
	return p.End - p.Start
}

// Empty reports whether the phase has no frames
func (p *Phase) Empty() bool {
	return p.Cols() == 0
}

// Neural returns the phase's ΔF/F0 view, nil when empty
func (p *Phase) Neural() *mat64.Dense {
	return p.neural
}

// VR returns the phase's VR view, nil when empty
func (p *Phase) VR() *mat64.Dense {
	return p.vr
}

// Timestamps returns the phase's frame timestamps, nil when the recording
// has none or the phase is empty.
func (p *Phase) Timestamps() []float64 {
	return p.timestamps
}

// SplitPhases cuts r at its boundary into the pre-VR frames [0, b) and the
// during-VR frames [b, T).
func SplitPhases(r *Recording) (pre, during *Phase) {
	return r.slice(PreVR, 0, r.boundary), r.slice(DuringVR, r.boundary, r.Frames())
}

func (r *Recording) slice(name string, start, end int) *Phase {
	p := &Phase{Name: name, Start: start, End: end}
	if start == end {
		return p
	}

	p.neural = r.neural.Slice(0, NumGlomeruli, start, end).(*mat64.Dense)
	p.vr = r.vr.Slice(0, r.Channels(), start, end).(*mat64.Dense)
	if r.timestamps != nil {
		p.timestamps = r.timestamps[start:end:end]
	}

	return p
}

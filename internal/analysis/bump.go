package analysis

import (
	"math"
	"math/cmplx"

	"github.com/gonum/matrix/mat64"
)

// GlomerulusAngles returns the preferred angle of each of n glomeruli. The
// two halves of the bridge interleave around the circle: rows of the first
// half take every other angle starting at -pi and rows of the second half
// fill the angles in between.
func GlomerulusAngles(n int) []float64 {
	linear := make([]float64, n)
	for k := range linear {
		linear[k] = -math.Pi
		if n > 1 {
			linear[k] += 2 * math.Pi * float64(k) / float64(n-1)
		}
	}

	angles := make([]float64, 0, n)
	for k := 0; k < n; k += 2 {
		angles = append(angles, linear[k])
	}
	for k := 1; k < n; k += 2 {
		angles = append(angles, linear[k])
	}

	return angles
}

// BumpPhase returns the population vector of each frame of neural
// (glomeruli by frames), weighting each glomerulus by GlomerulusAngles.
func BumpPhase(neural mat64.Matrix) []complex128 {
	if d, ok := neural.(*mat64.Dense); neural == nil || ok && d == nil {
		return nil
	}
	rows, cols := neural.Dims()

	circ := make([]complex128, rows)
	for r, theta := range GlomerulusAngles(rows) {
		circ[r] = cmplx.Exp(complex(0, theta))
	}

	phase := make([]complex128, cols)
	for t := 0; t < cols; t++ {
		var acc complex128
		for r := 0; r < rows; r++ {
			acc += circ[r] * complex(neural.At(r, t), 0)
		}
		phase[t] = acc
	}

	return phase
}

// AlignToHeading returns the angle of each bump phase. With subtractOffset
// the phase is first rotated by the mean offset from heading, which must
// then be sampled on the same frames.
func AlignToHeading(phase []complex128, heading []float64, subtractOffset bool) []float64 {
	rot := complex(1, 0)
	if subtractOffset && len(heading) == len(phase) && len(phase) > 0 {
		var offset complex128
		for t, p := range phase {
			offset += cmplx.Exp(complex(0, cmplx.Phase(p)-heading[t]))
		}
		if cmplx.Abs(offset) > 0 {
			rot = offset / complex(cmplx.Abs(offset), 0)
		}
	}

	angles := make([]float64, len(phase))
	for t, p := range phase {
		angles[t] = cmplx.Phase(p / rot)
	}

	return angles
}

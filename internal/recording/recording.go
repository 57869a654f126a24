// Package recording loads per-fly imaging archives into validated, immutable
// recordings and splits them at the VR onset.
package recording

import (
	"errors"
	"fmt"
	"io/fs"
	"math"

	"github.com/StephenThornquist/nico-ripser/internal/io"
	"github.com/StephenThornquist/nico-ripser/internal/logging"
	"github.com/gonum/matrix/mat64"
)

// Recording is one fly's ΔF/F0 traces and time-aligned VR channels. It is
// never modified after Load returns it.
type Recording struct {
	path       string
	neural     *mat64.Dense
	vr         *mat64.Dense
	boundary   int
	timestamps []float64
}

// Path returns the archive the recording was read from
func (r *Recording) Path() string { return r.path }

// Neural returns the NumGlomeruli by T ΔF/F0 matrix
func (r *Recording) Neural() mat64.Matrix { return readOnly{r.neural} }

// VR returns the C by T behavioral matrix
func (r *Recording) VR() mat64.Matrix { return readOnly{r.vr} }

// readOnly hides the backing *mat64.Dense so callers cannot assert their way
// to a writable matrix.
type readOnly struct {
	m *mat64.Dense
}

func (ro readOnly) Dims() (int, int) { return ro.m.Dims() }
func (ro readOnly) At(i, j int) float64 { return ro.m.At(i, j) }
func (ro readOnly) T() mat64.Matrix { return mat64.Transpose{Matrix: ro} }

// Boundary returns the first during-VR frame index, in [0, Frames()].
func (r *Recording) Boundary() int { return r.boundary }

// Frames returns T
func (r *Recording) Frames() int {
	_, c := r.neural.Dims()
	return c
}

// Channels returns the number of VR channels
func (r *Recording) Channels() int {
	c, _ := r.vr.Dims()
	return c
}

// Timestamps returns a copy of the per-frame timestamps, or nil when the
// archive has none.
func (r *Recording) Timestamps() []float64 {
	if r.timestamps == nil {
		return nil
	}
	return append([]float64(nil), r.timestamps...)
}

// Load reads the archive at path using SchemaV1.
func Load(path string) (*Recording, error) {
	return LoadSchema(path, SchemaV1)
}

// LoadSchema reads and validates the archive at path. The returned error is
// a *NotFoundError, *MissingFieldError or *ShapeMismatchError for layout
// problems, or a wrapped decode error otherwise.
func LoadSchema(path string, schema Schema) (*Recording, error) {
	archive, err := io.ReadArchive(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	logging.Debugf("read %s: %d arrays %v\n", path, len(archive.Names()), archive.Names())

	for _, name := range schema.required() {
		if _, ok := archive.Get(name); !ok {
			return nil, &MissingFieldError{Path: path, Field: name}
		}
	}

	neuralArr, _ := archive.Get(schema.Neural)
	neural, err := neuralMatrix(path, neuralArr)
	if err != nil {
		return nil, err
	}
	_, frames := neural.Dims()

	vrArr, _ := archive.Get(schema.VR)
	channels, err := vrChannels(path, vrArr, frames)
	if err != nil {
		return nil, err
	}
	if schema.Position != "" {
		if pos, ok := archive.Get(schema.Position); ok {
			xy, err := positionChannels(path, pos, frames)
			if err != nil {
				return nil, err
			}
			channels = append(channels, xy...)
		}
	}

	var timestamps []float64
	if schema.Timestamps != "" {
		if ts, ok := archive.Get(schema.Timestamps); ok {
			timestamps, err = frameTimestamps(path, ts, frames)
			if err != nil {
				return nil, err
			}
		}
	}

	boundArr, _ := archive.Get(schema.Boundary)
	boundary, err := resolveBoundary(path, boundArr, frames, timestamps)
	if err != nil {
		return nil, err
	}

	vr := mat64.NewDense(len(channels), frames, nil)
	for i, ch := range channels {
		vr.SetRow(i, ch)
	}

	logging.Infof("loaded %s: %d glomeruli x %d frames, %d VR channels, VR onset at frame %d\n",
		path, NumGlomeruli, frames, len(channels), boundary)

	return &Recording{
		path:       path,
		neural:     neural,
		vr:         vr,
		boundary:   boundary,
		timestamps: timestamps,
	}, nil
}

func neuralMatrix(path string, arr *io.Array) (*mat64.Dense, error) {
	mismatch := func(reason string) error {
		return &ShapeMismatchError{Path: path, Field: arr.Name, Shape: arr.Shape, Reason: reason}
	}

	if len(arr.Shape) != 2 {
		return nil, mismatch("neural signal must be 2-D (glomeruli, frames)")
	}
	if arr.IsComplex() {
		return nil, mismatch("neural signal must be real-valued")
	}
	if arr.Shape[0] != NumGlomeruli {
		return nil, mismatch(fmt.Sprintf("expected %d glomeruli, got %d", NumGlomeruli, arr.Shape[0]))
	}
	if arr.Shape[1] == 0 {
		return nil, mismatch("recording has no frames")
	}

	return arr.Dense()
}

func vrChannels(path string, arr *io.Array, frames int) ([][]float64, error) {
	mismatch := func(reason string) error {
		return &ShapeMismatchError{Path: path, Field: arr.Name, Shape: arr.Shape, Reason: reason}
	}

	var rows [][]float64
	switch len(arr.Shape) {
	case 1:
		if arr.Shape[0] != frames {
			return nil, mismatch(fmt.Sprintf("VR signal has %d samples, neural signal has %d frames", arr.Shape[0], frames))
		}
		rows = [][]float64{arr.Data}
		if arr.IsComplex() {
			rows = append(rows, arr.Imag)
		}
	case 2:
		c, n := arr.Shape[0], arr.Shape[1]
		if c == 0 {
			return nil, mismatch("VR signal has no channels")
		}
		if n != frames {
			return nil, mismatch(fmt.Sprintf("VR signal has %d samples, neural signal has %d frames", n, frames))
		}
		for i := 0; i < c; i++ {
			rows = append(rows, arr.Data[i*n:(i+1)*n])
			if arr.IsComplex() {
				rows = append(rows, arr.Imag[i*n:(i+1)*n])
			}
		}
	default:
		return nil, mismatch("VR signal must be 1-D or 2-D")
	}

	return rows, nil
}

// positionChannels splits an x + iy position trace into x and y channels.
func positionChannels(path string, arr *io.Array, frames int) ([][]float64, error) {
	if len(arr.Shape) != 1 || arr.Shape[0] != frames {
		return nil, &ShapeMismatchError{
			Path:   path,
			Field:  arr.Name,
			Shape:  arr.Shape,
			Reason: fmt.Sprintf("position must be 1-D with %d samples", frames),
		}
	}
	if !arr.IsComplex() {
		return [][]float64{arr.Data}, nil
	}

	return [][]float64{arr.Data, arr.Imag}, nil
}

func frameTimestamps(path string, arr *io.Array, frames int) ([]float64, error) {
	if len(arr.Shape) != 1 || arr.Shape[0] != frames {
		return nil, &ShapeMismatchError{
			Path:   path,
			Field:  arr.Name,
			Shape:  arr.Shape,
			Reason: fmt.Sprintf("expected one timestamp per frame (%d)", frames),
		}
	}
	for i := 1; i < len(arr.Data); i++ {
		if arr.Data[i] < arr.Data[i-1] {
			return nil, &ShapeMismatchError{
				Path:   path,
				Field:  arr.Name,
				Shape:  arr.Shape,
				Reason: fmt.Sprintf("timestamps decrease at frame %d", i),
			}
		}
	}

	return append([]float64(nil), arr.Data...), nil
}

// resolveBoundary turns the boundary marker into a frame index. With frame
// timestamps the marker is a time and the index is the number of frames
// before it; without them the marker is an index itself.
func resolveBoundary(path string, arr *io.Array, frames int, timestamps []float64) (int, error) {
	mismatch := func(reason string) error {
		return &ShapeMismatchError{Path: path, Field: arr.Name, Shape: arr.Shape, Reason: reason}
	}

	if arr.Len() != 1 || arr.IsComplex() {
		return 0, mismatch("phase boundary must be a single real value")
	}
	v := arr.Data[0]
	if math.IsNaN(v) {
		return 0, mismatch("phase boundary is NaN")
	}

	if timestamps != nil {
		b := 0
		for b < len(timestamps) && timestamps[b] < v {
			b++
		}
		return b, nil
	}

	if v < 0 || v > float64(frames) {
		return 0, mismatch(fmt.Sprintf("phase boundary %g outside [0, %d]", v, frames))
	}

	return int(math.Ceil(v)), nil
}

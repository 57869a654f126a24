package io

import (
	"fmt"
	goio "io"
	"os"
	"sort"
	"strings"

	"github.com/gonum/matrix/mat64"
	"github.com/klauspost/compress/zip"
	"github.com/kshedden/gonpy"
)

// Array is one named member of an npz archive, widened to float64.
type Array struct {
	Name  string
	Dtype string
	Shape []int
	Data  []float64
	// Imag holds the imaginary parts for complex dtypes, nil otherwise.
	Imag []float64
}

// Len returns the number of elements
func (a *Array) Len() int {
	return len(a.Data)
}

// IsComplex reports whether the array was stored with a complex dtype
func (a *Array) IsComplex() bool {
	return a.Imag != nil
}

// Dense returns the real part of a 1-D or 2-D array as a matrix. A 1-D array
// of length n becomes a 1 by n row.
func (a *Array) Dense() (*mat64.Dense, error) {
	switch len(a.Shape) {
	case 1:
		if a.Shape[0] == 0 {
			return nil, fmt.Errorf("[Dense] %s: zero-length array", a.Name)
		}
		return mat64.NewDense(1, a.Shape[0], a.Data), nil
	case 2:
		if a.Shape[0] == 0 || a.Shape[1] == 0 {
			return nil, fmt.Errorf("[Dense] %s: zero-length dimension in shape %v", a.Name, a.Shape)
		}
		return mat64.NewDense(a.Shape[0], a.Shape[1], a.Data), nil
	}

	return nil, fmt.Errorf("[Dense] %s: cannot view %d-D array as matrix", a.Name, len(a.Shape))
}

// Archive is a decoded npz file
type Archive struct {
	Path   string
	Size   int64
	arrays map[string]*Array
}

// Get returns the member stored as name.npy
func (a *Archive) Get(name string) (*Array, bool) {
	arr, ok := a.arrays[name]
	return arr, ok
}

// Names returns member names in sorted order
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.arrays))
	for k := range a.arrays {
		names = append(names, k)
	}
	sort.Strings(names)

	return names
}

// ReadArchive reads every npy member of the npz archive at path. The whole
// file is read and closed before returning.
func ReadArchive(path string) (*Archive, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("[ReadArchive] %w", err)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("[ReadArchive] %s: %w", path, err)
	}
	defer zr.Close()

	archive := &Archive{
		Path:   path,
		Size:   info.Size(),
		arrays: make(map[string]*Array, len(zr.File)),
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".npy") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("[ReadArchive] %s: open %s: %w", path, f.Name, err)
		}
		arr, err := readMember(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("[ReadArchive] %s: member %s: %w", path, f.Name, err)
		}

		arr.Name = strings.TrimSuffix(f.Name, ".npy")
		archive.arrays[arr.Name] = arr
	}

	return archive, nil
}

func readMember(r goio.Reader) (*Array, error) {
	rdr, err := gonpy.NewReader(r)
	if err != nil {
		return nil, err
	}

	dtype := strings.TrimLeft(rdr.Dtype, "<>|=")
	re, im, err := decodeAll(rdr, dtype)
	if err != nil {
		return nil, err
	}

	shape := append([]int(nil), rdr.Shape...)
	if rdr.ColumnMajor && len(shape) == 2 {
		re = toRowMajor(re, shape[0], shape[1])
		if im != nil {
			im = toRowMajor(im, shape[0], shape[1])
		}
	}

	return &Array{Dtype: dtype, Shape: shape, Data: re, Imag: im}, nil
}

func decodeAll(rdr *gonpy.NpyReader, dtype string) ([]float64, []float64, error) {
	switch dtype {
	case "f8":
		v, err := rdr.GetFloat64()
		return v, nil, err
	case "f4":
		v, err := rdr.GetFloat32()
		return widen(v), nil, err
	case "i8":
		v, err := rdr.GetInt64()
		return widen(v), nil, err
	case "i4":
		v, err := rdr.GetInt32()
		return widen(v), nil, err
	case "i2":
		v, err := rdr.GetInt16()
		return widen(v), nil, err
	case "i1":
		v, err := rdr.GetInt8()
		return widen(v), nil, err
	case "u8":
		v, err := rdr.GetUint64()
		return widen(v), nil, err
	case "u4":
		v, err := rdr.GetUint32()
		return widen(v), nil, err
	case "u2":
		v, err := rdr.GetUint16()
		return widen(v), nil, err
	case "u1":
		v, err := rdr.GetUint8()
		return widen(v), nil, err
	case "c16":
		v, err := rdr.GetComplex128()
		if err != nil {
			return nil, nil, err
		}
		re, im := make([]float64, len(v)), make([]float64, len(v))
		for i, c := range v {
			re[i], im[i] = real(c), imag(c)
		}
		return re, im, nil
	case "c8":
		v, err := rdr.GetComplex64()
		if err != nil {
			return nil, nil, err
		}
		re, im := make([]float64, len(v)), make([]float64, len(v))
		for i, c := range v {
			re[i], im[i] = float64(real(c)), float64(imag(c))
		}
		return re, im, nil
	}

	return nil, nil, fmt.Errorf("unsupported dtype %q", dtype)
}

type number interface {
	~float32 | ~int64 | ~int32 | ~int16 | ~int8 | ~uint64 | ~uint32 | ~uint16 | ~uint8
}

func widen[T number](v []T) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func toRowMajor(data []float64, rows, cols int) []float64 {
	out := make([]float64, len(data))
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			out[i*cols+j] = data[j*rows+i]
		}
	}
	return out
}

type nopCloser struct {
	goio.Writer
}

func (nopCloser) Close() error { return nil }

// WriteArchive writes arrays to path as a deflated npz archive. Arrays with
// dtype "i8" are stored as int64, complex arrays as complex128, everything
// else as float64.
func WriteArchive(path string, arrays ...*Array) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[WriteArchive] %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, arr := range arrays {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: arr.Name + ".npy", Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("[WriteArchive] %s: %w", arr.Name, err)
		}
		if err := writeMember(w, arr); err != nil {
			return fmt.Errorf("[WriteArchive] %s: %w", arr.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("[WriteArchive] %w", err)
	}

	return f.Close()
}

func writeMember(w goio.Writer, arr *Array) error {
	npw, err := gonpy.NewWriter(nopCloser{w})
	if err != nil {
		return err
	}
	npw.Shape = arr.Shape

	switch {
	case arr.IsComplex():
		data := make([]complex128, len(arr.Data))
		for i := range arr.Data {
			data[i] = complex(arr.Data[i], arr.Imag[i])
		}
		return npw.WriteComplex128(data)
	case arr.Dtype == "i8":
		data := make([]int64, len(arr.Data))
		for i, v := range arr.Data {
			data[i] = int64(v)
		}
		return npw.WriteInt64(data)
	}

	return npw.WriteFloat64(arr.Data)
}

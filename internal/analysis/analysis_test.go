package analysis

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/StephenThornquist/nico-ripser/internal/calc"
	"github.com/StephenThornquist/nico-ripser/internal/io"
	"github.com/StephenThornquist/nico-ripser/internal/recording"
	"github.com/gonum/matrix/mat64"
)

func loadPhases(t *testing.T, frames int, boundary float64) (*recording.Phase, *recording.Phase) {
	t.Helper()
	neural := make([]float64, 16*frames)
	for i := range neural {
		neural[i] = float64(i % 7)
	}
	path := filepath.Join(t.TempDir(), "rec.npz")
	err := io.WriteArchive(path,
		&io.Array{Name: "dfof", Shape: []int{16, frames}, Data: neural},
		&io.Array{Name: "vr_heading", Shape: []int{frames}, Data: make([]float64, frames)},
		&io.Array{Name: "bar_on_time", Dtype: "i8", Shape: []int{1}, Data: []float64{boundary}},
	)
	if err != nil {
		t.Fatal(err)
	}
	r, err := recording.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return recording.SplitPhases(r)
}

func TestPointCloud(t *testing.T) {
	pre, during := loadPhases(t, 25, 5)

	cloud := PointCloud(during, 1)
	if rows, cols := cloud.Dims(); rows != 20 || cols != 16 {
		t.Fatalf("expected 20x16 point cloud, got %dx%d", rows, cols)
	}
	if cloud.At(3, 2) != during.Neural().At(2, 3) {
		t.Error("point cloud is not the transpose of the phase")
	}

	down := PointCloud(during, 10)
	if rows, _ := down.Dims(); rows != 2 {
		t.Fatalf("expected 2 samples after downsampling by 10, got %d", rows)
	}
	if down.At(1, 4) != during.Neural().At(4, 10) {
		t.Error("downsampled cloud does not take every 10th sample")
	}

	if PointCloud(pre, 10) == nil {
		t.Error("expected non-empty pre-VR cloud")
	}
}

func TestEmptyPhaseComputes(t *testing.T) {
	pre, _ := loadPhases(t, 10, 0)
	if !pre.Empty() {
		t.Fatal("expected empty pre-VR phase")
	}

	cloud := PointCloud(pre, 1)
	if cloud != nil {
		t.Fatal("expected nil cloud for empty phase")
	}

	for _, c := range []Computer{
		&H0{Pipe: calc.Init(1)},
		&Ripser{Bin: "/nonexistent/ripser", MaxDim: 1, Pipe: calc.Init(1)},
	} {
		res, err := c.Compute(cloud)
		if err != nil {
			t.Fatalf("%T: expected no error for empty cloud, got %v", c, err)
		}
		if res.Len() != 0 || res.Dense() != nil {
			t.Errorf("%T: expected empty result, got %d pairs", c, res.Len())
		}
	}
}

func TestH0(t *testing.T) {
	// rows 0,1 and 2,3 are perfectly correlated pairs; the pairs are
	// anti-correlated with each other
	cloud := mat64.NewDense(4, 3, []float64{
		1, 2, 3,
		2, 4, 6,
		3, 2, 1,
		6, 4, 2,
	})

	res, err := (&H0{Pipe: calc.Init(2)}).Compute(cloud)
	if err != nil {
		t.Fatal(err)
	}
	pairs := res.Diagrams[0].Pairs
	if len(pairs) != 2 {
		t.Fatalf("expected one finite and one infinite pair, got %v", pairs)
	}
	if math.Abs(pairs[0].Death-2) > 1e-9 {
		t.Errorf("expected merge at distance 2, got %f", pairs[0].Death)
	}
	if !pairs[1].Infinite() {
		t.Errorf("expected an infinite class, got %v", pairs[1])
	}
	if res.Points != 4 {
		t.Errorf("expected 4 points, got %d", res.Points)
	}
}

func TestH0CorrelatedPair(t *testing.T) {
	cloud := mat64.NewDense(2, 3, []float64{
		1, 2, 3,
		2, 4, 6,
	})

	res, err := (&H0{Pipe: calc.Init(1)}).Compute(cloud)
	if err != nil {
		t.Fatal(err)
	}
	pairs := res.Diagrams[0].Pairs
	if len(pairs) != 1 || !pairs[0].Infinite() {
		t.Errorf("expected a single infinite class, got %v", pairs)
	}
}

func TestH0Threshold(t *testing.T) {
	cloud := mat64.NewDense(4, 3, []float64{
		1, 2, 3,
		2, 4, 6,
		3, 2, 1,
		6, 4, 2,
	})

	res, err := (&H0{Pipe: calc.Init(1), Threshold: 1}).Compute(cloud)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range res.Diagrams[0].Pairs {
		if !p.Infinite() {
			t.Errorf("expected only infinite classes below threshold, got %v", p)
		}
	}
	if len(res.Diagrams[0].Pairs) != 2 {
		t.Errorf("expected two surviving components, got %d", len(res.Diagrams[0].Pairs))
	}
}

func TestParseRipserOutput(t *testing.T) {
	out := `value range: [0,2]
distance matrix with 4 points, using threshold at enclosing radius 1.5
persistence intervals in dim 0:
 [0,0.25)
 [0, )
persistence intervals in dim 1:
 [0.5,0.75):  {[2,3] (0.5)}
`
	res, err := ParseRipserOutput(strings.NewReader(out), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Diagrams) != 3 {
		t.Fatalf("expected diagrams for dims 0..2, got %d", len(res.Diagrams))
	}
	if d0 := res.Diagrams[0].Pairs; len(d0) != 2 || d0[0].Death != 0.25 || !d0[1].Infinite() {
		t.Errorf("unexpected dim 0 pairs %v", d0)
	}
	if d1 := res.Diagrams[1].Pairs; len(d1) != 1 || d1[0].Birth != 0.5 || d1[0].Death != 0.75 {
		t.Errorf("unexpected dim 1 pairs %v", d1)
	}
	if len(res.Diagrams[2].Pairs) != 0 {
		t.Errorf("expected no dim 2 pairs, got %v", res.Diagrams[2].Pairs)
	}
	if res.MaxFinite() != 0.75 {
		t.Errorf("expected max finite 0.75, got %f", res.MaxFinite())
	}
}

func TestWriteLowerDistance(t *testing.T) {
	dist := mat64.NewDense(3, 3, []float64{
		0, 1, 2,
		1, 0, 0.5,
		2, 0.5, 0,
	})
	var buf bytes.Buffer
	if err := WriteLowerDistance(&buf, dist); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "1\n2,0.5\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBumpPhase(t *testing.T) {
	// a single active glomerulus puts the bump at its angle on the circle
	neural := mat64.NewDense(16, 2, nil)
	neural.Set(0, 0, 1) // row 0 -> angle -pi
	neural.Set(1, 1, 1) // row 1 -> third angle

	phase := BumpPhase(neural)
	if len(phase) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(phase))
	}

	angles := AlignToHeading(phase, nil, false)
	if math.Abs(math.Abs(angles[0])-math.Pi) > 1e-9 {
		t.Errorf("expected frame 0 at ±pi, got %f", angles[0])
	}
	want := -math.Pi + 2*math.Pi*2/15
	if math.Abs(angles[1]-want) > 1e-9 {
		t.Errorf("expected frame 1 at %f, got %f", want, angles[1])
	}
}

func TestAlignToHeading(t *testing.T) {
	heading := []float64{0.1, 0.5, -1, 2}
	phase := make([]complex128, len(heading))
	for i, h := range heading {
		phase[i] = complex(math.Cos(h+1), math.Sin(h+1)) // constant offset of 1 rad
	}

	aligned := AlignToHeading(phase, heading, true)
	for i := range heading {
		if math.Abs(aligned[i]-heading[i]) > 1e-9 {
			t.Errorf("frame %d: expected %f, got %f", i, heading[i], aligned[i])
		}
	}
}

func TestNewComputerFallback(t *testing.T) {
	c := NewComputer("definitely-not-a-ripser-binary", 1, 0, calc.Init(1))
	if _, ok := c.(*H0); !ok {
		t.Errorf("expected H0 fallback, got %T", c)
	}
}

// fakeRipser writes an executable shell script standing in for ripser
func fakeRipser(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	bin := filepath.Join(t.TempDir(), "ripser")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return bin
}

func TestRipserExternal(t *testing.T) {
	dir := t.TempDir()
	bin := fakeRipser(t, `echo "$@" > `+filepath.Join(dir, "args")+`
cat > `+filepath.Join(dir, "stdin")+`
cat <<'OUT'
value range: [0,2]
persistence intervals in dim 0:
 [0,2)
 [0, )
persistence intervals in dim 1:
OUT
`)

	computer := NewComputer(bin, 1, 0, calc.Init(1))
	if _, ok := computer.(*Ripser); !ok {
		t.Fatalf("expected a Ripser computer, got %T", computer)
	}

	cloud := mat64.NewDense(3, 3, []float64{
		1, 2, 3,
		2, 4, 6,
		3, 2, 1,
	})
	res, err := computer.Compute(cloud)
	if err != nil {
		t.Fatal(err)
	}

	args, err := os.ReadFile(filepath.Join(dir, "args"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(args)); got != "--format lower-distance --dim 1" {
		t.Errorf("unexpected arguments %q", got)
	}

	stdin, err := os.ReadFile(filepath.Join(dir, "stdin"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(stdin); got != "0\n2,2\n" {
		t.Errorf("unexpected distance input %q", got)
	}

	if res.Points != 3 {
		t.Errorf("expected 3 points, got %d", res.Points)
	}
	if len(res.Diagrams) != 2 {
		t.Fatalf("expected diagrams for dims 0 and 1, got %d", len(res.Diagrams))
	}
	h0 := res.Diagrams[0].Pairs
	if len(h0) != 2 || h0[0].Death != 2 || !h0[1].Infinite() {
		t.Errorf("unexpected H0 pairs %v", h0)
	}
	if len(res.Diagrams[1].Pairs) != 0 {
		t.Errorf("expected no H1 pairs, got %v", res.Diagrams[1].Pairs)
	}
}

func TestRipserThresholdAndFailure(t *testing.T) {
	dir := t.TempDir()
	bin := fakeRipser(t, `echo "$@" > `+filepath.Join(dir, "args")+`
echo "bad distance matrix" >&2
exit 1
`)

	r := &Ripser{Bin: bin, MaxDim: 0, Threshold: 0.5, Pipe: calc.Init(1)}
	_, err := r.Compute(mat64.NewDense(2, 3, []float64{1, 2, 3, 3, 2, 1}))
	if err == nil {
		t.Fatal("expected an error from a failing ripser")
	}
	if !strings.Contains(err.Error(), "bad distance matrix") {
		t.Errorf("expected ripser's stderr in the error, got %v", err)
	}

	args, err := os.ReadFile(filepath.Join(dir, "args"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(args)); got != "--format lower-distance --dim 0 --threshold 0.5" {
		t.Errorf("unexpected arguments %q", got)
	}
}

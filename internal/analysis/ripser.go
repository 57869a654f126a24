package analysis

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/StephenThornquist/nico-ripser/internal/calc"
	"github.com/StephenThornquist/nico-ripser/internal/logging"
	"github.com/gonum/matrix/mat64"
)

// Ripser runs the external ripser executable on the correlation distance
// matrix of a point cloud.
type Ripser struct {
	Bin       string
	MaxDim    int
	Threshold float64 // 0 means no threshold
	Pipe      *calc.PipeLine
}

// Compute implements Computer
func (r *Ripser) Compute(cloud *mat64.Dense) (*Result, error) {
	if cloud == nil {
		return emptyResult(r.MaxDim), nil
	}
	n, _ := cloud.Dims()
	if n == 1 {
		res := emptyResult(r.MaxDim)
		res.Points = 1
		res.Diagrams[0].Pairs = []Pair{{0, math.Inf(1)}}
		return res, nil
	}

	dist, err := Distances(r.Pipe, cloud)
	if err != nil {
		return nil, err
	}

	var stdin bytes.Buffer
	if err := WriteLowerDistance(&stdin, dist); err != nil {
		return nil, err
	}

	args := []string{"--format", "lower-distance", "--dim", strconv.Itoa(r.MaxDim)}
	if r.Threshold > 0 {
		args = append(args, "--threshold", strconv.FormatFloat(r.Threshold, 'g', -1, 64))
	}

	var stderr bytes.Buffer
	cmd := exec.Command(r.Bin, args...)
	cmd.Stdin = &stdin
	cmd.Stderr = &stderr

	logging.Debugf("running %s %s on %d points\n", r.Bin, strings.Join(args, " "), n)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("[Ripser] %s failed: %w: %s", r.Bin, err, strings.TrimSpace(stderr.String()))
	}

	res, err := ParseRipserOutput(bytes.NewReader(out), r.MaxDim)
	if err != nil {
		return nil, err
	}
	res.Points = n

	return res, nil
}

// WriteLowerDistance writes the strict lower triangle of dist row by row, the
// layout ripser reads with --format lower-distance.
func WriteLowerDistance(w io.Writer, dist mat64.Matrix) error {
	n, _ := dist.Dims()
	bw := bufio.NewWriter(w)

	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			if j > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(strconv.FormatFloat(dist.At(i, j), 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

const intervalHeader = "persistence intervals in dim "

// ParseRipserOutput reads ripser's text output. Intervals written as [b, )
// get an infinite death. Dimensions up to maxDim are always present.
func ParseRipserOutput(r io.Reader, maxDim int) (*Result, error) {
	res := emptyResult(maxDim)
	dim := -1

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, intervalHeader) {
			d, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(line, intervalHeader), ":"))
			if err != nil {
				return nil, fmt.Errorf("[ParseRipserOutput] bad header %q: %w", line, err)
			}
			for len(res.Diagrams) <= d {
				res.Diagrams = append(res.Diagrams, Diagram{Dim: len(res.Diagrams)})
			}
			dim = d
			continue
		}

		if !strings.HasPrefix(line, "[") || dim < 0 {
			continue
		}

		p, err := parseInterval(line)
		if err != nil {
			return nil, fmt.Errorf("[ParseRipserOutput] dim %d: %w", dim, err)
		}
		res.Diagrams[dim].Pairs = append(res.Diagrams[dim].Pairs, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("[ParseRipserOutput] %w", err)
	}

	return res, nil
}

// parseInterval parses "[birth,death)" with an optional trailing
// representative cycle.
func parseInterval(line string) (Pair, error) {
	end := strings.Index(line, ")")
	if end < 0 {
		return Pair{}, fmt.Errorf("unterminated interval %q", line)
	}

	fields := strings.SplitN(line[1:end], ",", 2)
	if len(fields) != 2 {
		return Pair{}, fmt.Errorf("bad interval %q", line)
	}

	birth, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return Pair{}, fmt.Errorf("bad birth in %q: %w", line, err)
	}

	death := math.Inf(1)
	if s := strings.TrimSpace(fields[1]); s != "" {
		death, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return Pair{}, fmt.Errorf("bad death in %q: %w", line, err)
		}
	}

	return Pair{Birth: birth, Death: death}, nil
}

// NewComputer returns a Ripser computer when bin can be found on PATH and
// falls back to the built-in H0 computer otherwise.
func NewComputer(bin string, maxDim int, threshold float64, pl *calc.PipeLine) Computer {
	if bin != "" {
		if path, err := exec.LookPath(bin); err == nil {
			return &Ripser{Bin: path, MaxDim: maxDim, Threshold: threshold, Pipe: pl}
		}
		logging.Warningf("ripser executable %q not found, computing dimension 0 only\n", bin)
	}

	return &H0{Pipe: pl, Threshold: threshold}
}

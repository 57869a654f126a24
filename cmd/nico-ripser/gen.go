package main

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/gonum/matrix/mat64"
	"github.com/spf13/cobra"

	"github.com/StephenThornquist/nico-ripser/internal/analysis"
	"github.com/StephenThornquist/nico-ripser/internal/calc"
	npz "github.com/StephenThornquist/nico-ripser/internal/io"
	"github.com/StephenThornquist/nico-ripser/internal/logging"
	"github.com/StephenThornquist/nico-ripser/internal/recording"
)

type genParams struct {
	frames int
	onset  int
	rate   float64 // frames per second
	seed   int64
}

const (
	epochStart  = 1.7e18 // ns
	bumpWidth   = 2.5    // von Mises concentration
	bumpGain    = 1.5
	baseline    = 100.0
	shotNoise   = 2.0
	bumpOffset  = 1.2 // rad, arbitrary per fly
	walkStep    = 0.1 // rad per frame
	ballSpeed   = 0.5 // mm per frame
	headingJump = 0.05
)

func newGenCmd(opts *options, stdout io.Writer) *cobra.Command {
	p := genParams{}

	cmd := &cobra.Command{
		Use:   "gen <archive>",
		Short: "write a synthetic recording archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.frames < 1 || p.onset < 0 || p.onset > p.frames {
				return fmt.Errorf("need frames >= 1 and 0 <= onset <= frames, got %d and %d", p.frames, p.onset)
			}
			if p.rate <= 0 {
				return fmt.Errorf("rate must be positive, got %g", p.rate)
			}
			if err := os.MkdirAll(filepath.Dir(args[0]), 0755); err != nil {
				return err
			}

			arrays := synthesize(p, opts.cfg.Schema, calc.Init(opts.cfg.Workers))
			if err := npz.WriteArchive(args[0], arrays...); err != nil {
				return err
			}
			logging.Infof("wrote %s: %d frames, VR onset at frame %d\n", args[0], p.frames, p.onset)
			fmt.Fprintf(stdout, "wrote %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().IntVar(&p.frames, "frames", 1000, "number of imaging frames")
	cmd.Flags().IntVar(&p.onset, "onset", 400, "first frame with the VR on")
	cmd.Flags().Float64Var(&p.rate, "rate", 10, "imaging rate in Hz")
	cmd.Flags().Int64Var(&p.seed, "seed", 1, "random seed")

	return cmd
}

func wrap(theta float64) float64 {
	return math.Remainder(theta, 2*math.Pi)
}

// synthesize simulates a bump of activity that drifts freely before the VR
// onset and follows the VR heading, up to a fixed offset, after it.
func synthesize(p genParams, schema recording.Schema, pl *calc.PipeLine) []*npz.Array {
	rng := rand.New(rand.NewSource(p.seed))

	timestamps := make([]float64, p.frames)
	heading := make([]float64, p.frames)
	position := make([]float64, p.frames)
	positionY := make([]float64, p.frames)
	bump := make([]float64, p.frames)

	var x, y float64
	for i := 0; i < p.frames; i++ {
		timestamps[i] = epochStart + float64(i)*1e9/p.rate
		if i > 0 {
			heading[i] = wrap(heading[i-1] + rng.NormFloat64()*walkStep)
			bump[i] = wrap(bump[i-1] + rng.NormFloat64()*walkStep)
		}
		if i >= p.onset {
			bump[i] = wrap(heading[i] + bumpOffset + rng.NormFloat64()*headingJump)
		}

		x += ballSpeed * math.Cos(heading[i])
		y += ballSpeed * math.Sin(heading[i])
		position[i], positionY[i] = x, y
	}

	angles := analysis.GlomerulusAngles(recording.NumGlomeruli)
	raw := mat64.NewDense(recording.NumGlomeruli, p.frames, nil)
	for r, theta := range angles {
		for i := 0; i < p.frames; i++ {
			tuning := math.Exp(bumpWidth * (math.Cos(theta-bump[i]) - 1))
			raw.Set(r, i, baseline*(1+bumpGain*tuning)+rng.NormFloat64()*shotNoise)
		}
	}
	dfof := pl.DFoF(raw, calc.BaselinePercentile)

	arrays := []*npz.Array{
		{Name: schema.Neural, Shape: []int{recording.NumGlomeruli, p.frames}, Data: dfof.RawMatrix().Data},
		{Name: schema.VR, Shape: []int{p.frames}, Data: heading},
	}

	if schema.Timestamps != "" {
		onset := epochStart + float64(p.frames)*1e9/p.rate
		if p.onset < p.frames {
			onset = timestamps[p.onset]
		}
		arrays = append(arrays,
			&npz.Array{Name: schema.Timestamps, Shape: []int{p.frames}, Data: timestamps},
			&npz.Array{Name: schema.Boundary, Shape: []int{1}, Data: []float64{onset}},
		)
	} else {
		arrays = append(arrays, &npz.Array{Name: schema.Boundary, Dtype: "i8", Shape: []int{1}, Data: []float64{float64(p.onset)}})
	}

	if schema.Position != "" {
		arrays = append(arrays, &npz.Array{Name: schema.Position, Shape: []int{p.frames}, Data: position, Imag: positionY})
	}

	return arrays
}

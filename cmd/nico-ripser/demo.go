package main

import (
	"fmt"
	"io"

	"github.com/gonum/matrix/mat64"

	"github.com/StephenThornquist/nico-ripser/internal/analysis"
	"github.com/StephenThornquist/nico-ripser/internal/calc"
	"github.com/StephenThornquist/nico-ripser/internal/config"
	"github.com/StephenThornquist/nico-ripser/internal/logging"
	"github.com/StephenThornquist/nico-ripser/internal/plot"
	"github.com/StephenThornquist/nico-ripser/internal/recording"
)

// phaseResult is one phase with the persistence computed from it
type phaseResult struct {
	phase *recording.Phase
	cloud *mat64.Dense
	res   *analysis.Result
}

// computePersistence builds each phase's point cloud and hands it to the
// configured persistence computer. Empty phases give empty results.
func computePersistence(cfg *config.Config, pl *calc.PipeLine, phases ...*recording.Phase) ([]phaseResult, error) {
	computer := analysis.NewComputer(cfg.Ripser.Bin, cfg.Ripser.MaxDim, cfg.Ripser.Threshold, pl)

	results := make([]phaseResult, 0, len(phases))
	for _, phase := range phases {
		cloud := analysis.PointCloud(phase, cfg.Downsample)
		res, err := computer.Compute(cloud)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", phase.Name, err)
		}
		logging.Infof("%s: %d frames, %d points, %d intervals\n", phase.Name, phase.Cols(), res.Points, res.Len())

		results = append(results, phaseResult{phase: phase, cloud: cloud, res: res})
	}

	return results, nil
}

func runDemo(cfg *config.Config, out io.Writer) error {
	r, err := recording.LoadSchema(cfg.Archive, cfg.Schema)
	if err != nil {
		return err
	}
	pre, during := recording.SplitPhases(r)

	w, h := cfg.Plot.Width, cfg.Plot.Height

	fmt.Fprintln(out, plot.Heatmap(fmt.Sprintf("%s: ΔF/F0, %s", r.Path(), duration(r)), r.Neural(), w))
	fmt.Fprintln(out)

	heading := mat64.Row(nil, 0, r.VR())
	bump := analysis.AlignToHeading(analysis.BumpPhase(r.Neural()), heading, cfg.SubtractOffset)
	fmt.Fprintln(out, plot.PhaseHeading("VR heading (default) and EPG phase (blue), rad", bump, heading, w, h))
	fmt.Fprintln(out)

	results, err := computePersistence(cfg, calc.Init(cfg.Workers), pre, during)
	if err != nil {
		return err
	}
	for _, pr := range results {
		title := fmt.Sprintf("%s (%d frames, %d points)", pr.phase.Name, pr.phase.Cols(), pr.res.Points)
		fmt.Fprintln(out, plot.Diagram(title, pr.res, w/2, h))
		fmt.Fprintln(out)
	}

	return nil
}

// duration describes the recording length, in seconds when it has
// nanosecond timestamps.
func duration(r *recording.Recording) string {
	ts := r.Timestamps()
	if len(ts) < 2 {
		return fmt.Sprintf("%d frames, VR onset at frame %d", r.Frames(), r.Boundary())
	}

	onset := ts[len(ts)-1]
	if b := r.Boundary(); b < len(ts) {
		onset = ts[b]
	}

	return fmt.Sprintf("%.0f s, VR onset at %.0f s", (ts[len(ts)-1]-ts[0])/1e9, (onset-ts[0])/1e9)
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/StephenThornquist/nico-ripser/internal/analysis"
	"github.com/StephenThornquist/nico-ripser/internal/calc"
	"github.com/StephenThornquist/nico-ripser/internal/config"
	npz "github.com/StephenThornquist/nico-ripser/internal/io"
	"github.com/StephenThornquist/nico-ripser/internal/logging"
	"github.com/StephenThornquist/nico-ripser/internal/recording"
)

func newExportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export <archive> <dir>",
		Short: "write each phase's traces, distances and diagrams to dir",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *opts.cfg
			cfg.Archive = args[0]
			return export(&cfg, args[1])
		},
	}
}

func slug(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// export writes <phase>_dfof.npy, <phase>_distance.csv and
// <phase>_diagrams.csv (dim, birth, death) for each non-empty phase.
func export(cfg *config.Config, dir string) error {
	r, err := recording.LoadSchema(cfg.Archive, cfg.Schema)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	pl := calc.Init(cfg.Workers)
	pre, during := recording.SplitPhases(r)
	results, err := computePersistence(cfg, pl, pre, during)
	if err != nil {
		return err
	}

	for _, pr := range results {
		if pr.phase.Empty() {
			logging.Warningf("%s is empty, nothing to export\n", pr.phase.Name)
			continue
		}
		base := filepath.Join(dir, slug(pr.phase.Name))

		if err := npz.Mat64toNpy(base+"_dfof.npy", pr.phase.Neural()); err != nil {
			return err
		}

		dist, err := analysis.Distances(pl, pr.cloud)
		if err != nil {
			return fmt.Errorf("%s: %w", pr.phase.Name, err)
		}
		if err := npz.Mat64toCSV(base+"_distance.csv", dist); err != nil {
			return err
		}

		if m := pr.res.Dense(); m != nil {
			if err := npz.Mat64toCSV(base+"_diagrams.csv", m); err != nil {
				return err
			}
		}
		logging.Infof("exported %s to %s_*\n", pr.phase.Name, base)
	}

	return nil
}

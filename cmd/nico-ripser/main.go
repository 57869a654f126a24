package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/StephenThornquist/nico-ripser/internal/config"
	"github.com/StephenThornquist/nico-ripser/internal/logging"
)

type options struct {
	configFile     string
	downsample     int
	subtractOffset bool
	ripserBin      string
	maxDim         int
	verbose        bool

	cfg *config.Config
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "nico-ripser [archive]",
		Short: "plot a fly imaging recording and its persistence diagrams",
		Long: "Loads one recording archive, splits it at the VR onset, draws the\n" +
			"ΔF/F0 heatmap and bump phase against VR heading, and computes a\n" +
			"persistence diagram for the pre-VR and during-VR phases.",
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Shutdown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.cfg.Archive = args[0]
			}
			return runDemo(opts.cfg, stdout)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "TOML config file")
	flags.IntVar(&opts.downsample, "downsample", config.DefaultDownsample, "keep every n-th frame for persistence")
	flags.BoolVar(&opts.subtractOffset, "subtract-offset", true, "rotate bump phase onto the VR heading")
	flags.StringVar(&opts.ripserBin, "ripser", config.DefaultRipser, "ripser executable")
	flags.IntVar(&opts.maxDim, "max-dim", config.DefaultMaxDim, "maximum homology dimension")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newGenCmd(opts, stdout))
	rootCmd.AddCommand(newInspectCmd(stdout))
	rootCmd.AddCommand(newExportCmd(opts))

	return rootCmd
}

// load reads the config file and environment, then applies any flags given
// on the command line.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("downsample") {
		cfg.Downsample = o.downsample
	}
	if flags.Changed("subtract-offset") {
		cfg.SubtractOffset = o.subtractOffset
	}
	if flags.Changed("ripser") {
		cfg.Ripser.Bin = o.ripserBin
	}
	if flags.Changed("max-dim") {
		cfg.Ripser.MaxDim = o.maxDim
	}
	if o.verbose {
		cfg.Log.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.Log.SetLogger()
	o.cfg = cfg

	return nil
}

// run executes the command line in args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		logging.Shutdown()
		fmt.Fprintf(stderr, "nico-ripser: %v\n", err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

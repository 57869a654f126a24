package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	npz "github.com/StephenThornquist/nico-ripser/internal/io"
)

// bytes per element of each numpy dtype code
var dtypeSize = map[string]uint64{
	"f8": 8, "f4": 4, "i8": 8, "i4": 4, "i2": 2, "i1": 1,
	"u8": 8, "u4": 4, "u2": 2, "u1": 1, "c16": 16, "c8": 8,
}

func newInspectCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive>",
		Short: "list the arrays stored in an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(args[0], stdout)
		},
	}
}

func inspect(path string, out io.Writer) error {
	archive, err := npz.ReadArchive(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%s on disk)\n", archive.Path, humanize.Bytes(uint64(archive.Size)))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ARRAY\tDTYPE\tSHAPE\tSIZE")
	for _, name := range archive.Names() {
		arr, _ := archive.Get(name)
		size := dtypeSize[arr.Dtype] * uint64(arr.Len())
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", name, arr.Dtype, arr.Shape, humanize.Bytes(size))
	}

	return w.Flush()
}

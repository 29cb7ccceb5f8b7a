package main

import (
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"cc32/pkg/compile"
)

func newBuildCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "build <file.cc>",
		Short: "Compile a source file to a FASM assembly listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcPath := args[0]

			glog.V(1).Infof("reading %s", srcPath)
			data, err := os.ReadFile(srcPath)
			if err != nil {
				return errors.Wrapf(err, "reading %s", srcPath)
			}

			glog.V(1).Infof("compiling %s", srcPath)
			asm, err := compile.Source(string(data), srcPath)
			if err != nil {
				return errors.Wrapf(err, "compiling %s", srcPath)
			}

			if outPath == "" || outPath == "-" {
				_, err := cmd.OutOrStdout().Write([]byte(asm))
				return errors.Wrap(err, "writing assembly to stdout")
			}

			glog.V(1).Infof("writing %s", outPath)
			if err := os.WriteFile(outPath, []byte(asm), 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the assembly listing to this file instead of stdout")
	return cmd
}

// Command cc32 is the CLI front end for the compiler core in pkg/compile.
// Source file I/O and diagnostic rendering live here, outside the core
// (spec.md §1).
package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logToStderr bool
	var verbose int

	cmd := &cobra.Command{
		Use:   "cc32",
		Short: "cc32 compiles a single source unit to a FASM assembly listing",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging(logToStderr, verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			glog.Flush()
		},
	}

	cmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false, "log to stderr instead of to files")
	cmd.PersistentFlags().IntVarP(&verbose, "verbose", "v", 0, "enable verbose driver tracing (e.g. v=2)")

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// initLogging pokes the glog flags the way cmdutil.InitLogging does, since
// glog has no programmatic setter of its own.
func initLogging(logToStderr bool, verbose int) {
	flag.Parse()
	if logToStderr {
		flag.Lookup("logtostderr").Value.Set("true")
	}
	if verbose > 0 {
		flag.Lookup("v").Value.Set(strconv.Itoa(verbose))
	}
}

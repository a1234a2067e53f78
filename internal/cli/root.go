// Package cli wires the cobra commands to the pipeline.
package cli

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fastseq",
		Short: "Process sequencing files and collect stats",
		Long: `fastseq runs a fixed resequencing pipeline (adapter trimming, alignment,
variant calling, metrics collection) over every sample of a manifest CSV
and aggregates the tool reports into a single summary table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())

	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}

	return 0
}

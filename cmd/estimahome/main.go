// Command estimahome serves and runs California house price estimates.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "estimahome",
		Short:         "California house price estimates from fitted model artifacts",
		SilenceUsage:  true,
	}
	root.AddCommand(newServeCommand(), newPredictCommand(), newInspectCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

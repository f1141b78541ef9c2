// interviewctl runs mock interviews from a terminal without the HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mockinterview/ai/internal/utils"
)

var version = "1.0.0"

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "interviewctl",
		Short: "Practice mock interviews from the terminal",
		Long: `interviewctl drives the interview engine over stdin and stdout.

Examples:
  interviewctl run --role backend --difficulty beginner -n 5
  interviewctl bank --role frontend --type behavioral`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			utils.SetLogger(utils.NewCLILogger(verbose))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newBankCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

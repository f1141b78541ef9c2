package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mockinterview/ai/internal/llm/fallback"
)

func newBankCmd() *cobra.Command {
	var flags bucketFlags

	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Print the offline questions for a role, difficulty and type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := flags.bucket()
			if err != nil {
				return err
			}
			bank, err := fallback.LoadBank()
			if err != nil {
				return err
			}

			questions, used := bank.Questions(bucket)
			out := cmd.OutOrStdout()
			if used != bucket {
				fmt.Fprintf(out, "No questions for %s, showing %s\n", bucket, used)
			}
			for i, q := range questions {
				fmt.Fprintf(out, "%2d. %s\n", i+1, q)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

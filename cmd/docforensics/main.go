// Command docforensics runs the image forensic pipeline and risk scorer
// over a single document image from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var logLevel string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "docforensics",
		Short:         "Image forensic authenticity pipeline and risk scorer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(newAnalyzeCommand(&logLevel, &jsonOutput))
	rootCmd.AddCommand(newScoreCommand(&logLevel, &jsonOutput))

	return rootCmd
}

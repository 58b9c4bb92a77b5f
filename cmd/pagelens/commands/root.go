// Package commands implements the CLI commands for pagelens.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/pagelens/pagelens/internal/platform/logger"
)

// Global flag values accessible to all commands.
var (
	flagJSON    bool
	flagVerbose bool
	flagNoColor bool
)

// rootCmd is the base command for the pagelens CLI.
var rootCmd = &cobra.Command{
	Use:   "pagelens",
	Short: "LLM-backed web page design review",
	Long: `PageLens captures a rendered web page (HTML, external CSS and a full-page
screenshot) and sends the snapshot to a vision-capable model for a structured
design review: concrete issues with severities plus targeted improvement
suggestions.

Every analysis keeps its artifacts in a per-run directory: the captured page,
the exact prompts sent, a step journal and the rendered reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		l := logger.New(flagVerbose, flagJSON)
		ctx := logger.WithContext(cmd.Context(), l)
		cmd.SetContext(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output results as JSON to stdout")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

// Execute runs the root command. Returns an error if the command fails.
func Execute() error {
	return rootCmd.Execute()
}

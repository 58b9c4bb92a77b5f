package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Per-command flag values for analyze.
var (
	flagVendor       string
	flagModel        string
	flagVerbosity    string
	flagEffort       string
	flagGenre        string
	flagExtra        string
	flagSystemPrompt string
	flagRunsDir      string
	flagMarkdown     bool
	flagSarif        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Capture a page and run the design analysis",
	Long: `Fetch the page at <url>, save the snapshot artifacts under the runs
directory and send the rendered page to the configured model for a
structured design review. Results print to stdout; every run keeps its
journal, prompts and reports in its own run directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := AnalyzeOpts{
			URL:              args[0],
			Vendor:           flagVendor,
			Model:            flagModel,
			Verbosity:        flagVerbosity,
			Effort:           flagEffort,
			Genre:            flagGenre,
			ExtraInstruction: flagExtra,
			JSON:             flagJSON,
			NoColor:          flagNoColor,
			Markdown:         flagMarkdown,
			Sarif:            flagSarif,
		}
		if flagSystemPrompt != "" {
			data, err := os.ReadFile(flagSystemPrompt) // #nosec G304 -- user-named prompt file
			if err != nil {
				return fmt.Errorf("reading system prompt file: %w", err)
			}
			opts.SystemPrompt = string(data)
		}
		return runAnalysis(cmd.Context(), opts)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&flagVendor, "vendor", "", "Model vendor: gemini or openai (default from config)")
	analyzeCmd.Flags().StringVar(&flagModel, "model", "", "Model name, e.g. gemini-2.5-pro or gpt-5 (default per vendor)")
	analyzeCmd.Flags().StringVar(&flagVerbosity, "verbosity", "", "Response verbosity: low, medium or high")
	analyzeCmd.Flags().StringVar(&flagEffort, "effort", "", "Reasoning effort: minimal, low, medium or high")
	analyzeCmd.Flags().StringVar(&flagGenre, "genre", "", "Page genre lens: saas, d2c, education, recruiting or app")
	analyzeCmd.Flags().StringVar(&flagExtra, "extra", "", "Extra instruction appended to the analysis prompt")
	analyzeCmd.Flags().StringVar(&flagSystemPrompt, "system-prompt", "", "Path to a file replacing the built-in system prompt")
	analyzeCmd.Flags().StringVar(&flagRunsDir, "out", "", "Base directory for run artifacts (default from config)")
	analyzeCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Also write report.md into the run directory")
	analyzeCmd.Flags().BoolVar(&flagSarif, "sarif", false, "Also write report.sarif into the run directory")
	rootCmd.AddCommand(analyzeCmd)
}

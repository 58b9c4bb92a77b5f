package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pagelens/pagelens/internal/engine/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models per vendor",
	Long:  "List the models pagelens has been exercised against, with the generation controls each family supports.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		for _, vendor := range []llm.Vendor{llm.VendorGemini, llm.VendorOpenAI} {
			fmt.Fprintf(out, "%s:\n", vendor)
			for _, m := range llm.KnownModels(vendor) {
				marker := " "
				if m.Default {
					marker = "*"
				}
				fmt.Fprintf(out, "  %s %-18s %s\n", marker, m.Name, capabilityNote(m.Caps))
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, "* default model for the vendor; any other model name is passed through as-is")
		return nil
	},
}

// capabilityNote describes how generation controls reach a model family.
func capabilityNote(caps llm.Capabilities) string {
	if caps.NativeControls {
		return "native verbosity and reasoning-effort parameters"
	}
	return "verbosity and effort ride as prompt hints"
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

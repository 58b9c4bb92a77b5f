package commands

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pagelens/pagelens/internal/engine/config"
	"github.com/pagelens/pagelens/internal/platform/logger"
)

// InitFS abstracts file system operations needed by the init command.
type InitFS interface {
	Stat(name string) (fs.FileInfo, error)
	IsNotExist(err error) bool
	MkdirAll(path string, perm fs.FileMode) error
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Create ~/.config/pagelens/config.yaml with a commented starter
configuration: vendor and model selection, generation controls and the
runs directory.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		log.Info("init started")

		home, err := userHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}

		if err := initConfig(home, &osInitFS{}, cmd.OutOrStdout()); err != nil {
			return err
		}

		log.Info("init completed")
		return nil
	},
}

// initConfig performs the init workflow with injected dependencies for testability.
func initConfig(home string, fsys InitFS, out io.Writer) error {
	configPath := config.DefaultPath(home)

	if err := fsys.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := fsys.Stat(configPath); fsys.IsNotExist(err) {
		// API keys may end up in this file, keep it private to the user.
		if writeErr := fsys.WriteFile(configPath, []byte(config.GenerateConfigYAML()), 0o600); writeErr != nil {
			return fmt.Errorf("writing config.yaml: %w", writeErr)
		}
		fmt.Fprintf(out, "✅ Wrote starter config to %s.\n", configPath)
	} else {
		fmt.Fprintf(out, "⚡ Config already exists at %s. Skipping generation.\n", configPath)
	}

	fmt.Fprintln(out, "🔍 PageLens is ready. Add an API key to the config or export GEMINI_API_KEY / OPENAI_API_KEY.")
	return nil
}

// userHomeDir is a variable for testability (defaults to os.UserHomeDir).
var userHomeDir = os.UserHomeDir

func init() {
	rootCmd.AddCommand(initCmd)
}

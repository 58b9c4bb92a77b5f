// Package config handles loading and validation of pagelens user configuration.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pagelens/pagelens/internal/engine/llm"
	"github.com/pagelens/pagelens/internal/engine/prompt"
	"github.com/pagelens/pagelens/internal/platform/logger"
)

// SecretString is a string that is redacted when printed.
type SecretString string

func (s SecretString) String() string {
	return "[REDACTED]"
}

func (s SecretString) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// IsEmpty returns true if the secret string is empty.
func (s SecretString) IsEmpty() bool {
	return string(s) == ""
}

// Config holds user-level settings read from ~/.config/pagelens/config.yaml.
// Every field is optional; empty vendor controls fall back to the adapter
// defaults at construction time.
type Config struct {
	Vendor       llm.Vendor    `yaml:"vendor"`
	Model        string        `yaml:"model"`
	Verbosity    llm.Verbosity `yaml:"verbosity"`
	Effort       llm.Effort    `yaml:"effort"`
	Genre        prompt.Genre  `yaml:"genre"`
	RunsDir      string        `yaml:"runs_dir"`
	Timeout      time.Duration `yaml:"timeout"`
	GeminiAPIKey SecretString  `yaml:"gemini_api_key"`
	OpenAIAPIKey SecretString  `yaml:"openai_api_key"`

	OutputColor   bool         `yaml:"-"` // derived from Output.Color
	OutputVerbose bool         `yaml:"-"` // derived from Output.Verbose
	Output        OutputConfig `yaml:"output"`
}

// OutputConfig holds output-related user preferences.
type OutputConfig struct {
	Color   *bool `yaml:"color"`
	Verbose *bool `yaml:"verbose"`
}

const (
	defaultRunsDir = "runs"
	defaultTimeout = 2 * time.Minute
)

// APIKeyFor returns the credential for the given vendor.
func (c *Config) APIKeyFor(vendor llm.Vendor) SecretString {
	if vendor == llm.VendorOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// Validate reports the first setting that cannot drive a run.
func (c *Config) Validate() error {
	if c.Vendor != "" && !c.Vendor.Valid() {
		return fmt.Errorf("unknown vendor %q (want %q or %q)", c.Vendor, llm.VendorGemini, llm.VendorOpenAI)
	}
	if c.Verbosity != "" && !c.Verbosity.Valid() {
		return fmt.Errorf("unknown verbosity %q (want low, medium or high)", c.Verbosity)
	}
	if c.Effort != "" && !c.Effort.Valid() {
		return fmt.Errorf("unknown effort %q (want minimal, low, medium or high)", c.Effort)
	}
	// Gemini carries no prompt wording for "low" effort, so surface the
	// conflict here instead of at the first vendor call.
	if c.Vendor == llm.VendorGemini && c.Effort == llm.EffortLow {
		return fmt.Errorf("effort %q is not supported for gemini (use minimal, medium or high)", c.Effort)
	}
	if !c.Genre.Valid() {
		return fmt.Errorf("unknown genre %q (want one of %s)", c.Genre, strings.Join(genreNames(), ", "))
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

func genreNames() []string {
	var names []string
	for _, g := range prompt.Genres() {
		names = append(names, string(g))
	}
	return names
}

// DefaultPath returns the canonical config location under a home directory.
func DefaultPath(home string) string {
	return filepath.Join(home, ".config", "pagelens", "config.yaml")
}

// KeyEnvNames lists the environment variables that can supply a vendor
// credential, highest precedence first.
func KeyEnvNames(vendor llm.Vendor) []string {
	if vendor == llm.VendorOpenAI {
		return []string{"PAGELENS_OPENAI_KEY", "OPENAI_API_KEY"}
	}
	return []string{"PAGELENS_GEMINI_KEY", "GEMINI_API_KEY"}
}

// Loader handles loading configuration from the file system.
type Loader struct {
	fs     FileSystem
	getenv func(string) string
}

// NewLoader creates a new Loader with the given file system.
// Uses os.Getenv for environment variable lookups by default.
func NewLoader(fs FileSystem) *Loader {
	return &Loader{fs: fs, getenv: os.Getenv}
}

// NewLoaderWithEnv creates a Loader with a custom getenv function for testability.
func NewLoaderWithEnv(fs FileSystem, getenv func(string) string) *Loader {
	return &Loader{fs: fs, getenv: getenv}
}

// Load reads user configuration from ~/.config/pagelens/config.yaml.
// If the file does not exist, default values are returned (not an error).
// Environment variables override file values.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	home, err := l.fs.UserHomeDir()
	if err != nil {
		// Cannot determine home directory, run on defaults.
		cfg := defaultConfig()
		applyEnvOverrides(cfg, l.getenv, logger.FromContext(ctx))
		return cfg, nil
	}
	return l.LoadFrom(ctx, DefaultPath(home))
}

// LoadFrom reads user configuration from a specific path.
// If the file does not exist, default values are returned (not an error).
// Environment variables override file values.
func (l *Loader) LoadFrom(ctx context.Context, path string) (*Config, error) {
	log := logger.FromContext(ctx)
	log.Debug("loading config", "path", path)
	cfg := defaultConfig()

	path = filepath.Clean(path)

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if l.fs.IsNotExist(err) {
			applyEnvOverrides(cfg, l.getenv, log)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Output.Color != nil {
		cfg.OutputColor = *cfg.Output.Color
	}
	if cfg.Output.Verbose != nil {
		cfg.OutputVerbose = *cfg.Output.Verbose
	}

	applyEnvOverrides(cfg, l.getenv, log)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Load reads user configuration using the real file system.
func Load(ctx context.Context) (*Config, error) {
	return NewLoader(&RealFileSystem{}).Load(ctx)
}

// LoadFrom reads user configuration from a specific path using the real file system.
func LoadFrom(ctx context.Context, path string) (*Config, error) {
	return NewLoader(&RealFileSystem{}).LoadFrom(ctx, path)
}

func defaultConfig() *Config {
	return &Config{
		Vendor:      llm.VendorGemini,
		RunsDir:     defaultRunsDir,
		Timeout:     defaultTimeout,
		OutputColor: true,
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
// The pagelens-prefixed variables win over the SDK-standard names so a
// shared shell profile can still point pagelens at a dedicated key.
func applyEnvOverrides(cfg *Config, getenv func(string) string, log *slog.Logger) {
	if key := firstEnv(getenv, KeyEnvNames(llm.VendorGemini)...); key != "" {
		cfg.GeminiAPIKey = SecretString(key)
	}
	if key := firstEnv(getenv, KeyEnvNames(llm.VendorOpenAI)...); key != "" {
		cfg.OpenAIAPIKey = SecretString(key)
	}

	if timeoutStr := getenv("PAGELENS_TIMEOUT"); timeoutStr != "" {
		d, err := time.ParseDuration(timeoutStr)
		if err != nil {
			log.Warn("invalid PAGELENS_TIMEOUT value, using default", "value", timeoutStr, "error", err)
		} else {
			cfg.Timeout = d
		}
	}

	if noColor := getenv("PAGELENS_NO_COLOR"); noColor != "" {
		// Any truthy value disables color.
		noColor = strings.ToLower(noColor)
		if noColor == "1" || noColor == "true" || noColor == "yes" {
			cfg.OutputColor = false
		}
	}
}

func firstEnv(getenv func(string) string, names ...string) string {
	for _, name := range names {
		if v := getenv(name); v != "" {
			return v
		}
	}
	return ""
}

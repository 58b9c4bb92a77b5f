package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/pagelens/pagelens/internal/engine/llm"
	"github.com/pagelens/pagelens/internal/engine/prompt"
)

func TestLoadFrom_ValidFile(t *testing.T) {
	mockFS := NewMockFileSystem()
	path := "/config.yaml"
	mockFS.Files[path] = []byte(`
vendor: openai
model: gpt-5
verbosity: high
effort: low
genre: saas
runs_dir: /tmp/pagelens-runs
timeout: 90s
openai_api_key: "test-key-123"
output:
  color: false
  verbose: true
`)

	loader := NewLoaderWithEnv(mockFS, func(string) string { return "" })
	cfg, err := loader.LoadFrom(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Vendor != llm.VendorOpenAI {
		t.Errorf("expected vendor openai, got %q", cfg.Vendor)
	}
	if cfg.Model != "gpt-5" {
		t.Errorf("expected model gpt-5, got %q", cfg.Model)
	}
	if cfg.Verbosity != llm.VerbosityHigh || cfg.Effort != llm.EffortLow {
		t.Errorf("controls = %q/%q", cfg.Verbosity, cfg.Effort)
	}
	if cfg.Genre != prompt.GenreSaaS {
		t.Errorf("expected genre saas, got %q", cfg.Genre)
	}
	if cfg.RunsDir != "/tmp/pagelens-runs" {
		t.Errorf("runs_dir = %q", cfg.RunsDir)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("expected timeout 90s, got %v", cfg.Timeout)
	}
	if cfg.OpenAIAPIKey != "test-key-123" {
		t.Errorf("expected OpenAIAPIKey 'test-key-123', got %q", string(cfg.OpenAIAPIKey))
	}
	if cfg.OutputColor {
		t.Error("expected OutputColor false")
	}
	if !cfg.OutputVerbose {
		t.Error("expected OutputVerbose true")
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	mockFS := NewMockFileSystem()
	loader := NewLoaderWithEnv(mockFS, func(string) string { return "" })

	cfg, err := loader.LoadFrom(context.Background(), "/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("missing file should not error, got: %v", err)
	}

	// Should use defaults
	if cfg.Vendor != llm.VendorGemini {
		t.Errorf("expected default vendor gemini, got %q", cfg.Vendor)
	}
	if cfg.RunsDir != defaultRunsDir {
		t.Errorf("expected default runs dir %q, got %q", defaultRunsDir, cfg.RunsDir)
	}
	if cfg.Timeout != defaultTimeout {
		t.Errorf("expected default timeout %v, got %v", defaultTimeout, cfg.Timeout)
	}
	if !cfg.OutputColor {
		t.Error("expected default OutputColor true")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	mockFS := NewMockFileSystem()
	path := "/config.yaml"
	mockFS.Files[path] = []byte(`
gemini_api_key: "file-key"
timeout: 10m
`)

	env := map[string]string{
		"PAGELENS_GEMINI_KEY": "env-key-456",
		"PAGELENS_OPENAI_KEY": "env-openai-key",
		"PAGELENS_TIMEOUT":    "3m",
		"PAGELENS_NO_COLOR":   "1",
	}
	loader := NewLoaderWithEnv(mockFS, func(k string) string { return env[k] })
	cfg, err := loader.LoadFrom(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.GeminiAPIKey != "env-key-456" {
		t.Errorf("expected env-overridden GeminiAPIKey, got %q", string(cfg.GeminiAPIKey))
	}
	if cfg.OpenAIAPIKey != "env-openai-key" {
		t.Errorf("expected env OpenAIAPIKey, got %q", string(cfg.OpenAIAPIKey))
	}
	if cfg.Timeout != 3*time.Minute {
		t.Errorf("expected env-overridden timeout 3m, got %v", cfg.Timeout)
	}
	if cfg.OutputColor {
		t.Error("expected OutputColor false due to PAGELENS_NO_COLOR=1")
	}
}

func TestLoadFrom_SDKStandardKeyNames(t *testing.T) {
	mockFS := NewMockFileSystem()
	env := map[string]string{
		"GEMINI_API_KEY": "sdk-gemini-key",
		"OPENAI_API_KEY": "sdk-openai-key",
	}
	loader := NewLoaderWithEnv(mockFS, func(k string) string { return env[k] })

	cfg, err := loader.LoadFrom(context.Background(), "/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GeminiAPIKey != "sdk-gemini-key" || cfg.OpenAIAPIKey != "sdk-openai-key" {
		t.Errorf("SDK-standard env names not honored: %q / %q",
			string(cfg.GeminiAPIKey), string(cfg.OpenAIAPIKey))
	}
}

func TestLoadFrom_PagelensKeyWinsOverSDKName(t *testing.T) {
	mockFS := NewMockFileSystem()
	env := map[string]string{
		"PAGELENS_GEMINI_KEY": "dedicated-key",
		"GEMINI_API_KEY":      "shared-key",
	}
	loader := NewLoaderWithEnv(mockFS, func(k string) string { return env[k] })

	cfg, err := loader.LoadFrom(context.Background(), "/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GeminiAPIKey != "dedicated-key" {
		t.Errorf("expected PAGELENS_GEMINI_KEY to win, got %q", string(cfg.GeminiAPIKey))
	}
}

func TestLoadFrom_InvalidTimeoutEnv(t *testing.T) {
	mockFS := NewMockFileSystem()
	path := "/config.yaml"
	mockFS.Files[path] = []byte(`timeout: 5m`)

	env := map[string]string{"PAGELENS_TIMEOUT": "not-a-duration"}
	loader := NewLoaderWithEnv(mockFS, func(k string) string { return env[k] })
	cfg, err := loader.LoadFrom(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Invalid timeout env should be ignored, file value preserved.
	if cfg.Timeout != 5*time.Minute {
		t.Errorf("expected timeout from file (5m), got %v", cfg.Timeout)
	}
}

func TestLoadFrom_NoColorVariants(t *testing.T) {
	tests := []struct {
		envValue string
		expected bool
	}{
		{"1", false},
		{"true", false},
		{"TRUE", false},
		{"yes", false},
		{"YES", false},
		{"0", true},     // not a truthy value, color stays on
		{"false", true}, // not a truthy value, color stays on
		{"", true},      // empty, color stays on
	}

	for _, tt := range tests {
		t.Run("PAGELENS_NO_COLOR="+tt.envValue, func(t *testing.T) {
			env := map[string]string{"PAGELENS_NO_COLOR": tt.envValue}
			loader := NewLoaderWithEnv(NewMockFileSystem(), func(k string) string { return env[k] })

			cfg, err := loader.LoadFrom(context.Background(), "/nonexistent/config.yaml")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.OutputColor != tt.expected {
				t.Errorf("with NO_COLOR=%q, expected OutputColor=%v, got %v", tt.envValue, tt.expected, cfg.OutputColor)
			}
		})
	}
}

func TestLoadFrom_RejectsUnknownVendor(t *testing.T) {
	mockFS := NewMockFileSystem()
	mockFS.Files["/config.yaml"] = []byte(`vendor: anthropic`)

	loader := NewLoaderWithEnv(mockFS, func(string) string { return "" })
	_, err := loader.LoadFrom(context.Background(), "/config.yaml")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "anthropic") {
		t.Errorf("error should name the bad vendor: %v", err)
	}
}

func TestLoadFrom_RejectsGeminiLowEffort(t *testing.T) {
	mockFS := NewMockFileSystem()
	mockFS.Files["/config.yaml"] = []byte("vendor: gemini\neffort: low\n")

	loader := NewLoaderWithEnv(mockFS, func(string) string { return "" })
	_, err := loader.LoadFrom(context.Background(), "/config.yaml")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "minimal, medium or high") {
		t.Errorf("error should name the supported efforts: %v", err)
	}
}

func TestLoadFrom_AcceptsOpenAILowEffort(t *testing.T) {
	mockFS := NewMockFileSystem()
	mockFS.Files["/config.yaml"] = []byte("vendor: openai\neffort: low\n")

	loader := NewLoaderWithEnv(mockFS, func(string) string { return "" })
	cfg, err := loader.LoadFrom(context.Background(), "/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Effort != llm.EffortLow {
		t.Errorf("effort = %q", cfg.Effort)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults pass", func(*Config) {}, ""},
		{"bad verbosity", func(c *Config) { c.Verbosity = "extreme" }, "verbosity"},
		{"bad effort", func(c *Config) { c.Effort = "max" }, "effort"},
		{"bad genre", func(c *Config) { c.Genre = "fintech" }, "genre"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
		{"empty vendor ok", func(c *Config) { c.Vendor = "" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAPIKeyFor(t *testing.T) {
	cfg := &Config{GeminiAPIKey: "g-key", OpenAIAPIKey: "o-key"}
	if cfg.APIKeyFor(llm.VendorGemini) != "g-key" {
		t.Error("expected gemini key for gemini vendor")
	}
	if cfg.APIKeyFor(llm.VendorOpenAI) != "o-key" {
		t.Error("expected openai key for openai vendor")
	}
}

func TestSecretString_Redaction(t *testing.T) {
	s := SecretString("my-secret-key")
	if s.String() != "[REDACTED]" {
		t.Errorf("expected redacted string, got %q", s.String())
	}
}

func TestSecretString_MarshalYAML(t *testing.T) {
	s := SecretString("my-secret-key")
	val, err := s.MarshalYAML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "[REDACTED]" {
		t.Errorf("expected [REDACTED], got %q", val)
	}
}

func TestLoad_UserHomeDirError(t *testing.T) {
	mockFS := NewMockFileSystem()
	mockFS.UserHomeErr = errors.New("no home dir")
	loader := NewLoaderWithEnv(mockFS, func(string) string { return "" })

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("expected nil error (defaults used), got: %v", err)
	}
	if cfg.Vendor != llm.VendorGemini {
		t.Errorf("expected default vendor, got %q", cfg.Vendor)
	}
}

func TestLoad_ReadError(t *testing.T) {
	mockFS := NewMockFileSystem()
	mockFS.UserHome = "/home/test"
	mockFS.ReadErrors["/home/test/.config/pagelens/config.yaml"] = errors.New("disk error")

	loader := NewLoaderWithEnv(mockFS, func(string) string { return "" })
	_, err := loader.Load(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	mockFS := NewMockFileSystem()
	// A tab character at the start is invalid YAML.
	mockFS.Files["/config.yaml"] = []byte("\t: invalid")

	loader := NewLoaderWithEnv(mockFS, func(string) string { return "" })
	_, err := loader.LoadFrom(context.Background(), "/config.yaml")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestApplyEnvOverrides_CustomGetenv(t *testing.T) {
	cfg := defaultConfig()
	getenv := func(key string) string {
		switch key {
		case "PAGELENS_OPENAI_KEY":
			return "custom-key"
		case "PAGELENS_TIMEOUT":
			return "7m"
		case "PAGELENS_NO_COLOR":
			return "true"
		}
		return ""
	}

	applyEnvOverrides(cfg, getenv, slog.Default())

	if cfg.OpenAIAPIKey != "custom-key" {
		t.Errorf("expected custom-key, got %q", string(cfg.OpenAIAPIKey))
	}
	if cfg.Timeout != 7*time.Minute {
		t.Errorf("expected 7m, got %v", cfg.Timeout)
	}
	if cfg.OutputColor {
		t.Error("expected OutputColor false")
	}
}

func TestLoadFromConvenience(t *testing.T) {
	// Convenience function with non-existent path should return defaults.
	cfg, err := LoadFrom(context.Background(), "/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RunsDir != defaultRunsDir {
		t.Errorf("expected default runs dir, got %q", cfg.RunsDir)
	}
}

package config

// GenerateConfigYAML produces a commented starter config for `pagelens init`.
// Every field is optional; the file documents the defaults it overrides.
func GenerateConfigYAML() string {
	return configTemplate
}

const configTemplate = `# PageLens configuration
# Lives at ~/.config/pagelens/config.yaml; every field is optional.
# Docs: https://github.com/pagelens/pagelens

# Default vendor and model for analyze runs.
vendor: gemini
model: gemini-2.5-flash

# Structured-output controls. Gemini receives these as prompt hints,
# OpenAI gpt-5 models as native API parameters.
# Note: effort "low" is not available for gemini.
verbosity: medium
effort: medium

# Review preset for the page's genre: saas, d2c, education, recruiting, app.
# genre: saas

# Where run artifacts (page snapshot, CSS bundle, screenshots, run_log.json) land.
runs_dir: runs

# Upper bound for one vendor call.
timeout: 2m

# API keys. Environment variables override these:
#   PAGELENS_GEMINI_KEY or GEMINI_API_KEY
#   PAGELENS_OPENAI_KEY or OPENAI_API_KEY
# gemini_api_key: ""
# openai_api_key: ""

output:
  color: true
  # verbose: true
`

package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-page2doc/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // PAGE2DOC_CONFIG: config file path
	Style      string        // PAGE2DOC_STYLE: CSS style name or path
	Timeout    time.Duration // PAGE2DOC_TIMEOUT: render timeout

	// Tier 2 - Output and rendering
	OutputDir string // PAGE2DOC_OUTPUT_DIR: default output directory
	PageSize  string // PAGE2DOC_PAGE_SIZE: a4, letter, legal
	Mode      string // PAGE2DOC_MODE: raster, print
	Theme     string // PAGE2DOC_THEME: mermaid theme

	// Tier 3 - Extended
	MermaidScript string // PAGE2DOC_MERMAID_SCRIPT: mermaid.min.js path or URL
	Workers       int    // PAGE2DOC_WORKERS: parallel workers
}

// knownEnvVars lists valid PAGE2DOC_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"PAGE2DOC_CONFIG":  true,
	"PAGE2DOC_STYLE":   true,
	"PAGE2DOC_TIMEOUT": true,
	// Tier 2 - Output and rendering
	"PAGE2DOC_OUTPUT_DIR": true,
	"PAGE2DOC_PAGE_SIZE":  true,
	"PAGE2DOC_MODE":       true,
	"PAGE2DOC_THEME":      true,
	// Tier 3 - Extended
	"PAGE2DOC_MERMAID_SCRIPT": true,
	"PAGE2DOC_WORKERS":        true,
	// Read by the doctor command only
	"PAGE2DOC_CONTAINER": true,
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized PAGE2DOC_* values. Malformed
// durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:    os.Getenv("PAGE2DOC_CONFIG"),
		Style:         os.Getenv("PAGE2DOC_STYLE"),
		OutputDir:     os.Getenv("PAGE2DOC_OUTPUT_DIR"),
		PageSize:      os.Getenv("PAGE2DOC_PAGE_SIZE"),
		Mode:          os.Getenv("PAGE2DOC_MODE"),
		Theme:         os.Getenv("PAGE2DOC_THEME"),
		MermaidScript: os.Getenv("PAGE2DOC_MERMAID_SCRIPT"),
	}

	if timeout := os.Getenv("PAGE2DOC_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("PAGE2DOC_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs a warning for each unrecognized PAGE2DOC_* variable.
// Helps catch typos like PAGE2DOC_THEMES.
func warnUnknownEnvVars(logger zerolog.Logger) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PAGE2DOC_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				logger.Warn().Str("variable", name).Msg("unknown environment variable (typo?)")
			}
		}
	}
}

// applyEnvConfig overlays set environment values on cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Style != "" {
		cfg.Markdown.Style = env.Style
	}
	if env.Timeout > 0 {
		cfg.Browser.Timeout = env.Timeout.String()
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.PageSize != "" {
		cfg.Markdown.Page.Size = env.PageSize
	}
	if env.Mode != "" {
		cfg.Markdown.Mode = env.Mode
	}
	if env.Theme != "" {
		cfg.Diagram.Theme = env.Theme
	}
	if env.MermaidScript != "" {
		cfg.Diagram.Script = env.MermaidScript
	}
}

// Package config loads and validates page2doc YAML configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-page2doc/internal/dateutil"
	"github.com/alnah/go-page2doc/internal/extract"
	"github.com/alnah/go-page2doc/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength        = 4096
	MaxURLLength         = 2048
	MaxNameLength        = 64
	MaxSelectorLength    = 256
	MaxHostLength        = 253 // RFC 1035
	MaxPageSizeLength    = 10
	MaxOrientationLength = 10
	MaxSites             = 64
	MaxRulesPerKind      = 32
)

// Rendering modes for Markdown documents.
const (
	ModeRaster = "raster"
	ModePrint  = "print"
)

// Mermaid themes accepted by mermaid.initialize.
var validThemes = map[string]bool{
	"default": true,
	"dark":    true,
	"forest":  true,
	"neutral": true,
	"base":    true,
}

// Config holds every tunable of page2doc.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Diagram  DiagramConfig  `yaml:"diagram"`
	Browser  BrowserConfig  `yaml:"browser"`
	Assets   AssetsConfig   `yaml:"assets"`
	Extract  ExtractConfig  `yaml:"extract"`
}

// OutputConfig defines where artifacts go and how they are named.
type OutputConfig struct {
	Dir        string `yaml:"dir"`        // empty = current directory
	DateFormat string `yaml:"dateFormat"` // dateutil tokens, default YYYY-MM-DD-HH-mm-ss
}

// MarkdownConfig defines the Markdown to PDF path.
type MarkdownConfig struct {
	Style string     `yaml:"style"` // embedded style name or CSS file path
	Mode  string     `yaml:"mode"`  // "raster" (default) or "print"
	Scale float64    `yaml:"scale"` // raster device scale factor
	Page  PageConfig `yaml:"page"`
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "a4", "letter", "legal"
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margin      float64 `yaml:"margin"`      // inches, print mode only
}

// DiagramConfig defines the Mermaid to PNG path.
type DiagramConfig struct {
	Theme     string `yaml:"theme"`
	Padding   int    `yaml:"padding"`
	MinWidth  int    `yaml:"minWidth"`
	MinHeight int    `yaml:"minHeight"`
	Settle    string `yaml:"settle"` // Go duration, e.g. "500ms"
	Script    string `yaml:"script"` // file path or URL of mermaid.min.js
}

// BrowserConfig defines headless Chrome options.
type BrowserConfig struct {
	Bin       string `yaml:"bin"`
	NoSandbox bool   `yaml:"noSandbox"`
	Timeout   string `yaml:"timeout"` // Go duration, e.g. "30s"
	Proxy     string `yaml:"proxy"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets only
}

// ExtractConfig defines page loading and content location.
type ExtractConfig struct {
	NoJS        bool         `yaml:"noJS"`
	Readability bool         `yaml:"readability"`
	Sites       []SiteConfig `yaml:"sites"`
}

// SiteConfig declares extra selector rules for a family of hosts.
type SiteConfig struct {
	Name     string       `yaml:"name"`
	Hosts    []string     `yaml:"hosts"`
	Markdown []RuleConfig `yaml:"markdown"`
	Mermaid  []RuleConfig `yaml:"mermaid"`
}

// RuleConfig is one selector with an optional derivation mode
// ("text", "code", "markdown").
type RuleConfig struct {
	Selector string `yaml:"selector"`
	Mode     string `yaml:"mode"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{DateFormat: DefaultDateFormat},
		Markdown: MarkdownConfig{
			Style: "default",
			Mode:  ModeRaster,
			Scale: 2,
			Page:  PageConfig{Size: "a4", Orientation: "portrait", Margin: 0.5},
		},
		Diagram: DiagramConfig{
			Theme:     "default",
			Padding:   40,
			MinWidth:  800,
			MinHeight: 600,
			Settle:    "500ms",
		},
		Browser: BrowserConfig{Timeout: "30s"},
	}
}

// DefaultDateFormat names artifacts like markdown-2026-10-17-14-03-22.pdf.
const DefaultDateFormat = "YYYY-MM-DD-HH-mm-ss"

// Validate checks values and field lengths.
// Called automatically by LoadConfig, but available for callers that build a
// Config by hand.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateMarkdown(); err != nil {
		return err
	}
	if err := c.validateDiagram(); err != nil {
		return err
	}
	if err := c.validateBrowser(); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	return c.validateExtract()
}

func (c *Config) validateOutput() error {
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}
	if c.Output.DateFormat != "" {
		if _, err := dateutil.Compile(c.Output.DateFormat); err != nil {
			return fmt.Errorf("output.dateFormat: %w", err)
		}
	}
	return nil
}

func (c *Config) validateMarkdown() error {
	m := c.Markdown
	if err := validateFieldLength("markdown.style", m.Style, MaxPathLength); err != nil {
		return err
	}
	switch strings.ToLower(m.Mode) {
	case "", ModeRaster, ModePrint:
	default:
		return fmt.Errorf("%w: markdown.mode %q (must be raster or print)", ErrInvalidValue, m.Mode)
	}
	if m.Scale != 0 && (m.Scale < 1 || m.Scale > 4) {
		return fmt.Errorf("%w: markdown.scale must be between 1 and 4, got %.2f", ErrInvalidValue, m.Scale)
	}
	if err := validateFieldLength("markdown.page.size", m.Page.Size, MaxPageSizeLength); err != nil {
		return err
	}
	return validateFieldLength("markdown.page.orientation", m.Page.Orientation, MaxOrientationLength)
}

func (c *Config) validateDiagram() error {
	d := c.Diagram
	if d.Theme != "" && !validThemes[strings.ToLower(d.Theme)] {
		return fmt.Errorf("%w: diagram.theme %q (must be default, dark, forest, neutral or base)", ErrInvalidValue, d.Theme)
	}
	if d.Padding < 0 || d.Padding > 1000 {
		return fmt.Errorf("%w: diagram.padding must be between 0 and 1000, got %d", ErrInvalidValue, d.Padding)
	}
	if d.MinWidth < 0 || d.MinHeight < 0 {
		return fmt.Errorf("%w: diagram.minWidth and diagram.minHeight cannot be negative", ErrInvalidValue)
	}
	if _, err := parseDuration("diagram.settle", d.Settle); err != nil {
		return err
	}
	return validateFieldLength("diagram.script", d.Script, MaxURLLength)
}

func (c *Config) validateBrowser() error {
	b := c.Browser
	if err := validateFieldLength("browser.bin", b.Bin, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("browser.proxy", b.Proxy, MaxURLLength); err != nil {
		return err
	}
	if _, err := parseDuration("browser.timeout", b.Timeout); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExtract() error {
	if len(c.Extract.Sites) > MaxSites {
		return fmt.Errorf("%w: extract.sites has %d entries (max %d)", ErrInvalidValue, len(c.Extract.Sites), MaxSites)
	}
	for i, site := range c.Extract.Sites {
		prefix := fmt.Sprintf("extract.sites[%d]", i)
		if err := validateFieldLength(prefix+".name", site.Name, MaxNameLength); err != nil {
			return err
		}
		if len(site.Hosts) == 0 {
			return fmt.Errorf("%w: %s.hosts: at least one host required", ErrInvalidValue, prefix)
		}
		for j, h := range site.Hosts {
			if err := validateFieldLength(fmt.Sprintf("%s.hosts[%d]", prefix, j), h, MaxHostLength); err != nil {
				return err
			}
		}
		if err := validateRules(prefix+".markdown", site.Markdown); err != nil {
			return err
		}
		if err := validateRules(prefix+".mermaid", site.Mermaid); err != nil {
			return err
		}
	}
	return nil
}

func validateRules(field string, rules []RuleConfig) error {
	if len(rules) > MaxRulesPerKind {
		return fmt.Errorf("%w: %s has %d rules (max %d)", ErrInvalidValue, field, len(rules), MaxRulesPerKind)
	}
	for i, r := range rules {
		name := fmt.Sprintf("%s[%d]", field, i)
		if err := validateFieldLength(name+".selector", r.Selector, MaxSelectorLength); err != nil {
			return err
		}
		if err := extract.ValidateSelector(r.Selector); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
		}
		if _, err := extract.ParseMode(r.Mode); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
		}
	}
	return nil
}

// Strategies converts the configured sites into extraction strategies for
// kind. Markdown rules default to markdown mode, Mermaid rules to code mode.
func (c *Config) Strategies(kind string) []extract.Strategy {
	var out []extract.Strategy
	for _, site := range c.Extract.Sites {
		src := site.Markdown
		def := extract.ModeMarkdown
		if kind == extract.KindMermaid {
			src = site.Mermaid
			def = extract.ModeCode
		}
		if len(src) == 0 {
			continue
		}

		s := extract.Strategy{Name: site.Name, Hosts: site.Hosts}
		for _, r := range src {
			mode := def
			if r.Mode != "" {
				// Validated on load.
				mode, _ = extract.ParseMode(r.Mode)
			}
			s.Rules = append(s.Rules, extract.Rule{Selector: r.Selector, Mode: mode})
		}
		out = append(out, s)
	}
	return out
}

// SettleDuration returns diagram.settle, or 0 when unset.
func (c *Config) SettleDuration() time.Duration {
	d, _ := parseDuration("diagram.settle", c.Diagram.Settle)
	return d
}

// TimeoutDuration returns browser.timeout, or 0 when unset.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := parseDuration("browser.timeout", c.Browser.Timeout)
	return d
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, field, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s cannot be negative", ErrInvalidValue, field)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// A value containing a path separator is read as a path; anything else is
// searched as a name in the standard locations. Missing keys keep their
// DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		var de *yamlutil.DecodeError
		if errors.As(err, &de) {
			return nil, fmt.Errorf("%w: %s:\n%s", ErrConfigParse, configPath, de.Source)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists the files LoadConfig tries for name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, "go-page2doc", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths(name).
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

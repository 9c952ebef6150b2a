package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-page2doc/internal/dateutil"
	"github.com/alnah/go-page2doc/internal/extract"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Markdown.Mode != ModeRaster {
		t.Errorf("Markdown.Mode = %q, want %q", cfg.Markdown.Mode, ModeRaster)
	}
	if cfg.Markdown.Page.Size != "a4" {
		t.Errorf("Markdown.Page.Size = %q, want a4", cfg.Markdown.Page.Size)
	}
	if cfg.Markdown.Scale != 2 {
		t.Errorf("Markdown.Scale = %v, want 2", cfg.Markdown.Scale)
	}
	if cfg.Diagram.Padding != 40 || cfg.Diagram.MinWidth != 800 || cfg.Diagram.MinHeight != 600 {
		t.Errorf("Diagram = %+v, want padding 40 and min 800x600", cfg.Diagram)
	}
	if got := cfg.SettleDuration(); got != 500*time.Millisecond {
		t.Errorf("SettleDuration() = %v, want 500ms", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{"empty value is valid", "", 10, false},
		{"value at limit is valid", "1234567890", 10, false},
		{"value over limit returns error", "12345678901", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("test.field", tt.value, tt.maxLength)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"print mode", func(c *Config) { c.Markdown.Mode = "print" }, nil},
		{"mode case insensitive", func(c *Config) { c.Markdown.Mode = "RASTER" }, nil},
		{"unknown mode", func(c *Config) { c.Markdown.Mode = "vector" }, ErrInvalidValue},
		{"scale too large", func(c *Config) { c.Markdown.Scale = 8 }, ErrInvalidValue},
		{"scale unset", func(c *Config) { c.Markdown.Scale = 0 }, nil},
		{"page size too long", func(c *Config) { c.Markdown.Page.Size = strings.Repeat("a", MaxPageSizeLength+1) }, ErrFieldTooLong},
		{"dark theme", func(c *Config) { c.Diagram.Theme = "dark" }, nil},
		{"unknown theme", func(c *Config) { c.Diagram.Theme = "neon" }, ErrInvalidValue},
		{"negative padding", func(c *Config) { c.Diagram.Padding = -1 }, ErrInvalidValue},
		{"negative min width", func(c *Config) { c.Diagram.MinWidth = -5 }, ErrInvalidValue},
		{"bad settle", func(c *Config) { c.Diagram.Settle = "soon" }, ErrInvalidValue},
		{"negative timeout", func(c *Config) { c.Browser.Timeout = "-1s" }, ErrInvalidValue},
		{"script url too long", func(c *Config) { c.Diagram.Script = strings.Repeat("x", MaxURLLength+1) }, ErrFieldTooLong},
		{"bad date format", func(c *Config) { c.Output.DateFormat = "YYYY-[MM" }, dateutil.ErrInvalidDateFormat},
		{"site without hosts", func(c *Config) {
			c.Extract.Sites = []SiteConfig{{Name: "docs"}}
		}, ErrInvalidValue},
		{"site with invalid selector", func(c *Config) {
			c.Extract.Sites = []SiteConfig{{Name: "docs", Hosts: []string{"example.org"}, Markdown: []RuleConfig{{Selector: "[[bad"}}}}
		}, ErrInvalidValue},
		{"site with invalid mode", func(c *Config) {
			c.Extract.Sites = []SiteConfig{{Name: "docs", Hosts: []string{"example.org"}, Mermaid: []RuleConfig{{Selector: "pre", Mode: "html"}}}}
		}, ErrInvalidValue},
		{"valid site", func(c *Config) {
			c.Extract.Sites = []SiteConfig{{Name: "docs", Hosts: []string{"example.org"}, Markdown: []RuleConfig{{Selector: ".doc-body"}}}}
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Strategies(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Extract.Sites = []SiteConfig{
		{
			Name:     "docs",
			Hosts:    []string{"docs.example.org"},
			Markdown: []RuleConfig{{Selector: ".doc-body"}, {Selector: "pre.src", Mode: "text"}},
			Mermaid:  []RuleConfig{{Selector: ".diagram-src"}},
		},
		{
			Name:     "wiki",
			Hosts:    []string{"wiki.example.org"},
			Markdown: []RuleConfig{{Selector: ".wiki"}},
		},
	}

	md := cfg.Strategies(extract.KindMarkdown)
	if len(md) != 2 {
		t.Fatalf("markdown strategies = %d, want 2", len(md))
	}
	if md[0].Rules[0].Mode != extract.ModeMarkdown {
		t.Errorf("default markdown mode = %v, want markdown", md[0].Rules[0].Mode)
	}
	if md[0].Rules[1].Mode != extract.ModeText {
		t.Errorf("explicit mode = %v, want text", md[0].Rules[1].Mode)
	}

	mm := cfg.Strategies(extract.KindMermaid)
	if len(mm) != 1 {
		t.Fatalf("mermaid strategies = %d, want 1 (wiki has no mermaid rules)", len(mm))
	}
	if mm[0].Rules[0].Mode != extract.ModeCode {
		t.Errorf("default mermaid mode = %v, want code", mm[0].Rules[0].Mode)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, `diagram:
  theme: forest
  padding: 20
  minWidth: 800
  minHeight: 600
  settle: 1s
extract:
  readability: true
  sites:
    - name: docs
      hosts: [docs.example.org]
      markdown:
        - selector: .doc-body
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Diagram.Theme != "forest" || cfg.Diagram.Padding != 20 {
			t.Errorf("Diagram = %+v, want forest/20", cfg.Diagram)
		}
		if cfg.SettleDuration() != time.Second {
			t.Errorf("SettleDuration() = %v, want 1s", cfg.SettleDuration())
		}
		if !cfg.Extract.Readability {
			t.Error("Extract.Readability = false, want true")
		}
		if len(cfg.Extract.Sites) != 1 || cfg.Extract.Sites[0].Markdown[0].Selector != ".doc-body" {
			t.Errorf("Extract.Sites = %+v", cfg.Extract.Sites)
		}
		// Sections absent from the file keep their defaults.
		if cfg.Markdown.Mode != ModeRaster {
			t.Errorf("Markdown.Mode = %q, want default %q", cfg.Markdown.Mode, ModeRaster)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("nonexistent name returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig("page2doc-config-that-does-not-exist")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig(writeConfig(t, "markdown: [unclosed"))
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig(writeConfig(t, "unknownField: true\n"))
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig(writeConfig(t, "markdown:\n  mode: vector\n"))
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("work")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least the local candidates", paths)
	}
	if paths[0] != "work.yaml" || paths[1] != "work.yml" {
		t.Errorf("local candidates = %v, want work.yaml then work.yml", paths[:2])
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, "go-page2doc") {
			t.Errorf("user path %q does not use the go-page2doc directory", p)
		}
	}
}

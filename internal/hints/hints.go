// Package hints turns common failures into short suggestions printed under
// the error message as "\n  hint: a; b".
package hints

import (
	"os"
	"strings"
)

// Hint is a list of suggestions for one failure. The zero value prints
// nothing.
type Hint []string

func (h Hint) String() string {
	if len(h) == 0 {
		return ""
	}
	return "\n  hint: " + strings.Join(h, "; ")
}

// Env is the slice of the process environment browser hints depend on.
type Env struct {
	Getenv      func(string) string
	InContainer func() bool
}

// System reads the real environment. A container is recognized by
// PAGE2DOC_CONTAINER=1, /.dockerenv, or the "container" variable that
// Podman and systemd-nspawn set.
func System() Env {
	return Env{
		Getenv: os.Getenv,
		InContainer: func() bool {
			if os.Getenv("PAGE2DOC_CONTAINER") == "1" || os.Getenv("container") != "" {
				return true
			}
			_, err := os.Stat("/.dockerenv")
			return err == nil
		},
	}
}

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// Browser suggests sandbox and binary settings when Chrome will not start.
func (e Env) Browser() Hint {
	var h Hint
	ci := false
	for _, v := range ciVars {
		if e.Getenv(v) != "" {
			ci = true
			break
		}
	}
	if (ci || e.InContainer()) && e.Getenv("ROD_NO_SANDBOX") != "1" {
		h = append(h, "set ROD_NO_SANDBOX=1 (or browser.noSandbox) in containers and CI")
	}
	if e.Getenv("ROD_BROWSER_BIN") == "" {
		h = append(h, "point ROD_BROWSER_BIN (or browser.bin) at an installed Chrome")
	}
	return h
}

// MermaidLibrary is shown when mermaid.min.js could not be fetched or read.
func MermaidLibrary() Hint {
	return Hint{"check network access or pass --mermaid-script /path/to/mermaid.min.js"}
}

// NotFound is shown when a page held no block of the wanted kind.
func NotFound(kind string) Hint {
	h := Hint{"paste the content with --text, a local file, or - for stdin"}
	if kind == "markdown" {
		h = append(h, "--readability may recover the main article")
	}
	return h
}

// Timeout is shown when a page or render ran out of time.
func Timeout() Hint {
	return Hint{"raise --timeout for slow pages or large diagrams"}
}

// Config names the flag and the per-user location a config file could be
// created at.
func Config(searched []string) Hint {
	msg := "pass --config /path/to/file.yaml"
	for _, p := range searched {
		if strings.Contains(p, "go-page2doc") {
			msg += " or create " + p
			break
		}
	}
	return Hint{msg}
}

// OutputDir is shown when the output directory cannot be created.
func OutputDir() Hint {
	return Hint{"make sure the parent directory exists and is writable"}
}

// Style lists the styles that do exist. No styles means no hint.
func Style(available []string) Hint {
	if len(available) == 0 {
		return nil
	}
	return Hint{"available: " + strings.Join(available, ", ")}
}

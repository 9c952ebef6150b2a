package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	page2doc "github.com/alnah/go-page2doc"
	"github.com/alnah/go-page2doc/internal/assets"
	"github.com/alnah/go-page2doc/internal/config"
	"github.com/alnah/go-page2doc/internal/fileutil"
)

// mermaidCheckTimeout bounds the Mermaid library probe.
const mermaidCheckTimeout = 15 * time.Second

// Finding severities, worst last.
const (
	levelOK    = "ok"
	levelWarn  = "warn"
	levelError = "error"
)

// finding is one line of the doctor report.
type finding struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// section groups the findings of one probe.
type section struct {
	Name     string    `json:"name"`
	Findings []finding `json:"findings"`
}

func (s *section) ok(format string, a ...any)   { s.add(levelOK, format, a...) }
func (s *section) warn(format string, a ...any) { s.add(levelWarn, format, a...) }
func (s *section) fail(format string, a ...any) { s.add(levelError, format, a...) }

func (s *section) add(level, format string, a ...any) {
	s.Findings = append(s.Findings, finding{Level: level, Message: fmt.Sprintf(format, a...)})
}

// doctorReport is what doctor prints, as text or JSON.
type doctorReport struct {
	Status   string    `json:"status"` // "ready", "warnings", "errors"
	Sections []section `json:"sections"`
}

// status derives the overall status from the worst finding.
func (r *doctorReport) status() string {
	worst := levelOK
	for _, s := range r.Sections {
		for _, f := range s.Findings {
			switch {
			case f.Level == levelError:
				return "errors"
			case f.Level == levelWarn:
				worst = levelWarn
			}
		}
	}
	if worst == levelWarn {
		return "warnings"
	}
	return "ready"
}

// doctorProbe is the part of the machine doctor inspects. Tests replace it.
type doctorProbe struct {
	getenv      func(string) string
	lookPath    func() (string, bool)
	version     func(bin string) (string, error)
	client      *http.Client
	tempDirFunc func() string
}

func systemProbe(env *Environment) doctorProbe {
	return doctorProbe{
		getenv:   os.Getenv,
		lookPath: launcher.LookPath,
		version: func(bin string) (string, error) {
			out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- detected browser binary
			return strings.TrimSpace(string(out)), err
		},
		client:      env.HTTPClient,
		tempDirFunc: os.TempDir,
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = ready (warnings included), 1 = errors found, 2 = usage.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet(cmdDoctor, flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	jsonOutput := fs.Bool("json", false, "print results as JSON")
	script := fs.String("mermaid-script", "", "mermaid.min.js file path or URL to probe")
	configName := fs.StringP("config", "c", "", "config file name or path")
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(*configName, envCfg)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Failed to load config: %v%s\n", err, hintFor(err, page2doc.KindMarkdown, *configName))
		return ExitUsage
	}
	applyEnvConfig(envCfg, cfg)
	if *script != "" {
		cfg.Diagram.Script = *script
	}

	report := runDoctor(ctx, cfg, systemProbe(env))

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printDoctorReport(env.Stdout, report)
	}

	if report.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor runs every probe against cfg.
func runDoctor(ctx context.Context, cfg *config.Config, p doctorProbe) *doctorReport {
	report := &doctorReport{
		Sections: []section{
			checkChrome(cfg, p),
			checkMermaid(ctx, cfg.Diagram.Script, p),
			checkEnvironment(cfg, p),
			checkOutput(cfg, p),
		},
	}
	report.Status = report.status()
	return report
}

// checkChrome finds the browser the converters would launch.
func checkChrome(cfg *config.Config, p doctorProbe) section {
	s := section{Name: "Chrome/Chromium"}

	bin := cfg.Browser.Bin
	if bin == "" {
		bin = p.getenv("ROD_BROWSER_BIN")
	}
	if bin == "" {
		var found bool
		if bin, found = p.lookPath(); !found {
			s.fail("Not found. Install Chrome or set ROD_BROWSER_BIN")
			return s
		}
	}
	if _, err := os.Stat(bin); err != nil {
		s.fail("Not found at %s", bin)
		return s
	}
	s.ok("Found at %s", bin)

	if v, err := p.version(bin); err != nil {
		s.warn("Could not read version: %v", err)
	} else if v != "" {
		s.ok("Version: %s", v)
	}

	if cfg.Browser.NoSandbox || p.getenv("ROD_NO_SANDBOX") == "1" {
		s.ok("Sandbox: disabled")
	} else {
		s.ok("Sandbox: enabled")
	}
	return s
}

// checkMermaid loads the library the way png does. A failure only affects
// diagrams, so it is a warning.
func checkMermaid(ctx context.Context, source string, p doctorProbe) section {
	s := section{Name: "Mermaid"}
	if source == "" {
		source = page2doc.DefaultMermaidScript
	}

	ctx, cancel := context.WithTimeout(ctx, mermaidCheckTimeout)
	defer cancel()

	mermaid := page2doc.NewMermaidReadiness(source, p.client)
	defer mermaid.Stop()

	script, err := mermaid.Wait(ctx)
	if err != nil {
		s.warn("Library unavailable from %s (png will fail): %v", source, err)
		return s
	}
	s.ok("Loaded %s (%d bytes)", source, len(script))
	return s
}

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// checkEnvironment reports platform, container and CI, and warns when a
// sandboxed Chrome is likely to fail.
func checkEnvironment(cfg *config.Config, p doctorProbe) section {
	s := section{Name: "Environment"}
	s.ok("Platform: %s/%s", runtime.GOOS, runtime.GOARCH)

	container, why := containerSignal(p.getenv)
	if container {
		s.ok("Container: detected (%s)", why)
	}
	ci := false
	for _, v := range ciVars {
		if p.getenv(v) != "" {
			ci = true
			s.ok("CI: detected (%s)", v)
			break
		}
	}

	sandboxOff := cfg.Browser.NoSandbox || p.getenv("ROD_NO_SANDBOX") == "1"
	if (container || ci) && !sandboxOff {
		s.warn("Container/CI detected but the sandbox is on. Set ROD_NO_SANDBOX=1 or browser.noSandbox")
	}
	return s
}

// containerSignal names the first container marker found.
func containerSignal(getenv func(string) string) (bool, string) {
	if getenv("PAGE2DOC_CONTAINER") == "1" {
		return true, "PAGE2DOC_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkOutput verifies what a conversion touches besides the browser: the
// style, the asset overlay, the output directory and the temp directory
// diagram pages are written to.
func checkOutput(cfg *config.Config, p doctorProbe) section {
	s := section{Name: "Output"}

	lib, err := assets.Open(cfg.Assets.BasePath)
	switch {
	case err != nil:
		s.fail("Asset directory unusable: %v", err)
	case lib.Overlaid():
		s.ok("Assets: %s over built-ins", cfg.Assets.BasePath)
	}
	style := cfg.Markdown.Style
	if style == "" {
		style = assets.DefaultStyleName
	}
	switch {
	case lib == nil || strings.Contains(style, "{"):
	case fileutil.IsFilePath(style):
		if _, err := os.Stat(style); err != nil {
			s.fail("Style file %s unreadable: %v", style, err)
		} else {
			s.ok("Style: file %s", style)
		}
	default:
		if _, err := lib.Style(style); err != nil {
			s.fail("Style %q not found (available: %s)", style, strings.Join(lib.Names(assets.Style), ", "))
		} else {
			s.ok("Style: %s", style)
		}
	}

	dir := cfg.Output.Dir
	if dir == "" {
		dir = "."
	}
	checkWritable(&s, "Output directory", dir, true)
	checkWritable(&s, "Temp directory", p.tempDirFunc(), false)
	return s
}

// checkWritable creates and removes a probe file in dir. A missing output
// directory is only a warning: conversions create it.
func checkWritable(s *section, label, dir string, mayCreate bool) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) && mayCreate {
		s.warn("%s: %s does not exist yet and will be created", label, dir)
		return
	}
	f, err := os.CreateTemp(dir, ".page2doc-doctor-*")
	if err != nil {
		s.fail("%s: %s not writable", label, dir)
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	s.ok("%s: %s writable", label, dir)
}

var levelTags = map[string]string{
	levelOK:    "[OK]",
	levelWarn:  "[WARN]",
	levelError: "[ERROR]",
}

// printDoctorReport outputs the human-readable report.
func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintln(w, "page2doc doctor")
	fmt.Fprintln(w)

	for _, s := range r.Sections {
		fmt.Fprintln(w, s.Name)
		for _, f := range s.Findings {
			fmt.Fprintf(w, "  %s %s\n", levelTags[f.Level], f.Message)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

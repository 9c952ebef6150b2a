package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	page2doc "github.com/alnah/go-page2doc"
	"github.com/alnah/go-page2doc/internal/config"
	"github.com/alnah/go-page2doc/internal/fileutil"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadInput          = errors.New("failed to read input")
	ErrReadCSS            = errors.New("failed to read CSS file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("unsupported input file extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrUsage              = errors.New("invalid usage")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// conversionParams groups everything shared by the inputs of one batch.
type conversionParams struct {
	kind       page2doc.Kind
	page       *page2doc.PageSettings
	diagram    *page2doc.DiagramSettings
	css        string
	htmlOutput bool
	htmlOnly   bool
	outputDir  string
	outputFile string // exact path; only with a single input
	loader     *inputLoader
	namer      *outputNamer
	logger     zerolog.Logger
}

// runConvertCmd runs pdf or png and returns the exit code.
func runConvertCmd(ctx context.Context, cmd string, args []string, env *Environment) int {
	kind := page2doc.KindMarkdown
	if cmd == cmdPNG {
		kind = page2doc.KindMermaid
	}

	flags, positional, err := parseConvertFlags(cmd, args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	warnUnknownEnvVars(logger)

	b, err := prepareBatch(kind, positional, flags, env, logger)
	if err != nil {
		reportFailure(env.Stderr, kind, "", err, flags.common.config)
		return exitCodeFor(err)
	}
	defer b.close()

	start := time.Now()
	results := convertBatch(ctx, b.pool, b.inputs, b.params)
	logger.Debug().Dur("took", time.Since(start)).Int("inputs", len(results)).Msg("batch finished")

	return printResults(results, flags.common, b.params, env)
}

// batch is a prepared conversion run.
type batch struct {
	pool   Pool
	inputs []inputSource
	params *conversionParams
}

func (b *batch) close() {
	_ = b.pool.Close()
	_ = b.params.loader.Close()
}

// prepareBatch merges configuration, resolves inputs and builds the pool.
func prepareBatch(kind page2doc.Kind, args []string, flags *convertFlags, env *Environment, logger zerolog.Logger) (*batch, error) {
	envCfg := loadEnvConfig()

	if flags.io.workers == 0 {
		flags.io.workers = envCfg.Workers
	}
	if err := validateWorkers(flags.io.workers); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return nil, err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout, err := resolveTimeout(flags.io.timeout, cfg)
	if err != nil {
		return nil, err
	}

	inputs, err := resolveInputs(kind, args, flags.io.text, env.Stdin)
	if err != nil {
		return nil, err
	}

	params, err := buildParams(kind, flags, cfg, len(inputs))
	if err != nil {
		return nil, err
	}
	params.logger = logger
	params.loader = newInputLoader(kind, cfg, timeout, env.HTTPClient, logger)

	size := min(page2doc.ResolvePoolSize(flags.io.workers), len(inputs))
	logger.Debug().Int("workers", size).Int("inputs", len(inputs)).Msg("starting batch")

	pool := env.NewPool(size, converterOptions(cfg, params, timeout, env, logger)...)
	return &batch{pool: pool, inputs: inputs, params: params}, nil
}

// loadConfig loads the named config, or the defaults when no name is given.
func loadConfig(name string, env *envConfig) (*config.Config, error) {
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(name)
}

// mergeFlags applies explicitly set flags on top of cfg.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.io.output != "" {
		cfg.Output.Dir = flags.io.output
	}
	if flags.load.noJS {
		cfg.Extract.NoJS = true
	}
	if flags.load.readability {
		cfg.Extract.Readability = true
	}

	m := flags.markdown
	if m.style != "" {
		cfg.Markdown.Style = m.style
	}
	if m.mode != "" {
		cfg.Markdown.Mode = m.mode
	}
	if m.pageSize != "" {
		cfg.Markdown.Page.Size = m.pageSize
	}
	if m.orientation != "" {
		cfg.Markdown.Page.Orientation = m.orientation
	}
	if m.margin != 0 {
		cfg.Markdown.Page.Margin = m.margin
	}
	if m.scale != 0 {
		cfg.Markdown.Scale = m.scale
	}

	d := flags.diagram
	if d.theme != "" {
		cfg.Diagram.Theme = d.theme
	}
	if d.padding != unsetInt {
		cfg.Diagram.Padding = d.padding
	}
	if d.minWidth != 0 {
		cfg.Diagram.MinWidth = d.minWidth
	}
	if d.minHeight != 0 {
		cfg.Diagram.MinHeight = d.minHeight
	}
	if d.settle != "" {
		cfg.Diagram.Settle = d.settle
	}
	if d.mermaidScript != "" {
		cfg.Diagram.Script = d.mermaidScript
	}
}

// resolveTimeout returns the render timeout: flag first, then the merged
// config (which already carries PAGE2DOC_TIMEOUT). Zero means the library
// default.
func resolveTimeout(flagValue string, cfg *config.Config) (time.Duration, error) {
	if flagValue == "" {
		return cfg.TimeoutDuration(), nil
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, flagValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q (must be positive)", ErrInvalidTimeout, flagValue)
	}
	return d, nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > page2doc.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, page2doc.MaxPoolSize)
	}
	return nil
}

// buildParams derives the per-batch conversion parameters from cfg.
func buildParams(kind page2doc.Kind, flags *convertFlags, cfg *config.Config, inputCount int) (*conversionParams, error) {
	p := &conversionParams{
		kind:       kind,
		htmlOutput: flags.markdown.html,
		htmlOnly:   flags.markdown.htmlOnly,
		page: &page2doc.PageSettings{
			Size:        cfg.Markdown.Page.Size,
			Orientation: cfg.Markdown.Page.Orientation,
			Margin:      cfg.Markdown.Page.Margin,
			Mode:        cfg.Markdown.Mode,
			Scale:       cfg.Markdown.Scale,
		},
		diagram: &page2doc.DiagramSettings{
			Theme:     cfg.Diagram.Theme,
			Padding:   cfg.Diagram.Padding,
			MinWidth:  cfg.Diagram.MinWidth,
			MinHeight: cfg.Diagram.MinHeight,
			Settle:    cfg.SettleDuration(),
		},
		namer: newOutputNamer(),
	}

	if flags.markdown.css != "" {
		css, err := fileutil.ReadText(flags.markdown.css)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadCSS, err)
		}
		p.css = css
	}

	dir, file, err := splitOutput(cfg.Output.Dir, kind, p.htmlOnly, inputCount)
	if err != nil {
		return nil, err
	}
	p.outputDir, p.outputFile = dir, file
	return p, nil
}

// converterOptions maps the merged configuration to converter options.
func converterOptions(cfg *config.Config, p *conversionParams, timeout time.Duration, env *Environment, logger zerolog.Logger) []page2doc.Option {
	opts := []page2doc.Option{
		page2doc.WithStyle(cfg.Markdown.Style),
		page2doc.WithAssetPath(cfg.Assets.BasePath),
		page2doc.WithDateFormat(cfg.Output.DateFormat),
		page2doc.WithBrowserOptions(page2doc.BrowserOptions{
			Bin:       cfg.Browser.Bin,
			NoSandbox: cfg.Browser.NoSandbox,
			Proxy:     cfg.Browser.Proxy,
		}),
		page2doc.WithMermaidScript(cfg.Diagram.Script),
		page2doc.WithHTTPClient(env.HTTPClient),
		page2doc.WithLogger(logger),
	}
	if timeout > 0 {
		opts = append(opts, page2doc.WithTimeout(timeout))
	}
	// Launch while inputs are still being loaded.
	if !p.htmlOnly {
		opts = append(opts, page2doc.WithPreload(p.kind))
	}
	return opts
}

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	page2doc "github.com/alnah/go-page2doc"
)

// runExtractCmd prints the Markdown or Mermaid content found at a page URL
// or HTML file. With --json it prints the response envelope instead; the
// exit code follows the error either way.
func runExtractCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseExtractFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	kind, err := page2doc.ParseKind(flags.kind)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}
	if len(positional) != 1 {
		fmt.Fprintf(env.Stderr, "%v: extract takes exactly one URL or HTML file\n", ErrUsage)
		return ExitUsage
	}
	target := positional[0]

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)
	warnUnknownEnvVars(logger)

	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		reportExtractFailure(env, kind, err, flags.common.config)
		return exitCodeFor(err)
	}
	applyEnvConfig(envCfg, cfg)
	if flags.load.noJS {
		cfg.Extract.NoJS = true
	}
	if flags.load.readability {
		cfg.Extract.Readability = true
	}
	if err := cfg.Validate(); err != nil {
		reportExtractFailure(env, kind, err, flags.common.config)
		return exitCodeFor(err)
	}

	loader := newInputLoader(kind, cfg, cfg.TimeoutDuration(), env.HTTPClient, logger)
	defer func() { _ = loader.Close() }()

	ex, err := loader.extractorFor()
	if err != nil {
		reportExtractFailure(env, kind, err, flags.common.config)
		return exitCodeFor(err)
	}

	content, err := ex.Extract(ctx, target)
	if flags.json {
		if werr := page2doc.NewResponse(kind, content, err).WriteJSON(env.Stdout); werr != nil {
			fmt.Fprintln(env.Stderr, werr)
			return ExitGeneral
		}
		return exitCodeFor(err)
	}
	if err != nil {
		reportExtractFailure(env, kind, err, flags.common.config)
		return exitCodeFor(err)
	}

	fmt.Fprint(env.Stdout, content)
	if !strings.HasSuffix(content, "\n") {
		fmt.Fprintln(env.Stdout)
	}
	return ExitSuccess
}

func reportExtractFailure(env *Environment, kind page2doc.Kind, err error, configName string) {
	fmt.Fprintf(env.Stderr, "Failed to extract %s: %v%s\n", kind, err, hintFor(err, kind, configName))
}

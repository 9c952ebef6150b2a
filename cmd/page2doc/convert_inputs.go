package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	page2doc "github.com/alnah/go-page2doc"
	"github.com/alnah/go-page2doc/internal/config"
	"github.com/alnah/go-page2doc/internal/fileutil"
)

// stdinArg names standard input on the command line.
const stdinArg = "-"

// inputSource is one thing to convert: a page, a file, or text.
type inputSource struct {
	Label   string          // shown in results
	Source  page2doc.Source // web, file or manual
	Target  string          // URL or file path; empty for manual input
	Content string          // manual input only
	Extract bool            // locate content inside an HTML page
}

// sourceExtensions lists the plain-text file extensions read as-is per kind.
var sourceExtensions = map[page2doc.Kind]map[string]bool{
	page2doc.KindMarkdown: {"md": true, "markdown": true, "txt": true},
	page2doc.KindMermaid:  {"mmd": true, "mermaid": true, "txt": true},
}

// resolveInputs classifies positional arguments. --text replaces them.
func resolveInputs(kind page2doc.Kind, args []string, text string, stdin io.Reader) ([]inputSource, error) {
	if text != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("%w: --text cannot be combined with inputs", ErrUsage)
		}
		return []inputSource{{Label: "text", Source: page2doc.SourceManual, Content: text}}, nil
	}
	if len(args) == 0 {
		return nil, ErrNoInput
	}

	inputs := make([]inputSource, 0, len(args))
	readStdin := false
	for _, arg := range args {
		switch {
		case arg == stdinArg:
			if readStdin {
				return nil, fmt.Errorf("%w: stdin given more than once", ErrUsage)
			}
			readStdin = true
			content, err := fileutil.DecodeText(stdin)
			if err != nil {
				return nil, fmt.Errorf("%w: stdin: %w", ErrReadInput, err)
			}
			inputs = append(inputs, inputSource{Label: "stdin", Source: page2doc.SourceManual, Content: content})

		case fileutil.IsURL(arg):
			inputs = append(inputs, inputSource{Label: arg, Source: page2doc.SourceWeb, Target: arg, Extract: true})

		default:
			ext := fileutil.Ext(arg)
			switch {
			case ext == "html" || ext == "htm":
				inputs = append(inputs, inputSource{Label: arg, Source: page2doc.SourceFile, Target: arg, Extract: true})
			case sourceExtensions[kind][ext]:
				inputs = append(inputs, inputSource{Label: arg, Source: page2doc.SourceFile, Target: arg})
			default:
				return nil, fmt.Errorf("%w: %q for %s", ErrInvalidExtension, arg, kind)
			}
		}
	}
	return inputs, nil
}

// inputLoader turns an inputSource into convertible content. The extractor
// and its browser are created on first use, so runs without pages never
// launch Chrome for loading.
type inputLoader struct {
	kind    page2doc.Kind
	cfg     *config.Config
	timeout time.Duration
	client  *http.Client
	logger  zerolog.Logger

	once      sync.Once
	extractor *page2doc.Extractor
	browser   *page2doc.BrowserReadiness
	err       error
}

func newInputLoader(kind page2doc.Kind, cfg *config.Config, timeout time.Duration, client *http.Client, logger zerolog.Logger) *inputLoader {
	return &inputLoader{kind: kind, cfg: cfg, timeout: timeout, client: client, logger: logger}
}

// Load reads in and returns the content with its status, and the base used
// to resolve relative links.
func (l *inputLoader) Load(ctx context.Context, in inputSource) (content, sourceDir string, err error) {
	state := page2doc.NewState(l.kind).SwitchSource(in.Source)

	var raw string
	switch {
	case in.Source == page2doc.SourceManual:
		raw = in.Content
	case in.Extract:
		ex, exErr := l.extractorFor()
		if exErr != nil {
			return "", "", exErr
		}
		if raw, err = ex.Extract(ctx, in.Target); err != nil {
			return "", "", err
		}
	default:
		if raw, err = fileutil.ReadText(in.Target); err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrReadInput, err)
		}
	}

	state = state.Load(raw)
	if state.Status != "" {
		l.logger.Info().Str("input", in.Label).Msg(state.Status)
	}
	if content, err = state.Ready(); err != nil {
		return "", "", err
	}

	switch in.Source {
	case page2doc.SourceWeb:
		sourceDir = in.Target
	case page2doc.SourceFile:
		if abs, absErr := filepath.Abs(in.Target); absErr == nil {
			sourceDir = filepath.Dir(abs)
		}
	}
	return content, sourceDir, nil
}

func (l *inputLoader) extractorFor() (*page2doc.Extractor, error) {
	l.once.Do(func() {
		var loader page2doc.PageLoader
		if l.cfg.Extract.NoJS {
			loader = &page2doc.HTTPLoader{Client: l.client}
		} else {
			l.browser = page2doc.NewBrowserReadiness(page2doc.BrowserOptions{
				Bin:       l.cfg.Browser.Bin,
				NoSandbox: l.cfg.Browser.NoSandbox,
				Proxy:     l.cfg.Browser.Proxy,
			})
			l.browser.SetLogger(l.logger)
			loader = page2doc.NewBrowserLoader(l.browser, l.timeout)
		}

		l.extractor, l.err = page2doc.NewExtractor(l.kind,
			page2doc.WithSites(l.cfg.Strategies(string(l.kind))...),
			page2doc.WithReadabilityFallback(l.cfg.Extract.Readability),
			page2doc.WithLoader(loader),
			page2doc.WithExtractorLogger(l.logger),
		)
	})
	return l.extractor, l.err
}

// Close shuts down the loading browser, if one was started.
func (l *inputLoader) Close() error {
	if l.browser == nil {
		return nil
	}
	return l.browser.Close()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	page2doc "github.com/alnah/go-page2doc"
	"github.com/alnah/go-page2doc/internal/fileutil"
)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	Label      string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// convertBatch processes inputs concurrently using the converter pool.
func convertBatch(ctx context.Context, pool Pool, inputs []inputSource, params *conversionParams) []ConversionResult {
	if len(inputs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(inputs))

	results := make([]ConversionResult, len(inputs))
	var wg sync.WaitGroup
	jobs := make(chan int, len(inputs))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = ConversionResult{Label: inputs[idx].Label, Err: err}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{Label: inputs[idx].Label, Err: ctx.Err()}
					continue
				}
				results[idx] = convertInput(ctx, conv, inputs[idx], params)
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertInput loads, converts and writes a single input.
func convertInput(ctx context.Context, conv CLIConverter, in inputSource, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{Label: in.Label}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, sourceDir, err := params.loader.Load(ctx, in)
	if err != nil {
		return fail(err)
	}

	res, err := conv.Convert(ctx, page2doc.Input{
		Kind:      params.kind,
		Content:   content,
		SourceDir: sourceDir,
		CSS:       params.css,
		Page:      params.page,
		Diagram:   params.diagram,
		HTMLOnly:  params.htmlOnly,
	})
	if err != nil {
		return fail(err)
	}

	outPath := params.outputFile
	if outPath == "" {
		outPath = params.namer.Reserve(filepath.Join(params.outputDir, res.Filename))
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fail(fmt.Errorf("%w: creating %s: %w", ErrWriteOutput, dir, err))
		}
	}

	// Write HTML output if requested (--html or --html-only)
	if params.kind == page2doc.KindMarkdown && (params.htmlOnly || params.htmlOutput) {
		htmlPath := htmlOutputPath(outPath)
		// #nosec G306 -- HTML files are meant to be readable
		if err := os.WriteFile(htmlPath, res.HTML, filePermissions); err != nil {
			return fail(fmt.Errorf("%w: %w", ErrWriteOutput, err))
		}
		if params.htmlOnly {
			result.OutputPath = htmlPath
			result.Duration = time.Since(start)
			return result
		}
	}

	// #nosec G306 -- documents are meant to be readable
	if err := os.WriteFile(outPath, res.Data, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrWriteOutput, err))
	}
	params.logger.Debug().Str("output", outPath).Int("bytes", len(res.Data)).Msg("artifact written")

	result.OutputPath = outPath
	result.Duration = time.Since(start)
	return result
}

// htmlOutputPath swaps the artifact extension for .html.
func htmlOutputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
}

// splitOutput interprets -o: a path with the artifact extension (or .html
// with --html-only) names the output file, anything else is a directory.
// A file name only makes sense for a single input.
func splitOutput(output string, kind page2doc.Kind, htmlOnly bool, inputCount int) (dir, file string, err error) {
	ext := kind.Extension()
	if htmlOnly {
		ext = "html"
	}
	if output == "" || fileutil.Ext(output) != ext {
		return output, "", nil
	}
	if inputCount > 1 {
		return "", "", fmt.Errorf("%w: -o %s names a file but %d inputs were given", ErrUsage, output, inputCount)
	}
	return "", output, nil
}

// outputNamer hands out artifact paths that are unique within a run and do
// not overwrite existing files. Timestamped names collide when several
// inputs finish within the same second.
type outputNamer struct {
	mu    sync.Mutex
	taken map[string]bool
}

func newOutputNamer() *outputNamer {
	return &outputNamer{taken: make(map[string]bool)}
}

// Reserve returns path, or path with a -2, -3, ... suffix before the
// extension when it is already taken.
func (n *outputNamer) Reserve(path string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	candidate := path
	for i := 2; n.taken[candidate] || fileutil.FileExists(candidate); i++ {
		candidate = fmt.Sprintf("%s-%d%s", base, i, ext)
	}
	n.taken[candidate] = true
	return candidate
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results and returns the exit code of the
// first failure.
func printResults(results []ConversionResult, common commonFlags, params *conversionParams, env *Environment) int {
	summary := countResults(results)
	var firstErr error

	for _, r := range results {
		if r.Err != nil {
			reportFailure(env.Stderr, params.kind, r.Label, r.Err, common.config)
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}

		if common.quiet {
			continue
		}

		if common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.Label, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !common.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return exitCodeFor(firstErr)
}

// reportFailure prints a user-facing failure line with its hint.
func reportFailure(w io.Writer, kind page2doc.Kind, label string, err error, configName string) {
	prefix := "Failed to generate " + strings.ToUpper(kind.Extension())
	if label != "" {
		prefix += ": " + label
	}
	msg := err.Error()
	if errors.Is(err, context.Canceled) {
		msg = "interrupted"
	}
	fmt.Fprintf(w, "%s: %s%s\n", prefix, msg, hintFor(err, kind, configName))
}

package main

// Notes:
// - Shared fakes for CLI tests. fakePool hands out one fakeConverter, so
//   tests can inspect every Input the batch produced without a browser.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"

	page2doc "github.com/alnah/go-page2doc"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake converter and pool
// ---------------------------------------------------------------------------

const fakeStamp = "2026-10-17-09-30-05"

type fakeConverter struct {
	mu     sync.Mutex
	inputs []page2doc.Input
	err    error
}

func (f *fakeConverter) Convert(_ context.Context, in page2doc.Input) (*page2doc.Result, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	res := &page2doc.Result{
		Kind:     in.Kind,
		Filename: string(in.Kind) + "-" + fakeStamp + "." + in.Kind.Extension(),
	}
	if in.Kind == page2doc.KindMarkdown {
		res.HTML = []byte("<html><body>" + in.Content + "</body></html>")
	}
	if !in.HTMLOnly {
		res.Data = []byte("artifact:" + in.Content)
	}
	return res, nil
}

func (f *fakeConverter) received() []page2doc.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]page2doc.Input(nil), f.inputs...)
}

type fakePool struct {
	conv       *fakeConverter
	acquireErr error

	mu       sync.Mutex
	size     int
	opts     int
	released int
	closed   bool
}

func (p *fakePool) Acquire() (CLIConverter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.conv, nil
}

func (p *fakePool) Release(CLIConverter) {
	p.mu.Lock()
	p.released++
	p.mu.Unlock()
}

func (p *fakePool) Size() int { return p.size }

func (p *fakePool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// newTestEnv returns an environment writing to buffers whose pool factory
// always returns pool.
func newTestEnv(pool *fakePool) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Stdin:      strings.NewReader(""),
		Stdout:     stdout,
		Stderr:     stderr,
		HTTPClient: http.DefaultClient,
		NewPool: func(size int, opts ...page2doc.Option) Pool {
			if pool == nil {
				return &fakePool{conv: &fakeConverter{}, size: size}
			}
			pool.mu.Lock()
			pool.size = size
			pool.opts = len(opts)
			pool.mu.Unlock()
			return pool
		},
	}
	return env, stdout, stderr
}

func newFakePool() *fakePool {
	return &fakePool{conv: &fakeConverter{}}
}

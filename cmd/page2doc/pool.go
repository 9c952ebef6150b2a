package main

import (
	"context"
	"fmt"

	page2doc "github.com/alnah/go-page2doc"
)

// CLIConverter is the part of page2doc.Converter the batch uses.
type CLIConverter interface {
	Convert(ctx context.Context, input page2doc.Input) (*page2doc.Result, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*page2doc.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (CLIConverter, error)
	Release(CLIConverter)
	Size() int
	Close() error
}

// poolAdapter exposes a page2doc.ConverterPool as a Pool.
type poolAdapter struct {
	pool *page2doc.ConverterPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

// newConverterPool is the production Environment.NewPool.
func newConverterPool(size int, opts ...page2doc.Option) Pool {
	return &poolAdapter{pool: page2doc.NewConverterPool(size, opts...)}
}

// Acquire never returns a nil *page2doc.Converter wrapped in a non-nil
// interface.
func (a *poolAdapter) Acquire() (CLIConverter, error) {
	conv, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Release panics when conv did not come from this pool's type; mixing pools
// is a programming error.
func (a *poolAdapter) Release(conv CLIConverter) {
	c, ok := conv.(*page2doc.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected converter type %T", conv))
	}
	a.pool.Release(c)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

func (a *poolAdapter) Close() error {
	return a.pool.Close()
}

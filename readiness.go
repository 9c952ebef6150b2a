package page2doc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Readiness resolves an external collaborator once and hands the same result
// to every waiter. Resolution runs in its own goroutine under a context that
// only Stop cancels, so a waiter giving up never poisons the result.
type Readiness[T any] struct {
	name    string
	resolve func(context.Context) (T, error)
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}

	val T
	err error
}

// NewReadiness creates an unstarted future named name.
func NewReadiness[T any](name string, resolve func(context.Context) (T, error)) *Readiness[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Readiness[T]{
		name:    name,
		resolve: resolve,
		logger:  zerolog.Nop(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// ResolvedReadiness returns a future already resolved to val.
func ResolvedReadiness[T any](name string, val T) *Readiness[T] {
	r := NewReadiness(name, func(context.Context) (T, error) { return val, nil })
	r.Start()
	<-r.done
	return r
}

// Name identifies the collaborator in logs and errors.
func (r *Readiness[T]) Name() string {
	return r.name
}

// SetLogger sets the logger used to report resolution.
func (r *Readiness[T]) SetLogger(l zerolog.Logger) {
	r.logger = l
}

// Start begins resolution in the background. Only the first call has an
// effect.
func (r *Readiness[T]) Start() {
	r.once.Do(func() {
		go r.run()
	})
}

func (r *Readiness[T]) run() {
	defer close(r.done)

	start := time.Now()
	val, err := r.resolve(r.ctx)
	if err != nil {
		r.err = fmt.Errorf("%w: %s: %w", ErrLibraryUnavailable, r.name, err)
		r.logger.Debug().Err(err).Str("library", r.name).Msg("readiness failed")
		return
	}
	r.val = val
	r.logger.Debug().Str("library", r.name).Dur("took", time.Since(start)).Msg("library ready")
}

// Wait starts resolution if needed and blocks until it completes or ctx ends.
// A failed resolution returns an error wrapping ErrLibraryUnavailable.
func (r *Readiness[T]) Wait(ctx context.Context) (T, error) {
	r.Start()

	select {
	case <-r.done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Resolved returns the value without blocking. ok is false while resolution
// is pending or when it failed.
func (r *Readiness[T]) Resolved() (val T, ok bool) {
	select {
	case <-r.done:
		return r.val, r.err == nil
	default:
		var zero T
		return zero, false
	}
}

// Stop cancels a pending resolution. Waiters then receive its error.
func (r *Readiness[T]) Stop() {
	r.cancel()
}

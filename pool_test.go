package page2doc

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverterPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(2, withRenderer(&fakeRenderer{}))
	defer func() { _ = pool.Close() }()

	a, err := pool.Acquire()
	require.NoError(t, err)
	b, err := pool.Acquire()
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	pool.Release(a)
	c, err := pool.Acquire()
	require.NoError(t, err)
	assert.Same(t, a, c, "released converters are reused")

	pool.Release(b)
	pool.Release(c)
}

func TestConverterPool_AcquireBlocksWhenExhausted(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(1, withRenderer(&fakeRenderer{}))
	defer func() { _ = pool.Close() }()

	first, err := pool.Acquire()
	require.NoError(t, err)

	got := make(chan *Converter, 1)
	go func() {
		conv, err := pool.Acquire()
		assert.NoError(t, err)
		got <- conv
	}()

	select {
	case <-got:
		t.Fatal("Acquire returned while the only converter was in use")
	case <-time.After(50 * time.Millisecond):
	}

	pool.Release(first)
	select {
	case conv := <-got:
		assert.Same(t, first, conv)
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not return after Release")
	}
}

func TestConverterPool_Close(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{}
	pool := NewConverterPool(3, withRenderer(r))

	conv, err := pool.Acquire()
	require.NoError(t, err)

	require.NoError(t, pool.Close())
	require.NoError(t, pool.Close(), "second close is a no-op")
	assert.True(t, r.closed)

	_, err = pool.Acquire()
	assert.ErrorIs(t, err, ErrPoolClosed)

	// Releasing into a closed pool must not panic.
	assert.NotPanics(t, func() { pool.Release(conv) })
}

func TestConverterPool_ConcurrentUse(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(3, withRenderer(&fakeRenderer{}))
	defer func() { _ = pool.Close() }()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := pool.Acquire()
			if !assert.NoError(t, err) {
				return
			}
			pool.Release(conv)
		}()
	}
	wg.Wait()

	pool.mu.Lock()
	defer pool.mu.Unlock()
	assert.LessOrEqual(t, pool.created, 3)
}

func TestConverterPool_CreationErrorFreesSlot(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(1, withRenderer(&fakeRenderer{}), WithStyle("no-such-style"))
	defer func() { _ = pool.Close() }()

	_, err := pool.Acquire()
	require.ErrorIs(t, err, ErrStyleNotFound)

	_, err = pool.Acquire()
	require.ErrorIs(t, err, ErrStyleNotFound, "a failed creation does not consume capacity")
}

func TestConverterPool_SharesMermaidLibrary(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(2)
	defer func() { _ = pool.Close() }()

	a, err := pool.Acquire()
	require.NoError(t, err)
	b, err := pool.Acquire()
	require.NoError(t, err)

	assert.Same(t, a.mermaid, b.mermaid)
	assert.NotSame(t, a.browser, b.browser)
}

func TestNewConverterPool_MinimumSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, NewConverterPool(0).Size())
	assert.Equal(t, 1, NewConverterPool(-4).Size())
	assert.Equal(t, 5, NewConverterPool(5).Size())
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 6, ResolvePoolSize(6))

	got := ResolvePoolSize(0)
	assert.GreaterOrEqual(t, got, MinPoolSize)
	assert.LessOrEqual(t, got, MaxPoolSize)
	if n := runtime.GOMAXPROCS(0) / cpuDivisor; n >= MinPoolSize && n <= MaxPoolSize {
		assert.Equal(t, n, got)
	}
}

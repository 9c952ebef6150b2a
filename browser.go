package page2doc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-page2doc/internal/process"
)

// BrowserOptions configures the headless Chrome launch.
type BrowserOptions struct {
	Bin       string // Chrome binary; empty lets rod find or download one
	NoSandbox bool   // required in most containers
	Proxy     string // proxy server for page loading
}

// withEnv fills unset fields from ROD_BROWSER_BIN, ROD_NO_SANDBOX and CI.
func (o BrowserOptions) withEnv() BrowserOptions {
	if o.Bin == "" {
		o.Bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" || o.Bin != "" {
		o.NoSandbox = true
	}
	return o
}

// BrowserReadiness launches Chrome on first use and owns its process.
type BrowserReadiness struct {
	*Readiness[*rod.Browser]

	mu       sync.Mutex
	launcher *launcher.Launcher
	closed   bool
}

// NewBrowserReadiness creates an unstarted browser future.
func NewBrowserReadiness(opts BrowserOptions) *BrowserReadiness {
	b := &BrowserReadiness{}
	b.Readiness = NewReadiness("browser", func(ctx context.Context) (*rod.Browser, error) {
		return b.launch(ctx, opts.withEnv())
	})
	return b
}

func (b *BrowserReadiness) launch(ctx context.Context, opts BrowserOptions) (*rod.Browser, error) {
	l := launcher.New().Context(ctx)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.NoSandbox {
		l = l.NoSandbox(true)
	}
	if opts.Proxy != "" {
		l = l.Proxy(opts.Proxy)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: closed before launch", ErrBrowserConnect)
	}
	b.launcher = l
	b.mu.Unlock()

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return browser, nil
}

// Close stops a pending launch, closes the browser and kills its process
// group so no renderer children survive.
func (b *BrowserReadiness) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	l := b.launcher
	b.mu.Unlock()

	b.Stop()

	var errs []error
	if browser, ok := b.Resolved(); ok {
		if err := browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	// Cleanup blocks until the process exits, so it only runs once one exists.
	if l != nil && l.PID() > 0 {
		_ = process.KillGroup(l.PID()) // best effort; Kill is the fallback
		l.Kill()
		l.Cleanup()
	}
	return errors.Join(errs...)
}

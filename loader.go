package page2doc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"golang.org/x/net/html/charset"
)

// PageLoader turns a page URL into a queryable document.
type PageLoader interface {
	Load(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// Compile-time interface checks.
var (
	_ PageLoader = (*HTTPLoader)(nil)
	_ PageLoader = (*BrowserLoader)(nil)
)

// maxPageSize caps HTTP page bodies.
const maxPageSize = 20 << 20

// HTTPLoader fetches the served HTML without running scripts. Content that a
// page builds client-side is invisible to it.
type HTTPLoader struct {
	Client    *http.Client
	UserAgent string
}

// Load fetches pageURL and parses the body, honoring its declared charset.
func (l *HTTPLoader) Load(ctx context.Context, pageURL string) (*goquery.Document, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if l.UserAgent != "" {
		req.Header.Set("User-Agent", l.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", ErrPageLoad, pageURL, resp.Status)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageSize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrPageLoad, pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrPageLoad, pageURL, err)
	}
	return doc, nil
}

// Page readiness budget for BrowserLoader.
const (
	defaultLoadTimeout = 30 * time.Second
	requestIdleWait    = 500 * time.Millisecond
	domStableWait      = 2 * time.Second
	domStableDiff      = 0.2
)

// BrowserLoader renders the page in headless Chrome and returns the DOM after
// scripts have run, which is where most rendered Markdown lives.
type BrowserLoader struct {
	browser *BrowserReadiness
	timeout time.Duration
}

// NewBrowserLoader creates a loader on top of a browser future. A zero
// timeout means 30s.
func NewBrowserLoader(browser *BrowserReadiness, timeout time.Duration) *BrowserLoader {
	if timeout <= 0 {
		timeout = defaultLoadTimeout
	}
	return &BrowserLoader{browser: browser, timeout: timeout}
}

// Load navigates to pageURL and waits for load, network idle and a stable
// DOM. Slow pages that never settle are read as they are when the budget
// runs out.
func (l *BrowserLoader) Load(ctx context.Context, pageURL string) (*goquery.Document, error) {
	b, err := l.browser.Wait(ctx)
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()
	page = page.Context(ctx)

	// The waits share the budget; the DOM is read on ctx so an exhausted
	// budget still yields the page as it stands.
	waiting := page.Timeout(l.timeout)
	defer waiting.CancelTimeout()

	html, err := readSettled(waiting, page, pageURL, l.timeout)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// settlingPage is the part of a rod page the readiness waits use.
type settlingPage interface {
	Navigate(url string) error
	WaitLoad() error
	WaitRequestIdle(d time.Duration, includes, excludes []string, excludeTypes []proto.NetworkResourceType) func()
	WaitDOMStable(d time.Duration, diff float64) error
}

// htmlSource reads the current DOM.
type htmlSource interface {
	HTML() (string, error)
}

// readSettled navigates through wait, lets the page settle within budget and
// reads the DOM through read. Running out of budget while waiting is not an
// error.
func readSettled(wait settlingPage, read htmlSource, pageURL string, budget time.Duration) (string, error) {
	start := time.Now()
	remaining := func(limit time.Duration) time.Duration {
		return max(min(budget-time.Since(start), limit), 0)
	}
	tolerate := func(err error) error {
		if err == nil || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return fmt.Errorf("%w: %s: %v", ErrPageLoad, pageURL, err)
	}

	if err := wait.Navigate(pageURL); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPageLoad, pageURL, err)
	}
	if err := tolerate(wait.WaitLoad()); err != nil {
		return "", err
	}
	if d := remaining(requestIdleWait); d > 0 {
		wait.WaitRequestIdle(d, nil, nil, nil)()
	}
	if d := remaining(domStableWait); d > 0 {
		if err := tolerate(wait.WaitDOMStable(d, domStableDiff)); err != nil {
			return "", err
		}
	}

	html, err := read.HTML()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPageLoad, pageURL, err)
	}
	return html, nil
}

// LoadFile parses a local HTML file.
func LoadFile(path string) (*goquery.Document, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided input
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	body, err := charset.NewReader(f, "text/html")
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return goquery.NewDocumentFromReader(body)
}

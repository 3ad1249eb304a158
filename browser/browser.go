package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// Page is the capability surface the pipeline needs from a browser tab.
// Everything above this interface is driver-agnostic and testable with fakes.
type Page interface {
	// Navigate loads url and blocks until the load event or the timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// Title returns the rendered document title.
	Title(ctx context.Context) (string, error)
	// HTML returns a full snapshot of the rendered document.
	HTML(ctx context.Context) (string, error)
	// Anchors returns the absolute href of every anchor whose URL contains
	// substr, harvested in one round-trip.
	Anchors(ctx context.Context, substr string) ([]string, error)
	// ClickByText clicks the first clickable element whose visible text
	// starts with one of labels. Returns whether anything was clicked.
	ClickByText(ctx context.Context, labels []string, timeout time.Duration) (bool, error)
	// ScrollBy scrolls the viewport by the given offsets.
	ScrollBy(ctx context.Context, dx, dy int) error
	// Wait sleeps for d or until ctx is cancelled.
	Wait(ctx context.Context, d time.Duration) error
	// DrainResponses returns JSON bodies of intercepted data-fetch responses
	// captured since the previous call, oldest first.
	DrainResponses() [][]byte
	// CloseDialogs dismisses any open modal so state does not leak into the
	// next extraction step.
	CloseDialogs(ctx context.Context) error
	// Evaluate runs script in the page and unmarshals the result into out.
	Evaluate(ctx context.Context, script string, out any) error
}

// Options configures the browser session.
type Options struct {
	Headless  bool
	Proxy     string
	ChromeBin string
}

// Session owns the exec allocator and the shared browser process.
type Session struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	browserCtx  context.Context
	cancelBrows context.CancelFunc
}

// NewSession launches (or prepares to launch) the browser process.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	allocOpts := StealthOpts(opts.Headless)
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	bin := opts.ChromeBin
	if bin == "" {
		bin = findChromeBinary()
	}
	if bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrows := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	return &Session{
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		browserCtx:  browserCtx,
		cancelBrows: cancelBrows,
	}, nil
}

// NewPage opens a fresh tab with network interception enabled.
func (s *Session) NewPage() (*ChromePage, error) {
	tabCtx, cancel := chromedp.NewContext(s.browserCtx)

	p := &ChromePage{ctx: tabCtx, cancel: cancel}
	p.listen()

	if err := chromedp.Run(tabCtx, network.Enable(), HideWebDriver()); err != nil {
		cancel()
		return nil, fmt.Errorf("browser: open tab: %w", err)
	}
	return p, nil
}

// Close tears down the browser process.
func (s *Session) Close() {
	s.cancelBrows()
	s.cancelAlloc()
}

// ChromePage implements Page on top of a chromedp tab context.
type ChromePage struct {
	ctx    context.Context
	cancel context.CancelFunc

	buf responseBuffer

	// exec runs chromedp actions against the tab; tests substitute it.
	exec func(ctx context.Context, actions ...chromedp.Action) error
}

// listen captures JSON bodies of XHR/fetch responses that look like the
// page's own data fetches. Bodies are fetched asynchronously because the
// event handler must not block the CDP event loop; the generation stamp keeps
// a fetch that finishes after the next navigation out of the buffer.
func (p *ChromePage) listen() {
	chromedp.ListenTarget(p.ctx, func(ev interface{}) {
		res, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}
		if !interceptable(res.Type, res.Response.MimeType, res.Response.URL) {
			return
		}
		reqID := res.RequestID
		gen := p.buf.generation()
		go func() {
			c := chromedp.FromContext(p.ctx)
			if c == nil || c.Target == nil {
				return
			}
			body, err := network.GetResponseBody(reqID).Do(cdp.WithExecutor(p.ctx, c.Target))
			if err != nil || !json.Valid(body) {
				return
			}
			p.buf.add(gen, body)
		}()
	})
}

// Close releases the tab.
func (p *ChromePage) Close() {
	p.cancel()
}

func (p *ChromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runFn := p.exec
	if runFn == nil {
		runFn = chromedp.Run
	}

	var tctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		tctx, cancel = context.WithTimeout(p.ctx, timeout)
	} else {
		tctx, cancel = context.WithCancel(p.ctx)
	}
	// cancel also fires on the caller-gave-up path below, so an abandoned
	// action cannot keep the tab busy.
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- runFn(tctx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ChromePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	// Anything buffered belongs to the previous document.
	p.buf.reset()

	// The webdriver patch is reapplied on every load; defineProperty
	// overrides do not survive a document replacement.
	if err := p.run(ctx, timeout, chromedp.Navigate(url), HideWebDriver()); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	return nil
}

func (p *ChromePage) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, 10*time.Second, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("browser: title: %w", err)
	}
	return title, nil
}

func (p *ChromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, 15*time.Second,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("browser: html snapshot: %w", err)
	}
	return html, nil
}

func (p *ChromePage) Anchors(ctx context.Context, substr string) ([]string, error) {
	quoted, _ := json.Marshal(substr)
	script := fmt.Sprintf(`
		(function() {
			var out = [];
			var els = document.querySelectorAll('a[href]');
			for (var i = 0; i < els.length; i++) {
				var href = els[i].href || '';
				if (href.indexOf(%s) !== -1) out.push(href);
			}
			return out;
		})()
	`, quoted)

	var hrefs []string
	if err := p.run(ctx, 10*time.Second, chromedp.Evaluate(script, &hrefs)); err != nil {
		return nil, fmt.Errorf("browser: harvest anchors: %w", err)
	}
	return hrefs, nil
}

func (p *ChromePage) ClickByText(ctx context.Context, labels []string, timeout time.Duration) (bool, error) {
	quoted, _ := json.Marshal(labels)
	script := fmt.Sprintf(`
		(function(labels) {
			var els = document.querySelectorAll('button, [role="button"], a, summary');
			for (var i = 0; i < els.length; i++) {
				var text = (els[i].innerText || '').trim().toLowerCase();
				if (!text) continue;
				for (var j = 0; j < labels.length; j++) {
					var label = labels[j].toLowerCase();
					if (text === label || text.indexOf(label) === 0) {
						els[i].click();
						return true;
					}
				}
			}
			return false;
		})(%s)
	`, quoted)

	var clicked bool
	if err := p.run(ctx, timeout, chromedp.Evaluate(script, &clicked)); err != nil {
		return false, fmt.Errorf("browser: click by text: %w", err)
	}
	return clicked, nil
}

func (p *ChromePage) ScrollBy(ctx context.Context, dx, dy int) error {
	script := fmt.Sprintf(`window.scrollBy(%d, %d)`, dx, dy)
	if err := p.run(ctx, 5*time.Second, chromedp.Evaluate(script, nil)); err != nil {
		return fmt.Errorf("browser: scroll: %w", err)
	}
	return nil
}

func (p *ChromePage) Wait(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ChromePage) DrainResponses() [][]byte {
	return p.buf.drain()
}

func (p *ChromePage) CloseDialogs(ctx context.Context) error {
	script := `
		(function() {
			var sel = '[role="dialog"] [aria-label="Close"],' +
			          '[role="dialog"] [aria-label="Fermer"],' +
			          '[aria-modal="true"] button[aria-label]';
			var btns = document.querySelectorAll(sel);
			for (var i = 0; i < btns.length; i++) btns[i].click();
			return btns.length;
		})()
	`
	var n int
	if err := p.run(ctx, 5*time.Second,
		chromedp.Evaluate(script, &n),
		chromedp.KeyEvent(kb.Escape)); err != nil {
		return fmt.Errorf("browser: close dialogs: %w", err)
	}
	return nil
}

func (p *ChromePage) Evaluate(ctx context.Context, script string, out any) error {
	if err := p.run(ctx, 10*time.Second, chromedp.Evaluate(script, out)); err != nil {
		return fmt.Errorf("browser: evaluate: %w", err)
	}
	return nil
}

// findChromeBinary locates a Chrome/Chromium binary on the host.
func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// Package browser implements [source.Provider] on top of a headless
// Chrome driven through go-rod.
//
// Every observation state is captured on a fresh page: the page is loaded,
// the state spec is applied (scroll, hover, click), the provider waits for
// the DOM to stop changing and then runs an in-page walker that measures
// every element with transforms disabled and reports computed styles.
package browser

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/fetch"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/source"
)

//go:embed walker.js
var walkerJS string

// Options configures the provider.
type Options struct {
	// URL is the page to capture.
	URL string
	// ControlURL connects to a running Chrome (ws://...). Empty launches a
	// local headless Chrome.
	ControlURL string
	// Headful shows the browser window (debugging).
	Headful bool
	// Stealth masks common automation fingerprints.
	Stealth bool
	// Viewport is the layout viewport. Defaults to 1440x900.
	Viewport geom.Size
	// NavigateTimeout bounds page load. Defaults to 30s.
	NavigateTimeout time.Duration
	// Settle is the default quiet period before a snapshot. Defaults to 500ms.
	Settle time.Duration
	Logger *log.Logger
}

func (o *Options) defaults() {
	if o.Viewport.Width <= 0 || o.Viewport.Height <= 0 {
		o.Viewport = geom.Size{Width: 1440, Height: 900}
	}
	if o.NavigateTimeout <= 0 {
		o.NavigateTimeout = 30 * time.Second
	}
	if o.Settle <= 0 {
		o.Settle = 500 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Provider captures snapshots from a live page.
type Provider struct {
	opts    Options
	browser *rod.Browser
	lnch    *launcher.Launcher

	mu    sync.Mutex
	pages []*rod.Page
}

// New launches (or connects to) Chrome.
func New(ctx context.Context, opts Options) (*Provider, error) {
	opts.defaults()
	if err := errors.ValidateURL(opts.URL); err != nil {
		return nil, err
	}

	p := &Provider{opts: opts}
	wsURL := opts.ControlURL
	if wsURL == "" {
		l := launcher.New().Headless(!opts.Headful).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "launch chrome")
		}
		wsURL = u
		p.lnch = l
		opts.Logger.Debug("launched local chrome", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		p.cleanup()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to chrome")
	}
	p.browser = b
	return p, nil
}

// Snapshot captures one observation state.
func (p *Provider) Snapshot(ctx context.Context, spec source.StateSpec) (*source.Snapshot, error) {
	if spec.Name == "" {
		spec.Name = source.DefaultState
	}
	logger := p.opts.Logger.With("state", spec.Name)

	page, err := p.openPage()
	if err != nil {
		return nil, err
	}

	navCtx, cancel := context.WithTimeout(ctx, p.opts.NavigateTimeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(p.opts.URL); err != nil {
		return nil, p.ctxErr(ctx, errors.Wrap(errors.ErrCodeNetwork, err, "navigate %s", p.opts.URL))
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		logger.Warn("wait load", "err", err)
	}

	pg := page.Context(ctx)
	if spec.ScrollX != 0 || spec.ScrollY != 0 {
		if _, err := pg.Eval(`(x, y) => window.scrollTo(x, y)`, spec.ScrollX, spec.ScrollY); err != nil {
			return nil, p.ctxErr(ctx, errors.Wrap(errors.ErrCodeInternal, err, "scroll"))
		}
	}
	if spec.Hover != "" {
		el, err := pg.Element(spec.Hover)
		if err != nil {
			return nil, p.ctxErr(ctx, errors.Wrap(errors.ErrCodeNotFound, err, "hover target %q", spec.Hover))
		}
		if err := el.Hover(); err != nil {
			return nil, p.ctxErr(ctx, errors.Wrap(errors.ErrCodeInternal, err, "hover %q", spec.Hover))
		}
	}
	if spec.Click != "" {
		el, err := pg.Element(spec.Click)
		if err != nil {
			return nil, p.ctxErr(ctx, errors.Wrap(errors.ErrCodeNotFound, err, "click target %q", spec.Click))
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return nil, p.ctxErr(ctx, errors.Wrap(errors.ErrCodeInternal, err, "click %q", spec.Click))
		}
	}

	settle := spec.Settle
	if settle <= 0 {
		settle = p.opts.Settle
	}
	ready := true
	if err := pg.WaitStable(settle); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("layout did not settle", "err", err)
		ready = false
	}

	res, err := pg.Eval(walkerJS)
	if err != nil {
		return nil, p.ctxErr(ctx, errors.Wrap(errors.ErrCodeInternal, err, "run walker"))
	}
	var snap source.Snapshot
	if err := json.Unmarshal([]byte(res.Value.Str()), &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode walker output")
	}
	snap.State = spec.Name
	snap.Ready = ready
	snap.CapturedAt = time.Now().UTC()
	logger.Debug("captured", "nodes", snap.Count(), "ready", ready)
	return &snap, nil
}

func (p *Provider) openPage() (*rod.Page, error) {
	var page *rod.Page
	var err error
	if p.opts.Stealth {
		page, err = stealth.Page(p.browser)
	} else {
		page, err = p.browser.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open tab")
	}
	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             int(p.opts.Viewport.Width),
		Height:            int(p.opts.Viewport.Height),
		DeviceScaleFactor: 1,
	})
	if err != nil {
		page.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "set viewport")
	}
	p.mu.Lock()
	p.pages = append(p.pages, page)
	p.mu.Unlock()
	return page, nil
}

// ctxErr prefers the context's error so cancellation is never reported as
// a navigation or script failure.
func (p *Provider) ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Fetcher returns a fetcher that serves asset bytes from the resource
// caches of the captured pages, falling back to next on a miss.
func (p *Provider) Fetcher(next fetch.Fetcher) fetch.Fetcher {
	return &resourceFetcher{p: p, next: next}
}

type resourceFetcher struct {
	p    *Provider
	next fetch.Fetcher
}

func (f *resourceFetcher) Fetch(ctx context.Context, url string) (fetch.Resource, error) {
	f.p.mu.Lock()
	pages := append([]*rod.Page(nil), f.p.pages...)
	f.p.mu.Unlock()

	for i := len(pages) - 1; i >= 0; i-- {
		data, err := pages[i].Context(ctx).GetResource(url)
		if err == nil && len(data) > 0 {
			return fetch.Resource{Data: data, MIME: ""}, nil
		}
		if ctx.Err() != nil {
			return fetch.Resource{}, ctx.Err()
		}
	}
	if f.next == nil {
		return fetch.Resource{}, errors.New(errors.ErrCodeNotFound, "%s not in page resources", url)
	}
	return f.next.Fetch(ctx, url)
}

// Close closes every page and the browser.
func (p *Provider) Close() error {
	p.mu.Lock()
	for _, page := range p.pages {
		_ = page.Close()
	}
	p.pages = nil
	p.mu.Unlock()
	return p.cleanup()
}

func (p *Provider) cleanup() error {
	var err error
	if p.browser != nil {
		err = p.browser.Close()
		p.browser = nil
	}
	if p.lnch != nil {
		p.lnch.Cleanup()
		p.lnch = nil
	}
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

var _ source.Provider = (*Provider)(nil)

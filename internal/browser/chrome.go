package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	localeOverride   = "en-US"
	timezoneOverride = "America/New_York"
)

// blockedResourcePatterns aborts heavy static assets at the network
// layer. Result pages stay parseable without images, styles, or fonts,
// and pages settle much faster without them.
var blockedResourcePatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.ico",
	"*.css",
	"*.woff", "*.woff2",
}

// Options configures the Chrome surface.
type Options struct {
	Headless  bool
	UserAgent string
	// NavTimeout bounds each navigation.
	NavTimeout time.Duration
}

// Chrome drives a single headless Chrome tab over the DevTools
// protocol. Close releases the browser.
type Chrome struct {
	ctx    context.Context
	cancel []context.CancelFunc
	opts   Options
}

// Launch starts Chrome with the anti-detection flags and request
// headers result surfaces expect, and opens one tab.
func Launch(ctx context.Context, opts Options) (*Chrome, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 45 * time.Second
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-accelerated-2d-canvas", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(opts.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	c := &Chrome{
		ctx:    tabCtx,
		cancel: []context.CancelFunc{cancelTab, cancelAlloc},
		opts:   opts,
	}

	// Starting the browser can fail outright (missing binary, broken
	// sandbox); that is the one fatal error class of a session.
	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetBlockedURLS(blockedResourcePatterns),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language":           "en-US,en;q=0.9",
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Referer":                   "https://www.google.com/",
			"DNT":                       "1",
			"Upgrade-Insecure-Requests": "1",
		}),
		emulation.SetDeviceMetricsOverride(1920, 1080, 1.0, false),
		emulation.SetLocaleOverride().WithLocale(localeOverride),
		emulation.SetTimezoneOverride(timezoneOverride),
	)
	if err != nil {
		c.Close()
		return nil, eris.Wrap(err, "browser: launch chrome")
	}

	return c, nil
}

// Close shuts the tab and the browser down.
func (c *Chrome) Close() {
	for _, cancel := range c.cancel {
		cancel()
	}
}

func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := mergeContext(c.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// mergeContext bounds the browser context by the caller's deadline and
// cancellation without detaching from the browser session.
func mergeContext(browserCtx, callCtx context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(browserCtx)
	stop := context.AfterFunc(callCtx, cancel)
	return merged, func() { stop(); cancel() }
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, c.opts.NavTimeout)
	defer cancel()
	if err := c.run(navCtx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return eris.Wrapf(err, "browser: navigate %s", url)
	}
	return nil
}

func (c *Chrome) Location(ctx context.Context) (string, error) {
	var loc string
	if err := c.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", eris.Wrap(err, "browser: read location")
	}
	return loc, nil
}

func (c *Chrome) Title(ctx context.Context) (string, error) {
	var title string
	if err := c.run(ctx, chromedp.Title(&title)); err != nil {
		return "", eris.Wrap(err, "browser: read title")
	}
	return title, nil
}

func (c *Chrome) HTML(ctx context.Context) (string, error) {
	var html string
	if err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", eris.Wrap(err, "browser: read document")
	}
	return html, nil
}

func (c *Chrome) Evaluate(ctx context.Context, script string, out any) error {
	if err := c.run(ctx, chromedp.Evaluate(script, out)); err != nil {
		return eris.Wrap(err, "browser: evaluate script")
	}
	return nil
}

func (c *Chrome) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := c.run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return eris.Wrapf(err, "browser: wait for %s", selector)
	}
	return nil
}

func (c *Chrome) Count(ctx context.Context, selector string) (int, error) {
	var n int
	script := fmt.Sprintf("document.querySelectorAll(%q).length", selector)
	if err := c.run(ctx, chromedp.Evaluate(script, &n)); err != nil {
		return 0, eris.Wrapf(err, "browser: count %s", selector)
	}
	return n, nil
}

func (c *Chrome) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	err := c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var capErr error
		buf, capErr = page.CaptureScreenshot().Do(ctx)
		return capErr
	}))
	if err != nil {
		return eris.Wrap(err, "browser: capture screenshot")
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return eris.Wrapf(err, "browser: write screenshot %s", path)
	}
	return nil
}

var _ Surface = (*Chrome)(nil)

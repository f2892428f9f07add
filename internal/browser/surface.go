// Package browser owns the rendered-page surface the engine drives.
// The engine only sees the Surface interface; chromedp stays behind it.
package browser

import (
	"context"
	"time"
)

// Surface is a remote-controlled rendered page. One Surface is
// exclusively owned by a single session's driver; implementations are
// not required to be safe for concurrent use.
type Surface interface {
	// Navigate loads a URL and waits for the load policy to settle.
	Navigate(ctx context.Context, url string) error
	// Location returns the page's current URL, which may differ from
	// the navigated one after interstitial redirects.
	Location(ctx context.Context) (string, error)
	// Title returns the current document title.
	Title(ctx context.Context) (string, error)
	// HTML returns the full current markup of the document.
	HTML(ctx context.Context) (string, error)
	// Evaluate runs a script in the page. out may be nil when the
	// result is not needed.
	Evaluate(ctx context.Context, script string, out any) error
	// WaitVisible blocks until the selector matches a visible element
	// or the timeout elapses.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// Count reports how many elements currently match the selector.
	Count(ctx context.Context, selector string) (int, error)
	// Screenshot captures the viewport to a PNG file.
	Screenshot(ctx context.Context, path string) error
}

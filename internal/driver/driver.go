// Package driver orchestrates a scrape session: it steps a rendered
// page surface through result pages or scroll positions, screens each
// step for interstitials, extracts and deduplicates records, and
// assembles the session report.
package driver

import (
	"context"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/blockdetect"
	"github.com/sells-group/leadscout/internal/browser"
	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/dedupe"
	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/phone"
)

const resultsPerPage = 10

// Options configures one session.
type Options struct {
	Kind  extract.Kind
	Query string
	// Extra carries provider-specific viewport parameters for map
	// surfaces, e.g. {"cp": "48.85~2.35", "lvl": "14"}.
	Extra map[string]string
	// ScreenshotDir, when set, receives debug captures on block or
	// empty pages.
	ScreenshotDir string
}

// Driver owns the rendered page surface for the session's lifetime
// and runs one of two state machines depending on the surface kind.
type Driver struct {
	surface browser.Surface
	cfg     config.ScrapeConfig
	opts    Options
	log     *zap.Logger

	seen *dedupe.Set
	rep  *model.SessionReport
}

// New builds a driver for a single session. Surfaces and drivers are
// not reused across sessions; each query gets fresh state.
func New(surface browser.Surface, cfg config.ScrapeConfig, opts Options) *Driver {
	return &Driver{
		surface: surface,
		cfg:     cfg,
		opts:    opts,
		log: zap.L().With(
			zap.String("component", "driver"),
			zap.String("surface", string(opts.Kind)),
			zap.String("query", opts.Query),
		),
		seen: dedupe.NewSet(),
		rep: &model.SessionReport{
			ID:        uuid.NewString(),
			Query:     opts.Query,
			Surface:   string(opts.Kind),
			StartedAt: time.Now().UTC(),
		},
	}
}

// Run drives the session to completion and always returns a finalized
// report, whatever the outcome. Cancellation is honored between steps;
// records accepted before the cancel stay in the report.
func (d *Driver) Run(ctx context.Context) *model.SessionReport {
	if d.opts.Kind.Paged() {
		d.runPaged(ctx)
	} else {
		d.runScroll(ctx)
	}
	d.rep.FinishedAt = time.Now().UTC()
	d.log.Info("session finished",
		zap.String("outcome", string(d.rep.Outcome)),
		zap.Int("steps", d.rep.Steps),
		zap.Int("records", len(d.rep.Records)),
		zap.Duration("elapsed", d.rep.FinishedAt.Sub(d.rep.StartedAt)),
	)
	return d.rep
}

// runPaged walks numbered result pages: navigate, check, extract,
// delay, repeat. A single page's failure is logged and skipped; only
// a block signature or a fully failed budget changes the outcome.
func (d *Driver) runPaged(ctx context.Context) {
	failedPages := 0

	for page := 0; page < d.cfg.MaxPages; page++ {
		if ctx.Err() != nil {
			d.log.Warn("canceled between pages", zap.Int("page", page))
			d.rep.Outcome = model.OutcomeExhausted
			return
		}

		target := pageURL(d.opts.Kind, d.opts.Query, page)
		d.log.Info("navigating",
			zap.Int("page", page+1),
			zap.Int("of", d.cfg.MaxPages),
		)

		if err := d.surface.Navigate(ctx, target); err != nil {
			// Transient step failure: this page contributes nothing.
			d.log.Warn("navigation failed, skipping page", zap.Int("page", page+1), zap.Error(err))
			failedPages++
			continue
		}
		d.settle(ctx)

		doc, blocked := d.inspect(ctx, page)
		if blocked {
			d.rep.Outcome = model.OutcomeBlocked
			return
		}
		if doc == nil {
			failedPages++
			continue
		}

		items := extract.Items(doc, d.opts.Kind)
		if len(items) == 0 {
			d.log.Warn("no result items on page", zap.Int("page", page+1))
			d.screenshot(ctx, "debug_page_"+strconv.Itoa(page+1))
		}

		added := d.collect(items, page+1)
		d.rep.Steps++
		d.log.Info("page done",
			zap.Int("page", page+1),
			zap.Int("items", len(items)),
			zap.Int("new_records", added),
		)

		if d.targetReached() {
			d.truncate()
			d.rep.Outcome = model.OutcomeCompleted
			return
		}

		if page < d.cfg.MaxPages-1 {
			d.pause(ctx, d.cfg.Backoff(page))
		}
	}

	if failedPages == d.cfg.MaxPages && d.cfg.MaxPages > 0 {
		d.rep.Outcome = model.OutcomeError
		return
	}
	d.rep.Outcome = model.OutcomeExhausted
}

// runScroll drives an infinite-scroll list panel: wait for the first
// batch, scroll until the stall streak or iteration budget trips,
// then run one authoritative extraction pass over the final snapshot.
func (d *Driver) runScroll(ctx context.Context) {
	target := mapURL(d.opts.Query, d.opts.Extra)

	if err := d.surface.Navigate(ctx, target); err != nil {
		d.log.Error("map panel navigation failed", zap.Error(err))
		d.rep.Outcome = model.OutcomeError
		return
	}
	d.settle(ctx)

	if _, blocked := d.inspect(ctx, 0); blocked {
		d.rep.Outcome = model.OutcomeBlocked
		return
	}

	itemSel := extract.ItemStrategies(d.opts.Kind)[0]
	if err := d.surface.WaitVisible(ctx, itemSel, d.cfg.FirstBatchWait()); err != nil {
		// An empty panel is a normal outcome, not an error.
		d.log.Warn("no list items attached before timeout", zap.Error(err))
		d.screenshot(ctx, "debug_first_batch")
		d.rep.Outcome = model.OutcomeExhausted
		return
	}

	prev, err := d.surface.Count(ctx, itemSel)
	if err != nil {
		prev = 0
	}
	stallStreak := 0

	for iter := 0; iter < d.cfg.MaxScrollIters; iter++ {
		if ctx.Err() != nil {
			d.log.Warn("canceled during scroll loop", zap.Int("iteration", iter))
			break
		}

		if err := d.surface.Evaluate(ctx, scrollToBottomScript, nil); err != nil {
			d.log.Warn("scroll failed", zap.Error(err))
		}
		d.pause(ctx, d.cfg.SettleDelay())

		count, err := d.surface.Count(ctx, itemSel)
		if err != nil {
			d.log.Warn("item count failed", zap.Error(err))
			count = prev
		}
		d.rep.Steps++

		if count > prev {
			stallStreak = 0
		} else {
			stallStreak++
		}
		d.log.Debug("scroll step",
			zap.Int("iteration", iter+1),
			zap.Int("items", count),
			zap.Int("stall_streak", stallStreak),
		)
		prev = count

		if stallStreak >= d.cfg.StallThreshold {
			break
		}
		if d.cfg.TargetCount > 0 && count >= d.cfg.TargetCount {
			break
		}
	}

	// Authoritative pass over the final snapshot: virtualized lists
	// shuffle item positions mid-scroll, so per-step parses can miss.
	html, err := d.surface.HTML(ctx)
	if err != nil {
		d.log.Error("reading final snapshot failed", zap.Error(err))
		d.rep.Outcome = model.OutcomeError
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		d.log.Error("parsing final snapshot failed", zap.Error(err))
		d.rep.Outcome = model.OutcomeError
		return
	}

	d.collect(extract.Items(doc, d.opts.Kind), d.rep.Steps)

	if d.targetReached() {
		d.truncate()
		d.rep.Outcome = model.OutcomeCompleted
		return
	}
	d.rep.Outcome = model.OutcomeExhausted
}

// inspect reads the current page state and screens it for block
// signatures. It returns a parsed document when the page is readable
// and not blocked.
func (d *Driver) inspect(ctx context.Context, page int) (*goquery.Document, bool) {
	loc, err := d.surface.Location(ctx)
	if err != nil {
		d.log.Warn("reading page url failed", zap.Error(err))
		return nil, false
	}
	title, err := d.surface.Title(ctx)
	if err != nil {
		d.log.Warn("reading page title failed", zap.Error(err))
		return nil, false
	}
	html, err := d.surface.HTML(ctx)
	if err != nil {
		d.log.Warn("reading page markup failed", zap.Error(err))
		return nil, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		d.log.Warn("parsing page markup failed", zap.Error(err))
		return nil, false
	}

	hasElement := func(sel string) bool { return doc.Find(sel).Length() > 0 }
	if blocked, signal := blockdetect.Detect(loc, title, doc.Text(), hasElement); blocked {
		d.log.Error("anti-automation interstitial detected, stopping",
			zap.String("signal", string(signal)),
			zap.Int("page", page+1),
		)
		d.screenshot(ctx, "captcha_page_"+strconv.Itoa(page+1))
		return nil, true
	}
	return doc, false
}

// collect runs extraction and acceptance over item fragments. A
// record is accepted only with a usable name and an in-band phone;
// accepted records get their source metadata stamped here.
func (d *Driver) collect(items []*goquery.Selection, step int) int {
	added := 0
	for _, item := range items {
		rec, ok := extract.Record(item, d.opts.Kind)
		if !ok {
			continue
		}
		// Defensive re-normalization; a no-op for already-clean values.
		rec.Phone = phone.Normalize(rec.Phone)
		if !rec.HasName() || rec.Phone == "" {
			continue
		}
		if !d.seen.Accept(rec) {
			d.log.Debug("duplicate dropped", zap.String("name", rec.Name))
			continue
		}

		rec.Query = d.opts.Query
		rec.Page = step
		rec.Timestamp = time.Now().UTC()
		d.rep.Records = append(d.rep.Records, rec)
		added++
		d.log.Info("record accepted",
			zap.String("name", rec.Name),
			zap.String("phone", rec.Phone),
		)
	}
	return added
}

func (d *Driver) targetReached() bool {
	return d.cfg.TargetCount > 0 && len(d.rep.Records) >= d.cfg.TargetCount
}

// truncate trims the accepted set to the configured target, keeping
// discovery order.
func (d *Driver) truncate() {
	if d.cfg.TargetCount > 0 && len(d.rep.Records) > d.cfg.TargetCount {
		d.rep.Records = d.rep.Records[:d.cfg.TargetCount]
	}
}

func (d *Driver) settle(ctx context.Context) {
	d.pause(ctx, d.cfg.SettleDelay())
}

// pause sleeps cooperatively: an expiring context cuts the wait short.
func (d *Driver) pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func (d *Driver) screenshot(ctx context.Context, name string) {
	if d.opts.ScreenshotDir == "" {
		return
	}
	path := filepath.Join(d.opts.ScreenshotDir, name+".png")
	if err := d.surface.Screenshot(ctx, path); err != nil {
		d.log.Debug("screenshot failed", zap.String("path", path), zap.Error(err))
		return
	}
	d.log.Info("saved screenshot", zap.String("path", path))
}

// pageURL computes the address of a numbered result page. The generic
// search surface uses a zero-based start offset; the local-card
// provider counts results from one.
func pageURL(kind extract.Kind, query string, page int) string {
	q := url.QueryEscape(query)
	switch kind {
	case extract.KindLocal:
		return "https://www.bing.com/search?q=" + q + "&first=" + strconv.Itoa(page*resultsPerPage+1)
	default:
		return "https://www.google.com/search?q=" + q + "&udm=1&start=" + strconv.Itoa(page*resultsPerPage)
	}
}

// mapURL builds the map panel address, appending any viewport
// parameters in a stable order.
func mapURL(query string, extra map[string]string) string {
	u := "https://www.bing.com/maps?q=" + url.QueryEscape(query)
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		u += "&" + url.QueryEscape(k) + "=" + url.QueryEscape(extra[k])
	}
	return u
}

// scrollToBottomScript pushes the list panel (or the window, when no
// panel is present) to its bottom edge.
const scrollToBottomScript = `(function () {
  const panel = document.querySelector('div.overlay-listings') ||
    document.querySelector('div[role="feed"]') ||
    document.scrollingElement;
  panel.scrollTop = panel.scrollHeight;
})();`

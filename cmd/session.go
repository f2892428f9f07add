package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/browser"
	"github.com/sells-group/leadscout/internal/driver"
	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/report"
	"github.com/sells-group/leadscout/internal/store"
)

type sessionFlags struct {
	pages       int
	target      int
	screenshots string
	storePath   string
	headful     bool
}

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().Int("pages", 0, "override the page budget")
	cmd.Flags().Int("target", 0, "stop once this many records are accepted")
	cmd.Flags().String("screenshots", "", "directory for debug captures on block or empty pages (defaults to the data dir)")
	cmd.Flags().String("store", "", "mirror records into this SQLite database")
	cmd.Flags().Bool("headful", false, "run the browser with a visible window")
}

func sessionFlagsFrom(cmd *cobra.Command) sessionFlags {
	pages, _ := cmd.Flags().GetInt("pages")
	target, _ := cmd.Flags().GetInt("target")
	screenshots, _ := cmd.Flags().GetString("screenshots")
	storePath, _ := cmd.Flags().GetString("store")
	headful, _ := cmd.Flags().GetBool("headful")
	return sessionFlags{
		pages:       pages,
		target:      target,
		screenshots: screenshots,
		storePath:   storePath,
		headful:     headful,
	}
}

// runSession launches the browser, drives one scrape session, and
// persists its report. A report is written even when the browser never
// came up, so every invocation leaves a file behind.
func runSession(ctx context.Context, kind extract.Kind, query string, extra map[string]string, flags sessionFlags) error {
	log := zap.L().With(
		zap.String("surface", string(kind)),
		zap.String("query", query),
	)

	writer, err := report.NewWriter(cfg.Output.DataDir)
	if err != nil {
		return err
	}

	scrape := cfg.Scrape
	if flags.pages > 0 {
		scrape.MaxPages = flags.pages
	}
	if flags.target > 0 {
		scrape.TargetCount = flags.target
	}

	chrome, err := browser.Launch(ctx, browser.Options{
		Headless:   cfg.Browser.Headless && !flags.headful,
		UserAgent:  cfg.Browser.UserAgent,
		NavTimeout: cfg.Browser.NavTimeout(),
	})
	if err != nil {
		now := time.Now().UTC()
		rep := &model.SessionReport{
			ID:         uuid.NewString(),
			Query:      query,
			Surface:    string(kind),
			StartedAt:  now,
			FinishedAt: now,
			Outcome:    model.OutcomeError,
		}
		if path, werr := writer.Write(rep); werr == nil {
			log.Info("wrote empty report", zap.String("path", path))
		}
		return eris.Wrap(err, "scrape: launch browser")
	}
	defer chrome.Close()

	rep := driver.New(chrome, scrape, driver.Options{
		Kind:          kind,
		Query:         query,
		Extra:         extra,
		ScreenshotDir: screenshotDir(flags.screenshots, cfg.Output.DataDir),
	}).Run(ctx)

	path, err := writer.Write(rep)
	if err != nil {
		return err
	}
	log.Info("session report written",
		zap.String("path", path),
		zap.String("outcome", string(rep.Outcome)),
		zap.Int("records", len(rep.Records)),
	)

	if dbPath := firstNonEmpty(flags.storePath, cfg.Store.Path); dbPath != "" {
		if err := mirror(dbPath, rep); err != nil {
			// The JSON report is the source of truth; a mirror failure
			// should not fail the run.
			log.Warn("mirroring to store failed", zap.Error(err))
		}
	}

	if !rep.Success() {
		return eris.New("scrape: no results found")
	}
	return nil
}

func mirror(dbPath string, rep *model.SessionReport) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.InsertBatch(rep.Records)
	if err != nil {
		return err
	}
	if err := s.SaveSession(rep); err != nil {
		return err
	}
	zap.L().Info("mirrored records to store",
		zap.String("path", dbPath),
		zap.Int("inserted", n),
	)
	return nil
}

// screenshotDir resolves where debug captures land: an explicit flag
// wins, otherwise they sit next to the JSON reports so block and
// empty-page captures survive without extra flags.
func screenshotDir(flagValue, dataDir string) string {
	return firstNonEmpty(flagValue, dataDir)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

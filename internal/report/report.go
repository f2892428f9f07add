// Package report persists finished sessions as JSON documents.
package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

// Document is the on-disk shape of a session report.
type Document struct {
	Metadata Metadata               `json:"metadata"`
	Results  []model.BusinessRecord `json:"results"`
}

// Metadata summarizes the run for downstream consumers.
type Metadata struct {
	SessionID    string        `json:"session_id"`
	Query        string        `json:"query"`
	Surface      string        `json:"surface"`
	Timestamp    time.Time     `json:"timestamp"`
	PagesScraped int           `json:"total_pages_scraped"`
	TotalResults int           `json:"total_results"`
	Outcome      model.Outcome `json:"outcome"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
}

// Writer writes session reports into a data directory.
type Writer struct {
	dataDir string
}

// NewWriter ensures the data directory exists.
func NewWriter(dataDir string) (*Writer, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "report: create data dir %s", dataDir)
	}
	return &Writer{dataDir: dataDir}, nil
}

var slugRuns = regexp.MustCompile(`[^a-z0-9-]+`)

// Slug derives a file-safe name from a query: lower-cased, with runs
// of non-alphanumeric characters collapsed to a single hyphen.
func Slug(query string) string {
	s := slugRuns.ReplaceAllString(strings.ToLower(query), "-")
	return strings.Trim(s, "-")
}

// Write persists a finished session. The report is always written,
// whatever the outcome: an empty run produces an explicit empty-result
// file with success=false, so "ran and found nothing" stays
// distinguishable from "never ran". On a write failure it falls back
// to a simpler generated name before giving up. It returns the path
// written.
func (w *Writer) Write(rep *model.SessionReport) (string, error) {
	doc := Document{
		Metadata: Metadata{
			SessionID:    rep.ID,
			Query:        rep.Query,
			Surface:      rep.Surface,
			Timestamp:    rep.FinishedAt,
			PagesScraped: rep.Steps,
			TotalResults: len(rep.Records),
			Outcome:      rep.Outcome,
			Success:      rep.Success(),
		},
		Results: rep.Records,
	}
	if !rep.Success() {
		doc.Metadata.Error = "No results found"
	}

	data, err := encode(doc)
	if err != nil {
		return "", err
	}

	stamp := rep.FinishedAt.Format("2006-01-02-15-04-05")
	name := Slug(rep.Query) + "-" + stamp
	if !rep.Success() {
		name += "-empty"
	}

	path := filepath.Join(w.dataDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		zap.L().Warn("report: write failed, trying fallback name",
			zap.String("path", path),
			zap.Error(err),
		)
		fallback := filepath.Join(w.dataDir, "results-"+stamp+".json")
		if fbErr := os.WriteFile(fallback, data, 0o644); fbErr != nil {
			return "", eris.Wrapf(fbErr, "report: write %s", fallback)
		}
		return fallback, nil
	}
	return path, nil
}

// encode renders the document indented, with UTF-8 preserved as-is
// rather than escaped.
func encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, eris.Wrap(err, "report: encode")
	}
	return buf.Bytes(), nil
}

// Read loads a previously written document. Mostly useful for
// verification and downstream tooling.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: read %s", path)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "report: decode %s", path)
	}
	return &doc, nil
}

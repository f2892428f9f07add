package extract

import "github.com/rotisserie/eris"

// Kind identifies a result-page layout. Selector chains and pagination
// behavior are keyed by it.
type Kind string

const (
	// KindSearch is a keyword search result page, paginated with a
	// zero-based start offset of 10 results per page.
	KindSearch Kind = "search"
	// KindLocal is a local-business card page from a provider using a
	// one-based result offset.
	KindLocal Kind = "local"
	// KindMapPanel is an infinite-scrolling map list panel whose cards
	// embed an entity-encoded JSON payload.
	KindMapPanel Kind = "maps"
)

// ParseKind validates a surface kind name from config or flags.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSearch, KindLocal, KindMapPanel:
		return Kind(s), nil
	}
	return "", eris.Errorf("extract: unknown surface kind %q", s)
}

// Paged reports whether the kind is driven through numbered pages
// rather than scrolling.
func (k Kind) Paged() bool { return k != KindMapPanel }

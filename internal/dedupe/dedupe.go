// Package dedupe keeps the order-preserving set of records accepted
// in a session.
package dedupe

import "github.com/sells-group/leadscout/internal/model"

// Set tracks (name, phone) identities. Membership is hash-based so
// sessions that accumulate hundreds of records stay O(1) per accept.
// A Set is owned by a single session and is not safe for concurrent use.
type Set struct {
	seen map[string]struct{}
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Accept registers a record's identity. It returns true when the
// record is new, false when an identical (name, phone) pair was
// already accepted. First-seen wins; later duplicates are dropped,
// never merged.
func (s *Set) Accept(r model.BusinessRecord) bool {
	key := r.Key()
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Len reports how many distinct identities were accepted.
func (s *Set) Len() int { return len(s.seen) }

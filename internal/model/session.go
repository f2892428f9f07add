package model

import "time"

// Outcome classifies how a session's drive loop ended.
type Outcome string

const (
	// OutcomeCompleted means the configured target record count was hit.
	OutcomeCompleted Outcome = "completed"
	// OutcomeExhausted means the loop reached a natural stop: page
	// budget spent, or no new items across the stall threshold.
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeBlocked means an anti-automation interstitial was served.
	OutcomeBlocked Outcome = "blocked"
	// OutcomeError means the session could not run at all, or every
	// page in the budget failed.
	OutcomeError Outcome = "error"
)

// SessionReport aggregates one end-to-end run for a single query.
// It is created when the driver starts, populated as records are
// accepted, and finalized exactly once when the loop ends.
type SessionReport struct {
	ID         string           `json:"id"`
	Query      string           `json:"query"`
	Surface    string           `json:"surface"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Steps      int              `json:"pages_or_steps_completed"`
	Outcome    Outcome          `json:"outcome"`
	Records    []BusinessRecord `json:"records"`
}

// Success reports whether the session produced at least one record.
func (s *SessionReport) Success() bool { return len(s.Records) > 0 }

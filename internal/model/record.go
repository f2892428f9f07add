// Package model defines the records produced by a scrape session.
package model

import (
	"strings"
	"time"
)

// NameSentinel marks a card whose name could not be resolved. Records
// carrying it are never accepted.
const NameSentinel = "unknown"

// BusinessRecord is the unit of output: one listing with a verified
// phone number. Optional fields stay at their zero value when the
// source card did not carry them.
type BusinessRecord struct {
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	Image     string   `json:"image,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Rating    float64  `json:"rating,omitempty"`
	Reviews   int      `json:"reviews,omitempty"`
	Category  string   `json:"category,omitempty"`

	// Source metadata, attached at acceptance time by the driver.
	Query     string    `json:"query,omitempty"`
	Page      int       `json:"page,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// HasName reports whether the record resolved a usable name.
func (r BusinessRecord) HasName() bool {
	name := strings.TrimSpace(r.Name)
	return len(name) >= 2 && !strings.EqualFold(name, NameSentinel)
}

// Key is the session-wide identity of a record.
func (r BusinessRecord) Key() string {
	return r.Name + "\x00" + r.Phone
}

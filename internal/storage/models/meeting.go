// Package models contains the domain models for the application.
package models

import (
	"time"
)

// Meeting represents a normalized calendar event with a stable external ID.
// Start and End are UTC instants; display code converts them to local zones.
type Meeting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Attendants  []string  `json:"attendants"`
	Location    string    `json:"location,omitempty"`
	HangoutLink string    `json:"hangout_link,omitempty"`
	Description string    `json:"description,omitempty"`

	// Updated is the source's opaque last-modified marker. It is compared
	// for equality only and never parsed as a timestamp.
	Updated string `json:"updated"`
}

// HasAttendant reports whether the given display identifier (e.g. "@alice")
// is listed among the meeting's attendants.
func (m Meeting) HasAttendant(identifier string) bool {
	for _, a := range m.Attendants {
		if a == identifier {
			return true
		}
	}
	return false
}

// RefreshResult contains the outcome of one refresh cycle.
type RefreshResult struct {
	MeetingsFound int       `json:"meetings_found"`
	NewCount      int       `json:"new_count"`
	UpdatedCount  int       `json:"updated_count"`
	Seeded        bool      `json:"seeded"`
	RefreshedAt   time.Time `json:"refreshed_at"`
	Error         error     `json:"-"`
}

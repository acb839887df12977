package entities

import "time"

// Timeline is a named, orderable view over a subset of a universe's events.
// Membership is many-to-many; an event may sit on several timelines and is
// never required to belong to any. At most one timeline per universe carries
// the main flag.
type Timeline struct {
	ID          string    `json:"id"`
	UniverseID  string    `json:"universe_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsMain      bool      `json:"is_main"`
	CreatedAt   time.Time `json:"created_at"`
}

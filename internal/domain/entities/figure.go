package entities

import "time"

// Figure is a notable person in a universe. Figures participate in events and
// are the endpoints of relationships.
type Figure struct {
	ID          string    `json:"id"`
	UniverseID  string    `json:"universe_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	LocationID  string    `json:"location_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

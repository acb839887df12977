package entities

import "time"

// Universe is the root ownership scope. Every other entity belongs to exactly
// one universe; deleting a universe deletes everything it owns.
type Universe struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

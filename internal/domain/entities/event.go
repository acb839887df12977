package entities

import "time"

// EventType categorizes events.
type EventType string

const (
	EventBattle          EventType = "battle"
	EventWar             EventType = "war"
	EventBirth           EventType = "birth"
	EventDeath           EventType = "death"
	EventCoronation      EventType = "coronation"
	EventFounding        EventType = "founding"
	EventDestruction     EventType = "destruction"
	EventDiscovery       EventType = "discovery"
	EventTreaty          EventType = "treaty"
	EventProphecy        EventType = "prophecy"
	EventNaturalDisaster EventType = "natural_disaster"
	EventPolitical       EventType = "political"
	EventCultural        EventType = "cultural"
	EventReligious       EventType = "religious"
	EventOther           EventType = "other"
)

// EventTypes lists all valid event types.
var EventTypes = []EventType{
	EventBattle, EventWar, EventBirth, EventDeath, EventCoronation,
	EventFounding, EventDestruction, EventDiscovery, EventTreaty,
	EventProphecy, EventNaturalDisaster, EventPolitical, EventCultural,
	EventReligious, EventOther,
}

// IsValidEventType reports whether s names a known event type.
func IsValidEventType(s string) bool {
	for _, t := range EventTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// EventImportance is the significance level of an event.
type EventImportance string

const (
	ImportanceMinor     EventImportance = "minor"
	ImportanceModerate  EventImportance = "moderate"
	ImportanceMajor     EventImportance = "major"
	ImportanceCritical  EventImportance = "critical"
	ImportanceLegendary EventImportance = "legendary"
)

// ImportanceLevels lists all valid importance levels.
var ImportanceLevels = []EventImportance{
	ImportanceMinor, ImportanceModerate, ImportanceMajor,
	ImportanceCritical, ImportanceLegendary,
}

// IsValidImportance reports whether s names a known importance level.
func IsValidImportance(s string) bool {
	for _, l := range ImportanceLevels {
		if string(l) == s {
			return true
		}
	}
	return false
}

// Event is a dated occurrence in a universe. Its chronological position is
// derived from Start by the chronology resolver; CreatedSeq records creation
// order and is the final ordering fallback for unresolvable dates.
type Event struct {
	ID          string          `json:"id"`
	UniverseID  string          `json:"universe_id"`
	Name        string          `json:"name"`
	Type        EventType       `json:"type"`
	Importance  EventImportance `json:"importance"`
	Description string          `json:"description,omitempty"`

	Start         TemporalValue  `json:"start"`
	End           *TemporalValue `json:"end,omitempty"`
	Instantaneous bool           `json:"instantaneous"`

	LocationID   string   `json:"location_id,omitempty"`
	Participants []string `json:"participants,omitempty"`

	CreatedSeq int64     `json:"created_seq"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

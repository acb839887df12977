package entities

import "time"

// RelationType defines the kind of relationship between figures.
type RelationType string

const (
	RelationParent  RelationType = "parent"
	RelationChild   RelationType = "child"
	RelationSibling RelationType = "sibling"
	RelationSpouse  RelationType = "spouse"
	RelationFriend  RelationType = "friend"
	RelationAlly    RelationType = "ally"
	RelationEnemy   RelationType = "enemy"
	RelationRival   RelationType = "rival"
	RelationMentor  RelationType = "mentor"
	RelationStudent RelationType = "student"
	RelationRuler   RelationType = "ruler"
	RelationSubject RelationType = "subject"
)

// RelationTypes lists all valid relation types.
var RelationTypes = []RelationType{
	RelationParent, RelationChild, RelationSibling, RelationSpouse,
	RelationFriend, RelationAlly, RelationEnemy, RelationRival,
	RelationMentor, RelationStudent, RelationRuler, RelationSubject,
}

// IsValidRelationType reports whether s names a known relation type.
func IsValidRelationType(s string) bool {
	for _, t := range RelationTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Relationship strength bounds. Strength is a bounded integer scale from
// weak acquaintance (1) to defining bond (5).
const (
	StrengthMin = 1
	StrengthMax = 5
)

// Relationship is a directed edge between two figures. A bidirectional
// relationship is conceptually symmetric and matches lookups from either
// side. Self-loops are rejected at the mutation boundary.
type Relationship struct {
	ID             string       `json:"id"`
	UniverseID     string       `json:"universe_id"`
	SourceFigureID string       `json:"source_figure_id"`
	TargetFigureID string       `json:"target_figure_id"`
	Type           RelationType `json:"type"`
	Strength       int          `json:"strength"`
	Bidirectional  bool         `json:"bidirectional"`
	CreatedAt      time.Time    `json:"created_at"`
}

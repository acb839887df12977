package entities

import "time"

// OrganizationType defines the kind of organization.
type OrganizationType string

const (
	OrganizationGuild     OrganizationType = "guild"
	OrganizationOrder     OrganizationType = "order"
	OrganizationKingdom   OrganizationType = "kingdom"
	OrganizationCouncil   OrganizationType = "council"
	OrganizationCult      OrganizationType = "cult"
	OrganizationCompany   OrganizationType = "company"
	OrganizationMilitary  OrganizationType = "military"
	OrganizationReligious OrganizationType = "religious"
	OrganizationOther     OrganizationType = "other"
)

// OrganizationTypes lists all valid organization types.
var OrganizationTypes = []OrganizationType{
	OrganizationGuild, OrganizationOrder, OrganizationKingdom,
	OrganizationCouncil, OrganizationCult, OrganizationCompany,
	OrganizationMilitary, OrganizationReligious, OrganizationOther,
}

// IsValidOrganizationType reports whether s names a known organization type.
func IsValidOrganizationType(s string) bool {
	for _, t := range OrganizationTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Organization is a collective actor in a universe, from guilds to kingdoms.
// Organizations participate in events alongside figures and can be seated at
// a location.
type Organization struct {
	ID          string           `json:"id"`
	UniverseID  string           `json:"universe_id"`
	Name        string           `json:"name"`
	Type        OrganizationType `json:"type"`
	Description string           `json:"description,omitempty"`
	LocationID  string           `json:"location_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

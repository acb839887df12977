package entities

import "time"

// LocationType categorizes locations by scale.
type LocationType string

const (
	LocationContinent LocationType = "continent"
	LocationRegion    LocationType = "region"
	LocationCity      LocationType = "city"
	LocationTown      LocationType = "town"
	LocationVillage   LocationType = "village"
	LocationBuilding  LocationType = "building"
	LocationLandmark  LocationType = "landmark"
	LocationRealm     LocationType = "realm"
	LocationOther     LocationType = "other"
)

// LocationTypes lists all valid location types.
var LocationTypes = []LocationType{
	LocationContinent, LocationRegion, LocationCity, LocationTown,
	LocationVillage, LocationBuilding, LocationLandmark, LocationRealm,
	LocationOther,
}

// IsValidLocationType reports whether s names a known location type.
func IsValidLocationType(s string) bool {
	for _, t := range LocationTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Location is a node in a universe's location forest. An empty ParentID
// marks a root. The parent graph is kept acyclic by the hierarchy service.
type Location struct {
	ID          string       `json:"id"`
	UniverseID  string       `json:"universe_id"`
	Name        string       `json:"name"`
	Type        LocationType `json:"type"`
	Description string       `json:"description,omitempty"`
	ParentID    string       `json:"parent_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// DeletePolicy selects what happens to a deleted location's subtree.
// The choice is always an explicit caller decision.
type DeletePolicy string

const (
	// DeleteRestrict fails the delete if the location has any children.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade deletes the whole subtree; events and figures that
	// referenced any deleted location have the reference cleared, not deleted.
	DeleteCascade DeletePolicy = "cascade"
	// DeleteReparent re-attaches children to the deleted node's former
	// parent, or makes them roots if it had none.
	DeleteReparent DeletePolicy = "reparent"
)

package ports

import (
	"context"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
)

// RelationalDB defines the persistence contract for the chronicle core.
// The core loads a universe's entities into memory at open time and persists
// individual mutations as they occur; it never assumes partial loads.
type RelationalDB interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Universe operations

	// SaveUniverse saves or updates a universe.
	SaveUniverse(ctx context.Context, u *entities.Universe) error

	// FindUniverseByID finds a universe by ID, or nil if not found.
	FindUniverseByID(ctx context.Context, id string) (*entities.Universe, error)

	// FindUniverseByName finds a universe by exact name, or nil if not found.
	FindUniverseByName(ctx context.Context, name string) (*entities.Universe, error)

	// ListUniverses lists all universes ordered by name.
	ListUniverses(ctx context.Context) ([]entities.Universe, error)

	// DeleteUniverse deletes a universe and every entity it owns.
	DeleteUniverse(ctx context.Context, id string) error

	// Event operations

	// SaveEvent saves or updates an event. On insert the repository assigns
	// CreatedSeq, the next creation sequence number within the universe.
	SaveEvent(ctx context.Context, ev *entities.Event) error

	// FindEventByID finds an event by ID, or nil if not found.
	FindEventByID(ctx context.Context, id string) (*entities.Event, error)

	// ListEvents lists all events for a universe in creation order.
	ListEvents(ctx context.Context, universeID string) ([]*entities.Event, error)

	// DeleteEvent deletes an event. Callers remove timeline memberships
	// first via RemoveEventMemberships.
	DeleteEvent(ctx context.Context, id string) error

	// SearchEvents searches events by name pattern (case-insensitive).
	SearchEvents(ctx context.Context, universeID, query string, limit int) ([]*entities.Event, error)

	// Location operations

	// SaveLocation saves or updates a location.
	SaveLocation(ctx context.Context, loc *entities.Location) error

	// FindLocationByID finds a location by ID, or nil if not found.
	FindLocationByID(ctx context.Context, id string) (*entities.Location, error)

	// ListLocations lists all locations for a universe ordered by name.
	ListLocations(ctx context.Context, universeID string) ([]*entities.Location, error)

	// UpdateLocationParent changes a location's parent; empty parentID makes
	// it a root. Cycle safety is validated by the caller.
	UpdateLocationParent(ctx context.Context, id, parentID string) error

	// DeleteLocations deletes the given locations.
	DeleteLocations(ctx context.Context, ids []string) error

	// ClearLocationRefs clears the location reference on all events, figures
	// and organizations that point at any of the given locations.
	ClearLocationRefs(ctx context.Context, locationIDs []string) error

	// SearchLocations searches locations by name pattern (case-insensitive).
	SearchLocations(ctx context.Context, universeID, query string, limit int) ([]*entities.Location, error)

	// Timeline operations

	// SaveTimeline saves or updates a timeline.
	SaveTimeline(ctx context.Context, tl *entities.Timeline) error

	// FindTimelineByID finds a timeline by ID, or nil if not found.
	FindTimelineByID(ctx context.Context, id string) (*entities.Timeline, error)

	// FindMainTimeline finds the universe's main timeline, or nil if none.
	FindMainTimeline(ctx context.Context, universeID string) (*entities.Timeline, error)

	// ListTimelines lists all timelines for a universe ordered by name.
	ListTimelines(ctx context.Context, universeID string) ([]entities.Timeline, error)

	// DeleteTimeline deletes a timeline and its membership rows; member
	// events are untouched.
	DeleteTimeline(ctx context.Context, id string) error

	// AddTimelineMember adds an event to a timeline (idempotent).
	AddTimelineMember(ctx context.Context, timelineID, eventID string) error

	// RemoveTimelineMember removes an event from a timeline (idempotent).
	RemoveTimelineMember(ctx context.Context, timelineID, eventID string) error

	// ListTimelineMembers lists the member event IDs of a timeline.
	ListTimelineMembers(ctx context.Context, timelineID string) ([]string, error)

	// RemoveEventMemberships removes an event from every timeline.
	RemoveEventMemberships(ctx context.Context, eventID string) error

	// Figure operations

	// SaveFigure saves or updates a figure.
	SaveFigure(ctx context.Context, f *entities.Figure) error

	// FindFigureByID finds a figure by ID, or nil if not found.
	FindFigureByID(ctx context.Context, id string) (*entities.Figure, error)

	// ListFigures lists all figures for a universe ordered by name.
	ListFigures(ctx context.Context, universeID string) ([]*entities.Figure, error)

	// DeleteFigure deletes a figure.
	DeleteFigure(ctx context.Context, id string) error

	// SearchFigures searches figures by name pattern (case-insensitive).
	SearchFigures(ctx context.Context, universeID, query string, limit int) ([]*entities.Figure, error)

	// Organization operations

	// SaveOrganization saves or updates an organization.
	SaveOrganization(ctx context.Context, o *entities.Organization) error

	// FindOrganizationByID finds an organization by ID, or nil if not found.
	FindOrganizationByID(ctx context.Context, id string) (*entities.Organization, error)

	// ListOrganizations lists all organizations for a universe ordered by name.
	ListOrganizations(ctx context.Context, universeID string) ([]*entities.Organization, error)

	// DeleteOrganization deletes an organization.
	DeleteOrganization(ctx context.Context, id string) error

	// SearchOrganizations searches organizations by name pattern (case-insensitive).
	SearchOrganizations(ctx context.Context, universeID, query string, limit int) ([]*entities.Organization, error)

	// Relationship operations

	// SaveRelationship saves or updates a relationship.
	SaveRelationship(ctx context.Context, rel *entities.Relationship) error

	// FindRelationshipsByFigure finds relationships where the figure is the
	// source, or the target of a bidirectional edge.
	FindRelationshipsByFigure(ctx context.Context, figureID string) ([]entities.Relationship, error)

	// FindRelationshipBetween finds a direct relationship between two
	// figures, checking both directions for bidirectional edges. Returns nil
	// if none exists.
	FindRelationshipBetween(ctx context.Context, sourceFigureID, targetFigureID string) (*entities.Relationship, error)

	// DeleteRelationship deletes a relationship by ID.
	DeleteRelationship(ctx context.Context, id string) error

	// DeleteRelationshipsByFigure deletes all relationships involving a figure.
	DeleteRelationshipsByFigure(ctx context.Context, figureID string) error

	// CountRelationships returns the number of relationships in a universe.
	CountRelationships(ctx context.Context, universeID string) (int, error)
}

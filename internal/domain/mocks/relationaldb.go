package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
)

// RelationalDB is an in-memory implementation of ports.RelationalDB for
// tests. It mirrors the SQLite repository's observable behavior, including
// creation-sequence assignment and cascade semantics.
type RelationalDB struct {
	mu sync.Mutex

	universes     map[string]entities.Universe
	events        map[string]entities.Event
	locations     map[string]entities.Location
	timelines     map[string]entities.Timeline
	members       map[string]map[string]bool // timelineID -> eventIDs
	figures       map[string]entities.Figure
	organizations map[string]entities.Organization
	relationships map[string]entities.Relationship

	nextSeq map[string]int64 // universeID -> last event creation sequence

	// SaveEventErr, when set, is returned by SaveEvent. Lets tests exercise
	// persistence-failure rollback paths.
	SaveEventErr error
}

// NewRelationalDB creates a new in-memory RelationalDB mock.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		universes:     make(map[string]entities.Universe),
		events:        make(map[string]entities.Event),
		locations:     make(map[string]entities.Location),
		timelines:     make(map[string]entities.Timeline),
		members:       make(map[string]map[string]bool),
		figures:       make(map[string]entities.Figure),
		organizations: make(map[string]entities.Organization),
		relationships: make(map[string]entities.Relationship),
		nextSeq:       make(map[string]int64),
	}
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error { return nil }

// Close closes the database connection.
func (m *RelationalDB) Close() error { return nil }

// Universe methods.

// SaveUniverse saves or updates a universe.
func (m *RelationalDB) SaveUniverse(_ context.Context, u *entities.Universe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.universes[u.ID] = *u
	return nil
}

// FindUniverseByID finds a universe by ID, or nil if not found.
func (m *RelationalDB) FindUniverseByID(_ context.Context, id string) (*entities.Universe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.universes[id]; ok {
		out := u
		return &out, nil
	}
	return nil, nil
}

// FindUniverseByName finds a universe by exact name, or nil if not found.
func (m *RelationalDB) FindUniverseByName(_ context.Context, name string) (*entities.Universe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.universes {
		if u.Name == name {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

// ListUniverses lists all universes ordered by name.
func (m *RelationalDB) ListUniverses(_ context.Context) ([]entities.Universe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.Universe, 0, len(m.universes))
	for _, u := range m.universes {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteUniverse deletes a universe and every entity it owns.
func (m *RelationalDB) DeleteUniverse(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.universes, id)
	for eid, ev := range m.events {
		if ev.UniverseID == id {
			delete(m.events, eid)
			for _, mem := range m.members {
				delete(mem, eid)
			}
		}
	}
	for lid, loc := range m.locations {
		if loc.UniverseID == id {
			delete(m.locations, lid)
		}
	}
	for tid, tl := range m.timelines {
		if tl.UniverseID == id {
			delete(m.timelines, tid)
			delete(m.members, tid)
		}
	}
	for fid, f := range m.figures {
		if f.UniverseID == id {
			delete(m.figures, fid)
		}
	}
	for oid, o := range m.organizations {
		if o.UniverseID == id {
			delete(m.organizations, oid)
		}
	}
	for rid, rel := range m.relationships {
		if rel.UniverseID == id {
			delete(m.relationships, rid)
		}
	}
	delete(m.nextSeq, id)
	return nil
}

// Event methods.

// SaveEvent saves or updates an event, assigning CreatedSeq on insert.
func (m *RelationalDB) SaveEvent(_ context.Context, ev *entities.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveEventErr != nil {
		return m.SaveEventErr
	}
	if _, exists := m.events[ev.ID]; !exists {
		seq := m.nextSeq[ev.UniverseID] + 1
		m.nextSeq[ev.UniverseID] = seq
		ev.CreatedSeq = seq
	}
	m.events[ev.ID] = *ev
	return nil
}

// FindEventByID finds an event by ID, or nil if not found.
func (m *RelationalDB) FindEventByID(_ context.Context, id string) (*entities.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev, ok := m.events[id]; ok {
		out := ev
		return &out, nil
	}
	return nil, nil
}

// ListEvents lists all events for a universe in creation order.
func (m *RelationalDB) ListEvents(_ context.Context, universeID string) ([]*entities.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Event
	for _, ev := range m.events {
		if ev.UniverseID == universeID {
			cp := ev
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedSeq < out[j].CreatedSeq })
	return out, nil
}

// DeleteEvent deletes an event. Memberships are removed by the separate
// RemoveEventMemberships call, as the chronology does before deleting.
func (m *RelationalDB) DeleteEvent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	return nil
}

// SearchEvents searches events by name pattern (case-insensitive).
func (m *RelationalDB) SearchEvents(_ context.Context, universeID, query string, limit int) ([]*entities.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Event
	q := strings.ToLower(query)
	for _, ev := range m.events {
		if ev.UniverseID == universeID && strings.Contains(strings.ToLower(ev.Name), q) {
			cp := ev
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Location methods.

// SaveLocation saves or updates a location.
func (m *RelationalDB) SaveLocation(_ context.Context, loc *entities.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[loc.ID] = *loc
	return nil
}

// FindLocationByID finds a location by ID, or nil if not found.
func (m *RelationalDB) FindLocationByID(_ context.Context, id string) (*entities.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if loc, ok := m.locations[id]; ok {
		out := loc
		return &out, nil
	}
	return nil, nil
}

// ListLocations lists all locations for a universe ordered by name.
func (m *RelationalDB) ListLocations(_ context.Context, universeID string) ([]*entities.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Location
	for _, loc := range m.locations {
		if loc.UniverseID == universeID {
			cp := loc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpdateLocationParent changes a location's parent.
func (m *RelationalDB) UpdateLocationParent(_ context.Context, id, parentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, ok := m.locations[id]
	if !ok {
		return nil
	}
	loc.ParentID = parentID
	m.locations[id] = loc
	return nil
}

// DeleteLocations deletes the given locations.
func (m *RelationalDB) DeleteLocations(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.locations, id)
	}
	return nil
}

// ClearLocationRefs clears location references on events and figures.
func (m *RelationalDB) ClearLocationRefs(_ context.Context, locationIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cleared := make(map[string]bool, len(locationIDs))
	for _, id := range locationIDs {
		cleared[id] = true
	}
	for id, ev := range m.events {
		if cleared[ev.LocationID] {
			ev.LocationID = ""
			m.events[id] = ev
		}
	}
	for id, f := range m.figures {
		if cleared[f.LocationID] {
			f.LocationID = ""
			m.figures[id] = f
		}
	}
	for id, o := range m.organizations {
		if cleared[o.LocationID] {
			o.LocationID = ""
			m.organizations[id] = o
		}
	}
	return nil
}

// SearchLocations searches locations by name pattern (case-insensitive).
func (m *RelationalDB) SearchLocations(_ context.Context, universeID, query string, limit int) ([]*entities.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Location
	q := strings.ToLower(query)
	for _, loc := range m.locations {
		if loc.UniverseID == universeID && strings.Contains(strings.ToLower(loc.Name), q) {
			cp := loc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Timeline methods.

// SaveTimeline saves or updates a timeline.
func (m *RelationalDB) SaveTimeline(_ context.Context, tl *entities.Timeline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timelines[tl.ID] = *tl
	return nil
}

// FindTimelineByID finds a timeline by ID, or nil if not found.
func (m *RelationalDB) FindTimelineByID(_ context.Context, id string) (*entities.Timeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tl, ok := m.timelines[id]; ok {
		out := tl
		return &out, nil
	}
	return nil, nil
}

// FindMainTimeline finds the universe's main timeline, or nil if none.
func (m *RelationalDB) FindMainTimeline(_ context.Context, universeID string) (*entities.Timeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tl := range m.timelines {
		if tl.UniverseID == universeID && tl.IsMain {
			out := tl
			return &out, nil
		}
	}
	return nil, nil
}

// ListTimelines lists all timelines for a universe ordered by name.
func (m *RelationalDB) ListTimelines(_ context.Context, universeID string) ([]entities.Timeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.Timeline
	for _, tl := range m.timelines {
		if tl.UniverseID == universeID {
			out = append(out, tl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteTimeline deletes a timeline and its membership rows.
func (m *RelationalDB) DeleteTimeline(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.timelines, id)
	delete(m.members, id)
	return nil
}

// AddTimelineMember adds an event to a timeline (idempotent).
func (m *RelationalDB) AddTimelineMember(_ context.Context, timelineID, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.members[timelineID] == nil {
		m.members[timelineID] = make(map[string]bool)
	}
	m.members[timelineID][eventID] = true
	return nil
}

// RemoveTimelineMember removes an event from a timeline (idempotent).
func (m *RelationalDB) RemoveTimelineMember(_ context.Context, timelineID, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members[timelineID], eventID)
	return nil
}

// ListTimelineMembers lists the member event IDs of a timeline.
func (m *RelationalDB) ListTimelineMembers(_ context.Context, timelineID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.members[timelineID]))
	for id := range m.members[timelineID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// RemoveEventMemberships removes an event from every timeline.
func (m *RelationalDB) RemoveEventMemberships(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.members {
		delete(mem, eventID)
	}
	return nil
}

// Figure methods.

// SaveFigure saves or updates a figure.
func (m *RelationalDB) SaveFigure(_ context.Context, f *entities.Figure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.figures[f.ID] = *f
	return nil
}

// FindFigureByID finds a figure by ID, or nil if not found.
func (m *RelationalDB) FindFigureByID(_ context.Context, id string) (*entities.Figure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.figures[id]; ok {
		out := f
		return &out, nil
	}
	return nil, nil
}

// ListFigures lists all figures for a universe ordered by name.
func (m *RelationalDB) ListFigures(_ context.Context, universeID string) ([]*entities.Figure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Figure
	for _, f := range m.figures {
		if f.UniverseID == universeID {
			cp := f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteFigure deletes a figure.
func (m *RelationalDB) DeleteFigure(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.figures, id)
	return nil
}

// SearchFigures searches figures by name pattern (case-insensitive).
func (m *RelationalDB) SearchFigures(_ context.Context, universeID, query string, limit int) ([]*entities.Figure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Figure
	q := strings.ToLower(query)
	for _, f := range m.figures {
		if f.UniverseID == universeID && strings.Contains(strings.ToLower(f.Name), q) {
			cp := f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Organization methods.

// SaveOrganization saves or updates an organization.
func (m *RelationalDB) SaveOrganization(_ context.Context, o *entities.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.organizations[o.ID] = *o
	return nil
}

// FindOrganizationByID finds an organization by ID, or nil if not found.
func (m *RelationalDB) FindOrganizationByID(_ context.Context, id string) (*entities.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.organizations[id]; ok {
		out := o
		return &out, nil
	}
	return nil, nil
}

// ListOrganizations lists all organizations for a universe ordered by name.
func (m *RelationalDB) ListOrganizations(_ context.Context, universeID string) ([]*entities.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Organization
	for _, o := range m.organizations {
		if o.UniverseID == universeID {
			cp := o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteOrganization deletes an organization.
func (m *RelationalDB) DeleteOrganization(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.organizations, id)
	return nil
}

// SearchOrganizations searches organizations by name pattern (case-insensitive).
func (m *RelationalDB) SearchOrganizations(_ context.Context, universeID, query string, limit int) ([]*entities.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Organization
	q := strings.ToLower(query)
	for _, o := range m.organizations {
		if o.UniverseID == universeID && strings.Contains(strings.ToLower(o.Name), q) {
			cp := o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Relationship methods.

// SaveRelationship saves or updates a relationship.
func (m *RelationalDB) SaveRelationship(_ context.Context, rel *entities.Relationship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relationships[rel.ID] = *rel
	return nil
}

// FindRelationshipsByFigure finds relationships where the figure is the
// source, or the target of a bidirectional edge.
func (m *RelationalDB) FindRelationshipsByFigure(_ context.Context, figureID string) ([]entities.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.Relationship
	for _, rel := range m.relationships {
		if rel.SourceFigureID == figureID || (rel.Bidirectional && rel.TargetFigureID == figureID) {
			out = append(out, rel)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindRelationshipBetween finds a direct relationship between two figures.
func (m *RelationalDB) FindRelationshipBetween(_ context.Context, sourceFigureID, targetFigureID string) (*entities.Relationship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rel := range m.relationships {
		if rel.SourceFigureID == sourceFigureID && rel.TargetFigureID == targetFigureID {
			out := rel
			return &out, nil
		}
		if rel.Bidirectional && rel.SourceFigureID == targetFigureID && rel.TargetFigureID == sourceFigureID {
			out := rel
			return &out, nil
		}
	}
	return nil, nil
}

// DeleteRelationship deletes a relationship by ID.
func (m *RelationalDB) DeleteRelationship(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.relationships, id)
	return nil
}

// DeleteRelationshipsByFigure deletes all relationships involving a figure.
func (m *RelationalDB) DeleteRelationshipsByFigure(_ context.Context, figureID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rel := range m.relationships {
		if rel.SourceFigureID == figureID || rel.TargetFigureID == figureID {
			delete(m.relationships, id)
		}
	}
	return nil
}

// CountRelationships returns the number of relationships in a universe.
func (m *RelationalDB) CountRelationships(_ context.Context, universeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rel := range m.relationships {
		if rel.UniverseID == universeID {
			n++
		}
	}
	return n, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/ports"
)

// archiveVersion is bumped when the archive layout changes incompatibly.
const archiveVersion = 1

// Archive is the portable JSON form of one universe. Relative dates keep
// their event references by ID; import rewrites all IDs consistently so an
// archive can be imported into any store, any number of times.
type Archive struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Universe   entities.Universe `json:"universe"`

	Locations     []entities.Location     `json:"locations,omitempty"`
	Events        []entities.Event        `json:"events,omitempty"`
	Timelines     []ArchiveTimeline       `json:"timelines,omitempty"`
	Figures       []entities.Figure       `json:"figures,omitempty"`
	Organizations []entities.Organization `json:"organizations,omitempty"`
	Relationships []entities.Relationship `json:"relationships,omitempty"`
}

// ArchiveTimeline is a timeline plus its membership list.
type ArchiveTimeline struct {
	entities.Timeline
	EventIDs []string `json:"event_ids,omitempty"`
}

// ArchiveService exports a universe to JSON and imports it back.
type ArchiveService struct {
	repo ports.RelationalDB
}

// NewArchiveService creates a new ArchiveService.
func NewArchiveService(repo ports.RelationalDB) *ArchiveService {
	return &ArchiveService{repo: repo}
}

// Export collects a universe into an Archive.
func (s *ArchiveService) Export(ctx context.Context, universeID string) (*Archive, error) {
	u, err := s.repo.FindUniverseByID(ctx, universeID)
	if err != nil {
		return nil, fmt.Errorf("finding universe: %w", err)
	}
	if u == nil {
		return nil, &entities.DanglingReferenceError{Kind: "universe", ID: universeID}
	}

	a := &Archive{Version: archiveVersion, ExportedAt: time.Now(), Universe: *u}

	locations, err := s.repo.ListLocations(ctx, universeID)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	for _, loc := range locations {
		a.Locations = append(a.Locations, *loc)
	}

	events, err := s.repo.ListEvents(ctx, universeID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	for _, ev := range events {
		a.Events = append(a.Events, *ev)
	}

	timelines, err := s.repo.ListTimelines(ctx, universeID)
	if err != nil {
		return nil, fmt.Errorf("listing timelines: %w", err)
	}
	for _, tl := range timelines {
		members, err := s.repo.ListTimelineMembers(ctx, tl.ID)
		if err != nil {
			return nil, fmt.Errorf("listing members: %w", err)
		}
		a.Timelines = append(a.Timelines, ArchiveTimeline{Timeline: tl, EventIDs: members})
	}

	figures, err := s.repo.ListFigures(ctx, universeID)
	if err != nil {
		return nil, fmt.Errorf("listing figures: %w", err)
	}
	for _, f := range figures {
		a.Figures = append(a.Figures, *f)
	}

	organizations, err := s.repo.ListOrganizations(ctx, universeID)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}
	for _, o := range organizations {
		a.Organizations = append(a.Organizations, *o)
	}

	relationships := make([]entities.Relationship, 0)
	for _, f := range figures {
		rels, err := s.repo.FindRelationshipsByFigure(ctx, f.ID)
		if err != nil {
			return nil, fmt.Errorf("listing relationships: %w", err)
		}
		for _, rel := range rels {
			relationships = append(relationships, rel)
		}
	}
	// Bidirectional edges surface from both endpoints; keep each once.
	seen := make(map[string]bool, len(relationships))
	for _, rel := range relationships {
		if !seen[rel.ID] {
			seen[rel.ID] = true
			a.Relationships = append(a.Relationships, rel)
		}
	}
	sort.Slice(a.Relationships, func(i, j int) bool { return a.Relationships[i].ID < a.Relationships[j].ID })

	return a, nil
}

// WriteJSON writes an archive as indented JSON.
func (s *ArchiveService) WriteJSON(w io.Writer, a *Archive) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encoding archive: %w", err)
	}
	return nil
}

// ReadJSON parses an archive from JSON.
func (s *ArchiveService) ReadJSON(r io.Reader) (*Archive, error) {
	var a Archive
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decoding archive: %w", err)
	}
	if a.Version != archiveVersion {
		return nil, fmt.Errorf("unsupported archive version: %d", a.Version)
	}
	return &a, nil
}

// Import validates an archive and writes it into the store as a new universe.
// All IDs are regenerated (with internal references rewritten) so the same
// archive can be imported repeatedly without collisions. Nothing is written
// until the archive passes validation.
func (s *ArchiveService) Import(ctx context.Context, a *Archive, name string) (*entities.Universe, error) {
	if err := validateArchive(a); err != nil {
		return nil, fmt.Errorf("invalid archive: %w", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = a.Universe.Name
	}
	existing, err := s.repo.FindUniverseByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("finding universe: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("universe already exists: %s", name)
	}

	idMap := make(map[string]string)
	remap := func(old string) string {
		if old == "" {
			return ""
		}
		if fresh, ok := idMap[old]; ok {
			return fresh
		}
		fresh := uuid.New().String()
		idMap[old] = fresh
		return fresh
	}

	u := &entities.Universe{
		ID:          uuid.New().String(),
		Name:        name,
		Description: a.Universe.Description,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.SaveUniverse(ctx, u); err != nil {
		return nil, fmt.Errorf("saving universe: %w", err)
	}

	// Parents before children so foreign keys hold.
	for _, loc := range locationsTopoOrder(a.Locations) {
		cp := loc
		cp.ID = remap(loc.ID)
		cp.UniverseID = u.ID
		cp.ParentID = remap(loc.ParentID)
		if err := s.repo.SaveLocation(ctx, &cp); err != nil {
			return nil, fmt.Errorf("saving location: %w", err)
		}
	}

	for _, f := range a.Figures {
		cp := f
		cp.ID = remap(f.ID)
		cp.UniverseID = u.ID
		cp.LocationID = remap(f.LocationID)
		if err := s.repo.SaveFigure(ctx, &cp); err != nil {
			return nil, fmt.Errorf("saving figure: %w", err)
		}
	}

	for _, o := range a.Organizations {
		cp := o
		cp.ID = remap(o.ID)
		cp.UniverseID = u.ID
		cp.LocationID = remap(o.LocationID)
		if err := s.repo.SaveOrganization(ctx, &cp); err != nil {
			return nil, fmt.Errorf("saving organization: %w", err)
		}
	}

	// Creation order preserved so the repository reassigns equivalent
	// sequence numbers and unknown-anchor grouping survives the round trip.
	events := append([]entities.Event(nil), a.Events...)
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedSeq < events[j].CreatedSeq })
	for _, ev := range events {
		cp := ev
		cp.ID = remap(ev.ID)
		cp.UniverseID = u.ID
		cp.LocationID = remap(ev.LocationID)
		cp.CreatedSeq = 0
		if cp.Start.Precision == entities.PrecisionRelative {
			cp.Start.RefEventID = remap(cp.Start.RefEventID)
		}
		if len(ev.Participants) > 0 {
			cp.Participants = make([]string, len(ev.Participants))
			for i, p := range ev.Participants {
				cp.Participants[i] = remap(p)
			}
		}
		if err := s.repo.SaveEvent(ctx, &cp); err != nil {
			return nil, fmt.Errorf("saving event: %w", err)
		}
	}

	for _, tl := range a.Timelines {
		cp := tl.Timeline
		cp.ID = remap(tl.ID)
		cp.UniverseID = u.ID
		if err := s.repo.SaveTimeline(ctx, &cp); err != nil {
			return nil, fmt.Errorf("saving timeline: %w", err)
		}
		for _, evID := range tl.EventIDs {
			if err := s.repo.AddTimelineMember(ctx, cp.ID, remap(evID)); err != nil {
				return nil, fmt.Errorf("adding member: %w", err)
			}
		}
	}

	for _, rel := range a.Relationships {
		cp := rel
		cp.ID = remap(rel.ID)
		cp.UniverseID = u.ID
		cp.SourceFigureID = remap(rel.SourceFigureID)
		cp.TargetFigureID = remap(rel.TargetFigureID)
		if err := s.repo.SaveRelationship(ctx, &cp); err != nil {
			return nil, fmt.Errorf("saving relationship: %w", err)
		}
	}

	out := *u
	return &out, nil
}

// validateArchive checks internal consistency: every reference lands inside
// the archive and both the location forest and the relative-date graph are
// acyclic.
func validateArchive(a *Archive) error {
	locs := make(map[string]entities.Location, len(a.Locations))
	for _, loc := range a.Locations {
		locs[loc.ID] = loc
	}
	for _, loc := range a.Locations {
		if loc.ParentID == "" {
			continue
		}
		if _, ok := locs[loc.ParentID]; !ok {
			return &entities.DanglingReferenceError{Kind: "location", ID: loc.ParentID}
		}
		// Walk up; revisiting the start means the forest has a cycle.
		seen := map[string]bool{loc.ID: true}
		for cur := loc.ParentID; cur != ""; cur = locs[cur].ParentID {
			if seen[cur] {
				return &entities.CyclicParentError{LocationID: loc.ID, ParentID: loc.ParentID}
			}
			seen[cur] = true
		}
	}

	figures := make(map[string]bool, len(a.Figures))
	for _, f := range a.Figures {
		figures[f.ID] = true
		if f.LocationID != "" {
			if _, ok := locs[f.LocationID]; !ok {
				return &entities.DanglingReferenceError{Kind: "location", ID: f.LocationID}
			}
		}
	}

	organizations := make(map[string]bool, len(a.Organizations))
	for _, o := range a.Organizations {
		organizations[o.ID] = true
		if o.LocationID != "" {
			if _, ok := locs[o.LocationID]; !ok {
				return &entities.DanglingReferenceError{Kind: "location", ID: o.LocationID}
			}
		}
	}

	events := make(map[string]bool, len(a.Events))
	graph := newReferenceGraph()
	for _, ev := range a.Events {
		events[ev.ID] = true
	}
	for _, ev := range a.Events {
		if err := ev.Start.Validate(); err != nil {
			return fmt.Errorf("event %s: %w", ev.ID, err)
		}
		if ev.Start.Precision == entities.PrecisionRelative {
			if !events[ev.Start.RefEventID] {
				return &entities.DanglingReferenceError{Kind: "event", ID: ev.Start.RefEventID}
			}
			if err := graph.AddOrUpdate(ev.ID, ev.Start.RefEventID, ev.Start.SignedOffset()); err != nil {
				return err
			}
		}
		if ev.LocationID != "" {
			if _, ok := locs[ev.LocationID]; !ok {
				return &entities.DanglingReferenceError{Kind: "location", ID: ev.LocationID}
			}
		}
		for _, p := range ev.Participants {
			if !figures[p] && !organizations[p] {
				return &entities.DanglingReferenceError{Kind: "participant", ID: p}
			}
		}
	}

	for _, tl := range a.Timelines {
		for _, evID := range tl.EventIDs {
			if !events[evID] {
				return &entities.DanglingReferenceError{Kind: "event", ID: evID}
			}
		}
	}

	for _, rel := range a.Relationships {
		if !figures[rel.SourceFigureID] {
			return &entities.DanglingReferenceError{Kind: "figure", ID: rel.SourceFigureID}
		}
		if !figures[rel.TargetFigureID] {
			return &entities.DanglingReferenceError{Kind: "figure", ID: rel.TargetFigureID}
		}
	}
	return nil
}

// locationsTopoOrder returns locations parents-first.
func locationsTopoOrder(locs []entities.Location) []entities.Location {
	byID := make(map[string]entities.Location, len(locs))
	for _, loc := range locs {
		byID[loc.ID] = loc
	}
	out := make([]entities.Location, 0, len(locs))
	placed := make(map[string]bool, len(locs))
	var place func(loc entities.Location)
	place = func(loc entities.Location) {
		if placed[loc.ID] {
			return
		}
		if loc.ParentID != "" {
			if parent, ok := byID[loc.ParentID]; ok {
				place(parent)
			}
		}
		placed[loc.ID] = true
		out = append(out, loc)
	}
	for _, loc := range locs {
		place(loc)
	}
	return out
}

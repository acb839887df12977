package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/domain/ports"
)

// LocationService owns each universe's location forest: every location has at
// most one parent and the parent relation is kept acyclic at the mutation
// boundary. Like the chronology, state is per universe and loaded on first use.
type LocationService struct {
	repo ports.RelationalDB

	mu        sync.Mutex
	universes map[string]*locationIndex
}

type locationIndex struct {
	locations map[string]*entities.Location
	children  map[string]map[string]bool // parent -> direct children
}

// NewLocationService creates a new LocationService.
func NewLocationService(repo ports.RelationalDB) *LocationService {
	return &LocationService{
		repo:      repo,
		universes: make(map[string]*locationIndex),
	}
}

// LocationDraft carries the caller-supplied fields for a new location.
type LocationDraft struct {
	Name        string
	Type        entities.LocationType
	Description string
	ParentID    string // empty for a root
}

// CreateLocation validates and persists a new location.
func (s *LocationService) CreateLocation(ctx context.Context, universeID string, draft LocationDraft) (*entities.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, errors.New("location name cannot be empty")
	}
	if draft.Type == "" {
		draft.Type = entities.LocationOther
	}
	if !entities.IsValidLocationType(string(draft.Type)) {
		return nil, fmt.Errorf("invalid location type: %s", draft.Type)
	}
	if draft.ParentID != "" {
		if _, ok := ix.locations[draft.ParentID]; !ok {
			return nil, &entities.DanglingReferenceError{Kind: "location", ID: draft.ParentID}
		}
	}

	loc := &entities.Location{
		ID:          uuid.New().String(),
		UniverseID:  universeID,
		Name:        name,
		Type:        draft.Type,
		Description: draft.Description,
		ParentID:    draft.ParentID,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.SaveLocation(ctx, loc); err != nil {
		return nil, fmt.Errorf("saving location: %w", err)
	}
	ix.add(loc)

	out := *loc
	return &out, nil
}

// UpdateLocation changes a location's name, type or description. Parent moves
// go through SetParent so cycle safety stays in one place.
func (s *LocationService) UpdateLocation(ctx context.Context, universeID, locationID string, name *string, locType *entities.LocationType, description *string) (*entities.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}
	loc, ok := ix.locations[locationID]
	if !ok {
		return nil, &entities.DanglingReferenceError{Kind: "location", ID: locationID}
	}

	upd := *loc
	if name != nil && strings.TrimSpace(*name) != "" {
		upd.Name = strings.TrimSpace(*name)
	}
	if locType != nil {
		if !entities.IsValidLocationType(string(*locType)) {
			return nil, fmt.Errorf("invalid location type: %s", *locType)
		}
		upd.Type = *locType
	}
	if description != nil {
		upd.Description = *description
	}
	if err := s.repo.SaveLocation(ctx, &upd); err != nil {
		return nil, fmt.Errorf("saving location: %w", err)
	}
	ix.locations[locationID] = &upd

	out := upd
	return &out, nil
}

// SetParent moves a location under a new parent; empty parentID makes it a
// root. Moves that would make the location its own ancestor are rejected with
// *entities.CyclicParentError before anything changes.
func (s *LocationService) SetParent(ctx context.Context, universeID, locationID, parentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return err
	}
	loc, ok := ix.locations[locationID]
	if !ok {
		return &entities.DanglingReferenceError{Kind: "location", ID: locationID}
	}
	if parentID != "" {
		if locationID == parentID {
			return &entities.CyclicParentError{LocationID: locationID, ParentID: parentID}
		}
		parent, ok := ix.locations[parentID]
		if !ok {
			return &entities.DanglingReferenceError{Kind: "location", ID: parentID}
		}
		// Walk up from the proposed parent; hitting the location being moved
		// means the move would fold the tree into a cycle. The seen map only
		// matters if stored parents already form a cycle.
		seen := make(map[string]bool)
		for cur := parent; cur != nil && !seen[cur.ID]; {
			if cur.ID == locationID {
				return &entities.CyclicParentError{LocationID: locationID, ParentID: parentID}
			}
			seen[cur.ID] = true
			if cur.ParentID == "" {
				break
			}
			cur = ix.locations[cur.ParentID]
		}
	}

	if err := s.repo.UpdateLocationParent(ctx, locationID, parentID); err != nil {
		return fmt.Errorf("updating parent: %w", err)
	}
	ix.reparent(loc, parentID)
	return nil
}

// Location returns a copy of a location.
func (s *LocationService) Location(ctx context.Context, universeID, locationID string) (*entities.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}
	loc, ok := ix.locations[locationID]
	if !ok {
		return nil, &entities.DanglingReferenceError{Kind: "location", ID: locationID}
	}
	out := *loc
	return &out, nil
}

// Roots returns the universe's root locations ordered by name.
func (s *LocationService) Roots(ctx context.Context, universeID string) ([]*entities.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}
	var out []*entities.Location
	for _, loc := range ix.locations {
		if loc.ParentID == "" {
			out = append(out, loc)
		}
	}
	sortLocationsByName(out)
	return out, nil
}

// ChildrenOf returns a location's direct children ordered by name.
func (s *LocationService) ChildrenOf(ctx context.Context, universeID, locationID string) ([]*entities.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}
	if _, ok := ix.locations[locationID]; !ok {
		return nil, &entities.DanglingReferenceError{Kind: "location", ID: locationID}
	}
	out := ix.childrenOf(locationID)
	return out, nil
}

// AncestorsOf returns a location's ancestor chain, nearest parent first.
func (s *LocationService) AncestorsOf(ctx context.Context, universeID, locationID string) ([]*entities.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}
	loc, ok := ix.locations[locationID]
	if !ok {
		return nil, &entities.DanglingReferenceError{Kind: "location", ID: locationID}
	}

	// The walk stops on a repeated ID so a parent cycle in corrupted stored
	// data cannot hang the caller.
	var out []*entities.Location
	seen := map[string]bool{loc.ID: true}
	for cur := loc; cur.ParentID != ""; {
		parent, ok := ix.locations[cur.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		cp := *parent
		out = append(out, &cp)
		cur = parent
	}
	return out, nil
}

// DescendantsOf returns a lazy, restartable depth-first sequence of a
// location's descendants, children ordered by name at each level. The
// sequence iterates a snapshot taken at call time.
func (s *LocationService) DescendantsOf(ctx context.Context, universeID, locationID string) (iter.Seq[*entities.Location], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}
	if _, ok := ix.locations[locationID]; !ok {
		return nil, &entities.DanglingReferenceError{Kind: "location", ID: locationID}
	}
	snapshot := ix.subtree(locationID, false)

	return func(yield func(*entities.Location) bool) {
		for _, loc := range snapshot {
			if !yield(loc) {
				return
			}
		}
	}, nil
}

// Delete removes a location under the given policy and returns the IDs of
// every location actually deleted:
//
//   - DeleteRestrict fails with *entities.RestrictedDeleteError if the
//     location has children.
//   - DeleteCascade deletes the whole subtree.
//   - DeleteReparent promotes direct children to the deleted node's parent.
//
// Events and figures pointing at deleted locations lose their reference but
// are otherwise untouched.
func (s *LocationService) Delete(ctx context.Context, universeID, locationID string, policy entities.DeletePolicy) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix, err := s.indexLocked(ctx, universeID)
	if err != nil {
		return nil, err
	}
	loc, ok := ix.locations[locationID]
	if !ok {
		return nil, &entities.DanglingReferenceError{Kind: "location", ID: locationID}
	}
	children := ix.childrenOf(locationID)

	var doomed []string
	switch policy {
	case entities.DeleteRestrict:
		if len(children) > 0 {
			return nil, &entities.RestrictedDeleteError{LocationID: locationID, Children: len(children)}
		}
		doomed = []string{locationID}
	case entities.DeleteCascade:
		for _, l := range ix.subtree(locationID, true) {
			doomed = append(doomed, l.ID)
		}
	case entities.DeleteReparent:
		for _, child := range children {
			if err := s.repo.UpdateLocationParent(ctx, child.ID, loc.ParentID); err != nil {
				return nil, fmt.Errorf("reparenting child: %w", err)
			}
			ix.reparent(ix.locations[child.ID], loc.ParentID)
		}
		doomed = []string{locationID}
	default:
		return nil, fmt.Errorf("invalid delete policy: %s", policy)
	}

	if err := s.repo.DeleteLocations(ctx, doomed); err != nil {
		return nil, fmt.Errorf("deleting locations: %w", err)
	}
	if err := s.repo.ClearLocationRefs(ctx, doomed); err != nil {
		return nil, fmt.Errorf("clearing location references: %w", err)
	}
	for _, id := range doomed {
		ix.remove(id)
	}
	return doomed, nil
}

// Search finds locations by case-insensitive name substring.
func (s *LocationService) Search(ctx context.Context, universeID, query string, limit int) ([]*entities.Location, error) {
	return s.repo.SearchLocations(ctx, universeID, query, limit)
}

func (s *LocationService) indexLocked(ctx context.Context, universeID string) (*locationIndex, error) {
	if ix, ok := s.universes[universeID]; ok {
		return ix, nil
	}
	u, err := s.repo.FindUniverseByID(ctx, universeID)
	if err != nil {
		return nil, fmt.Errorf("finding universe: %w", err)
	}
	if u == nil {
		return nil, &entities.DanglingReferenceError{Kind: "universe", ID: universeID}
	}

	locations, err := s.repo.ListLocations(ctx, universeID)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	ix := &locationIndex{
		locations: make(map[string]*entities.Location, len(locations)),
		children:  make(map[string]map[string]bool),
	}
	for _, loc := range locations {
		ix.add(loc)
	}
	s.universes[universeID] = ix
	return ix, nil
}

func (ix *locationIndex) add(loc *entities.Location) {
	ix.locations[loc.ID] = loc
	if loc.ParentID != "" {
		if ix.children[loc.ParentID] == nil {
			ix.children[loc.ParentID] = make(map[string]bool)
		}
		ix.children[loc.ParentID][loc.ID] = true
	}
}

func (ix *locationIndex) reparent(loc *entities.Location, parentID string) {
	if loc.ParentID != "" {
		delete(ix.children[loc.ParentID], loc.ID)
	}
	upd := *loc
	upd.ParentID = parentID
	ix.locations[loc.ID] = &upd
	if parentID != "" {
		if ix.children[parentID] == nil {
			ix.children[parentID] = make(map[string]bool)
		}
		ix.children[parentID][loc.ID] = true
	}
}

func (ix *locationIndex) remove(id string) {
	loc, ok := ix.locations[id]
	if !ok {
		return
	}
	if loc.ParentID != "" {
		delete(ix.children[loc.ParentID], id)
	}
	delete(ix.locations, id)
	delete(ix.children, id)
}

// childrenOf returns copies of a location's direct children sorted by name.
func (ix *locationIndex) childrenOf(id string) []*entities.Location {
	out := make([]*entities.Location, 0, len(ix.children[id]))
	for childID := range ix.children[id] {
		cp := *ix.locations[childID]
		out = append(out, &cp)
	}
	sortLocationsByName(out)
	return out
}

// subtree returns a depth-first preorder snapshot of a location's subtree,
// children sorted by name, optionally including the root itself. Each node is
// visited at most once, so a parent cycle in corrupted stored data terminates
// instead of recursing forever.
func (ix *locationIndex) subtree(id string, includeRoot bool) []*entities.Location {
	var out []*entities.Location
	seen := map[string]bool{id: true}
	var walk func(cur string)
	walk = func(cur string) {
		for _, child := range ix.childrenOf(cur) {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			out = append(out, child)
			walk(child.ID)
		}
	}
	if includeRoot {
		cp := *ix.locations[id]
		out = append(out, &cp)
	}
	walk(id)
	return out
}

func sortLocationsByName(locs []*entities.Location) {
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].Name != locs[j].Name {
			return locs[i].Name < locs[j].Name
		}
		return locs[i].ID < locs[j].ID
	})
}

// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/chronicle-core/internal/domain/entities"
	"github.com/ersonp/chronicle-core/internal/infrastructure/config"
)

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// rowScanner abstracts sql.Row and sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Universes (top-level containers; everything else belongs to one)
	CREATE TABLE IF NOT EXISTS universes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		created_at TIMESTAMP NOT NULL
	);

	-- Locations (a forest per universe; empty parent_id marks a root)
	CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		universe_id TEXT NOT NULL REFERENCES universes(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT,
		parent_id TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_locations_universe ON locations(universe_id);
	CREATE INDEX IF NOT EXISTS idx_locations_parent ON locations(parent_id);

	-- Events (dated occurrences; temporal values stored as JSON so relative
	-- references survive by event ID)
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		universe_id TEXT NOT NULL REFERENCES universes(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		importance TEXT NOT NULL,
		description TEXT,
		start_value TEXT NOT NULL,
		end_value TEXT,
		instantaneous INTEGER NOT NULL DEFAULT 1,
		location_id TEXT,
		participants TEXT,
		created_seq INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE(universe_id, created_seq)
	);
	CREATE INDEX IF NOT EXISTS idx_events_universe ON events(universe_id);
	CREATE INDEX IF NOT EXISTS idx_events_location ON events(location_id);

	-- Timelines (named event groupings; at most one main per universe)
	CREATE TABLE IF NOT EXISTS timelines (
		id TEXT PRIMARY KEY,
		universe_id TEXT NOT NULL REFERENCES universes(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT,
		is_main INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_timelines_universe ON timelines(universe_id);

	-- Timeline membership (many-to-many)
	CREATE TABLE IF NOT EXISTS timeline_events (
		timeline_id TEXT NOT NULL REFERENCES timelines(id) ON DELETE CASCADE,
		event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		PRIMARY KEY (timeline_id, event_id)
	);
	CREATE INDEX IF NOT EXISTS idx_timeline_events_event ON timeline_events(event_id);

	-- Figures (notable people referenced by events and relationships)
	CREATE TABLE IF NOT EXISTS figures (
		id TEXT PRIMARY KEY,
		universe_id TEXT NOT NULL REFERENCES universes(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT,
		location_id TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_figures_universe ON figures(universe_id);

	-- Organizations (collective actors; participate in events like figures)
	CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		universe_id TEXT NOT NULL REFERENCES universes(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT,
		location_id TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_organizations_universe ON organizations(universe_id);

	-- Figure relationships
	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		universe_id TEXT NOT NULL REFERENCES universes(id) ON DELETE CASCADE,
		source_figure_id TEXT NOT NULL,
		target_figure_id TEXT NOT NULL,
		type TEXT NOT NULL,
		strength INTEGER NOT NULL DEFAULT 3,
		bidirectional INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_figure_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_figure_id);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Universe methods.

// SaveUniverse saves or updates a universe.
func (r *Repository) SaveUniverse(ctx context.Context, u *entities.Universe) error {
	query := `
		INSERT INTO universes (id, name, description, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description
	`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.Description, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving universe: %w", err)
	}
	return nil
}

// FindUniverseByID finds a universe by ID, or nil if not found.
func (r *Repository) FindUniverseByID(ctx context.Context, id string) (*entities.Universe, error) {
	query := `SELECT id, name, description, created_at FROM universes WHERE id = ?`
	return r.scanUniverse(r.db.QueryRowContext(ctx, query, id))
}

// FindUniverseByName finds a universe by exact name, or nil if not found.
func (r *Repository) FindUniverseByName(ctx context.Context, name string) (*entities.Universe, error) {
	query := `SELECT id, name, description, created_at FROM universes WHERE name = ?`
	return r.scanUniverse(r.db.QueryRowContext(ctx, query, name))
}

// ListUniverses lists all universes ordered by name.
func (r *Repository) ListUniverses(ctx context.Context) ([]entities.Universe, error) {
	query := `SELECT id, name, description, created_at FROM universes ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying universes: %w", err)
	}
	defer rows.Close()

	result := make([]entities.Universe, 0, 8)
	for rows.Next() {
		u, err := r.scanUniverse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	return result, rows.Err()
}

// DeleteUniverse deletes a universe; owned rows go with it via foreign keys.
func (r *Repository) DeleteUniverse(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM universes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting universe: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("universe not found: %s", id)
	}
	return nil
}

func (r *Repository) scanUniverse(row rowScanner) (*entities.Universe, error) {
	var u entities.Universe
	var description sql.NullString
	err := row.Scan(&u.ID, &u.Name, &description, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning universe: %w", err)
	}
	u.Description = description.String
	return &u, nil
}

// Event methods.

// SaveEvent saves or updates an event. On insert it assigns the next
// creation sequence number within the universe and writes it back to
// ev.CreatedSeq.
func (r *Repository) SaveEvent(ctx context.Context, ev *entities.Event) error {
	startValue, err := json.Marshal(ev.Start)
	if err != nil {
		return fmt.Errorf("marshaling start date: %w", err)
	}
	var endValue sql.NullString
	if ev.End != nil {
		data, err := json.Marshal(ev.End)
		if err != nil {
			return fmt.Errorf("marshaling end date: %w", err)
		}
		endValue = sql.NullString{String: string(data), Valid: true}
	}
	var participants sql.NullString
	if len(ev.Participants) > 0 {
		data, err := json.Marshal(ev.Participants)
		if err != nil {
			return fmt.Errorf("marshaling participants: %w", err)
		}
		participants = sql.NullString{String: string(data), Valid: true}
	}
	var locationID sql.NullString
	if ev.LocationID != "" {
		locationID = sql.NullString{String: ev.LocationID, Valid: true}
	}

	query := `
		INSERT INTO events (
			id, universe_id, name, type, importance, description,
			start_value, end_value, instantaneous, location_id, participants,
			created_seq, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(created_seq), 0) + 1 FROM events WHERE universe_id = ?),
			?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			importance = excluded.importance,
			description = excluded.description,
			start_value = excluded.start_value,
			end_value = excluded.end_value,
			instantaneous = excluded.instantaneous,
			location_id = excluded.location_id,
			participants = excluded.participants,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		ev.ID, ev.UniverseID, ev.Name, string(ev.Type), string(ev.Importance), ev.Description,
		string(startValue), endValue, ev.Instantaneous, locationID, participants,
		ev.UniverseID, ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving event: %w", err)
	}

	// Read the sequence back; on update it is the existing one.
	err = r.db.QueryRowContext(ctx, `SELECT created_seq FROM events WHERE id = ?`, ev.ID).Scan(&ev.CreatedSeq)
	if err != nil {
		return fmt.Errorf("reading creation sequence: %w", err)
	}
	return nil
}

// FindEventByID finds an event by ID, or nil if not found.
func (r *Repository) FindEventByID(ctx context.Context, id string) (*entities.Event, error) {
	query := eventSelect + ` WHERE id = ?`
	return r.scanEvent(r.db.QueryRowContext(ctx, query, id))
}

// ListEvents lists all events for a universe in creation order.
func (r *Repository) ListEvents(ctx context.Context, universeID string) ([]*entities.Event, error) {
	query := eventSelect + ` WHERE universe_id = ? ORDER BY created_seq ASC`
	return r.queryEvents(ctx, query, universeID)
}

// DeleteEvent deletes an event; membership rows go with it via foreign keys.
func (r *Repository) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("event not found: %s", id)
	}
	return nil
}

// SearchEvents searches events by name pattern (case-insensitive).
func (r *Repository) SearchEvents(ctx context.Context, universeID, query string, limit int) ([]*entities.Event, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	sqlQuery := eventSelect + `
		WHERE universe_id = ? AND LOWER(name) LIKE ?
		ORDER BY name ASC
		LIMIT ?
	`
	return r.queryEvents(ctx, sqlQuery, universeID, pattern, limit)
}

const eventSelect = `
	SELECT id, universe_id, name, type, importance, description,
		start_value, end_value, instantaneous, location_id, participants,
		created_seq, created_at, updated_at
	FROM events`

func (r *Repository) queryEvents(ctx context.Context, query string, args ...any) ([]*entities.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Event, 0, 16)
	for rows.Next() {
		ev, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ev)
	}
	return result, rows.Err()
}

func (r *Repository) scanEvent(row rowScanner) (*entities.Event, error) {
	var ev entities.Event
	var eventType, importance string
	var description, endValue, locationID, participants sql.NullString
	var startValue string

	err := row.Scan(
		&ev.ID, &ev.UniverseID, &ev.Name, &eventType, &importance, &description,
		&startValue, &endValue, &ev.Instantaneous, &locationID, &participants,
		&ev.CreatedSeq, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning event: %w", err)
	}

	ev.Type = entities.EventType(eventType)
	ev.Importance = entities.EventImportance(importance)
	ev.Description = description.String
	ev.LocationID = locationID.String

	if err := json.Unmarshal([]byte(startValue), &ev.Start); err != nil {
		return nil, fmt.Errorf("unmarshaling start date: %w", err)
	}
	if endValue.Valid {
		var end entities.TemporalValue
		if err := json.Unmarshal([]byte(endValue.String), &end); err != nil {
			return nil, fmt.Errorf("unmarshaling end date: %w", err)
		}
		ev.End = &end
	}
	if participants.Valid {
		if err := json.Unmarshal([]byte(participants.String), &ev.Participants); err != nil {
			return nil, fmt.Errorf("unmarshaling participants: %w", err)
		}
	}
	return &ev, nil
}

// Location methods.

// SaveLocation saves or updates a location.
func (r *Repository) SaveLocation(ctx context.Context, loc *entities.Location) error {
	var parentID sql.NullString
	if loc.ParentID != "" {
		parentID = sql.NullString{String: loc.ParentID, Valid: true}
	}
	query := `
		INSERT INTO locations (id, universe_id, name, type, description, parent_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			description = excluded.description,
			parent_id = excluded.parent_id
	`
	_, err := r.db.ExecContext(ctx, query,
		loc.ID, loc.UniverseID, loc.Name, string(loc.Type), loc.Description, parentID, loc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving location: %w", err)
	}
	return nil
}

// FindLocationByID finds a location by ID, or nil if not found.
func (r *Repository) FindLocationByID(ctx context.Context, id string) (*entities.Location, error) {
	query := locationSelect + ` WHERE id = ?`
	return r.scanLocation(r.db.QueryRowContext(ctx, query, id))
}

// ListLocations lists all locations for a universe ordered by name.
func (r *Repository) ListLocations(ctx context.Context, universeID string) ([]*entities.Location, error) {
	query := locationSelect + ` WHERE universe_id = ? ORDER BY name ASC`
	return r.queryLocations(ctx, query, universeID)
}

// UpdateLocationParent changes a location's parent; empty parentID makes it a
// root. Cycle safety is validated by the caller.
func (r *Repository) UpdateLocationParent(ctx context.Context, id, parentID string) error {
	var parent sql.NullString
	if parentID != "" {
		parent = sql.NullString{String: parentID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `UPDATE locations SET parent_id = ? WHERE id = ?`, parent, id)
	if err != nil {
		return fmt.Errorf("updating location parent: %w", err)
	}
	return nil
}

// DeleteLocations deletes the given locations.
func (r *Repository) DeleteLocations(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`DELETE FROM locations WHERE id IN (%s)`, strings.Join(placeholders, ","))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting locations: %w", err)
	}
	return nil
}

// ClearLocationRefs clears the location reference on all events, figures and
// organizations that point at any of the given locations.
func (r *Repository) ClearLocationRefs(ctx context.Context, locationIDs []string) error {
	if len(locationIDs) == 0 {
		return nil
	}
	placeholders := make([]string, len(locationIDs))
	args := make([]any, len(locationIDs))
	for i, id := range locationIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	in := strings.Join(placeholders, ",")

	query := fmt.Sprintf(`UPDATE events SET location_id = NULL WHERE location_id IN (%s)`, in)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clearing event location refs: %w", err)
	}
	query = fmt.Sprintf(`UPDATE figures SET location_id = NULL WHERE location_id IN (%s)`, in)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clearing figure location refs: %w", err)
	}
	query = fmt.Sprintf(`UPDATE organizations SET location_id = NULL WHERE location_id IN (%s)`, in)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clearing organization location refs: %w", err)
	}
	return nil
}

// SearchLocations searches locations by name pattern (case-insensitive).
func (r *Repository) SearchLocations(ctx context.Context, universeID, query string, limit int) ([]*entities.Location, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	sqlQuery := locationSelect + `
		WHERE universe_id = ? AND LOWER(name) LIKE ?
		ORDER BY name ASC
		LIMIT ?
	`
	return r.queryLocations(ctx, sqlQuery, universeID, pattern, limit)
}

const locationSelect = `
	SELECT id, universe_id, name, type, description, parent_id, created_at
	FROM locations`

func (r *Repository) queryLocations(ctx context.Context, query string, args ...any) ([]*entities.Location, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Location, 0, 16)
	for rows.Next() {
		loc, err := r.scanLocation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, loc)
	}
	return result, rows.Err()
}

func (r *Repository) scanLocation(row rowScanner) (*entities.Location, error) {
	var loc entities.Location
	var locType string
	var description, parentID sql.NullString

	err := row.Scan(&loc.ID, &loc.UniverseID, &loc.Name, &locType, &description, &parentID, &loc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning location: %w", err)
	}
	loc.Type = entities.LocationType(locType)
	loc.Description = description.String
	loc.ParentID = parentID.String
	return &loc, nil
}

// Timeline methods.

// SaveTimeline saves or updates a timeline.
func (r *Repository) SaveTimeline(ctx context.Context, tl *entities.Timeline) error {
	query := `
		INSERT INTO timelines (id, universe_id, name, description, is_main, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			is_main = excluded.is_main
	`
	_, err := r.db.ExecContext(ctx, query,
		tl.ID, tl.UniverseID, tl.Name, tl.Description, tl.IsMain, tl.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving timeline: %w", err)
	}
	return nil
}

// FindTimelineByID finds a timeline by ID, or nil if not found.
func (r *Repository) FindTimelineByID(ctx context.Context, id string) (*entities.Timeline, error) {
	query := timelineSelect + ` WHERE id = ?`
	return r.scanTimeline(r.db.QueryRowContext(ctx, query, id))
}

// FindMainTimeline finds the universe's main timeline, or nil if none.
func (r *Repository) FindMainTimeline(ctx context.Context, universeID string) (*entities.Timeline, error) {
	query := timelineSelect + ` WHERE universe_id = ? AND is_main = 1 LIMIT 1`
	return r.scanTimeline(r.db.QueryRowContext(ctx, query, universeID))
}

// ListTimelines lists all timelines for a universe ordered by name.
func (r *Repository) ListTimelines(ctx context.Context, universeID string) ([]entities.Timeline, error) {
	query := timelineSelect + ` WHERE universe_id = ? ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, universeID)
	if err != nil {
		return nil, fmt.Errorf("querying timelines: %w", err)
	}
	defer rows.Close()

	result := make([]entities.Timeline, 0, 8)
	for rows.Next() {
		tl, err := r.scanTimeline(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *tl)
	}
	return result, rows.Err()
}

// DeleteTimeline deletes a timeline; membership rows go with it via foreign
// keys. Member events are untouched.
func (r *Repository) DeleteTimeline(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timelines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting timeline: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("timeline not found: %s", id)
	}
	return nil
}

// AddTimelineMember adds an event to a timeline (idempotent).
func (r *Repository) AddTimelineMember(ctx context.Context, timelineID, eventID string) error {
	query := `INSERT OR IGNORE INTO timeline_events (timeline_id, event_id) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, query, timelineID, eventID); err != nil {
		return fmt.Errorf("adding timeline member: %w", err)
	}
	return nil
}

// RemoveTimelineMember removes an event from a timeline (idempotent).
func (r *Repository) RemoveTimelineMember(ctx context.Context, timelineID, eventID string) error {
	query := `DELETE FROM timeline_events WHERE timeline_id = ? AND event_id = ?`
	if _, err := r.db.ExecContext(ctx, query, timelineID, eventID); err != nil {
		return fmt.Errorf("removing timeline member: %w", err)
	}
	return nil
}

// ListTimelineMembers lists the member event IDs of a timeline.
func (r *Repository) ListTimelineMembers(ctx context.Context, timelineID string) ([]string, error) {
	query := `SELECT event_id FROM timeline_events WHERE timeline_id = ? ORDER BY event_id ASC`
	rows, err := r.db.QueryContext(ctx, query, timelineID)
	if err != nil {
		return nil, fmt.Errorf("querying timeline members: %w", err)
	}
	defer rows.Close()

	result := make([]string, 0, 16)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		result = append(result, id)
	}
	return result, rows.Err()
}

// RemoveEventMemberships removes an event from every timeline.
func (r *Repository) RemoveEventMemberships(ctx context.Context, eventID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timeline_events WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("removing event memberships: %w", err)
	}
	return nil
}

const timelineSelect = `
	SELECT id, universe_id, name, description, is_main, created_at
	FROM timelines`

func (r *Repository) scanTimeline(row rowScanner) (*entities.Timeline, error) {
	var tl entities.Timeline
	var description sql.NullString
	err := row.Scan(&tl.ID, &tl.UniverseID, &tl.Name, &description, &tl.IsMain, &tl.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning timeline: %w", err)
	}
	tl.Description = description.String
	return &tl, nil
}

// Figure methods.

// SaveFigure saves or updates a figure.
func (r *Repository) SaveFigure(ctx context.Context, f *entities.Figure) error {
	var locationID sql.NullString
	if f.LocationID != "" {
		locationID = sql.NullString{String: f.LocationID, Valid: true}
	}
	query := `
		INSERT INTO figures (id, universe_id, name, description, location_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			location_id = excluded.location_id
	`
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.UniverseID, f.Name, f.Description, locationID, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving figure: %w", err)
	}
	return nil
}

// FindFigureByID finds a figure by ID, or nil if not found.
func (r *Repository) FindFigureByID(ctx context.Context, id string) (*entities.Figure, error) {
	query := figureSelect + ` WHERE id = ?`
	return r.scanFigure(r.db.QueryRowContext(ctx, query, id))
}

// ListFigures lists all figures for a universe ordered by name.
func (r *Repository) ListFigures(ctx context.Context, universeID string) ([]*entities.Figure, error) {
	query := figureSelect + ` WHERE universe_id = ? ORDER BY name ASC`
	return r.queryFigures(ctx, query, universeID)
}

// DeleteFigure deletes a figure.
func (r *Repository) DeleteFigure(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM figures WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting figure: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("figure not found: %s", id)
	}
	return nil
}

// SearchFigures searches figures by name pattern (case-insensitive).
func (r *Repository) SearchFigures(ctx context.Context, universeID, query string, limit int) ([]*entities.Figure, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	sqlQuery := figureSelect + `
		WHERE universe_id = ? AND LOWER(name) LIKE ?
		ORDER BY name ASC
		LIMIT ?
	`
	return r.queryFigures(ctx, sqlQuery, universeID, pattern, limit)
}

const figureSelect = `
	SELECT id, universe_id, name, description, location_id, created_at
	FROM figures`

func (r *Repository) queryFigures(ctx context.Context, query string, args ...any) ([]*entities.Figure, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying figures: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Figure, 0, 16)
	for rows.Next() {
		f, err := r.scanFigure(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *Repository) scanFigure(row rowScanner) (*entities.Figure, error) {
	var f entities.Figure
	var description, locationID sql.NullString
	err := row.Scan(&f.ID, &f.UniverseID, &f.Name, &description, &locationID, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning figure: %w", err)
	}
	f.Description = description.String
	f.LocationID = locationID.String
	return &f, nil
}

// Organization methods.

// SaveOrganization saves or updates an organization.
func (r *Repository) SaveOrganization(ctx context.Context, o *entities.Organization) error {
	var locationID sql.NullString
	if o.LocationID != "" {
		locationID = sql.NullString{String: o.LocationID, Valid: true}
	}
	query := `
		INSERT INTO organizations (id, universe_id, name, type, description, location_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			description = excluded.description,
			location_id = excluded.location_id
	`
	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.UniverseID, o.Name, string(o.Type), o.Description, locationID, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving organization: %w", err)
	}
	return nil
}

// FindOrganizationByID finds an organization by ID, or nil if not found.
func (r *Repository) FindOrganizationByID(ctx context.Context, id string) (*entities.Organization, error) {
	query := organizationSelect + ` WHERE id = ?`
	return r.scanOrganization(r.db.QueryRowContext(ctx, query, id))
}

// ListOrganizations lists all organizations for a universe ordered by name.
func (r *Repository) ListOrganizations(ctx context.Context, universeID string) ([]*entities.Organization, error) {
	query := organizationSelect + ` WHERE universe_id = ? ORDER BY name ASC`
	return r.queryOrganizations(ctx, query, universeID)
}

// DeleteOrganization deletes an organization.
func (r *Repository) DeleteOrganization(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting organization: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("organization not found: %s", id)
	}
	return nil
}

// SearchOrganizations searches organizations by name pattern (case-insensitive).
func (r *Repository) SearchOrganizations(ctx context.Context, universeID, query string, limit int) ([]*entities.Organization, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	sqlQuery := organizationSelect + `
		WHERE universe_id = ? AND LOWER(name) LIKE ?
		ORDER BY name ASC
		LIMIT ?
	`
	return r.queryOrganizations(ctx, sqlQuery, universeID, pattern, limit)
}

const organizationSelect = `
	SELECT id, universe_id, name, type, description, location_id, created_at
	FROM organizations`

func (r *Repository) queryOrganizations(ctx context.Context, query string, args ...any) ([]*entities.Organization, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying organizations: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Organization, 0, 16)
	for rows.Next() {
		o, err := r.scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (r *Repository) scanOrganization(row rowScanner) (*entities.Organization, error) {
	var o entities.Organization
	var orgType string
	var description, locationID sql.NullString
	err := row.Scan(&o.ID, &o.UniverseID, &o.Name, &orgType, &description, &locationID, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning organization: %w", err)
	}
	o.Type = entities.OrganizationType(orgType)
	o.Description = description.String
	o.LocationID = locationID.String
	return &o, nil
}

// Relationship methods.

// SaveRelationship saves or updates a relationship.
func (r *Repository) SaveRelationship(ctx context.Context, rel *entities.Relationship) error {
	query := `
		INSERT INTO relationships (id, universe_id, source_figure_id, target_figure_id, type, strength, bidirectional, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_figure_id = excluded.source_figure_id,
			target_figure_id = excluded.target_figure_id,
			type = excluded.type,
			strength = excluded.strength,
			bidirectional = excluded.bidirectional
	`
	_, err := r.db.ExecContext(ctx, query,
		rel.ID, rel.UniverseID, rel.SourceFigureID, rel.TargetFigureID,
		string(rel.Type), rel.Strength, rel.Bidirectional, rel.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving relationship: %w", err)
	}
	return nil
}

// FindRelationshipsByFigure finds relationships where the figure is the
// source, or the target of a bidirectional edge.
func (r *Repository) FindRelationshipsByFigure(ctx context.Context, figureID string) ([]entities.Relationship, error) {
	query := relationshipSelect + `
		WHERE source_figure_id = ? OR (target_figure_id = ? AND bidirectional = 1)
		ORDER BY created_at DESC
	`
	return r.queryRelationships(ctx, query, figureID, figureID)
}

// FindRelationshipBetween finds a direct relationship between two figures,
// checking both directions for bidirectional edges. Returns nil if none
// exists.
func (r *Repository) FindRelationshipBetween(ctx context.Context, sourceFigureID, targetFigureID string) (*entities.Relationship, error) {
	query := relationshipSelect + `
		WHERE (source_figure_id = ? AND target_figure_id = ?)
		   OR (bidirectional = 1 AND source_figure_id = ? AND target_figure_id = ?)
		LIMIT 1
	`
	return r.scanRelationship(r.db.QueryRowContext(ctx, query, sourceFigureID, targetFigureID, targetFigureID, sourceFigureID))
}

// DeleteRelationship deletes a relationship by ID.
func (r *Repository) DeleteRelationship(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("relationship not found: %s", id)
	}
	return nil
}

// DeleteRelationshipsByFigure deletes all relationships involving a figure.
func (r *Repository) DeleteRelationshipsByFigure(ctx context.Context, figureID string) error {
	query := `DELETE FROM relationships WHERE source_figure_id = ? OR target_figure_id = ?`
	if _, err := r.db.ExecContext(ctx, query, figureID, figureID); err != nil {
		return fmt.Errorf("deleting relationships by figure: %w", err)
	}
	return nil
}

// CountRelationships returns the number of relationships in a universe.
func (r *Repository) CountRelationships(ctx context.Context, universeID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relationships WHERE universe_id = ?`, universeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting relationships: %w", err)
	}
	return count, nil
}

const relationshipSelect = `
	SELECT id, universe_id, source_figure_id, target_figure_id, type, strength, bidirectional, created_at
	FROM relationships`

func (r *Repository) queryRelationships(ctx context.Context, query string, args ...any) ([]entities.Relationship, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	relationships := make([]entities.Relationship, 0, 16)
	for rows.Next() {
		rel, err := r.scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		relationships = append(relationships, *rel)
	}
	return relationships, rows.Err()
}

func (r *Repository) scanRelationship(row rowScanner) (*entities.Relationship, error) {
	var rel entities.Relationship
	var relType string
	err := row.Scan(
		&rel.ID, &rel.UniverseID, &rel.SourceFigureID, &rel.TargetFigureID,
		&relType, &rel.Strength, &rel.Bidirectional, &rel.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning relationship: %w", err)
	}
	rel.Type = entities.RelationType(relType)
	return &rel, nil
}

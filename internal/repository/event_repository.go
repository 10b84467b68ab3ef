package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
)

// EventRepo provides CRUD and discovery queries for events.  Public
// discovery never returns drafts; ownership of an event is verified by
// the management handlers before any mutating call.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning events, tiers and tickets (e.g. cascading deletion).
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventColumns = `id, organizer_id, category_id, title, slug, description, event_date, end_date,
       location, venue_name, city, cover_image, is_published, is_featured, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var categoryID sql.NullInt64
	var endDate sql.NullTime
	var venue, city, cover sql.NullString
	if err := row.Scan(&e.ID, &e.OrganizerID, &categoryID, &e.Title, &e.Slug, &e.Description,
		&e.EventDate, &endDate, &e.Location, &venue, &city, &cover,
		&e.IsPublished, &e.IsFeatured, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		cid := uint64(categoryID.Int64)
		e.CategoryID = &cid
	}
	if endDate.Valid {
		ts := endDate.Time
		e.EndDate = &ts
	}
	if venue.Valid {
		v := venue.String
		e.VenueName = &v
	}
	if city.Valid {
		c := city.String
		e.City = &c
	}
	if cover.Valid {
		c := cover.String
		e.CoverImage = &c
	}
	return &e, nil
}

// GetByID returns an event regardless of publication state, or
// ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, eventID uint64) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, eventID)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	return e, err
}

// GetPublishedBySlug returns a published event by its public slug, or
// ErrEventNotFound.  Drafts are indistinguishable from missing events
// for public callers.
func (r *EventRepo) GetPublishedBySlug(ctx context.Context, slug string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE slug = ? AND is_published = 1`, slug)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	return e, err
}

// GetPurchasableBySlug returns the event a purchase targets.  Unknown
// slugs yield ErrEventNotFound; a slug that matches a draft yields
// ErrEventNotPublished, so buyers get a distinct answer for an event
// that exists but is not on sale yet.
func (r *EventRepo) GetPurchasableBySlug(ctx context.Context, slug string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE slug = ?`, slug)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	if !e.IsPublished {
		return nil, ErrEventNotPublished
	}
	return e, nil
}

// DiscoveryFilter narrows the public event listing.  Zero values are
// ignored.  Query matches against title, location and city.
type DiscoveryFilter struct {
	CategorySlug string
	City         string
	Query        string
	FeaturedOnly bool
	Limit        int
	Offset       int
}

// ListPublished returns published events matching the filter, soonest
// event first.  Draft events never appear here.
func (r *EventRepo) ListPublished(ctx context.Context, f DiscoveryFilter) ([]model.Event, error) {
	query := `SELECT ` + prefixedEventColumns("e") + ` FROM events e`
	args := make([]interface{}, 0, 6)
	if f.CategorySlug != "" {
		query += ` JOIN categories c ON c.id = e.category_id`
	}
	query += ` WHERE e.is_published = 1`
	if f.CategorySlug != "" {
		query += ` AND c.slug = ?`
		args = append(args, f.CategorySlug)
	}
	if f.City != "" {
		query += ` AND e.city = ?`
		args = append(args, f.City)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		query += ` AND (e.title LIKE ? OR e.location LIKE ? OR e.city LIKE ?)`
		args = append(args, like, like, like)
	}
	if f.FeaturedOnly {
		query += ` AND e.is_featured = 1`
	}
	query += ` ORDER BY e.event_date ASC, e.id ASC`
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func prefixedEventColumns(alias string) string {
	cols := strings.Split(eventColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

// ListByOrganizer returns all events owned by an organizer, drafts
// included, newest first.
func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE organizer_id = ? ORDER BY created_at DESC, id DESC`,
		organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// Create inserts a new event (draft by default; IsPublished on the
// passed struct is honored) and populates the generated ID.  Returns
// ErrSlugExists on a duplicate slug.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (organizer_id, category_id, title, slug, description, event_date, end_date,
                             location, venue_name, city, cover_image, is_published, is_featured)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.OrganizerID, e.CategoryID, e.Title, e.Slug, e.Description, e.EventDate, e.EndDate,
		e.Location, e.VenueName, e.City, e.CoverImage, e.IsPublished, e.IsFeatured)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSlugExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// Update rewrites the mutable fields of an event.  Ownership must have
// been verified by the caller.  Returns ErrSlugExists on a duplicate
// slug and ErrEventNotFound when the row is gone.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events
            SET category_id = ?, title = ?, slug = ?, description = ?, event_date = ?, end_date = ?,
                location = ?, venue_name = ?, city = ?, cover_image = ?
          WHERE id = ?`,
		e.CategoryID, e.Title, e.Slug, e.Description, e.EventDate, e.EndDate,
		e.Location, e.VenueName, e.City, e.CoverImage, e.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSlugExists
		}
		return err
	}
	if _, err := res.RowsAffected(); err != nil {
		return err
	}
	return nil
}

// SetPublished toggles draft/published state.
func (r *EventRepo) SetPublished(ctx context.Context, eventID uint64, published bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET is_published = ? WHERE id = ?`, published, eventID)
	if err != nil {
		return err
	}
	return requireEventRow(ctx, r.db, res, eventID)
}

// SetFeatured toggles the landing page highlight flag.
func (r *EventRepo) SetFeatured(ctx context.Context, eventID uint64, featured bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET is_featured = ? WHERE id = ?`, featured, eventID)
	if err != nil {
		return err
	}
	return requireEventRow(ctx, r.db, res, eventID)
}

// requireEventRow distinguishes "no change needed" from "no such event"
// after an UPDATE that affected zero rows.
func requireEventRow(ctx context.Context, db *sql.DB, res sql.Result, eventID uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists int
	if err := db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, eventID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}

// DeleteTx removes an event and cascades to its price tiers and tickets
// inside the provided transaction, so a half-deleted event can never be
// observed.
func (r *EventRepo) DeleteTx(ctx context.Context, tx *sql.Tx, eventID uint64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM price_tiers WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (errno 1062), the same detection the user repository applies for
// duplicate emails.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

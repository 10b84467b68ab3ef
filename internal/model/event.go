package model

import "time"

// Event represents a published or draft event owned by an organizer.
// Draft events (IsPublished=false) never appear in public discovery and
// cannot be purchased.  Deleting an event cascades to its price tiers
// and tickets inside a single transaction.
//
// Fields:
//  ID          – primary key identifier.
//  OrganizerID – user who owns and manages the event.
//  CategoryID  – optional category reference.
//  Title       – event title shown to buyers.
//  Slug        – unique URL-safe identifier.
//  Description – long form event description.
//  EventDate   – when the event starts.
//  EndDate     – optional end time (must be after EventDate when set).
//  Location    – free-form address or place description.
//  VenueName   – optional venue label (e.g. "Istora Senayan").
//  City        – optional city used for discovery filters.
//  CoverImage  – URL of the cover image in the blob store.
//  IsPublished – drafts are hidden from public queries until published.
//  IsFeatured  – featured events surface on the landing page.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Event struct {
	ID          uint64    // events.id
	OrganizerID uint64    // events.organizer_id
	CategoryID  *uint64   // events.category_id (nullable)
	Title       string    // events.title
	Slug        string    // events.slug
	Description string    // events.description
	EventDate   time.Time // events.event_date
	EndDate     *time.Time // events.end_date (nullable)
	Location    string    // events.location
	VenueName   *string   // events.venue_name (nullable)
	City        *string   // events.city (nullable)
	CoverImage  *string   // events.cover_image (nullable)
	IsPublished bool      // events.is_published
	IsFeatured  bool      // events.is_featured
	CreatedAt   time.Time // events.created_at
	UpdatedAt   time.Time // events.updated_at
}

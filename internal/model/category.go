package model

import "time"

// Category groups events for discovery (e.g. music, workshop, sports).
// The slug is unique and used in public URLs.  Categories referenced by
// existing events may not be deleted; the repository enforces this with
// a RESTRICT policy and returns ErrConflict.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – human readable category name.
//  Slug        – unique URL-safe identifier.
//  Description – optional longer description.
//  Icon        – optional icon name rendered by clients.
//  CreatedAt   – creation timestamp.
type Category struct {
	ID          uint64    // categories.id
	Name        string    // categories.name
	Slug        string    // categories.slug
	Description *string   // categories.description (nullable)
	Icon        *string   // categories.icon (nullable)
	CreatedAt   time.Time // categories.created_at
}

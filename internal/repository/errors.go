// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them onto HTTP responses.  The inventory and check-in sentinels form
// the user-facing error taxonomy of the ticketing core: they are
// surfaced verbatim to the caller and are not retryable, while plain
// database errors are treated as retryable operational failures.
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as deleting a category that events
// still reference.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrTierNotFound is returned by ledger operations when the price tier
// does not exist.
var ErrTierNotFound = errors.New("price tier not found")

// ErrInsufficientInventory is returned by Reserve when granting the
// requested quantity would push quantity_sold past quantity_total.  The
// counter is left untouched.
var ErrInsufficientInventory = errors.New("insufficient inventory")

// ErrInvalidRelease is returned by Release when the requested quantity
// would drive quantity_sold negative.
var ErrInvalidRelease = errors.New("release exceeds sold quantity")

// ErrEventNotFound is returned when an event lookup matches no row.
var ErrEventNotFound = errors.New("event not found")

// ErrEventNotPublished is returned when a purchase targets a draft
// event.  Drafts are invisible to buyers regardless of inventory.
var ErrEventNotPublished = errors.New("event not published")

// ErrEventEnded is returned when a purchase targets an event whose date
// has already passed.
var ErrEventEnded = errors.New("event already ended")

// ErrTicketNotFound is returned when a ticket lookup (by ID or by QR
// code) matches no row.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrCategoryNotFound is returned when a category lookup matches no row.
var ErrCategoryNotFound = errors.New("category not found")

// ErrBannerNotFound is returned when a promo banner lookup matches no row.
var ErrBannerNotFound = errors.New("banner not found")

// ErrSlugExists is returned when an insert or update would violate a
// unique slug constraint.  Handlers translate this into HTTP 409.
var ErrSlugExists = errors.New("slug already exists")

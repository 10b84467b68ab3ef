package model

import "time"

// Ticket status values.  "active" is the only state a ticket can be
// redeemed from; the other three are terminal (an explicit organizer
// override is the only way out of them).
const (
	TicketStatusActive    = "active"
	TicketStatusUsed      = "used"
	TicketStatusCancelled = "cancelled"
	TicketStatusRefunded  = "refunded"
)

// Ticket is an individually redeemable admission for one event, bound to
// the purchasing user.  QRCode is an opaque 256-bit random token stored
// and compared as a string; it is globally unique and unguessable.  The
// check-in validator transitions active tickets to used with a
// compare-and-set so two concurrent scans of the same code can never
// both succeed.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owner of the ticket.
//  EventID     – event the ticket admits to.
//  PriceTierID – tier the ticket was purchased from.
//  QRCode      – unique opaque redemption token.
//  Status      – one of active, used, cancelled, refunded.
//  PurchasedAt – purchase timestamp.
//  CheckedInAt – set exactly once when the ticket is redeemed.
type Ticket struct {
	ID          uint64     // tickets.id
	UserID      uint64     // tickets.user_id
	EventID     uint64     // tickets.event_id
	PriceTierID uint64     // tickets.price_tier_id
	QRCode      string     // tickets.qr_code
	Status      string     // tickets.status
	PurchasedAt time.Time  // tickets.purchased_at
	CheckedInAt *time.Time // tickets.checked_in_at (nullable)
}

// ValidTicketStatus reports whether s is a known ticket status.
func ValidTicketStatus(s string) bool {
	switch s {
	case TicketStatusActive, TicketStatusUsed, TicketStatusCancelled, TicketStatusRefunded:
		return true
	}
	return false
}

// TerminalTicketStatus reports whether s is a state with no regular
// transition out of it.
func TerminalTicketStatus(s string) bool {
	return s == TicketStatusUsed || s == TicketStatusCancelled || s == TicketStatusRefunded
}

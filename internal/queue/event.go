// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  Both queues are declared durable so messages survive a
// broker restart.
const (
	TicketIssuedQueue    = "ticket.issued"
	TicketCheckedInQueue = "ticket.checkedin"
)

// TicketIssuedEvent is published once per successful purchase.  It
// carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type TicketIssuedEvent struct {
	UserID     uint64   `json:"user_id"`
	EventID    uint64   `json:"event_id"`
	EventTitle string   `json:"event_title"`
	TierID     uint64   `json:"tier_id"`
	TierName   string   `json:"tier_name"`
	Quantity   int      `json:"quantity"`
	TotalCents uint64   `json:"total_cents"`
	TicketIDs  []uint64 `json:"ticket_ids"`
	IssuedAt   string   `json:"issued_at"`
}

// TicketCheckedInEvent is published when a ticket transitions to used.
// Informational outcomes (already checked in, invalid) are not
// published; only the single successful transition per ticket is.
type TicketCheckedInEvent struct {
	TicketID    uint64 `json:"ticket_id"`
	EventID     uint64 `json:"event_id"`
	EventTitle  string `json:"event_title"`
	UserID      uint64 `json:"user_id"`
	TierName    string `json:"tier_name"`
	CheckedInAt string `json:"checked_in_at"`
}

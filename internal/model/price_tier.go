package model

import "time"

// PriceTier is a sellable ticket class inside an event (e.g. Early Bird,
// Regular, VIP).  QuantitySold is owned exclusively by the inventory
// ledger: 0 <= QuantitySold <= QuantityTotal must hold at all times and
// every mutation goes through a single conditional UPDATE so concurrent
// purchases can never oversell the tier.
//
// Fields:
//  ID            – primary key identifier.
//  EventID       – event this tier belongs to.
//  Name          – tier name shown at checkout.
//  Description   – optional tier description.
//  PriceCents    – price per ticket in the minor currency unit.
//  QuantityTotal – total inventory for this tier (positive).
//  QuantitySold  – tickets sold so far; never exceeds QuantityTotal.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type PriceTier struct {
	ID            uint64    // price_tiers.id
	EventID       uint64    // price_tiers.event_id
	Name          string    // price_tiers.name
	Description   *string   // price_tiers.description (nullable)
	PriceCents    uint32    // price_tiers.price_cents
	QuantityTotal uint32    // price_tiers.quantity_total
	QuantitySold  uint32    // price_tiers.quantity_sold
	CreatedAt     time.Time // price_tiers.created_at
	UpdatedAt     time.Time // price_tiers.updated_at
}

// Remaining returns how many tickets are still available in the tier.
func (t PriceTier) Remaining() uint32 {
	if t.QuantitySold >= t.QuantityTotal {
		return 0
	}
	return t.QuantityTotal - t.QuantitySold
}

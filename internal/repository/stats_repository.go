package repository

import (
	"context"
	"database/sql"
)

// StatsRepo serves the read-only aggregation queries behind the back
// office dashboard.  Results reflect committed state at query time; the
// stats route sits behind the response cache middleware so a bounded
// staleness window is expected and acceptable.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo returns a StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// RevenueByStatus is one row of the revenue breakdown: how many tickets
// are in a status and what they sum to at their tier prices.
type RevenueByStatus struct {
	Status       string `json:"status"`
	TicketCount  uint64 `json:"ticket_count"`
	RevenueCents uint64 `json:"revenue_cents"`
}

// TierSales reports per-tier sales for one event.
type TierSales struct {
	TierID        uint64 `json:"tier_id"`
	TierName      string `json:"tier_name"`
	PriceCents    uint32 `json:"price_cents"`
	QuantityTotal uint32 `json:"quantity_total"`
	QuantitySold  uint32 `json:"quantity_sold"`
}

// Overview is the headline dashboard payload.
type Overview struct {
	Users           uint64            `json:"users"`
	Events          uint64            `json:"events"`
	PublishedEvents uint64            `json:"published_events"`
	Tickets         uint64            `json:"tickets"`
	CheckedIn       uint64            `json:"checked_in"`
	Revenue         []RevenueByStatus `json:"revenue"`
}

// GetOverview assembles total counts and the revenue breakdown.
func (r *StatsRepo) GetOverview(ctx context.Context) (*Overview, error) {
	var o Overview
	row := r.db.QueryRowContext(ctx, `
        SELECT (SELECT COUNT(*) FROM users),
               (SELECT COUNT(*) FROM events),
               (SELECT COUNT(*) FROM events WHERE is_published = 1),
               (SELECT COUNT(*) FROM tickets),
               (SELECT COUNT(*) FROM tickets WHERE checked_in_at IS NOT NULL)`)
	if err := row.Scan(&o.Users, &o.Events, &o.PublishedEvents, &o.Tickets, &o.CheckedIn); err != nil {
		return nil, err
	}
	rev, err := r.RevenueByStatus(ctx)
	if err != nil {
		return nil, err
	}
	o.Revenue = rev
	return &o, nil
}

// RevenueByStatus sums ticket values at their tier price grouped by
// ticket status.
func (r *StatsRepo) RevenueByStatus(ctx context.Context) ([]RevenueByStatus, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT t.status, COUNT(*), COALESCE(SUM(p.price_cents), 0)
          FROM tickets t
          JOIN price_tiers p ON p.id = t.price_tier_id
         GROUP BY t.status
         ORDER BY t.status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RevenueByStatus, 0, 4)
	for rows.Next() {
		var rv RevenueByStatus
		if err := rows.Scan(&rv.Status, &rv.TicketCount, &rv.RevenueCents); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// TierSalesByEvent returns the sold/total breakdown per tier of one
// event, the numbers the organizer dashboard charts.
func (r *StatsRepo) TierSalesByEvent(ctx context.Context, eventID uint64) ([]TierSales, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, price_cents, quantity_total, quantity_sold
          FROM price_tiers
         WHERE event_id = ?
         ORDER BY price_cents ASC, id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]TierSales, 0)
	for rows.Next() {
		var ts TierSales
		if err := rows.Scan(&ts.TierID, &ts.TierName, &ts.PriceCents, &ts.QuantityTotal, &ts.QuantitySold); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
)

// PriceTierRepo provides persistence for price tiers and is the single
// authority over the quantity_sold counter (the inventory ledger).  Every
// mutation of quantity_sold happens through Reserve/Release as a single
// conditional UPDATE, so the no-oversell invariant
// (0 <= quantity_sold <= quantity_total) holds under arbitrary concurrent
// callers: the row's write lock serializes the check and the increment.
type PriceTierRepo struct {
	db *sql.DB
}

// NewPriceTierRepo returns a PriceTierRepo bound to the given database.
func NewPriceTierRepo(db *sql.DB) *PriceTierRepo { return &PriceTierRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning the ledger and the ticket repository.
func (r *PriceTierRepo) DB() *sql.DB { return r.db }

const tierColumns = `id, event_id, name, description, price_cents, quantity_total, quantity_sold, created_at, updated_at`

func scanTier(row interface{ Scan(...any) error }) (*model.PriceTier, error) {
	var t model.PriceTier
	var desc sql.NullString
	if err := row.Scan(&t.ID, &t.EventID, &t.Name, &desc, &t.PriceCents,
		&t.QuantityTotal, &t.QuantitySold, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		t.Description = &d
	}
	return &t, nil
}

// GetByID returns a single tier or ErrTierNotFound.
func (r *PriceTierRepo) GetByID(ctx context.Context, tierID uint64) (*model.PriceTier, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tierColumns+` FROM price_tiers WHERE id = ?`, tierID)
	t, err := scanTier(row)
	if err == sql.ErrNoRows {
		return nil, ErrTierNotFound
	}
	return t, err
}

// ListByEvent returns all tiers of an event ordered by price ascending,
// matching the order the checkout page renders them in.
func (r *PriceTierRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.PriceTier, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tierColumns+` FROM price_tiers WHERE event_id = ? ORDER BY price_cents ASC, id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tiers := make([]model.PriceTier, 0)
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, *t)
	}
	return tiers, rows.Err()
}

// Create inserts a tier for an event and populates the generated ID.
func (r *PriceTierRepo) Create(ctx context.Context, t *model.PriceTier) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO price_tiers (event_id, name, description, price_cents, quantity_total, quantity_sold)
         VALUES (?, ?, ?, ?, ?, 0)`,
		t.EventID, t.Name, t.Description, t.PriceCents, t.QuantityTotal)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// Update changes name, description, price and total quantity of a tier.
// quantity_total may not be lowered below the number of tickets already
// sold; the condition is part of the UPDATE so a concurrent sale cannot
// slip under the new cap.  Returns ErrConflict when the reduction would
// strand sold tickets and ErrTierNotFound when the tier does not exist.
func (r *PriceTierRepo) Update(ctx context.Context, t *model.PriceTier) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE price_tiers
            SET name = ?, description = ?, price_cents = ?, quantity_total = ?
          WHERE id = ? AND quantity_sold <= ?`,
		t.Name, t.Description, t.PriceCents, t.QuantityTotal, t.ID, t.QuantityTotal)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, t.ID); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// Delete removes a tier.  Tiers with issued tickets cannot be deleted;
// the tickets table references them and the handler should surface
// ErrConflict in that case.
func (r *PriceTierRepo) Delete(ctx context.Context, tierID uint64) error {
	var ticketCount int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE price_tier_id = ?`, tierID).Scan(&ticketCount); err != nil {
		return err
	}
	if ticketCount > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM price_tiers WHERE id = ?`, tierID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTierNotFound
	}
	return nil
}

// Reserve atomically claims quantity tickets from the tier.  The guard
// `quantity_sold + ? <= quantity_total` and the increment execute as one
// statement, so concurrent reservations on the same tier serialize on
// the row lock and the counter can never overshoot.  Reserve is not
// idempotent: every successful call consumes inventory.
//
// It returns ErrTierNotFound when the tier does not exist and
// ErrInsufficientInventory when the remaining inventory is too small.
// The counter is untouched in both failure cases.
func (r *PriceTierRepo) Reserve(ctx context.Context, tierID uint64, quantity uint32) error {
	return reserve(ctx, r.db, tierID, quantity)
}

// ReserveTx is Reserve scoped to an existing transaction.  The ticket
// issuer uses it so the reservation and the ticket batch insert commit
// or roll back together; a rollback returns the inventory without a
// separate compensating call.
func (r *PriceTierRepo) ReserveTx(ctx context.Context, tx *sql.Tx, tierID uint64, quantity uint32) error {
	return reserve(ctx, tx, tierID, quantity)
}

// execer is the subset of *sql.DB / *sql.Tx the ledger needs.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func reserve(ctx context.Context, ex execer, tierID uint64, quantity uint32) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE price_tiers
            SET quantity_sold = quantity_sold + ?
          WHERE id = ? AND quantity_sold + ? <= quantity_total`,
		quantity, tierID, quantity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	// The guard failed: distinguish a missing tier from a full one.
	var exists int
	if err := ex.QueryRowContext(ctx,
		`SELECT 1 FROM price_tiers WHERE id = ?`, tierID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return ErrTierNotFound
		}
		return err
	}
	return ErrInsufficientInventory
}

// Release returns quantity tickets to the tier, reversing a reservation
// after a cancellation or refund.  The decrement is guarded so the
// counter can never go negative; ErrInvalidRelease is returned when the
// tier has fewer sold tickets than the release asks for.
func (r *PriceTierRepo) Release(ctx context.Context, tierID uint64, quantity uint32) error {
	return release(ctx, r.db, tierID, quantity)
}

// ReleaseTx is Release scoped to an existing transaction.
func (r *PriceTierRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, tierID uint64, quantity uint32) error {
	return release(ctx, tx, tierID, quantity)
}

func release(ctx context.Context, ex execer, tierID uint64, quantity uint32) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE price_tiers
            SET quantity_sold = quantity_sold - ?
          WHERE id = ? AND quantity_sold >= ?`,
		quantity, tierID, quantity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var exists int
	if err := ex.QueryRowContext(ctx,
		`SELECT 1 FROM price_tiers WHERE id = ?`, tierID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return ErrTierNotFound
		}
		return err
	}
	return ErrInvalidRelease
}

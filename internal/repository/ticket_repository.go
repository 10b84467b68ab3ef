package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
)

// TicketRepo provides persistence for tickets.  Creation happens in an
// all-or-nothing batch inside the purchase transaction; the status field
// is mutated only by the check-in compare-and-set and by the organizer
// override, both of which guard on the prior state.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle for handler-scoped transactions.
func (r *TicketRepo) DB() *sql.DB { return r.db }

// CreateBatchTx inserts all tickets of one purchase in a single
// statement within the provided transaction.  Either every ticket row is
// written or none is; combined with the in-transaction reservation this
// means a failed insert rolls the inventory claim back automatically.
// Generated IDs are not populated: callers re-read by qr_code, which is
// unique per ticket.
func (r *TicketRepo) CreateBatchTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := `INSERT INTO tickets (user_id, event_id, price_tier_id, qr_code, status) VALUES `
	args := make([]interface{}, 0, len(tickets)*5)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, t.UserID, t.EventID, t.PriceTierID, t.QRCode, t.Status)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByQRCodesTx loads the freshly inserted tickets of a purchase so the
// handler can return them with IDs and timestamps populated.  Results
// follow insertion order of the qr code list.
func (r *TicketRepo) GetByQRCodesTx(ctx context.Context, tx *sql.Tx, qrCodes []string) ([]model.Ticket, error) {
	if len(qrCodes) == 0 {
		return []model.Ticket{}, nil
	}
	placeholders := make([]string, 0, len(qrCodes))
	args := make([]interface{}, 0, len(qrCodes))
	for _, qc := range qrCodes {
		placeholders = append(placeholders, "?")
		args = append(args, qc)
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT id, user_id, event_id, price_tier_id, qr_code, status, purchased_at, checked_in_at
           FROM tickets WHERE qr_code IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byCode := make(map[string]model.Ticket, len(qrCodes))
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		byCode[t.QRCode] = *t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Ticket, 0, len(qrCodes))
	for _, qc := range qrCodes {
		if t, ok := byCode[qc]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func scanTicket(row interface{ Scan(...any) error }) (*model.Ticket, error) {
	var t model.Ticket
	var checkedIn sql.NullTime
	if err := row.Scan(&t.ID, &t.UserID, &t.EventID, &t.PriceTierID,
		&t.QRCode, &t.Status, &t.PurchasedAt, &checkedIn); err != nil {
		return nil, err
	}
	if checkedIn.Valid {
		ts := checkedIn.Time
		t.CheckedInAt = &ts
	}
	return &t, nil
}

// Redeem outcome values returned to the scanning clients.  already_checked_in
// is informational, not an error: the scanner renders the original
// check-in time so gate staff can act on it.
const (
	OutcomeCheckedIn        = "checked_in"
	OutcomeAlreadyCheckedIn = "already_checked_in"
	OutcomeNotFound         = "not_found"
	OutcomeInvalidStatus    = "invalid_status"
)

// TicketDetail is a ticket joined with its event, tier and holder for
// display on the scanner and on ticket listings.
type TicketDetail struct {
	ID          uint64     `json:"id"`
	QRCode      string     `json:"qr_code"`
	Status      string     `json:"status"`
	PurchasedAt time.Time  `json:"purchased_at"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	EventID     uint64     `json:"event_id"`
	EventTitle  string     `json:"event_title"`
	EventDate   time.Time  `json:"event_date"`
	VenueName   *string    `json:"venue_name,omitempty"`
	Location    string     `json:"location"`
	TierID      uint64     `json:"tier_id"`
	TierName    string     `json:"tier_name"`
	PriceCents  uint32     `json:"price_cents"`
	UserID      uint64     `json:"user_id"`
	HolderName  *string    `json:"holder_name,omitempty"`
	HolderEmail string     `json:"holder_email"`
}

const ticketDetailQuery = `SELECT t.id, t.qr_code, t.status, t.purchased_at, t.checked_in_at,
       e.id, e.title, e.event_date, e.venue_name, e.location,
       p.id, p.name, p.price_cents,
       u.id, u.full_name, u.email
  FROM tickets t
  JOIN events e ON e.id = t.event_id
  JOIN price_tiers p ON p.id = t.price_tier_id
  JOIN users u ON u.id = t.user_id`

func scanTicketDetail(row interface{ Scan(...any) error }) (*TicketDetail, error) {
	var d TicketDetail
	var checkedIn sql.NullTime
	var venue, holder sql.NullString
	if err := row.Scan(&d.ID, &d.QRCode, &d.Status, &d.PurchasedAt, &checkedIn,
		&d.EventID, &d.EventTitle, &d.EventDate, &venue, &d.Location,
		&d.TierID, &d.TierName, &d.PriceCents,
		&d.UserID, &holder, &d.HolderEmail); err != nil {
		return nil, err
	}
	if checkedIn.Valid {
		ts := checkedIn.Time
		d.CheckedInAt = &ts
	}
	if venue.Valid {
		v := venue.String
		d.VenueName = &v
	}
	if holder.Valid {
		h := holder.String
		d.HolderName = &h
	}
	return &d, nil
}

// Redeem transitions a ticket from active to used exactly once.  The
// UPDATE guards on the prior state (status = 'active' AND checked_in_at
// IS NULL) so that of any number of concurrent scans of the same code,
// at most one observes OutcomeCheckedIn; the rest re-read the row and
// report already_checked_in with the original timestamp, invalid_status
// for cancelled/refunded tickets, or not_found for unknown codes.
func (r *TicketRepo) Redeem(ctx context.Context, qrCode string) (string, *TicketDetail, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets
            SET status = ?, checked_in_at = UTC_TIMESTAMP()
          WHERE qr_code = ? AND status = ? AND checked_in_at IS NULL`,
		model.TicketStatusUsed, qrCode, model.TicketStatusActive)
	if err != nil {
		return "", nil, err
	}
	won, err := res.RowsAffected()
	if err != nil {
		return "", nil, err
	}
	detail, err := r.GetDetailByQR(ctx, qrCode)
	if err != nil {
		if err == ErrTicketNotFound {
			return OutcomeNotFound, nil, nil
		}
		return "", nil, err
	}
	if won == 1 {
		return OutcomeCheckedIn, detail, nil
	}
	switch {
	case detail.Status == model.TicketStatusUsed:
		return OutcomeAlreadyCheckedIn, detail, nil
	case model.TerminalTicketStatus(detail.Status):
		// Cancelled or refunded: nothing to redeem.
		return OutcomeInvalidStatus, detail, nil
	default:
		// Still active: lost the race against a concurrent scan that has
		// not committed its timestamp into our read yet; report it as
		// already handled.
		return OutcomeAlreadyCheckedIn, detail, nil
	}
}

// GetDetailByQR returns the joined detail row for a QR code or
// ErrTicketNotFound.
func (r *TicketRepo) GetDetailByQR(ctx context.Context, qrCode string) (*TicketDetail, error) {
	row := r.db.QueryRowContext(ctx, ticketDetailQuery+` WHERE t.qr_code = ?`, qrCode)
	d, err := scanTicketDetail(row)
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	return d, err
}

// GetDetailByID returns the joined detail row for a ticket ID or
// ErrTicketNotFound.
func (r *TicketRepo) GetDetailByID(ctx context.Context, ticketID uint64) (*TicketDetail, error) {
	row := r.db.QueryRowContext(ctx, ticketDetailQuery+` WHERE t.id = ?`, ticketID)
	d, err := scanTicketDetail(row)
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	return d, err
}

// ListByUser returns all of a user's tickets with event and tier details,
// newest purchase first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]TicketDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		ticketDetailQuery+` WHERE t.user_id = ? ORDER BY t.purchased_at DESC, t.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

// ListRecentCheckIns returns the latest redeemed tickets for the scanner
// side panel, most recent first.
func (r *TicketRepo) ListRecentCheckIns(ctx context.Context, limit int) ([]TicketDetail, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		ticketDetailQuery+` WHERE t.checked_in_at IS NOT NULL ORDER BY t.checked_in_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

// ListAll returns tickets for the back office, optionally filtered by
// status, newest first with keyset-free paging.
func (r *TicketRepo) ListAll(ctx context.Context, status string, limit, offset int) ([]TicketDetail, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := ticketDetailQuery
	args := make([]interface{}, 0, 3)
	if status != "" {
		query += ` WHERE t.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY t.purchased_at DESC, t.id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

func collectDetails(rows *sql.Rows) ([]TicketDetail, error) {
	out := make([]TicketDetail, 0)
	for rows.Next() {
		d, err := scanTicketDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// GetForUpdateTx loads a ticket row with a row lock inside the provided
// transaction.  The organizer override uses it so the status check and
// the subsequent inventory adjustment see a stable row.
func (r *TicketRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, ticketID uint64) (*model.Ticket, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, user_id, event_id, price_tier_id, qr_code, status, purchased_at, checked_in_at
           FROM tickets WHERE id = ? FOR UPDATE`, ticketID)
	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	return t, err
}

// SetStatusTx writes a new status inside the provided transaction.  When
// the new status is active the check-in timestamp is cleared so the
// ticket becomes redeemable again.
func (r *TicketRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, ticketID uint64, status string) error {
	var err error
	if status == model.TicketStatusActive {
		_, err = tx.ExecContext(ctx,
			`UPDATE tickets SET status = ?, checked_in_at = NULL WHERE id = ?`, status, ticketID)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE tickets SET status = ? WHERE id = ?`, status, ticketID)
	}
	return err
}

// CountByEventTx counts non-cancelled tickets of an event inside a
// transaction; used by event deletion to report what the cascade will
// remove.
func (r *TicketRepo) CountByEventTx(ctx context.Context, tx *sql.Tx, eventID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE event_id = ?`, eventID).Scan(&n)
	return n, err
}

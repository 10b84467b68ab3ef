package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
)

func detailColumns() []string {
	return []string{
		"t.id", "t.qr_code", "t.status", "t.purchased_at", "t.checked_in_at",
		"e.id", "e.title", "e.event_date", "e.venue_name", "e.location",
		"p.id", "p.name", "p.price_cents",
		"u.id", "u.full_name", "u.email",
	}
}

func detailRow(status string, checkedIn interface{}) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(detailColumns()).AddRow(
		11, "ABCDEF", status, now, checkedIn,
		3, "Synthwave Night", now.Add(48*time.Hour), "Main Hall", "Jakarta",
		5, "Regular", 150000,
		9, "Ana Rivai", "ana@example.com",
	)
}

func TestRedeem_FirstScanWins(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectExec(`UPDATE tickets`).
		WithArgs(model.TicketStatusUsed, "ABCDEF", model.TicketStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT t.id, t.qr_code`).
		WithArgs("ABCDEF").
		WillReturnRows(detailRow(model.TicketStatusUsed, time.Now().UTC()))

	outcome, detail, err := repo.Redeem(context.Background(), "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCheckedIn, outcome)
	require.NotNil(t, detail)
	assert.Equal(t, "Synthwave Night", detail.EventTitle)
	assert.NotNil(t, detail.CheckedInAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_SecondScanReportsAlreadyCheckedIn(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	// The CAS matches nothing because checked_in_at is already set; the
	// re-read returns the used row with the original timestamp.
	mock.ExpectExec(`UPDATE tickets`).
		WithArgs(model.TicketStatusUsed, "ABCDEF", model.TicketStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT t.id, t.qr_code`).
		WithArgs("ABCDEF").
		WillReturnRows(detailRow(model.TicketStatusUsed, time.Now().UTC().Add(-time.Hour)))

	outcome, detail, err := repo.Redeem(context.Background(), "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyCheckedIn, outcome)
	require.NotNil(t, detail)
	require.NotNil(t, detail.CheckedInAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_CancelledTicketRejected(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectExec(`UPDATE tickets`).
		WithArgs(model.TicketStatusUsed, "ABCDEF", model.TicketStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT t.id, t.qr_code`).
		WithArgs("ABCDEF").
		WillReturnRows(detailRow(model.TicketStatusCancelled, nil))

	outcome, detail, err := repo.Redeem(context.Background(), "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalidStatus, outcome)
	require.NotNil(t, detail)
	assert.Equal(t, model.TicketStatusCancelled, detail.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_UnknownCode(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectExec(`UPDATE tickets`).
		WithArgs(model.TicketStatusUsed, "NOPE", model.TicketStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT t.id, t.qr_code`).
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows(detailColumns()))

	outcome, detail, err := repo.Redeem(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
	assert.Nil(t, detail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatchTx_SingleStatement(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO tickets`).
		WithArgs(
			uint64(9), uint64(3), uint64(5), "AAA", model.TicketStatusActive,
			uint64(9), uint64(3), uint64(5), "BBB", model.TicketStatusActive,
		).
		WillReturnResult(sqlmock.NewResult(11, 2))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.CreateBatchTx(context.Background(), tx, []model.Ticket{
		{UserID: 9, EventID: 3, PriceTierID: 5, QRCode: "AAA", Status: model.TicketStatusActive},
		{UserID: 9, EventID: 3, PriceTierID: 5, QRCode: "BBB", Status: model.TicketStatusActive},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusTx_ReactivationClearsCheckin(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTicketRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tickets SET status = \?, checked_in_at = NULL`).
		WithArgs(model.TicketStatusActive, uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.SetStatusTx(context.Background(), tx, 11, model.TicketStatusActive))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

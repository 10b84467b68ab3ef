package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestReserve_Success(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPriceTierRepo(db)

	mock.ExpectExec(`UPDATE price_tiers`).
		WithArgs(uint32(2), uint64(7), uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Reserve(context.Background(), 7, 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_InsufficientInventory(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPriceTierRepo(db)

	// Guard fails: zero rows updated, tier exists.
	mock.ExpectExec(`UPDATE price_tiers`).
		WithArgs(uint32(5), uint64(7), uint32(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM price_tiers`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	err := repo.Reserve(context.Background(), 7, 5)
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_TierNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPriceTierRepo(db)

	mock.ExpectExec(`UPDATE price_tiers`).
		WithArgs(uint32(1), uint64(99), uint32(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM price_tiers`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	err := repo.Reserve(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrTierNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_Success(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPriceTierRepo(db)

	mock.ExpectExec(`UPDATE price_tiers`).
		WithArgs(uint32(1), uint64(7), uint32(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Release(context.Background(), 7, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_BelowZeroRejected(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPriceTierRepo(db)

	mock.ExpectExec(`UPDATE price_tiers`).
		WithArgs(uint32(3), uint64(7), uint32(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM price_tiers`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	err := repo.Release(context.Background(), 7, 3)
	assert.ErrorIs(t, err, ErrInvalidRelease)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveTx_RollbackReturnsInventory(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPriceTierRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE price_tiers`).
		WithArgs(uint32(2), uint64(7), uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.ReserveTx(context.Background(), tx, 7, 2))
	// A later failure in the purchase rolls back; the reservation is
	// undone with it, no compensating update issued.
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_RefusesTotalBelowSold(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPriceTierRepo(db)

	now := time.Now().UTC()
	// The conditional UPDATE matches nothing because quantity_sold is
	// above the new total; the follow-up read shows the tier exists, so
	// the failure surfaces as a conflict rather than not-found.
	mock.ExpectExec(`UPDATE price_tiers`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM price_tiers WHERE id`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "event_id", "name", "description", "price_cents",
			"quantity_total", "quantity_sold", "created_at", "updated_at",
		}).AddRow(7, 1, "VIP", nil, 5000, 100, 60, now, now))

	tier := &model.PriceTier{ID: 7, EventID: 1, Name: "VIP", PriceCents: 5000, QuantityTotal: 50}
	err := repo.Update(context.Background(), tier)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

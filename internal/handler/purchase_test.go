package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/config"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/repository"
)

func newPurchaseHandler(t *testing.T) (*PurchaseHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cfg := config.Config{MaxPerPurchase: 5}
	h := NewPurchaseHandler(cfg,
		repository.NewEventRepo(db),
		repository.NewPriceTierRepo(db),
		repository.NewTicketRepo(db))
	return h, mock
}

func purchaseContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/events/jazz-night/purchase", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/events/:slug/purchase")
	c.SetParamNames("slug")
	c.SetParamValues("jazz-night")
	c.Set("user_id", uint64(9))
	c.Set("roles", []string{"buyer"})
	return c, rec
}

func eventRows(eventDate time.Time) *sqlmock.Rows {
	return eventRowsPublished(eventDate, true)
}

func eventRowsPublished(eventDate time.Time, published bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "organizer_id", "category_id", "title", "slug", "description",
		"event_date", "end_date", "location", "venue_name", "city",
		"cover_image", "is_published", "is_featured", "created_at", "updated_at",
	}).AddRow(3, 2, nil, "Jazz Night", "jazz-night", "desc",
		eventDate, nil, "Jakarta", nil, nil,
		nil, published, false, now, now)
}

func tierRows(total, sold uint32) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "event_id", "name", "description", "price_cents",
		"quantity_total", "quantity_sold", "created_at", "updated_at",
	}).AddRow(5, 3, "Regular", nil, 150000, total, sold, now, now)
}

func TestPurchase_QuantityBounds(t *testing.T) {
	h, mock := newPurchaseHandler(t)

	c, rec := purchaseContext(`{"tier_id":5,"quantity":0}`)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = purchaseContext(`{"tier_id":5,"quantity":6}`)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchase_UnknownEventNotFound(t *testing.T) {
	h, mock := newPurchaseHandler(t)

	mock.ExpectQuery(`SELECT (.+) FROM events WHERE slug`).
		WithArgs("jazz-night").
		WillReturnError(sql.ErrNoRows)

	c, rec := purchaseContext(`{"tier_id":5,"quantity":2}`)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchase_DraftEventNotPublished(t *testing.T) {
	h, mock := newPurchaseHandler(t)

	// The slug resolves, but the event is still a draft.  Buyers get a
	// distinct not-published answer regardless of inventory state, and no
	// tier or ledger query runs.
	mock.ExpectQuery(`SELECT (.+) FROM events WHERE slug`).
		WithArgs("jazz-night").
		WillReturnRows(eventRowsPublished(time.Now().UTC().Add(48*time.Hour), false))

	c, rec := purchaseContext(`{"tier_id":5,"quantity":2}`)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "event not published")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchase_EndedEventRejected(t *testing.T) {
	h, mock := newPurchaseHandler(t)

	mock.ExpectQuery(`SELECT (.+) FROM events WHERE slug`).
		WithArgs("jazz-night").
		WillReturnRows(eventRows(time.Now().UTC().Add(-24 * time.Hour)))

	c, rec := purchaseContext(`{"tier_id":5,"quantity":1}`)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchase_InsufficientInventoryRollsBack(t *testing.T) {
	h, mock := newPurchaseHandler(t)

	mock.ExpectQuery(`SELECT (.+) FROM events WHERE slug`).
		WithArgs("jazz-night").
		WillReturnRows(eventRows(time.Now().UTC().Add(48 * time.Hour)))
	mock.ExpectQuery(`SELECT (.+) FROM price_tiers WHERE id`).
		WithArgs(uint64(5)).
		WillReturnRows(tierRows(100, 99))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE price_tiers`).
		WithArgs(uint32(2), uint64(5), uint32(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM price_tiers`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	c, rec := purchaseContext(`{"tier_id":5,"quantity":2}`)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient inventory")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchase_InsertFailureReturnsInventory(t *testing.T) {
	h, mock := newPurchaseHandler(t)

	mock.ExpectQuery(`SELECT (.+) FROM events WHERE slug`).
		WithArgs("jazz-night").
		WillReturnRows(eventRows(time.Now().UTC().Add(48 * time.Hour)))
	mock.ExpectQuery(`SELECT (.+) FROM price_tiers WHERE id`).
		WithArgs(uint64(5)).
		WillReturnRows(tierRows(100, 10))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE price_tiers`).
		WithArgs(uint32(1), uint64(5), uint32(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO tickets`).
		WillReturnError(sql.ErrConnDone)
	// The rollback is the compensation: the reservation above never
	// commits.
	mock.ExpectRollback()

	c, rec := purchaseContext(`{"tier_id":5,"quantity":1}`)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchase_TierMustBelongToEvent(t *testing.T) {
	h, mock := newPurchaseHandler(t)

	now := time.Now().UTC()
	otherEventTier := sqlmock.NewRows([]string{
		"id", "event_id", "name", "description", "price_cents",
		"quantity_total", "quantity_sold", "created_at", "updated_at",
	}).AddRow(5, 77, "Regular", nil, 150000, 100, 0, now, now)

	mock.ExpectQuery(`SELECT (.+) FROM events WHERE slug`).
		WithArgs("jazz-night").
		WillReturnRows(eventRows(now.Add(48 * time.Hour)))
	mock.ExpectQuery(`SELECT (.+) FROM price_tiers WHERE id`).
		WithArgs(uint64(5)).
		WillReturnRows(otherEventTier)

	c, rec := purchaseContext(`{"tier_id":5,"quantity":1}`)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

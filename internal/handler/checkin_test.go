package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/repository"
)

func newCheckinHandler(t *testing.T) (*CheckinHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCheckinHandler(repository.NewTicketRepo(db)), mock
}

func checkinContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/checkin", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(2))
	c.Set("roles", []string{"organizer"})
	return c, rec
}

func scannerDetailRow(status string, checkedIn interface{}) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"t.id", "t.qr_code", "t.status", "t.purchased_at", "t.checked_in_at",
		"e.id", "e.title", "e.event_date", "e.venue_name", "e.location",
		"p.id", "p.name", "p.price_cents",
		"u.id", "u.full_name", "u.email",
	}).AddRow(
		11, "ABCDEF", status, now, checkedIn,
		3, "Jazz Night", now.Add(2*time.Hour), nil, "Jakarta",
		5, "Regular", 150000,
		9, nil, "ana@example.com",
	)
}

func TestCheckin_NormalizesScannedCode(t *testing.T) {
	h, mock := newCheckinHandler(t)

	// Lower-case input with whitespace must hit the canonical code.
	mock.ExpectExec(`UPDATE tickets`).
		WithArgs(model.TicketStatusUsed, "ABCDEF", model.TicketStatusActive).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT t.id, t.qr_code`).
		WithArgs("ABCDEF").
		WillReturnRows(scannerDetailRow(model.TicketStatusUsed, time.Now().UTC()))

	c, rec := checkinContext(`{"qr_code":"  abcdef \n"}`)
	require.NoError(t, h.Checkin(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"checked_in"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckin_AlreadyCheckedInIsOKWithTimestamp(t *testing.T) {
	h, mock := newCheckinHandler(t)

	mock.ExpectExec(`UPDATE tickets`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT t.id, t.qr_code`).
		WithArgs("ABCDEF").
		WillReturnRows(scannerDetailRow(model.TicketStatusUsed, time.Now().UTC().Add(-time.Hour)))

	c, rec := checkinContext(`{"qr_code":"ABCDEF"}`)
	require.NoError(t, h.Checkin(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"already_checked_in"`)
	assert.Contains(t, rec.Body.String(), `"checked_in_at"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckin_RefundedTicketConflicts(t *testing.T) {
	h, mock := newCheckinHandler(t)

	mock.ExpectExec(`UPDATE tickets`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT t.id, t.qr_code`).
		WithArgs("ABCDEF").
		WillReturnRows(scannerDetailRow(model.TicketStatusRefunded, nil))

	c, rec := checkinContext(`{"qr_code":"ABCDEF"}`)
	require.NoError(t, h.Checkin(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"invalid_status"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckin_UnknownCode(t *testing.T) {
	h, mock := newCheckinHandler(t)

	mock.ExpectExec(`UPDATE tickets`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT t.id, t.qr_code`).
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows([]string{"t.id"}))

	c, rec := checkinContext(`{"qr_code":"nope"}`)
	require.NoError(t, h.Checkin(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"not_found"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckin_EmptyCodeRejected(t *testing.T) {
	h, mock := newCheckinHandler(t)

	c, rec := checkinContext(`{"qr_code":"   "}`)
	require.NoError(t, h.Checkin(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

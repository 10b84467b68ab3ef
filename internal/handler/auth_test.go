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

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/config"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/repository"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 4, BcryptCost: 4}
	return NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func meContext(method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/v1/me", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/me")
	c.Set("user_id", uint64(9))
	c.Set("roles", []string{"buyer"})
	return c, rec
}

func userRow(name interface{}) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "full_name", "is_active", "created_at", "updated_at",
	}).AddRow(9, "jane@example.com", "x", name, true, now, now)
}

func TestUpdateMe_SetsFullName(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectExec(`UPDATE users SET full_name`).
		WithArgs("Jane Doe", uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs(uint64(9)).
		WillReturnRows(userRow("Jane Doe"))
	mock.ExpectQuery(`SELECT role FROM user_roles`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("buyer"))

	c, rec := meContext(http.MethodPatch, `{"full_name":"  Jane Doe  "}`)
	require.NoError(t, h.UpdateMe(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane Doe")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMe_BlankNameClears(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectExec(`UPDATE users SET full_name`).
		WithArgs(nil, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
		WithArgs(uint64(9)).
		WillReturnRows(userRow(nil))
	mock.ExpectQuery(`SELECT role FROM user_roles`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("buyer"))

	c, rec := meContext(http.MethodPatch, `{"full_name":"   "}`)
	require.NoError(t, h.UpdateMe(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "full_name")
	assert.NoError(t, mock.ExpectationsWereMet())
}

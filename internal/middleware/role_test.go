package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/utils"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func jwtRequest(t *testing.T, secret string, roles []string) (*echo.Echo, *http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, 1, roles, 15)
	require.NoError(t, err)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	return e, req, httptest.NewRecorder()
}

func TestJWTAuth_ValidTokenInjectsIdentity(t *testing.T) {
	secret := "s3cret"
	e, req, rec := jwtRequest(t, secret, []string{"buyer", "creator"})
	c := e.NewContext(req, rec)

	called := false
	h := JWTAuth(secret)(func(c echo.Context) error {
		called = true
		assert.Equal(t, float64(1), c.Get("user_id"))
		assert.Equal(t, []string{"buyer", "creator"}, c.Get("roles"))
		return nil
	})
	require.NoError(t, h(c))
	assert.True(t, called)
}

func TestJWTAuth_MissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTAuth("s3cret")(okHandler)
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	e, req, rec := jwtRequest(t, "issuer-secret", []string{"buyer"})
	c := e.NewContext(req, rec)

	h := JWTAuth("other-secret")(okHandler)
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireEventManagerAndAdmin(t *testing.T) {
	cases := []struct {
		name   string
		have   []string
		mw     echo.MiddlewareFunc
		status int
	}{
		{"creator may manage events", []string{"buyer", "creator"}, RequireEventManager(), http.StatusOK},
		{"organizer may manage events", []string{"buyer", "organizer"}, RequireEventManager(), http.StatusOK},
		{"buyer may not manage events", []string{"buyer"}, RequireEventManager(), http.StatusForbidden},
		{"organizer reaches back office", []string{"organizer"}, RequireAdmin(), http.StatusOK},
		{"creator kept out of back office", []string{"buyer", "creator"}, RequireAdmin(), http.StatusForbidden},
		{"no roles in context", nil, RequireAdmin(), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.have != nil {
				c.Set("roles", tc.have)
			}
			h := tc.mw(okHandler)
			require.NoError(t, h(c))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}


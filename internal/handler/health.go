package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers load balancer probes.  It reports process liveness
// only; database and broker state surface through /metrics instead.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

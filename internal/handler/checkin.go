package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/monitoring"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/queue"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/repository"
	queuepublisher "github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/service"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/utils"
)

// CheckinHandler drives the gate scanner.  Redemption is a single
// compare-and-set in the repository, so two staff members scanning the
// same code at once get exactly one checked_in and one
// already_checked_in.
type CheckinHandler struct {
	Tickets *repository.TicketRepo
}

func NewCheckinHandler(t *repository.TicketRepo) *CheckinHandler {
	return &CheckinHandler{Tickets: t}
}

type checkinReq struct {
	QRCode string `json:"qr_code"`
}

// checkinResp always carries the outcome; ticket is present for every
// outcome except not_found so gate staff see who they are talking to
// even on a rejected scan.
type checkinResp struct {
	Outcome string                   `json:"outcome"`
	Ticket  *repository.TicketDetail `json:"ticket,omitempty"`
}

// Checkin POST /v1/checkin
func (h *CheckinHandler) Checkin(c echo.Context) error {
	var req checkinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := utils.NormalizeQRToken(req.QRCode)
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	outcome, detail, err := h.Tickets.Redeem(ctx, code)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "redeem failed"})
	}
	monitoring.CheckinOutcome(outcome)

	switch outcome {
	case repository.OutcomeCheckedIn:
		checkedInAt := ""
		if detail.CheckedInAt != nil {
			checkedInAt = detail.CheckedInAt.UTC().Format(time.RFC3339)
		}
		_ = queuepublisher.PublishTicketCheckedIn(ctx, queue.TicketCheckedInEvent{
			TicketID:    detail.ID,
			EventID:     detail.EventID,
			EventTitle:  detail.EventTitle,
			UserID:      detail.UserID,
			TierName:    detail.TierName,
			CheckedInAt: checkedInAt,
		})
		return c.JSON(http.StatusOK, checkinResp{Outcome: outcome, Ticket: detail})
	case repository.OutcomeAlreadyCheckedIn:
		// Informational, not an error: the response carries the original
		// check-in time.
		return c.JSON(http.StatusOK, checkinResp{Outcome: outcome, Ticket: detail})
	case repository.OutcomeInvalidStatus:
		return c.JSON(http.StatusConflict, checkinResp{Outcome: outcome, Ticket: detail})
	default:
		return c.JSON(http.StatusNotFound, checkinResp{Outcome: repository.OutcomeNotFound})
	}
}

// Lookup GET /v1/checkin/:code previews a ticket without redeeming it,
// for scanners that show the holder before committing the scan.
func (h *CheckinHandler) Lookup(c echo.Context) error {
	code := utils.NormalizeQRToken(c.Param("code"))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	detail, err := h.Tickets.GetDetailByQR(ctx, code)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, detail)
}

// Recent GET /v1/checkin/recent?limit= lists the latest redeemed tickets
// for the scanner side panel.
func (h *CheckinHandler) Recent(c echo.Context) error {
	limit := 10
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	recent, err := h.Tickets.ListRecentCheckIns(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, recent)
}

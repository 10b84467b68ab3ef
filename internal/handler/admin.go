package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/monitoring"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/repository"
)

// AdminHandler serves the back office: user role management, the stats
// dashboard, the global ticket listing and manual ticket status
// overrides.  All routes require the organizer role.
type AdminHandler struct {
	Users   *repository.UserRepo
	Stats   *repository.StatsRepo
	Tickets *repository.TicketRepo
	Tiers   *repository.PriceTierRepo
}

func NewAdminHandler(u *repository.UserRepo, s *repository.StatsRepo,
	t *repository.TicketRepo, p *repository.PriceTierRepo) *AdminHandler {
	return &AdminHandler{Users: u, Stats: s, Tickets: t, Tiers: p}
}

// ListUsers GET /v1/manage/users?limit=&offset=
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	users, err := h.Users.ListWithRoles(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, users)
}

type roleReq struct {
	Role string `json:"role"`
}

// GrantRole POST /v1/manage/users/:id/roles
func (h *AdminHandler) GrantRole(c echo.Context) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if !model.ValidRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err := h.Users.GrantRole(ctx, userID, req.Role); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant failed"})
	}
	roles, err := h.Users.RolesOf(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roles failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "roles": roles})
}

// RevokeRole DELETE /v1/manage/users/:id/roles/:role
func (h *AdminHandler) RevokeRole(c echo.Context) error {
	userID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	role := strings.ToLower(strings.TrimSpace(c.Param("role")))
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Users.RevokeRole(ctx, userID, role); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "buyer role cannot be revoked"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	roles, err := h.Users.RolesOf(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roles failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "roles": roles})
}

// Overview GET /v1/manage/stats
func (h *AdminHandler) Overview(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	o, err := h.Stats.GetOverview(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, o)
}

// ListTickets GET /v1/manage/tickets?status=&limit=&offset=
func (h *AdminHandler) ListTickets(c echo.Context) error {
	status := strings.TrimSpace(c.QueryParam("status"))
	if status != "" && !model.ValidTicketStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	tickets, err := h.Tickets.ListAll(ctx, status, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, tickets)
}

type overrideReq struct {
	Status string `json:"status"`
}

// OverrideTicketStatus PATCH /v1/manage/tickets/:id/status forces a
// ticket into a new state and keeps the inventory ledger consistent:
// moving an active or used ticket to cancelled/refunded releases one
// seat back to its tier, reactivating a cancelled/refunded ticket claims
// one again (and fails when the tier has meanwhile sold out).  The lock
// on the ticket row, the status write and the ledger adjustment commit
// together.
func (h *AdminHandler) OverrideTicketStatus(c echo.Context) error {
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var req overrideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if !model.ValidTicketStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.Tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := h.Tickets.GetForUpdateTx(ctx, tx, ticketID)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if t.Status == req.Status {
		return c.JSON(http.StatusOK, echo.Map{"ticket_id": ticketID, "status": t.Status})
	}

	// active and used tickets hold inventory; cancelled and refunded do
	// not.
	heldBefore := t.Status == model.TicketStatusActive || t.Status == model.TicketStatusUsed
	heldAfter := req.Status == model.TicketStatusActive || req.Status == model.TicketStatusUsed
	released := false
	switch {
	case heldBefore && !heldAfter:
		if err := h.Tiers.ReleaseTx(ctx, tx, t.PriceTierID, 1); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release failed"})
		}
		released = true
	case !heldBefore && heldAfter:
		if err := h.Tiers.ReserveTx(ctx, tx, t.PriceTierID, 1); err != nil {
			if err == repository.ErrInsufficientInventory {
				return c.JSON(http.StatusConflict, echo.Map{"error": "tier sold out, cannot reactivate"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reserve failed"})
		}
	}

	if err := h.Tickets.SetStatusTx(ctx, tx, ticketID, req.Status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	if released {
		monitoring.InventoryReleased(1)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ticket_id":   ticketID,
		"status":      req.Status,
		"prev_status": t.Status,
	})
}

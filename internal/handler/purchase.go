package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/config"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/monitoring"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/queue"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/repository"
	queuepublisher "github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/service"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/utils"
)

// PurchaseHandler issues tickets.  The reservation of inventory and the
// insertion of ticket rows run in one transaction: if any step fails the
// rollback returns the claimed inventory, so no compensating write is
// needed and a partial purchase can never be observed.
type PurchaseHandler struct {
	Cfg     config.Config
	Events  *repository.EventRepo
	Tiers   *repository.PriceTierRepo
	Tickets *repository.TicketRepo
}

func NewPurchaseHandler(cfg config.Config, e *repository.EventRepo,
	t *repository.PriceTierRepo, tk *repository.TicketRepo) *PurchaseHandler {
	return &PurchaseHandler{Cfg: cfg, Events: e, Tiers: t, Tickets: tk}
}

type purchaseReq struct {
	TierID   uint64 `json:"tier_id"`
	Quantity uint32 `json:"quantity"`
}

type purchasedTicket struct {
	ID          uint64    `json:"id"`
	QRCode      string    `json:"qr_code"`
	Status      string    `json:"status"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type purchaseResp struct {
	EventID    uint64            `json:"event_id"`
	TierID     uint64            `json:"tier_id"`
	Quantity   int               `json:"quantity"`
	TotalCents uint64            `json:"total_cents"`
	Tickets    []purchasedTicket `json:"tickets"`
}

// Purchase POST /v1/events/:slug/purchase
// The public surface addresses events by slug.  A slug that matches a
// draft is reported as not published, distinct from an unknown slug.
func (h *PurchaseHandler) Purchase(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug required"})
	}
	var req purchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.TierID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tier_id required"})
	}
	if req.Quantity == 0 || int(req.Quantity) > h.Cfg.MaxPerPurchase {
		monitoring.PurchaseRejected("invalid_quantity")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "quantity must be between 1 and " + strconv.Itoa(h.Cfg.MaxPerPurchase),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	event, err := h.Events.GetPurchasableBySlug(ctx, slug)
	if err != nil {
		switch err {
		case repository.ErrEventNotFound:
			monitoring.PurchaseRejected("event_not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case repository.ErrEventNotPublished:
			monitoring.PurchaseRejected("event_not_published")
			return c.JSON(http.StatusConflict, echo.Map{"error": "event not published"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
	}
	eventID := event.ID
	saleDeadline := event.EventDate
	if event.EndDate != nil {
		saleDeadline = *event.EndDate
	}
	if time.Now().UTC().After(saleDeadline) {
		monitoring.PurchaseRejected("event_ended")
		return c.JSON(http.StatusConflict, echo.Map{"error": "event already ended"})
	}

	tier, err := h.Tiers.GetByID(ctx, req.TierID)
	if err != nil {
		if err == repository.ErrTierNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "price tier not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if tier.EventID != eventID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tier does not belong to event"})
	}

	// QR tokens are generated before the transaction opens so a token
	// generation failure cannot leave a reservation behind.
	codes := make([]string, 0, req.Quantity)
	pending := make([]model.Ticket, 0, req.Quantity)
	for i := uint32(0); i < req.Quantity; i++ {
		code, err := utils.NewQRToken()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
		}
		codes = append(codes, code)
		pending = append(pending, model.Ticket{
			UserID:      uid,
			EventID:     eventID,
			PriceTierID: req.TierID,
			QRCode:      code,
			Status:      model.TicketStatusActive,
		})
	}

	start := time.Now()
	tx, err := h.Tiers.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Tiers.ReserveTx(ctx, tx, req.TierID, req.Quantity); err != nil {
		switch err {
		case repository.ErrInsufficientInventory:
			monitoring.PurchaseRejected("insufficient_inventory")
			return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient inventory"})
		case repository.ErrTierNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "price tier not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reserve failed"})
		}
	}
	if err := h.Tickets.CreateBatchTx(ctx, tx, pending); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue failed"})
	}
	issued, err := h.Tickets.GetByQRCodesTx(ctx, tx, codes)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	monitoring.ObservePurchase(time.Since(start).Seconds())
	monitoring.TicketsIssued(strconv.FormatUint(eventID, 10), len(issued))

	out := make([]purchasedTicket, 0, len(issued))
	ids := make([]uint64, 0, len(issued))
	for _, t := range issued {
		out = append(out, purchasedTicket{
			ID: t.ID, QRCode: t.QRCode, Status: t.Status, PurchasedAt: t.PurchasedAt,
		})
		ids = append(ids, t.ID)
	}
	total := uint64(tier.PriceCents) * uint64(req.Quantity)

	// Broker failures are logged inside the publisher and never fail the
	// sale.
	_ = queuepublisher.PublishTicketIssued(ctx, queue.TicketIssuedEvent{
		UserID:     uid,
		EventID:    eventID,
		EventTitle: event.Title,
		TierID:     tier.ID,
		TierName:   tier.Name,
		Quantity:   len(issued),
		TotalCents: total,
		TicketIDs:  ids,
		IssuedAt:   time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, purchaseResp{
		EventID:    eventID,
		TierID:     tier.ID,
		Quantity:   len(issued),
		TotalCents: total,
		Tickets:    out,
	})
}

// MyTickets GET /v1/me/tickets
func (h *PurchaseHandler) MyTickets(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	tickets, err := h.Tickets.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, tickets)
}

// MyTicket GET /v1/me/tickets/:id returns one of the caller's tickets
// with its QR payload for rendering.
func (h *PurchaseHandler) MyTicket(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	d, err := h.Tickets.GetDetailByID(ctx, ticketID)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if d.UserID != uid {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	}
	return c.JSON(http.StatusOK, d)
}

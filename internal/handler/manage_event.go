package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/repository"
)

// ManageEventHandler serves the organizer surface: event CRUD, tier CRUD,
// publish/feature toggles and per-event sales.  Every mutating route
// first resolves the event and checks ownership; organizers in the admin
// role bypass the ownership check.
type ManageEventHandler struct {
	Events *repository.EventRepo
	Tiers  *repository.PriceTierRepo
	Stats  *repository.StatsRepo
}

func NewManageEventHandler(e *repository.EventRepo, t *repository.PriceTierRepo,
	s *repository.StatsRepo) *ManageEventHandler {
	return &ManageEventHandler{Events: e, Tiers: t, Stats: s}
}

type eventReq struct {
	CategoryID  *uint64    `json:"category_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	EventDate   time.Time  `json:"event_date"`
	EndDate     *time.Time `json:"end_date"`
	Location    string     `json:"location"`
	VenueName   *string    `json:"venue_name"`
	City        *string    `json:"city"`
	CoverImage  *string    `json:"cover_image"`
}

func (r *eventReq) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	r.Location = strings.TrimSpace(r.Location)
	if r.Title == "" {
		return "title required"
	}
	if r.Location == "" {
		return "location required"
	}
	if r.EventDate.IsZero() {
		return "event_date required"
	}
	if r.EndDate != nil && !r.EndDate.After(r.EventDate) {
		return "end_date must be after event_date"
	}
	if r.Slug = strings.TrimSpace(r.Slug); r.Slug == "" {
		r.Slug = slugify(r.Title)
	}
	if !validSlug(r.Slug) {
		return "invalid slug"
	}
	return ""
}

// resolveOwned loads an event and enforces ownership.  Returns nil after
// writing the error response when the caller may not manage the event.
func (h *ManageEventHandler) resolveOwned(c echo.Context, ctx context.Context) (*model.Event, error) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	e, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if e.OrganizerID != uid && !model.IsAdmin(getRoles(c)) {
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
	}
	return e, nil
}

// ListMine GET /v1/manage/events lists the caller's events, drafts
// included.
func (h *ManageEventHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	events, err := h.Events.ListByOrganizer(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]eventResp, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResp(e))
	}
	return c.JSON(http.StatusOK, out)
}

// Create POST /v1/manage/events creates a draft event owned by the
// caller.
func (h *ManageEventHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	e := model.Event{
		OrganizerID: uid,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		EventDate:   req.EventDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		VenueName:   req.VenueName,
		City:        req.City,
		CoverImage:  req.CoverImage,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Events.Create(ctx, &e); err != nil {
		if err == repository.ErrSlugExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toEventResp(e))
}

// Get GET /v1/manage/events/:id returns one owned event with its tiers.
func (h *ManageEventHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, errResp := h.resolveOwned(c, ctx)
	if e == nil {
		return errResp
	}
	tiers, err := h.Tiers.ListByEvent(ctx, e.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	tout := make([]tierResp, 0, len(tiers))
	for _, t := range tiers {
		tout = append(tout, toTierResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"event": toEventResp(*e), "tiers": tout})
}

// Update PUT /v1/manage/events/:id
func (h *ManageEventHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, errResp := h.resolveOwned(c, ctx)
	if e == nil {
		return errResp
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	e.CategoryID = req.CategoryID
	e.Title = req.Title
	e.Slug = req.Slug
	e.Description = req.Description
	e.EventDate = req.EventDate
	e.EndDate = req.EndDate
	e.Location = req.Location
	e.VenueName = req.VenueName
	e.City = req.City
	e.CoverImage = req.CoverImage
	if err := h.Events.Update(ctx, e); err != nil {
		switch err {
		case repository.ErrSlugExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
		case repository.ErrEventNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, toEventResp(*e))
}

// Delete DELETE /v1/manage/events/:id removes the event with its tiers
// and tickets in one transaction and reports how many tickets the
// cascade voided.
func (h *ManageEventHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	e, errResp := h.resolveOwned(c, ctx)
	if e == nil {
		return errResp
	}
	tx, err := h.Events.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var voided int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE event_id = ?`, e.ID).Scan(&voided); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Events.DeleteTx(ctx, tx, e.ID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"deleted": true, "tickets_voided": voided})
}

type publishReq struct {
	Published bool `json:"published"`
}
type featureReq struct {
	Featured bool `json:"featured"`
}

// SetPublished PATCH /v1/manage/events/:id/publish
func (h *ManageEventHandler) SetPublished(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, errResp := h.resolveOwned(c, ctx)
	if e == nil {
		return errResp
	}
	var req publishReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Published {
		// A publishable event needs at least one tier, otherwise buyers
		// land on a page with nothing to buy.
		tiers, err := h.Tiers.ListByEvent(ctx, e.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if len(tiers) == 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "event has no price tiers"})
		}
	}
	if err := h.Events.SetPublished(ctx, e.ID, req.Published); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	e.IsPublished = req.Published
	return c.JSON(http.StatusOK, toEventResp(*e))
}

// SetFeatured PATCH /v1/manage/events/:id/feature
func (h *ManageEventHandler) SetFeatured(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, errResp := h.resolveOwned(c, ctx)
	if e == nil {
		return errResp
	}
	var req featureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Events.SetFeatured(ctx, e.ID, req.Featured); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	e.IsFeatured = req.Featured
	return c.JSON(http.StatusOK, toEventResp(*e))
}

// Sales GET /v1/manage/events/:id/sales returns per-tier sold/total
// numbers for the organizer dashboard.
func (h *ManageEventHandler) Sales(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, errResp := h.resolveOwned(c, ctx)
	if e == nil {
		return errResp
	}
	sales, err := h.Stats.TierSalesByEvent(ctx, e.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": e.ID, "tiers": sales})
}

// ----- price tiers -----

type tierReq struct {
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	PriceCents    uint32  `json:"price_cents"`
	QuantityTotal uint32  `json:"quantity_total"`
}

func (r *tierReq) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return "name required"
	}
	if r.QuantityTotal == 0 {
		return "quantity_total must be positive"
	}
	return ""
}

// CreateTier POST /v1/manage/events/:id/tiers
func (h *ManageEventHandler) CreateTier(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, errResp := h.resolveOwned(c, ctx)
	if e == nil {
		return errResp
	}
	var req tierReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t := model.PriceTier{
		EventID:       e.ID,
		Name:          req.Name,
		Description:   req.Description,
		PriceCents:    req.PriceCents,
		QuantityTotal: req.QuantityTotal,
	}
	if err := h.Tiers.Create(ctx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toTierResp(t))
}

// UpdateTier PUT /v1/manage/events/:id/tiers/:tier_id
func (h *ManageEventHandler) UpdateTier(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, errResp := h.resolveOwned(c, ctx)
	if e == nil {
		return errResp
	}
	tierID, ok := pathID(c, "tier_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tier id"})
	}
	var req tierReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	t, err := h.Tiers.GetByID(ctx, tierID)
	if err != nil {
		if err == repository.ErrTierNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "price tier not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if t.EventID != e.ID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "price tier not found"})
	}
	t.Name = req.Name
	t.Description = req.Description
	t.PriceCents = req.PriceCents
	t.QuantityTotal = req.QuantityTotal
	if err := h.Tiers.Update(ctx, t); err != nil {
		switch err {
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "quantity_total below tickets already sold"})
		case repository.ErrTierNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "price tier not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, toTierResp(*t))
}

// DeleteTier DELETE /v1/manage/events/:id/tiers/:tier_id
func (h *ManageEventHandler) DeleteTier(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, errResp := h.resolveOwned(c, ctx)
	if e == nil {
		return errResp
	}
	tierID, ok := pathID(c, "tier_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tier id"})
	}
	t, err := h.Tiers.GetByID(ctx, tierID)
	if err != nil {
		if err == repository.ErrTierNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "price tier not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if t.EventID != e.ID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "price tier not found"})
	}
	if err := h.Tiers.Delete(ctx, tierID); err != nil {
		switch err {
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "tier has issued tickets"})
		case repository.ErrTierNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "price tier not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

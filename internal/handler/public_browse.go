package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/repository"
)

// BrowseHandler serves the unauthenticated discovery surface: categories,
// published events, price tiers and landing page banners.
type BrowseHandler struct {
	Categories *repository.CategoryRepo
	Events     *repository.EventRepo
	Tiers      *repository.PriceTierRepo
	Banners    *repository.BannerRepo
}

func NewBrowseHandler(c *repository.CategoryRepo, e *repository.EventRepo,
	t *repository.PriceTierRepo, b *repository.BannerRepo) *BrowseHandler {
	return &BrowseHandler{Categories: c, Events: e, Tiers: t, Banners: b}
}

// ----- response shapes -----

type categoryResp struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

type eventResp struct {
	ID          uint64     `json:"id"`
	OrganizerID uint64     `json:"organizer_id"`
	CategoryID  *uint64    `json:"category_id,omitempty"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	EventDate   time.Time  `json:"event_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Location    string     `json:"location"`
	VenueName   *string    `json:"venue_name,omitempty"`
	City        *string    `json:"city,omitempty"`
	CoverImage  *string    `json:"cover_image,omitempty"`
	IsPublished bool       `json:"is_published"`
	IsFeatured  bool       `json:"is_featured"`
}

type tierResp struct {
	ID            uint64  `json:"id"`
	EventID       uint64  `json:"event_id"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	PriceCents    uint32  `json:"price_cents"`
	QuantityTotal uint32  `json:"quantity_total"`
	QuantitySold  uint32  `json:"quantity_sold"`
	Remaining     uint32  `json:"remaining"`
}

type bannerResp struct {
	ID           uint64  `json:"id"`
	Title        string  `json:"title"`
	Subtitle     *string `json:"subtitle,omitempty"`
	ImageURL     string  `json:"image_url"`
	LinkURL      *string `json:"link_url,omitempty"`
	Position     string  `json:"position"`
	IsActive     bool    `json:"is_active"`
	DisplayOrder int     `json:"display_order"`
}

func toCategoryResp(c model.Category) categoryResp {
	return categoryResp{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description, Icon: c.Icon}
}

func toEventResp(e model.Event) eventResp {
	return eventResp{
		ID: e.ID, OrganizerID: e.OrganizerID, CategoryID: e.CategoryID,
		Title: e.Title, Slug: e.Slug, Description: e.Description,
		EventDate: e.EventDate, EndDate: e.EndDate,
		Location: e.Location, VenueName: e.VenueName, City: e.City,
		CoverImage: e.CoverImage, IsPublished: e.IsPublished, IsFeatured: e.IsFeatured,
	}
}

func toTierResp(t model.PriceTier) tierResp {
	return tierResp{
		ID: t.ID, EventID: t.EventID, Name: t.Name, Description: t.Description,
		PriceCents: t.PriceCents, QuantityTotal: t.QuantityTotal,
		QuantitySold: t.QuantitySold, Remaining: t.Remaining(),
	}
}

func toBannerResp(b model.PromoBanner) bannerResp {
	return bannerResp{
		ID: b.ID, Title: b.Title, Subtitle: b.Subtitle, ImageURL: b.ImageURL,
		LinkURL: b.LinkURL, Position: b.Position, IsActive: b.IsActive, DisplayOrder: b.DisplayOrder,
	}
}

// ListCategories GET /v1/categories
func (h *BrowseHandler) ListCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	cats, err := h.Categories.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]categoryResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, toCategoryResp(cat))
	}
	return c.JSON(http.StatusOK, out)
}

// ListEvents GET /v1/events?category=&city=&q=&featured=&limit=&offset=
// Draft events never appear here.
func (h *BrowseHandler) ListEvents(c echo.Context) error {
	f := repository.DiscoveryFilter{
		CategorySlug: strings.TrimSpace(c.QueryParam("category")),
		City:         strings.TrimSpace(c.QueryParam("city")),
		Query:        strings.TrimSpace(c.QueryParam("q")),
	}
	if v := c.QueryParam("featured"); v == "1" || strings.EqualFold(v, "true") {
		f.FeaturedOnly = true
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil {
		f.Offset = v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	events, err := h.Events.ListPublished(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]eventResp, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResp(e))
	}
	return c.JSON(http.StatusOK, out)
}

// GetEvent GET /v1/events/:slug
// Returns the published event with its price tiers, the full payload the
// event detail page needs in one request.
func (h *BrowseHandler) GetEvent(c echo.Context) error {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	e, err := h.Events.GetPublishedBySlug(ctx, slug)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	tiers, err := h.Tiers.ListByEvent(ctx, e.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	tout := make([]tierResp, 0, len(tiers))
	for _, t := range tiers {
		tout = append(tout, toTierResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event": toEventResp(*e),
		"tiers": tout,
	})
}

// ListBanners GET /v1/banners?position=
func (h *BrowseHandler) ListBanners(c echo.Context) error {
	position := strings.TrimSpace(c.QueryParam("position"))
	if position != "" && !model.ValidBannerPosition(position) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown position"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	banners, err := h.Banners.ListActive(ctx, position)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]bannerResp, 0, len(banners))
	for _, b := range banners {
		out = append(out, toBannerResp(b))
	}
	return c.JSON(http.StatusOK, out)
}

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

// BannerAdminHandler manages landing page banners (organizer only).
type BannerAdminHandler struct {
	Banners *repository.BannerRepo
}

func NewBannerAdminHandler(r *repository.BannerRepo) *BannerAdminHandler {
	return &BannerAdminHandler{Banners: r}
}

type bannerReq struct {
	Title        string  `json:"title"`
	Subtitle     *string `json:"subtitle"`
	ImageURL     string  `json:"image_url"`
	LinkURL      *string `json:"link_url"`
	Position     string  `json:"position"`
	IsActive     bool    `json:"is_active"`
	DisplayOrder int     `json:"display_order"`
}

func (r *bannerReq) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	r.Position = strings.TrimSpace(r.Position)
	if r.Title == "" {
		return "title required"
	}
	if r.ImageURL == "" {
		return "image_url required"
	}
	if !model.ValidBannerPosition(r.Position) {
		return "unknown position"
	}
	return ""
}

// ListAll GET /v1/manage/banners returns every banner, inactive ones
// included.
func (h *BannerAdminHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	banners, err := h.Banners.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]bannerResp, 0, len(banners))
	for _, b := range banners {
		out = append(out, toBannerResp(b))
	}
	return c.JSON(http.StatusOK, out)
}

// Create POST /v1/manage/banners
func (h *BannerAdminHandler) Create(c echo.Context) error {
	var req bannerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	b := model.PromoBanner{
		Title: req.Title, Subtitle: req.Subtitle, ImageURL: req.ImageURL,
		LinkURL: req.LinkURL, Position: req.Position,
		IsActive: req.IsActive, DisplayOrder: req.DisplayOrder,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Banners.Create(ctx, &b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, toBannerResp(b))
}

// Update PUT /v1/manage/banners/:id
func (h *BannerAdminHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid banner id"})
	}
	var req bannerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	b, err := h.Banners.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrBannerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "banner not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	b.Title = req.Title
	b.Subtitle = req.Subtitle
	b.ImageURL = req.ImageURL
	b.LinkURL = req.LinkURL
	b.Position = req.Position
	b.IsActive = req.IsActive
	b.DisplayOrder = req.DisplayOrder
	if err := h.Banners.Update(ctx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toBannerResp(*b))
}

// Delete DELETE /v1/manage/banners/:id
func (h *BannerAdminHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid banner id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Banners.Delete(ctx, id); err != nil {
		if err == repository.ErrBannerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "banner not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

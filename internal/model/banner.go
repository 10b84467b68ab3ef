package model

import "time"

// Banner positions on the landing page.
const (
	BannerPositionTop    = "top"
	BannerPositionMiddle = "middle"
)

// PromoBanner is promotional content rendered on the landing page.
// Pure content: no invariants beyond position being a known value.
type PromoBanner struct {
	ID           uint64    // promo_banners.id
	Title        string    // promo_banners.title
	Subtitle     *string   // promo_banners.subtitle (nullable)
	ImageURL     string    // promo_banners.image_url
	LinkURL      *string   // promo_banners.link_url (nullable)
	Position     string    // promo_banners.position (top|middle)
	IsActive     bool      // promo_banners.is_active
	DisplayOrder int       // promo_banners.display_order
	CreatedAt    time.Time // promo_banners.created_at
}

// ValidBannerPosition reports whether p is a known banner position.
func ValidBannerPosition(p string) bool {
	return p == BannerPositionTop || p == BannerPositionMiddle
}

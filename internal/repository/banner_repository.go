package repository

import (
	"context"
	"database/sql"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
)

// BannerRepo provides CRUD for promotional banners.  Banners are pure
// content; the only rule is that position must be a known value, which
// handlers validate before calling in.
type BannerRepo struct {
	db *sql.DB
}

// NewBannerRepo returns a BannerRepo bound to the given database.
func NewBannerRepo(db *sql.DB) *BannerRepo { return &BannerRepo{db: db} }

const bannerColumns = `id, title, subtitle, image_url, link_url, position, is_active, display_order, created_at`

func scanBanner(row interface{ Scan(...any) error }) (*model.PromoBanner, error) {
	var b model.PromoBanner
	var subtitle, link sql.NullString
	if err := row.Scan(&b.ID, &b.Title, &subtitle, &b.ImageURL, &link,
		&b.Position, &b.IsActive, &b.DisplayOrder, &b.CreatedAt); err != nil {
		return nil, err
	}
	if subtitle.Valid {
		s := subtitle.String
		b.Subtitle = &s
	}
	if link.Valid {
		l := link.String
		b.LinkURL = &l
	}
	return &b, nil
}

// ListActive returns active banners for a position in display order, the
// exact set the landing page carousel renders.  An empty position
// returns active banners for every position.
func (r *BannerRepo) ListActive(ctx context.Context, position string) ([]model.PromoBanner, error) {
	query := `SELECT ` + bannerColumns + ` FROM promo_banners WHERE is_active = 1`
	args := make([]interface{}, 0, 1)
	if position != "" {
		query += ` AND position = ?`
		args = append(args, position)
	}
	query += ` ORDER BY display_order ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBanners(rows)
}

// ListAll returns every banner, active or not, for the back office.
func (r *BannerRepo) ListAll(ctx context.Context) ([]model.PromoBanner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bannerColumns+` FROM promo_banners ORDER BY position ASC, display_order ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBanners(rows)
}

func collectBanners(rows *sql.Rows) ([]model.PromoBanner, error) {
	banners := make([]model.PromoBanner, 0)
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, err
		}
		banners = append(banners, *b)
	}
	return banners, rows.Err()
}

// GetByID returns a single banner or ErrBannerNotFound.
func (r *BannerRepo) GetByID(ctx context.Context, id uint64) (*model.PromoBanner, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bannerColumns+` FROM promo_banners WHERE id = ?`, id)
	b, err := scanBanner(row)
	if err == sql.ErrNoRows {
		return nil, ErrBannerNotFound
	}
	return b, err
}

// Create inserts a banner and populates the generated ID.
func (r *BannerRepo) Create(ctx context.Context, b *model.PromoBanner) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO promo_banners (title, subtitle, image_url, link_url, position, is_active, display_order)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Title, b.Subtitle, b.ImageURL, b.LinkURL, b.Position, b.IsActive, b.DisplayOrder)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// Update rewrites a banner.
func (r *BannerRepo) Update(ctx context.Context, b *model.PromoBanner) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE promo_banners
            SET title = ?, subtitle = ?, image_url = ?, link_url = ?, position = ?, is_active = ?, display_order = ?
          WHERE id = ?`,
		b.Title, b.Subtitle, b.ImageURL, b.LinkURL, b.Position, b.IsActive, b.DisplayOrder, b.ID)
	return err
}

// Delete removes a banner or returns ErrBannerNotFound.
func (r *BannerRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM promo_banners WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBannerNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
)

// CategoryRepo provides CRUD for event categories.  Deletion is
// RESTRICTed: a category still referenced by events cannot be removed
// and the attempt returns ErrConflict.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo returns a CategoryRepo bound to the given database.
func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	var desc, icon sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &desc, &icon, &c.CreatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		c.Description = &d
	}
	if icon.Valid {
		i := icon.String
		c.Icon = &i
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, slug, description, icon, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cats := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, *c)
	}
	return cats, rows.Err()
}

// GetByID returns a single category or ErrCategoryNotFound.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (*model.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, slug, description, icon, created_at FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrCategoryNotFound
	}
	return c, err
}

// Create inserts a category and populates the generated ID.  Returns
// ErrSlugExists on a duplicate slug.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, slug, description, icon) VALUES (?, ?, ?, ?)`,
		c.Name, c.Slug, c.Description, c.Icon)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSlugExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update rewrites a category.  Returns ErrSlugExists on a duplicate slug
// and ErrCategoryNotFound when the row does not exist.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, slug = ?, description = ?, icon = ? WHERE id = ?`,
		c.Name, c.Slug, c.Description, c.Icon, c.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSlugExists
		}
		return err
	}
	if _, err := res.RowsAffected(); err != nil {
		return err
	}
	return nil
}

// Delete removes a category.  Categories still referenced by events are
// protected: the check and the delete run in one transaction so a
// concurrently created event cannot slip between them.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var refs int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE category_id = ?`, id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

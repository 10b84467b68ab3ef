package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/model"
	"github.com/digitvnewsid-rgb/d-tix-id-your-event-hub/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a user with the buyer role and returns its ID.  The
// insert of the user row and its initial role happen in one transaction.
func (r *UserRepo) Create(ctx context.Context, email, password, fullName string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var name interface{}
	if n := strings.TrimSpace(fullName); n != "" {
		name = n
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name) VALUES (?,?,?)",
		email, hash, name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role) VALUES (?,?)",
		id, model.RoleBuyer); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	var name sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,full_name,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &name, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if name.Valid {
		n := name.String
		u.FullName = &n
	}
	return u, err
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	var name sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,full_name,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &name, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if name.Valid {
		n := name.String
		u.FullName = &n
	}
	return u, err
}

// UpdateProfile changes the user's display name.  A blank name clears
// it.  Email and password changes go through dedicated flows, so this
// touches full_name only.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID uint64, fullName string) error {
	var name interface{}
	if n := strings.TrimSpace(fullName); n != "" {
		name = n
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET full_name=? WHERE id=?", name, userID)
	return err
}

// RolesOf returns the user's role names.  Every user holds at least
// "buyer"; the result is authoritative for permission checks and gets
// baked into the access token at login.
func (r *UserRepo) RolesOf(ctx context.Context, userID uint64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT role FROM user_roles WHERE user_id=? ORDER BY role", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	roles := make([]string, 0, 2)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GrantRole adds a role to a user; granting an already-held role is a
// no-op.
func (r *UserRepo) GrantRole(ctx context.Context, userID uint64, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO user_roles (user_id, role) VALUES (?,?)", userID, role)
	return err
}

// RevokeRole removes a role from a user.  The buyer role cannot be
// revoked: every account keeps the ability to hold tickets.
func (r *UserRepo) RevokeRole(ctx context.Context, userID uint64, role string) error {
	if role == model.RoleBuyer {
		return ErrConflict
	}
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_roles WHERE user_id=? AND role=?", userID, role)
	return err
}

// UserWithRoles pairs an account with its role set for the back office
// user listing.
type UserWithRoles struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// ListWithRoles returns users and their roles, newest account first.
func (r *UserRepo) ListWithRoles(ctx context.Context, limit, offset int) ([]UserWithRoles, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,full_name,is_active,created_at FROM users ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]UserWithRoles, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var u UserWithRoles
		var name sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &name, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		if name.Valid {
			n := name.String
			u.FullName = &n
		}
		u.Roles = []string{}
		index[u.ID] = len(users)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return users, nil
	}
	ids := make([]interface{}, 0, len(users))
	placeholders := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
		placeholders = append(placeholders, "?")
	}
	rrows, err := r.DB.QueryContext(ctx,
		"SELECT user_id, role FROM user_roles WHERE user_id IN ("+strings.Join(placeholders, ",")+") ORDER BY user_id, role",
		ids...)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()
	for rrows.Next() {
		var uid uint64
		var role string
		if err := rrows.Scan(&uid, &role); err != nil {
			return nil, err
		}
		if idx, ok := index[uid]; ok {
			users[idx].Roles = append(users[idx].Roles, role)
		}
	}
	return users, rrows.Err()
}

package model

import "time"

// Role names.  A user may hold several roles at once (user_roles is a
// many-to-many table).  All admin-ness checks in the codebase go through
// the helpers below instead of comparing role strings inline, so the
// policy lives in exactly one place.
const (
	RoleBuyer     = "buyer"
	RoleCreator   = "creator"
	RoleOrganizer = "organizer"
)

// ValidRole reports whether r is a known role name.
func ValidRole(r string) bool {
	return r == RoleBuyer || r == RoleCreator || r == RoleOrganizer
}

// HasRole reports whether roles contains r.
func HasRole(roles []string, r string) bool {
	for _, have := range roles {
		if have == r {
			return true
		}
	}
	return false
}

// CanManageEvents reports whether the role set may create and manage
// events, tiers and check-ins.  Both creators and organizers qualify.
func CanManageEvents(roles []string) bool {
	return HasRole(roles, RoleCreator) || HasRole(roles, RoleOrganizer)
}

// IsAdmin reports whether the role set grants access to the back office
// (categories, banners, user roles, stats, ticket overrides).  Only
// organizers qualify.
func IsAdmin(roles []string) bool {
	return HasRole(roles, RoleOrganizer)
}

// User represents an application user record as stored in the `users`
// table.  Roles live in the separate user_roles table and are loaded by
// the repository on demand.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  FullName     – optional display name.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FullName     *string   // users.full_name (nullable)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user; only the SHA-256 hash of the raw
// token value is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

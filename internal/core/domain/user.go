package domain

import (
	"strings"
	"time"
)

// Role is the coarse permission level of an account.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a wire value into a Role. An empty value yields the
// default role (customer).
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleCustomer:
		return RoleCustomer, true
	case RoleSeller:
		return RoleSeller, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.bit() != 0
}

func (r Role) bit() RoleSet {
	switch r {
	case RoleCustomer:
		return 1 << 0
	case RoleSeller:
		return 1 << 1
	case RoleAdmin:
		return 1 << 2
	default:
		return 0
	}
}

// RoleSet is a closed set of roles allowed through an authorization check.
type RoleSet uint8

// Roles builds a RoleSet from the given roles. Unknown roles are ignored.
func Roles(rs ...Role) RoleSet {
	var s RoleSet
	for _, r := range rs {
		s |= r.bit()
	}
	return s
}

// Allows reports whether r is a member of the set.
func (s RoleSet) Allows(r Role) bool {
	b := r.bit()
	return b != 0 && s&b != 0
}

// User is the persisted account record. PasswordHash and RefreshTokenHash
// never leave the process.
type User struct {
	ID               string    `json:"userId"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             Role      `json:"role"`
	PhoneNumber      string    `json:"phoneNumber,omitempty"`
	RefreshTokenHash string    `json:"-"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// HasSession reports whether a refresh token hash is currently stored.
func (u *User) HasSession() bool {
	return u.RefreshTokenHash != ""
}

// Principal returns the minimal identity attached to authenticated requests.
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Principal is the authenticated identity carried through a request.
type Principal struct {
	UserID string
	Email  string
	Role   Role
	// TokenID and ExpiresAt describe the access token the principal was
	// authenticated with; logout uses them to revoke it.
	TokenID   string
	ExpiresAt time.Time
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

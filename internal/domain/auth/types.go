package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application authorization role. Kept in string form for
// easy persistence and JSON encoding.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleTrader  Role = "trader"
	RoleAnalyst Role = "analyst"
	RoleViewer  Role = "viewer"
)

// roleRank orders roles for minimum-role checks: viewer < analyst < trader <
// manager < admin.
var roleRank = map[Role]int{
	RoleViewer:  0,
	RoleAnalyst: 1,
	RoleTrader:  2,
	RoleManager: 3,
	RoleAdmin:   4,
}

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Satisfies reports whether r meets the minimum role. Admin satisfies every
// check (superuser semantics, by contract rather than accident). Unknown
// roles satisfy nothing.
func (r Role) Satisfies(minimum Role) bool {
	if r == RoleAdmin {
		return true
	}
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	want, ok := roleRank[minimum]
	if !ok {
		return false
	}
	return have >= want
}

// Roles lists all valid roles, most privileged first.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleTrader, RoleAnalyst, RoleViewer}
}

// Session is the server-side record for an authenticated user. ID is an
// opaque identifier delivered to the browser as a cookie; no other session
// state lives client-side.
//
// Role is a snapshot taken at login and is not re-read from the credential
// store until the next login. A role change therefore takes effect on
// re-login; this staleness is an accepted trade-off.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Role       Role      `json:"role"`
	CSRFToken  string    `json:"csrf_token"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Identity is the authenticated principal returned by an external identity
// provider. Adapters map provider-specific claims into this shape; the local
// password flow builds it from the credential store instead.
type Identity struct {
	Username string
	Email    string
	Groups   []string
}

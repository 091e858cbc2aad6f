package model

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/enerdesk/backoffice/internal/domain/auth"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

const (
	maxUsernameLen   = 64
	minPasswordLen   = 8
	maxDepartmentLen = 100
)

var usernameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// UserStatus is the lifecycle status of a user account. Only active users can
// authenticate.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// Valid reports whether s is a recognized user status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserInactive, UserSuspended:
		return true
	}
	return false
}

// User is an identity record in the credential store. PasswordHash is a
// bcrypt hash and never leaves the server.
type User struct {
	ID           string     `json:"id"         db:"id"`
	Username     string     `json:"username"   db:"username"`
	PasswordHash string     `json:"-"          db:"password_hash"`
	Role         auth.Role  `json:"role"       db:"role"`
	Status       UserStatus `json:"status"     db:"status"`
	Department   string     `json:"department" db:"department"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateUserRequest contains fields to create a new user.
type CreateUserRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// Validate checks required fields and formats.
func (r *CreateUserRequest) Validate() error {
	username := strings.ToLower(strings.TrimSpace(r.Username))
	if username == "" {
		return apperrors.ValidationField("username", "Username is required.")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return apperrors.ValidationField("username", "Username cannot exceed 64 characters.")
	}
	if !usernameRe.MatchString(username) {
		return apperrors.ValidationField("username",
			"Username must start with a letter or digit and contain only lowercase letters, digits, dots, underscores, or hyphens.")
	}
	if err := ValidatePassword(r.Password); err != nil {
		return err
	}
	if !auth.Role(r.Role).Valid() {
		return apperrors.ValidationField("role", "Role must be one of: admin, manager, trader, analyst, viewer.")
	}
	if utf8.RuneCountInString(r.Department) > maxDepartmentLen {
		return apperrors.ValidationField("department", "Department cannot exceed 100 characters.")
	}
	return nil
}

// NormalizeUsername returns the canonical form of a username: trimmed and
// lower-cased.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizedUsername returns the username in canonical form.
func (r *CreateUserRequest) NormalizedUsername() string {
	return NormalizeUsername(r.Username)
}

// UpdateUserRequest applies a partial update to a user. Nil fields are left
// unchanged. Password changes go through the dedicated reset operation.
type UpdateUserRequest struct {
	ID         string  `json:"id"`
	Role       *string `json:"role,omitempty"`
	Status     *string `json:"status,omitempty"`
	Department *string `json:"department,omitempty"`
}

// Validate checks that the update targets a record and all provided fields
// are well-formed.
func (r *UpdateUserRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return apperrors.ValidationField("id", "User id is required.")
	}
	if r.Role == nil && r.Status == nil && r.Department == nil {
		return apperrors.Validation("At least one field must be updated.")
	}
	if r.Role != nil && !auth.Role(*r.Role).Valid() {
		return apperrors.ValidationField("role", "Role must be one of: admin, manager, trader, analyst, viewer.")
	}
	if r.Status != nil && !UserStatus(*r.Status).Valid() {
		return apperrors.ValidationField("status", "Status must be one of: active, inactive, suspended.")
	}
	if r.Department != nil && utf8.RuneCountInString(*r.Department) > maxDepartmentLen {
		return apperrors.ValidationField("department", "Department cannot exceed 100 characters.")
	}
	return nil
}

// ValidatePassword enforces the minimum password policy.
func ValidatePassword(password string) error {
	if password == "" {
		return apperrors.ValidationField("password", "Password is required.")
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return apperrors.ValidationField("password", "Password must be at least 8 characters.")
	}
	return nil
}

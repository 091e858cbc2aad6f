package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/enerdesk/backoffice/internal/data"
	"github.com/enerdesk/backoffice/internal/domain/model"
	"github.com/enerdesk/backoffice/internal/domain/resource"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// UserAPI is the slice of the user service the handlers need.
type UserAPI interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, opts data.UserListOptions) ([]*model.User, int, error)
	Update(ctx context.Context, req *model.UpdateUserRequest) (*model.User, error)
	ResetPassword(ctx context.Context, id, password string) error
}

// UserHandlers serves the admin-only account management endpoints. The router
// mounts them behind RequireRole(admin).
type UserHandlers struct {
	Svc UserAPI
}

// List returns a page of accounts, filterable by role, status, and a search
// term over username and department.
// GET /api/admin/users?page=&limit=&search=&role=&status=.
func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := resource.ParsePageQuery(r.URL.Query())
	opts := data.UserListOptions{
		Search: q.Search,
		Role:   strings.TrimSpace(r.URL.Query().Get("role")),
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Limit:  q.Limit,
		Offset: q.Offset(),
	}

	users, total, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteList(w, users, resource.NewPagination(q, total))
}

// Get returns one account.
// GET /api/admin/users/{id}.
func (h *UserHandlers) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, user)
}

// Create provisions a new account.
// POST /api/admin/users.
func (h *UserHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, user)
}

// Update applies the provided role, status, or department changes. The last
// active admin cannot be demoted or deactivated.
// PUT /api/admin/users/{id}.
func (h *UserHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.ID = r.PathValue("id")

	user, err := h.Svc.Update(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, user)
}

// resetPasswordRequest is the body for the password reset endpoint.
type resetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetPassword replaces an account's password.
// POST /api/admin/users/{id}/reset-password.
func (h *UserHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Password == "" {
		WriteAppError(w, apperrors.ValidationField("password", "Password is required."))
		return
	}

	if err := h.Svc.ResetPassword(r.Context(), r.PathValue("id"), req.Password); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Password updated.")
}

package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enerdesk/backoffice/internal/data"
	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	"github.com/enerdesk/backoffice/internal/domain/model"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// stubUsers replays canned results and records the requests it sees.
type stubUsers struct {
	lastList      data.UserListOptions
	lastCreate    *model.CreateUserRequest
	lastUpdate    *model.UpdateUserRequest
	lastResetID   string
	lastResetPass string

	user  *model.User
	users []*model.User
	total int
	err   error
}

func (s *stubUsers) Create(_ context.Context, req *model.CreateUserRequest) (*model.User, error) {
	s.lastCreate = req
	return s.user, s.err
}

func (s *stubUsers) Get(context.Context, string) (*model.User, error) { return s.user, s.err }

func (s *stubUsers) List(_ context.Context, opts data.UserListOptions) ([]*model.User, int, error) {
	s.lastList = opts
	return s.users, s.total, s.err
}

func (s *stubUsers) Update(_ context.Context, req *model.UpdateUserRequest) (*model.User, error) {
	s.lastUpdate = req
	return s.user, s.err
}

func (s *stubUsers) ResetPassword(_ context.Context, id, password string) error {
	s.lastResetID, s.lastResetPass = id, password
	return s.err
}

func userMux(h *UserHandlers) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/users", h.List)
	mux.HandleFunc("POST /api/admin/users", h.Create)
	mux.HandleFunc("GET /api/admin/users/{id}", h.Get)
	mux.HandleFunc("PUT /api/admin/users/{id}", h.Update)
	mux.HandleFunc("POST /api/admin/users/{id}/reset-password", h.ResetPassword)
	return mux
}

func demoUser() *model.User {
	return &model.User{
		ID:        "u1",
		Username:  "h.lindqvist",
		Role:      domainauth.RoleTrader,
		Status:    model.UserActive,
		CreatedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
	}
}

func TestUserListForwardsFiltersAndClampsPaging(t *testing.T) {
	t.Parallel()

	svc := &stubUsers{users: []*model.User{demoUser()}, total: 1}
	h := &UserHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users?page=0&limit=999&search=lind&role=trader&status=active", nil)
	rec := httptest.NewRecorder()
	userMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lind", svc.lastList.Search)
	assert.Equal(t, "trader", svc.lastList.Role)
	assert.Equal(t, "active", svc.lastList.Status)
	assert.Equal(t, 100, svc.lastList.Limit)
	assert.Equal(t, 0, svc.lastList.Offset)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.Page)
	assert.Equal(t, 1, env.Pagination.Total)
}

func TestUserListNeverLeaksPasswordHash(t *testing.T) {
	t.Parallel()

	user := demoUser()
	user.PasswordHash = "$2a$10$secret"
	svc := &stubUsers{users: []*model.User{user}, total: 1}
	h := &UserHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	rec := httptest.NewRecorder()
	userMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

func TestUserCreateReturns201(t *testing.T) {
	t.Parallel()

	svc := &stubUsers{user: demoUser()}
	h := &UserHandlers{Svc: svc}

	body := `{"username":"h.lindqvist","password":"trade-floor-9","role":"trader","department":"Power"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	userMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.lastCreate)
	assert.Equal(t, "h.lindqvist", svc.lastCreate.Username)
	assert.Equal(t, "Power", svc.lastCreate.Department)
}

func TestUserUpdateTakesIDFromPath(t *testing.T) {
	t.Parallel()

	svc := &stubUsers{user: demoUser()}
	h := &UserHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/u1", strings.NewReader(`{"role":"manager"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	userMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastUpdate)
	assert.Equal(t, "u1", svc.lastUpdate.ID)
	require.NotNil(t, svc.lastUpdate.Role)
	assert.Equal(t, "manager", *svc.lastUpdate.Role)
}

func TestUserUpdateLastAdminGuardSurfacesAsConflict(t *testing.T) {
	t.Parallel()

	svc := &stubUsers{err: apperrors.BusinessState("Cannot remove the last active admin.")}
	h := &UserHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/u1", strings.NewReader(`{"status":"suspended"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	userMux(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "business_state", env.Error)
	assert.Equal(t, "Cannot remove the last active admin.", env.Message)
}

func TestUserResetPassword(t *testing.T) {
	t.Parallel()

	svc := &stubUsers{}
	h := &UserHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/users/u1/reset-password", strings.NewReader(`{"password":"new-secret-42"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	userMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", svc.lastResetID)
	assert.Equal(t, "new-secret-42", svc.lastResetPass)
}

func TestUserResetPasswordRequiresPassword(t *testing.T) {
	t.Parallel()

	h := &UserHandlers{Svc: &stubUsers{}}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/users/u1/reset-password", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	userMux(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password", decodeEnvelope(t, rec).Field)
}

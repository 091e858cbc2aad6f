package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	"github.com/enerdesk/backoffice/internal/domain/resource"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// stubResources records the calls it receives and replays canned results.
type stubResources struct {
	lastSchema *resource.Schema
	lastQuery  resource.ListQuery
	lastInput  map[string]string
	lastID     string

	rows       []map[string]any
	row        map[string]any
	pagination resource.Pagination
	err        error
}

func (s *stubResources) List(_ context.Context, _ domainauth.Session, schema *resource.Schema, q resource.ListQuery) ([]map[string]any, resource.Pagination, error) {
	s.lastSchema, s.lastQuery = schema, q
	return s.rows, s.pagination, s.err
}

func (s *stubResources) Get(_ context.Context, _ domainauth.Session, schema *resource.Schema, id string) (map[string]any, error) {
	s.lastSchema, s.lastID = schema, id
	return s.row, s.err
}

func (s *stubResources) Create(_ context.Context, _ domainauth.Session, schema *resource.Schema, input map[string]string) (map[string]any, error) {
	s.lastSchema, s.lastInput = schema, input
	return s.row, s.err
}

func (s *stubResources) Update(_ context.Context, _ domainauth.Session, schema *resource.Schema, id string, input map[string]string) (map[string]any, error) {
	s.lastSchema, s.lastID, s.lastInput = schema, id, input
	return s.row, s.err
}

func (s *stubResources) Delete(_ context.Context, _ domainauth.Session, schema *resource.Schema, id string) error {
	s.lastSchema, s.lastID = schema, id
	return s.err
}

// resourceMux mounts the handlers on a mux so {area} and {resource} path
// values resolve like in the real router.
func resourceMux(h *ResourceHandlers) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/{area}/{resource}", h.List)
	mux.HandleFunc("POST /api/{area}/{resource}", h.Create)
	mux.HandleFunc("PUT /api/{area}/{resource}", h.Update)
	mux.HandleFunc("DELETE /api/{area}/{resource}", h.Delete)
	mux.HandleFunc("GET /api/{area}/{resource}/{id}", h.Get)
	mux.HandleFunc("PUT /api/{area}/{resource}/{id}", h.Update)
	mux.HandleFunc("DELETE /api/{area}/{resource}/{id}", h.Delete)
	return mux
}

func newResourceHandlers(t *testing.T) (*ResourceHandlers, *stubResources) {
	t.Helper()
	svc := &stubResources{}
	return &ResourceHandlers{Svc: svc, Registry: resource.NewRegistry(resource.DefaultSchemas())}, svc
}

func TestResourceListParsesQueryAndWritesEnvelope(t *testing.T) {
	t.Parallel()

	h, svc := newResourceHandlers(t)
	svc.rows = []map[string]any{{"id": "b1", "name": "Marex"}}
	svc.pagination = resource.Pagination{Page: 2, Limit: 10, Total: 41, TotalPages: 5}

	req := httptest.NewRequest(http.MethodGet, "/api/masterdata/brokers?page=2&limit=10&search=mar", nil)
	rec := httptest.NewRecorder()
	resourceMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastSchema)
	assert.Equal(t, "brokers", svc.lastSchema.Name)
	assert.Equal(t, 2, svc.lastQuery.Page)
	assert.Equal(t, 10, svc.lastQuery.Limit)
	assert.Equal(t, "mar", svc.lastQuery.Search)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 41, env.Pagination.Total)
	assert.Equal(t, 5, env.Pagination.TotalPages)
}

func TestResourceUnknownSchemaIs404(t *testing.T) {
	t.Parallel()

	h, _ := newResourceHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/masterdata/unicorns", nil)
	rec := httptest.NewRecorder()
	resourceMux(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeEnvelope(t, rec).Error)
}

func TestResourceCreateCoercesScalarsAndDropsCSRFField(t *testing.T) {
	t.Parallel()

	h, svc := newResourceHandlers(t)
	svc.row = map[string]any{"id": "b1", "name": "Marex"}

	body := `{"name":"Marex","commission_rate":0.25,"enabled":true,"note":null,"csrf_token":"tok"}`
	req := httptest.NewRequest(http.MethodPost, "/api/masterdata/brokers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	resourceMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, map[string]string{
		"name":            "Marex",
		"commission_rate": "0.25",
		"enabled":         "true",
		"note":            "",
	}, svc.lastInput)
}

func TestResourceCreateAcceptsFormEncodedBody(t *testing.T) {
	t.Parallel()

	h, svc := newResourceHandlers(t)
	svc.row = map[string]any{"id": "b1", "name": "Marex"}

	form := url.Values{
		"name":            {"Marex"},
		"commission_rate": {"0.25"},
		"csrf_token":      {"tok"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/masterdata/brokers", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	resourceMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, map[string]string{
		"name":            "Marex",
		"commission_rate": "0.25",
	}, svc.lastInput)
}

func TestResourceCreateWithIDBecomesUpdate(t *testing.T) {
	t.Parallel()

	h, svc := newResourceHandlers(t)
	svc.row = map[string]any{"id": "b1", "name": "Marex Group"}

	body := `{"id":"b1","name":"Marex Group"}`
	req := httptest.NewRequest(http.MethodPost, "/api/masterdata/brokers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	resourceMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b1", svc.lastID)
	assert.Equal(t, map[string]string{"name": "Marex Group"}, svc.lastInput)
}

func TestResourceCreateRejectsNestedValues(t *testing.T) {
	t.Parallel()

	h, _ := newResourceHandlers(t)

	body := `{"name":{"nested":"no"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/masterdata/brokers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	resourceMux(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "validation", env.Error)
	assert.Equal(t, "name", env.Field)
}

func TestResourceUpdatePassesIDAndInput(t *testing.T) {
	t.Parallel()

	h, svc := newResourceHandlers(t)
	svc.row = map[string]any{"id": "t1", "status": "confirmed"}

	req := httptest.NewRequest(http.MethodPut, "/api/trading/trades/t1", strings.NewReader(`{"status":"confirmed"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	resourceMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", svc.lastID)
	assert.Equal(t, map[string]string{"status": "confirmed"}, svc.lastInput)
}

func TestResourceUpdateTakesIDFromBody(t *testing.T) {
	t.Parallel()

	h, svc := newResourceHandlers(t)
	svc.row = map[string]any{"id": "t1", "status": "confirmed"}

	body := `{"id":"t1","status":"confirmed"}`
	req := httptest.NewRequest(http.MethodPut, "/api/trading/trades", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	resourceMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", svc.lastID)
	assert.Equal(t, map[string]string{"status": "confirmed"}, svc.lastInput)
}

func TestResourceDeleteTakesIDFromBody(t *testing.T) {
	t.Parallel()

	h, svc := newResourceHandlers(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/masterdata/brokers", strings.NewReader(`{"id":"b1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	resourceMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "b1", svc.lastID)
	assert.Equal(t, "Broker deleted.", decodeEnvelope(t, rec).Message)
}

func TestResourceDeleteWithoutIDIsValidationError(t *testing.T) {
	t.Parallel()

	h, _ := newResourceHandlers(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/masterdata/brokers", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	resourceMux(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "validation", env.Error)
	assert.Equal(t, "id", env.Field)
}

func TestResourceDeleteWritesMessage(t *testing.T) {
	t.Parallel()

	h, svc := newResourceHandlers(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/masterdata/brokers/b1", nil)
	rec := httptest.NewRecorder()
	resourceMux(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b1", svc.lastID)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Broker deleted.", env.Message)
}

func TestResourceServiceErrorsKeepTheirTaxonomy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.Duplicate("name", "Broker name already exists."), http.StatusConflict, "duplicate"},
		{apperrors.Referencedf("Broker has associated trades."), http.StatusConflict, "referenced"},
		{apperrors.BusinessState("A executed trade cannot be modified."), http.StatusConflict, "business_state"},
		{apperrors.NotFound("Trade not found."), http.StatusNotFound, "not_found"},
		{apperrors.InsufficientRole(), http.StatusForbidden, "insufficient_role"},
	}

	for _, tc := range cases {
		h, svc := newResourceHandlers(t)
		svc.err = tc.err

		req := httptest.NewRequest(http.MethodGet, "/api/trading/trades/t1", nil)
		rec := httptest.NewRecorder()
		resourceMux(h).ServeHTTP(rec, req)

		assert.Equal(t, tc.status, rec.Code, tc.code)
		assert.Equal(t, tc.code, decodeEnvelope(t, rec).Error)
	}
}

package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	"github.com/enerdesk/backoffice/internal/domain/resource"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// maxFormMemory bounds how much of a multipart body is held in memory while
// parsing.
const maxFormMemory = 1 << 20

// ResourceAPI is the slice of the resource service the handlers need.
type ResourceAPI interface {
	List(ctx context.Context, sess domainauth.Session, schema *resource.Schema, q resource.ListQuery) ([]map[string]any, resource.Pagination, error)
	Get(ctx context.Context, sess domainauth.Session, schema *resource.Schema, id string) (map[string]any, error)
	Create(ctx context.Context, sess domainauth.Session, schema *resource.Schema, input map[string]string) (map[string]any, error)
	Update(ctx context.Context, sess domainauth.Session, schema *resource.Schema, id string, input map[string]string) (map[string]any, error)
	Delete(ctx context.Context, sess domainauth.Session, schema *resource.Schema, id string) error
}

// ResourceHandlers serves every registered resource through one set of
// schema-driven endpoints. The {area} and {resource} path segments select the
// schema; unknown combinations are a 404.
type ResourceHandlers struct {
	Svc      ResourceAPI
	Registry *resource.Registry
}

// schemaFromPath resolves the schema addressed by the request path.
func (h *ResourceHandlers) schemaFromPath(r *http.Request) (*resource.Schema, error) {
	s := h.Registry.Lookup(r.PathValue("area"), r.PathValue("resource"))
	if s == nil {
		return nil, apperrors.NotFound("Unknown resource.")
	}
	return s, nil
}

// List returns a page of rows.
// GET /api/{area}/{resource}?page=&limit=&search=&<equals-filters>.
func (h *ResourceHandlers) List(w http.ResponseWriter, r *http.Request) {
	s, err := h.schemaFromPath(r)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	sess, _ := SessionFromContext(r.Context())

	q := resource.ParseListQuery(s, r.URL.Query())
	rows, pagination, err := h.Svc.List(r.Context(), sess, s, q)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteList(w, rows, pagination)
}

// Get returns a single row by ID.
// GET /api/{area}/{resource}/{id}.
func (h *ResourceHandlers) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.schemaFromPath(r)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	sess, _ := SessionFromContext(r.Context())

	row, err := h.Svc.Get(r.Context(), sess, s, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, row)
}

// Create validates the payload against the schema and inserts a row. Form
// posts and JSON are both accepted, and a payload that carries an id is
// treated as an update of that row so forms can reuse the create endpoint.
// POST /api/{area}/{resource}.
func (h *ResourceHandlers) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.schemaFromPath(r)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	sess, _ := SessionFromContext(r.Context())

	input, ok := decodeResourceInput(w, r)
	if !ok {
		return
	}
	if id := popID(input); id != "" {
		row, err := h.Svc.Update(r.Context(), sess, s, id, input)
		if err != nil {
			WriteAppError(w, err)
			return
		}
		WriteData(w, http.StatusOK, row)
		return
	}
	row, err := h.Svc.Create(r.Context(), sess, s, input)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusCreated, row)
}

// Update applies the provided fields to an existing row. The target may be
// addressed by the path or by an id field in the body.
// PUT /api/{area}/{resource}/{id} and PUT /api/{area}/{resource}.
func (h *ResourceHandlers) Update(w http.ResponseWriter, r *http.Request) {
	s, err := h.schemaFromPath(r)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	sess, _ := SessionFromContext(r.Context())

	input, ok := decodeResourceInput(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if bodyID := popID(input); id == "" {
		id = bodyID
	}
	if id == "" {
		WriteAppError(w, apperrors.ValidationField("id", "Id is required."))
		return
	}
	row, err := h.Svc.Update(r.Context(), sess, s, id, input)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteData(w, http.StatusOK, row)
}

// Delete removes a row, subject to the schema's dependent and lifecycle
// guards. The target may be addressed by the path or by an id field in the
// body.
// DELETE /api/{area}/{resource}/{id} and DELETE /api/{area}/{resource}.
func (h *ResourceHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	s, err := h.schemaFromPath(r)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	sess, _ := SessionFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		input, ok := decodeResourceInput(w, r)
		if !ok {
			return
		}
		id = popID(input)
	}
	if id == "" {
		WriteAppError(w, apperrors.ValidationField("id", "Id is required."))
		return
	}
	if err := h.Svc.Delete(r.Context(), sess, s, id); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteMessage(w, http.StatusOK, fmt.Sprintf("%s deleted.", titleCase(s.Singular)))
}

// decodeResourceInput reads the request payload as field name to value.
// Form-encoded and multipart bodies come through as-is; JSON scalars are
// coerced to their string form since schema validation parses typed fields
// from strings, and nested JSON values are rejected. The csrf_token carrier
// field is dropped either way.
func decodeResourceInput(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"),
		strings.HasPrefix(contentType, "multipart/form-data"):
		return decodeFormInput(w, r)
	default:
		return decodeJSONInput(w, r)
	}
}

func decodeFormInput(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		WriteAppError(w, apperrors.Validation("Malformed form submission."))
		return nil, false
	}

	input := make(map[string]string, len(r.PostForm))
	for name := range r.PostForm {
		if name == CSRFFieldName {
			continue
		}
		input[name] = r.PostForm.Get(name)
	}
	return input, true
}

func decodeJSONInput(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	var raw map[string]any
	if !DecodeJSON(w, r, &raw) {
		return nil, false
	}

	input := make(map[string]string, len(raw))
	for name, value := range raw {
		if name == CSRFFieldName {
			continue
		}
		switch v := value.(type) {
		case string:
			input[name] = v
		case float64:
			input[name] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			input[name] = strconv.FormatBool(v)
		case nil:
			input[name] = ""
		default:
			WriteAppError(w, apperrors.ValidationField(name, fmt.Sprintf("Field %s must be a scalar value.", name)))
			return nil, false
		}
	}
	return input, true
}

// popID removes the id carrier field from a decoded payload and returns it.
// The id addresses the row; it is never an updatable field.
func popID(input map[string]string) string {
	id := input["id"]
	delete(input, "id")
	return id
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

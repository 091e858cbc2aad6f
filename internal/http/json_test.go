package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enerdesk/backoffice/internal/domain/resource"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

func TestWriteAppErrorStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.InvalidCredentials(), http.StatusUnauthorized, "invalid_credentials"},
		{apperrors.AccountLocked(), http.StatusLocked, "account_locked"},
		{apperrors.CSRFRejected(), http.StatusForbidden, "csrf_rejected"},
		{apperrors.AuthRequired(), http.StatusUnauthorized, "authentication_required"},
		{apperrors.InsufficientRole(), http.StatusForbidden, "insufficient_role"},
		{apperrors.Validation("Name is required."), http.StatusBadRequest, "validation"},
		{apperrors.Duplicate("name", "Broker name already exists."), http.StatusConflict, "duplicate"},
		{apperrors.Referencedf("Broker has associated trades."), http.StatusConflict, "referenced"},
		{apperrors.NotFound("Trade not found."), http.StatusNotFound, "not_found"},
		{apperrors.BusinessState("A executed trade cannot be deleted."), http.StatusConflict, "business_state"},
		{apperrors.Storage(errors.New("pq: relation missing")), http.StatusInternalServerError, "storage"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteAppError(rec, tc.err)

		assert.Equal(t, tc.status, rec.Code, tc.code)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, tc.code, env.Error)
	}
}

func TestWriteAppErrorHidesRawDatabaseText(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteAppError(rec, errors.New(`pq: duplicate key value violates unique constraint "brokers_name_key"`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "storage", env.Error)
	assert.NotContains(t, env.Message, "pq:")
	assert.NotContains(t, rec.Body.String(), "brokers_name_key")
}

func TestWriteAppErrorCarriesField(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteAppError(rec, apperrors.ValidationField("contact_email", "Contact email must be a valid address."))

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "contact_email", env.Field)
	assert.Equal(t, "Contact email must be a valid address.", env.Message)
}

func TestWriteListEnvelopeShape(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteList(rec, []map[string]any{{"id": "b1"}}, resource.Pagination{Page: 1, Limit: 25, Total: 1, TotalPages: 1})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"success":true,"data":[{"id":"b1"}],"pagination":{"page":1,"limit":25,"total":1,"total_pages":1}}`,
		rec.Body.String())
}

func TestDecodeJSONRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	var dst map[string]any
	ok := DecodeJSON(rec, req, &dst)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decodeEnvelope(t, rec).Error)
}

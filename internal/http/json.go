package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/enerdesk/backoffice/internal/domain/resource"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// Envelope is the uniform response body. Success responses carry Data (and
// Pagination for lists); failures carry Message plus the error code.
type Envelope struct {
	Success    bool                 `json:"success"`
	Data       any                  `json:"data,omitempty"`
	Pagination *resource.Pagination `json:"pagination,omitempty"`
	Message    string               `json:"message,omitempty"`
	Error      string               `json:"error,omitempty"`
	Field      string               `json:"field,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code. The body
// is buffered first so an encoding failure never produces a half-written
// response.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Client disconnects surface here; nothing sensible left to do.
		return
	}
}

// WriteData writes a success envelope carrying data.
func WriteData(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, Envelope{Success: true, Data: data})
}

// WriteList writes a success envelope carrying a page of data plus its
// pagination metadata.
func WriteList(w http.ResponseWriter, data any, p resource.Pagination) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

// WriteMessage writes a success envelope with only a message, used by
// operations with no payload such as delete and logout.
func WriteMessage(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, Envelope{Success: true, Message: message})
}

// WriteAppError maps an application error onto the envelope and an HTTP
// status. Non-AppError values (including raw database errors that slipped
// through) are reported as an opaque storage failure so driver text never
// reaches a client.
func WriteAppError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	env := Envelope{Success: false, Error: string(code), Message: messageFor(err, code)}
	if appErr := apperrors.AsAppError(err); appErr != nil {
		env.Field = appErr.Field
	}
	WriteJSON(w, statusFor(code), env)
}

func messageFor(err error, code apperrors.ErrorCode) string {
	if appErr := apperrors.AsAppError(err); appErr != nil {
		return appErr.Message
	}
	if code == apperrors.ErrCodeStorage {
		return "An internal error occurred. Please try again later."
	}
	return err.Error()
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidCredentials, apperrors.ErrCodeAuthRequired:
		return http.StatusUnauthorized
	case apperrors.ErrCodeAccountLocked:
		return http.StatusLocked
	case apperrors.ErrCodeCSRFRejected, apperrors.ErrCodeInsufficientRole:
		return http.StatusForbidden
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeDuplicate, apperrors.ErrCodeReferenced, apperrors.ErrCodeBusinessState:
		return http.StatusConflict
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into dst and writes a validation error
// on malformed input. Returns false when a response has already been written.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		WriteAppError(w, apperrors.Validation("Request body must be valid JSON."))
		return false
	}
	return true
}

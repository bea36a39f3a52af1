package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sapphiretrails/backoffice/internal/domain"
	"github.com/sapphiretrails/backoffice/pkg/logger"
)

// ErrorResponse represents a structured JSON error response
type ErrorResponse struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// WriteError writes a structured JSON error response
func WriteError(w http.ResponseWriter, statusCode int, message string, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Message: message, Code: code})
}

// Common error codes
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeValidation     = "VALIDATION_FAILED"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeDuplicate      = "DUPLICATE"
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeExpiredToken   = "EXPIRED_TOKEN"
	CodeInvalidToken   = "INVALID_TOKEN"
	CodeBadCredentials = "INVALID_CREDENTIALS"
	CodeTooLarge       = "PAYLOAD_TOO_LARGE"
)

// Convenience functions for common errors
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}

func Unprocessable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnprocessableEntity, message, CodeDuplicate)
}

// FromError maps a service error onto the envelope. Unknown errors are
// logged and reported as 500 without their text.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: verr.Error(),
			Code:    CodeValidation,
			Fields:  verr.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, "not found")
	case errors.Is(err, domain.ErrDuplicateSlug):
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Message: domain.ErrDuplicateSlug.Error(),
			Code:    CodeDuplicate,
			Fields:  map[string]string{"id": "already taken"},
		})
	case errors.Is(err, domain.ErrDuplicateLocation):
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Message: domain.ErrDuplicateLocation.Error(),
			Code:    CodeDuplicate,
			Fields:  map[string]string{"slug": "already taken"},
		})
	case errors.Is(err, domain.ErrDuplicateUsername):
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Message: domain.ErrDuplicateUsername.Error(),
			Code:    CodeDuplicate,
			Fields:  map[string]string{"username": "already taken"},
		})
	case errors.Is(err, domain.ErrDuplicateEmail):
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Message: domain.ErrDuplicateEmail.Error(),
			Code:    CodeDuplicate,
			Fields:  map[string]string{"email": "already taken"},
		})
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid username or password", CodeBadCredentials)
	case errors.Is(err, domain.ErrForbidden):
		Forbidden(w, "insufficient permissions")
	default:
		logger.ErrorContext(r.Context(), "Request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		InternalError(w, "internal server error")
	}
}

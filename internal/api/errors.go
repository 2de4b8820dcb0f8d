package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oriontek/customer-core/internal/auth"
	"github.com/oriontek/customer-core/internal/customer"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeInternal     = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeConflict writes a 409 error response.
func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps a service-layer error to its HTTP response.
// Sentinel errors get their specific status; anything unrecognised is logged
// by the caller and reported as a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeUnauthorized(w, "invalid credentials")
	case errors.Is(err, auth.ErrAccountInactive):
		writeForbidden(w, "account is deactivated")
	case errors.Is(err, auth.ErrTokenExpired):
		writeUnauthorized(w, "token expired")
	case errors.Is(err, auth.ErrTokenSignature), errors.Is(err, auth.ErrTokenMalformed):
		writeUnauthorized(w, "invalid token")
	case errors.Is(err, auth.ErrForbidden):
		writeForbidden(w, "insufficient permissions")
	case errors.Is(err, auth.ErrSelfDeactivation):
		writeForbidden(w, "cannot deactivate your own account")
	case errors.Is(err, auth.ErrRoleNotAssignable):
		writeBadRequest(w, "role cannot be assigned")
	case errors.Is(err, auth.ErrUserNotFound):
		writeNotFound(w, "user not found")
	case errors.Is(err, customer.ErrCustomerNotFound):
		writeNotFound(w, "customer not found")
	case errors.Is(err, auth.ErrEmailExists), errors.Is(err, customer.ErrEmailExists):
		writeConflict(w, "email already registered")
	case errors.Is(err, customer.ErrDocumentExists):
		writeConflict(w, "document number already registered")
	case errors.Is(err, customer.ErrInvalidAddressType), errors.Is(err, auth.ErrInvalidInput):
		writeBadRequest(w, err.Error())
	default:
		s.logger.Error(operation+" failed", "error", err)
		writeInternalError(w, "internal server error")
	}
}

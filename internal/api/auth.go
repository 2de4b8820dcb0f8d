package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/oriontek/customer-core/internal/auth"
)

// loginRequest is the POST /auth/login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the successful login payload.
type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int64      `json:"expires_in"`
	User        *auth.User `json:"user"`
}

// handleLogin authenticates an email/password pair and issues a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := s.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err, "login")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(result.ExpiresAt).Seconds()),
		User:        result.User,
	})
}

// handleValidate reports on the token presented in the Authorization header.
// It lives on the public prefix so clients can check token freshness without
// tripping the authenticated route group.
//
// Every failure collapses into one 401 class. The caller is unauthenticated,
// so the response must not distinguish a bad signature from a deactivated or
// deleted subject — a stale token is simply invalid.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		writeUnauthorized(w, "missing bearer token")
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

	principal, err := s.auth.Validate(r.Context(), token)
	if err != nil {
		writeUnauthorized(w, "invalid or expired token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":     true,
		"principal": principal,
	})
}

// handleProfile returns the authenticated account's own profile.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	user, err := s.auth.Profile(r.Context(), principal)
	if err != nil {
		s.writeServiceError(w, err, "profile lookup")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oriontek/customer-core/internal/auth"
)

// handleListUsers returns staff accounts, optionally filtered by a search term.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	users, err := s.accounts.ListUsers(r.Context(), principal, r.URL.Query().Get("search"))
	if err != nil {
		s.writeServiceError(w, err, "user listing")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"total": len(users),
	})
}

// handleCreateUser creates a new staff account.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var in auth.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	user, err := s.accounts.CreateUser(r.Context(), principal, in)
	if err != nil {
		s.writeServiceError(w, err, "user creation")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// handleUserStats returns account counts grouped by role.
func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	stats, err := s.accounts.Stats(r.Context(), principal)
	if err != nil {
		s.writeServiceError(w, err, "user stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleGetUser returns one staff account by ID.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	user, err := s.accounts.GetUser(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, err, "user lookup")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// handleUpdateUser modifies a staff account's profile fields.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var in auth.UpdateUserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	user, err := s.accounts.UpdateUser(r.Context(), principal, chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeServiceError(w, err, "user update")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// changePasswordRequest is the PUT /admin/users/{id}/password payload.
type changePasswordRequest struct {
	Password string `json:"password"`
}

// handleChangePassword resets a staff account's password.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := s.accounts.ChangePassword(r.Context(), principal, chi.URLParam(r, "id"), req.Password); err != nil {
		s.writeServiceError(w, err, "password change")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// handleActivateUser reactivates a staff account.
func (s *Server) handleActivateUser(w http.ResponseWriter, r *http.Request) {
	s.setUserActive(w, r, true)
}

// handleDeactivateUser deactivates a staff account.
func (s *Server) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	s.setUserActive(w, r, false)
}

func (s *Server) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	user, err := s.accounts.SetUserActive(r.Context(), principal, chi.URLParam(r, "id"), active)
	if err != nil {
		operation := "user deactivation"
		if active {
			operation = "user activation"
		}
		s.writeServiceError(w, err, operation)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

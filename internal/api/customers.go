package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oriontek/customer-core/internal/auth"
	"github.com/oriontek/customer-core/internal/customer"
)

// listOptionsFromQuery parses the shared listing query parameters.
// Unparseable numbers fall back to the service defaults.
func listOptionsFromQuery(r *http.Request) customer.ListOptions {
	q := r.URL.Query()
	opts := customer.ListOptions{
		Search:     q.Get("search"),
		ActiveOnly: q.Get("active_only") == "true",
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		opts.Offset = offset
	}
	return opts
}

// handleListCustomers returns customers visible to the caller.
func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	result, err := s.customers.List(r.Context(), principal, listOptionsFromQuery(r))
	if err != nil {
		s.writeServiceError(w, err, "customer listing")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleCreateCustomer creates a new customer record owned by the caller.
func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var in customer.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	c, err := s.customers.Create(r.Context(), principal, in)
	if err != nil {
		s.writeServiceError(w, err, "customer creation")
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// handleCustomerStats returns customer counts scoped to the caller.
func (s *Server) handleCustomerStats(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	stats, err := s.customers.GetStats(r.Context(), principal)
	if err != nil {
		s.writeServiceError(w, err, "customer stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleListCustomersByCreator returns customers created by one account.
func (s *Server) handleListCustomersByCreator(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	result, err := s.customers.ListByCreator(r.Context(), principal, chi.URLParam(r, "userID"), listOptionsFromQuery(r))
	if err != nil {
		s.writeServiceError(w, err, "customer listing by creator")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetCustomer returns one customer record with its addresses.
func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	c, err := s.customers.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, err, "customer lookup")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// handleUpdateCustomer modifies a customer record.
func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var in customer.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	c, err := s.customers.Update(r.Context(), principal, chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeServiceError(w, err, "customer update")
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// handleActivateCustomer reactivates a customer record.
func (s *Server) handleActivateCustomer(w http.ResponseWriter, r *http.Request) {
	s.setCustomerActive(w, r, true)
}

// handleDeactivateCustomer deactivates a customer record.
func (s *Server) handleDeactivateCustomer(w http.ResponseWriter, r *http.Request) {
	s.setCustomerActive(w, r, false)
}

func (s *Server) setCustomerActive(w http.ResponseWriter, r *http.Request, active bool) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	c, err := s.customers.SetActive(r.Context(), principal, chi.URLParam(r, "id"), active)
	if err != nil {
		operation := "customer deactivation"
		if active {
			operation = "customer activation"
		}
		s.writeServiceError(w, err, operation)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

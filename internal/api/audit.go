package api

import (
	"net/http"
	"strconv"

	"github.com/oriontek/customer-core/internal/audit"
	"github.com/oriontek/customer-core/internal/auth"
)

// handleListAudit returns the audit trail, newest first.
// Only SUPERADMIN may read it.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	if !auth.CanViewAuditLog(principal) {
		writeForbidden(w, "insufficient permissions")
		return
	}

	if s.auditRepo == nil {
		writeJSON(w, http.StatusOK, &audit.ListResult{Entries: []audit.Entry{}})
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:  q.Get("action"),
		ActorID: q.Get("actor_id"),
		Outcome: q.Get("outcome"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, err, "audit listing")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

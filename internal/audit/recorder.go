package audit

import (
	"context"

	"github.com/oriontek/customer-core/internal/infrastructure/logging"
)

// Recorder writes audit entries without propagating failures to the caller.
// A nil *Recorder is a valid no-op, which keeps tests and optional wiring simple.
type Recorder struct {
	repo   Repository
	logger *logging.Logger
}

// NewRecorder creates a recorder backed by the given repository.
func NewRecorder(repo Repository, logger *logging.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record persists an audit entry. Failures are logged, never returned —
// the audited operation must not fail because the trail is unavailable.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil || r.repo == nil {
		return
	}

	if err := r.repo.Create(ctx, &entry); err != nil {
		if r.logger != nil {
			r.logger.Error("audit entry not recorded",
				"action", entry.Action,
				"outcome", entry.Outcome,
				"error", err,
			)
		}
	}
}

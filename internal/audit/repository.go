// Package audit provides the append-only audit trail for Customer Core.
//
// Security-relevant events — login attempts, account management, customer
// mutations — are written to the audit_logs table. Recording is best-effort:
// a failed audit write is logged but never fails the operation it describes.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Audit actions.
const (
	ActionLogin              = "login"
	ActionUserCreate         = "user_create"
	ActionUserUpdate         = "user_update"
	ActionUserActivate       = "user_activate"
	ActionUserDeactivate     = "user_deactivate"
	ActionPasswordChange     = "password_change"
	ActionCustomerCreate     = "customer_create"
	ActionCustomerUpdate     = "customer_update"
	ActionCustomerActivate   = "customer_activate"
	ActionCustomerDeactivate = "customer_deactivate"
)

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
)

// Entry represents a single audit trail record.
type Entry struct {
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	ActorID    string    `json:"actor_id,omitempty"`
	ActorEmail string    `json:"actor_email,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
}

// Filter controls which audit entries to return.
type Filter struct {
	Action  string // optional: filter by action
	ActorID string // optional: filter by acting account
	Outcome string // optional: filter by outcome
	Limit   int    // default 50, max 200
	Offset  int    // pagination offset
}

// Pagination bounds for audit queries.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// ListResult contains paginated audit entries.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines the interface for audit trail persistence.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores audit entries in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed audit repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new audit entry. The ID and OccurredAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = "aud-" + uuid.NewString()[:8]
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, occurred_at, actor_id, actor_email, action, entity_type, entity_id, outcome, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.OccurredAt.Format(time.RFC3339),
		entry.ActorID, entry.ActorEmail, entry.Action,
		entry.EntityType, entry.EntityID, entry.Outcome, entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	return nil
}

// List returns audit entries matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any

	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.ActorID != "" {
		conditions = append(conditions, "actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if filter.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, filter.Outcome)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// WHERE clause is assembled from fixed parameterised conditions — no user
	// input reaches the SQL string itself.
	countQuery := "SELECT COUNT(*) FROM audit_logs " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting audit entries: %w", err)
	}

	query := "SELECT id, occurred_at, actor_id, actor_email, action, entity_type, entity_id, outcome, detail FROM audit_logs " +
		where + " ORDER BY occurred_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var occurredAt string
		if err := rows.Scan(&e.ID, &occurredAt, &e.ActorID, &e.ActorEmail,
			&e.Action, &e.EntityType, &e.EntityID, &e.Outcome, &e.Detail); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.OccurredAt, _ = time.Parse(time.RFC3339, occurredAt) //nolint:errcheck // format is controlled
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

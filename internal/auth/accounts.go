package auth

import (
	"context"
	"fmt"

	"github.com/oriontek/customer-core/internal/audit"
	"github.com/oriontek/customer-core/internal/infrastructure/logging"
)

// AccountService implements staff account management. Every operation is
// gated on the acting principal; only SUPERADMIN may manage accounts.
type AccountService struct {
	users    UserRepository
	recorder *audit.Recorder
	logger   *logging.Logger
}

// NewAccountService creates an account management service.
func NewAccountService(users UserRepository, recorder *audit.Recorder, logger *logging.Logger) *AccountService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AccountService{users: users, recorder: recorder, logger: logger}
}

// CreateUserInput holds the fields for a new staff account.
type CreateUserInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
}

// Validate checks field-level constraints before any policy decision.
func (in *CreateUserInput) Validate() error {
	if !IsValidEmail(NormalizeEmail(in.Email)) {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	if in.FirstName == "" {
		return fmt.Errorf("%w: first name is required", ErrInvalidInput)
	}
	if in.LastName == "" {
		return fmt.Errorf("%w: last name is required", ErrInvalidInput)
	}
	return ValidatePasswordStrength(in.Password)
}

// CreateUser creates a new staff account.
// Only SUPERADMIN may create accounts, and only with the ADMIN role —
// additional SUPERADMIN accounts are provisioned through seeding, not the API.
func (s *AccountService) CreateUser(ctx context.Context, actor *Principal, in CreateUserInput) (*User, error) {
	if !CanManageAccounts(actor) {
		s.recordDenied(ctx, actor, audit.ActionUserCreate, "")
		return nil, ErrForbidden
	}
	if !AssignableRole(actor, in.Role) {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotAssignable, in.Role)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Email:        NormalizeEmail(in.Email),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
		CreatedBy:    actor.UserID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.record(ctx, actor, audit.ActionUserCreate, user.ID, audit.OutcomeSuccess, string(in.Role))
	s.logger.Info("user created", "user_id", user.ID, "role", user.Role, "created_by", actor.UserID)

	return user, nil
}

// ListUsers returns staff accounts, optionally narrowed by a search term
// matched against names and email.
func (s *AccountService) ListUsers(ctx context.Context, actor *Principal, search string) ([]User, error) {
	if !CanManageAccounts(actor) {
		return nil, ErrForbidden
	}
	return s.users.List(ctx, search)
}

// GetUser returns a single staff account by ID. SUPERADMIN may fetch any
// account; everyone else only their own.
func (s *AccountService) GetUser(ctx context.Context, actor *Principal, id string) (*User, error) {
	if !CanManageAccounts(actor) && !IsSelf(actor, id) {
		return nil, ErrForbidden
	}
	return s.users.GetByID(ctx, id)
}

// UpdateUserInput holds the mutable profile fields of a staff account.
// The role is fixed at creation and never changed through the API.
type UpdateUserInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UpdateUser modifies a staff account's profile fields. SUPERADMIN may edit
// any account; an ADMIN only their own.
func (s *AccountService) UpdateUser(ctx context.Context, actor *Principal, id string, in UpdateUserInput) (*User, error) {
	if !CanManageAccounts(actor) && !IsSelf(actor, id) {
		s.recordDenied(ctx, actor, audit.ActionUserUpdate, id)
		return nil, ErrForbidden
	}
	if !IsValidEmail(NormalizeEmail(in.Email)) {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrInvalidInput)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = NormalizeEmail(in.Email)
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.record(ctx, actor, audit.ActionUserUpdate, user.ID, audit.OutcomeSuccess, "")
	return user, nil
}

// SetUserActive activates or deactivates a staff account. Deactivation is
// a soft operation — the row stays, logins and token validation fail.
// A SUPERADMIN can never deactivate their own account.
func (s *AccountService) SetUserActive(ctx context.Context, actor *Principal, id string, active bool) (*User, error) {
	action := audit.ActionUserDeactivate
	if active {
		action = audit.ActionUserActivate
	}

	if !CanManageAccounts(actor) {
		s.recordDenied(ctx, actor, action, id)
		return nil, ErrForbidden
	}
	if !active && !CanDeactivateAccount(actor, id) {
		s.recordDenied(ctx, actor, action, id)
		return nil, ErrSelfDeactivation
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Idempotent: setting the current state is a no-op, not an error.
	if user.IsActive != active {
		user.IsActive = active
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	s.record(ctx, actor, action, user.ID, audit.OutcomeSuccess, "")
	s.logger.Info("user active state changed", "user_id", user.ID, "active", active, "actor", actor.UserID)

	return user, nil
}

// ChangePassword sets a new password for a staff account.
// SUPERADMIN may reset any account's password, including their own.
func (s *AccountService) ChangePassword(ctx context.Context, actor *Principal, id, newPassword string) error {
	if !CanManageAccounts(actor) {
		s.recordDenied(ctx, actor, audit.ActionPasswordChange, id)
		return ErrForbidden
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}

	s.record(ctx, actor, audit.ActionPasswordChange, id, audit.OutcomeSuccess, "")
	return nil
}

// AccountStats summarises the staff account population.
type AccountStats struct {
	Total  int          `json:"total"`
	Active int          `json:"active"`
	ByRole map[Role]int `json:"by_role"`
}

// Stats returns account counts: overall, active, and per role.
func (s *AccountService) Stats(ctx context.Context, actor *Principal) (*AccountStats, error) {
	if !CanManageAccounts(actor) {
		return nil, ErrForbidden
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.users.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}

	return &AccountStats{Total: total, Active: active, ByRole: byRole}, nil
}

func (s *AccountService) record(ctx context.Context, actor *Principal, action, entityID, outcome, detail string) {
	entry := audit.Entry{
		Action:     action,
		EntityType: "user",
		EntityID:   entityID,
		Outcome:    outcome,
		Detail:     detail,
	}
	if actor != nil {
		entry.ActorID = actor.UserID
		entry.ActorEmail = actor.Email
	}
	s.recorder.Record(ctx, entry)
}

func (s *AccountService) recordDenied(ctx context.Context, actor *Principal, action, entityID string) {
	s.record(ctx, actor, action, entityID, audit.OutcomeDenied, "")
}

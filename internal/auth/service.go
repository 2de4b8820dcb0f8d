package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oriontek/customer-core/internal/audit"
	"github.com/oriontek/customer-core/internal/infrastructure/logging"
	"github.com/oriontek/customer-core/internal/metrics"
)

// Login metric outcomes.
const (
	loginOutcomeSuccess  = "success"
	loginOutcomeInvalid  = "invalid_credentials"
	loginOutcomeInactive = "inactive_account"
)

// Token verification metric outcomes.
const (
	tokenOutcomeSuccess   = "success"
	tokenOutcomeMalformed = "malformed"
	tokenOutcomeSignature = "signature"
	tokenOutcomeExpired   = "expired"
	tokenOutcomeRejected  = "rejected"
)

// Service implements authentication: credential checks, token issuance, and
// token validation against the account store.
type Service struct {
	users    UserRepository
	codec    *TokenCodec
	recorder *audit.Recorder
	metrics  metrics.Collector
	logger   *logging.Logger
}

// NewService creates an authentication service.
// The recorder may be nil; metrics may be metrics.Nop{}.
func NewService(users UserRepository, codec *TokenCodec, recorder *audit.Recorder, collector metrics.Collector, logger *logging.Logger) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		users:    users,
		codec:    codec,
		recorder: recorder,
		metrics:  collector,
		logger:   logger,
	}
}

// LoginResult holds the outcome of a successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// Authenticate verifies an email/password pair and issues a bearer token.
//
// Unknown email and wrong password both return ErrInvalidCredentials — the
// response never reveals whether the account exists. A deactivated account
// returns ErrAccountInactive, but only after the password matched.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		s.metrics.RecordLogin(loginOutcomeInvalid)
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn the same hashing work a real account would cost, so
			// response time does not reveal whether the email exists.
			_, _ = VerifyPassword(password, dummyPasswordHash) //nolint:errcheck // result deliberately discarded
			s.recordLogin(ctx, "", email, audit.OutcomeFailure, "unknown email")
			s.metrics.RecordLogin(loginOutcomeInvalid)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	match, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !match {
		s.recordLogin(ctx, user.ID, email, audit.OutcomeFailure, "wrong password")
		s.metrics.RecordLogin(loginOutcomeInvalid)
		return nil, ErrInvalidCredentials
	}

	// Checked after the password so a caller with wrong credentials cannot
	// tell a deactivated account from a nonexistent one.
	if !user.IsActive {
		s.recordLogin(ctx, user.ID, email, audit.OutcomeDenied, "account deactivated")
		s.metrics.RecordLogin(loginOutcomeInactive)
		return nil, ErrAccountInactive
	}

	token, expiresAt, err := s.codec.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.recordLogin(ctx, user.ID, email, audit.OutcomeSuccess, "")
	s.metrics.RecordLogin(loginOutcomeSuccess)
	s.logger.Info("login succeeded", "user_id", user.ID, "role", user.Role)

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Validate verifies a bearer token and resolves it to a principal.
//
// The principal is rebuilt from the stored account row on every call, so a
// role change or deactivation takes effect immediately regardless of what
// the token claims say. Tokens for deleted or deactivated accounts fail.
func (s *Service) Validate(ctx context.Context, tokenString string) (*Principal, error) {
	claims, err := s.codec.Verify(tokenString)
	if err != nil {
		s.metrics.RecordTokenVerification(tokenOutcome(err))
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.metrics.RecordTokenVerification(tokenOutcomeRejected)
			return nil, fmt.Errorf("%w: account no longer exists", ErrUserNotFound)
		}
		return nil, fmt.Errorf("resolving token subject: %w", err)
	}

	if !user.IsActive {
		s.metrics.RecordTokenVerification(tokenOutcomeRejected)
		return nil, ErrAccountInactive
	}

	s.metrics.RecordTokenVerification(tokenOutcomeSuccess)

	return &Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}

// Profile returns the stored account row for an authenticated principal.
// Any authenticated account may read its own profile.
func (s *Service) Profile(ctx context.Context, principal *Principal) (*User, error) {
	if principal == nil {
		return nil, ErrForbidden
	}
	return s.users.GetByID(ctx, principal.UserID)
}

// tokenOutcome maps a verification error to its metric label.
func tokenOutcome(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return tokenOutcomeExpired
	case errors.Is(err, ErrTokenSignature):
		return tokenOutcomeSignature
	default:
		return tokenOutcomeMalformed
	}
}

func (s *Service) recordLogin(ctx context.Context, actorID, email, outcome, detail string) {
	s.recorder.Record(ctx, audit.Entry{
		ActorID:    actorID,
		ActorEmail: email,
		Action:     audit.ActionLogin,
		Outcome:    outcome,
		Detail:     detail,
	})
}

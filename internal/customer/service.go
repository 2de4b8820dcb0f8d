package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/oriontek/customer-core/internal/audit"
	"github.com/oriontek/customer-core/internal/auth"
	"github.com/oriontek/customer-core/internal/infrastructure/logging"
)

// Service implements customer management with ownership-scoped access.
type Service struct {
	repo     Repository
	recorder *audit.Recorder
	logger   *logging.Logger
}

// NewService creates a customer service. The recorder may be nil.
func NewService(repo Repository, recorder *audit.Recorder, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// AddressInput holds the fields for one customer address.
type AddressInput struct {
	Street    string      `json:"street"`
	City      string      `json:"city"`
	State     string      `json:"state"`
	ZipCode   string      `json:"zip_code"`
	Country   string      `json:"country"`
	Type      AddressType `json:"type"`
	IsPrimary bool        `json:"is_primary"`
	Notes     string      `json:"notes"`
}

func (in *AddressInput) validate() error {
	if in.Street == "" || in.City == "" || in.Country == "" {
		return fmt.Errorf("%w: address street, city, and country are required", auth.ErrInvalidInput)
	}
	if !IsValidAddressType(in.Type) {
		return fmt.Errorf("%w: %s", ErrInvalidAddressType, in.Type)
	}
	return nil
}

func (in *AddressInput) toAddress() Address {
	return Address{
		Street:    in.Street,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
		Country:   in.Country,
		Type:      in.Type,
		IsPrimary: in.IsPrimary,
		Notes:     in.Notes,
	}
}

// validateAddressInputs checks each address and the at-most-one-primary rule.
func validateAddressInputs(addresses []AddressInput) error {
	primaries := 0
	for i := range addresses {
		if err := addresses[i].validate(); err != nil {
			return err
		}
		if addresses[i].IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return fmt.Errorf("%w: at most one address may be primary", auth.ErrInvalidInput)
	}
	return nil
}

// CreateInput holds the fields for a new customer record.
type CreateInput struct {
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	DocumentNumber string         `json:"document_number"`
	DocumentType   string         `json:"document_type"`
	Notes          string         `json:"notes"`
	Addresses      []AddressInput `json:"addresses"`
}

// Validate checks field-level constraints.
func (in *CreateInput) Validate() error {
	if in.FirstName == "" || in.LastName == "" {
		return fmt.Errorf("%w: first and last name are required", auth.ErrInvalidInput)
	}
	if !auth.IsValidEmail(auth.NormalizeEmail(in.Email)) {
		return fmt.Errorf("%w: invalid email address", auth.ErrInvalidInput)
	}
	return validateAddressInputs(in.Addresses)
}

// Create inserts a new customer owned by the acting account.
func (s *Service) Create(ctx context.Context, actor *auth.Principal, in CreateInput) (*Customer, error) {
	if !auth.CanCreateCustomers(actor) {
		return nil, auth.ErrForbidden
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	c := &Customer{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Phone:          in.Phone,
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		DocumentType:   in.DocumentType,
		Notes:          in.Notes,
		IsActive:       true,
		CreatedBy:      actor.UserID,
	}
	for i := range in.Addresses {
		c.Addresses = append(c.Addresses, in.Addresses[i].toAddress())
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.record(ctx, actor, audit.ActionCustomerCreate, c.ID, audit.OutcomeSuccess)
	s.logger.Info("customer created", "customer_id", c.ID, "created_by", actor.UserID)

	return c, nil
}

// Get returns a customer the actor may access.
// A record owned by another admin is reported as not found, the same as a
// record that does not exist at all.
func (s *Service) Get(ctx context.Context, actor *auth.Principal, id string) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccessCustomerOwnedBy(actor, c.CreatedBy) {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

// ListOptions controls a scoped customer listing.
type ListOptions struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// List returns customers visible to the actor. SUPERADMIN sees all records;
// ADMIN listings are silently narrowed to records the actor created.
func (s *Service) List(ctx context.Context, actor *auth.Principal, opts ListOptions) (*ListResult, error) {
	if actor == nil {
		return nil, auth.ErrForbidden
	}

	filter := Filter{
		Search:     opts.Search,
		ActiveOnly: opts.ActiveOnly,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	}
	if !auth.CanListAllCustomers(actor) {
		filter.CreatedBy = actor.UserID
	}

	return s.repo.List(ctx, filter)
}

// ListByCreator returns all customers created by one account.
// Only SUPERADMIN may list across creators.
func (s *Service) ListByCreator(ctx context.Context, actor *auth.Principal, creatorID string, opts ListOptions) (*ListResult, error) {
	if !auth.CanListAllCustomers(actor) {
		return nil, auth.ErrForbidden
	}

	return s.repo.List(ctx, Filter{
		CreatedBy:  creatorID,
		Search:     opts.Search,
		ActiveOnly: opts.ActiveOnly,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	})
}

// UpdateInput holds the mutable fields of a customer record.
// A nil Addresses leaves the address set untouched; an empty non-nil slice
// clears it.
type UpdateInput struct {
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	DocumentNumber string          `json:"document_number"`
	DocumentType   string          `json:"document_type"`
	Notes          string          `json:"notes"`
	Addresses      *[]AddressInput `json:"addresses"`
}

// Update modifies a customer the actor may access.
func (s *Service) Update(ctx context.Context, actor *auth.Principal, id string, in UpdateInput) (*Customer, error) {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", auth.ErrInvalidInput)
	}
	if !auth.IsValidEmail(auth.NormalizeEmail(in.Email)) {
		return nil, fmt.Errorf("%w: invalid email address", auth.ErrInvalidInput)
	}

	if in.Addresses != nil {
		if err := validateAddressInputs(*in.Addresses); err != nil {
			return nil, err
		}
	}

	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Email = in.Email
	c.Phone = in.Phone
	c.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	c.DocumentType = in.DocumentType
	c.Notes = in.Notes
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	if in.Addresses != nil {
		addresses := make([]Address, 0, len(*in.Addresses))
		for i := range *in.Addresses {
			addresses = append(addresses, (*in.Addresses)[i].toAddress())
		}
		if err := s.repo.ReplaceAddresses(ctx, c.ID, addresses); err != nil {
			return nil, err
		}
	}

	s.record(ctx, actor, audit.ActionCustomerUpdate, c.ID, audit.OutcomeSuccess)

	return s.repo.GetByID(ctx, c.ID)
}

// SetActive activates or deactivates a customer record. Deactivation is soft:
// the record stays queryable and can be reactivated. Setting the current
// state is a no-op.
func (s *Service) SetActive(ctx context.Context, actor *auth.Principal, id string, active bool) (*Customer, error) {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if c.IsActive != active {
		c.IsActive = active
		if err := s.repo.Update(ctx, c); err != nil {
			return nil, err
		}
	}

	action := audit.ActionCustomerDeactivate
	if active {
		action = audit.ActionCustomerActivate
	}
	s.record(ctx, actor, action, c.ID, audit.OutcomeSuccess)
	s.logger.Info("customer active state changed", "customer_id", c.ID, "active", active, "actor", actor.UserID)

	return c, nil
}

// GetStats returns customer counts scoped to the actor: global for
// SUPERADMIN, own records for ADMIN.
func (s *Service) GetStats(ctx context.Context, actor *auth.Principal) (*Stats, error) {
	if actor == nil {
		return nil, auth.ErrForbidden
	}

	createdBy := ""
	if !auth.CanListAllCustomers(actor) {
		createdBy = actor.UserID
	}
	return s.repo.Stats(ctx, createdBy)
}

func (s *Service) record(ctx context.Context, actor *auth.Principal, action, entityID, outcome string) {
	entry := audit.Entry{
		Action:     action,
		EntityType: "customer",
		EntityID:   entityID,
		Outcome:    outcome,
	}
	if actor != nil {
		entry.ActorID = actor.UserID
		entry.ActorEmail = actor.Email
	}
	s.recorder.Record(ctx, entry)
}

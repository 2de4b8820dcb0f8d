package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Filter controls which customers a List query returns.
type Filter struct {
	// CreatedBy restricts results to records created by the given account.
	// Empty means no ownership restriction (SUPERADMIN listings).
	CreatedBy string

	// Search matches case-insensitively against first name, last name, and email.
	Search string

	// ActiveOnly excludes soft-deactivated records.
	ActiveOnly bool

	Limit  int // default 50, max 200
	Offset int
}

// Pagination bounds for customer queries.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// ListResult contains a page of customers plus the unpaginated total.
type ListResult struct {
	Customers []Customer `json:"customers"`
	Total     int        `json:"total"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

// Stats summarises the customer population, optionally scoped to one creator.
type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// Repository defines the interface for customer persistence.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context, filter Filter) (*ListResult, error)
	Update(ctx context.Context, c *Customer) error
	ReplaceAddresses(ctx context.Context, customerID string, addresses []Address) error
	Stats(ctx context.Context, createdBy string) (*Stats, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed customer repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const customerColumns = "id, first_name, last_name, email, phone, document_number, document_type, notes, is_active, created_by, created_at, updated_at"

// Create inserts a customer and its addresses in one transaction.
// IDs are generated if empty; the email is stored lowercased.
func (r *SQLiteRepository) Create(ctx context.Context, c *Customer) error {
	if c.ID == "" {
		c.ID = "cus-" + uuid.NewString()[:8]
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))

	now := time.Now().UTC().Format(time.RFC3339)
	c.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	c.UpdatedAt = c.CreatedAt

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after successful commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO customers (`+customerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone,
		c.DocumentNumber, c.DocumentType, c.Notes,
		boolToInt(c.IsActive), c.CreatedBy, now, now,
	)
	if err != nil {
		if uniqueErr := classifyUniqueViolation(err); uniqueErr != nil {
			return uniqueErr
		}
		return fmt.Errorf("creating customer: %w", err)
	}

	for i := range c.Addresses {
		if err := insertAddress(ctx, tx, c.ID, &c.Addresses[i], now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing customer: %w", err)
	}
	return nil
}

// GetByID retrieves a customer with its addresses.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Customer, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = ?", id)

	c, err := scanCustomer(row)
	if err != nil {
		return nil, err
	}

	if c.Addresses, err = r.loadAddresses(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns customers matching the filter, newest first, with addresses
// attached to each result.
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

	if filter.CreatedBy != "" {
		conditions = append(conditions, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = 1")
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, "(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR email LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// WHERE clause is assembled from fixed parameterised conditions — no user
	// input reaches the SQL string itself.
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting customers: %w", err)
	}

	query := "SELECT " + customerColumns + " FROM customers " + where +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customers: %w", err)
	}

	for i := range customers {
		if customers[i].Addresses, err = r.loadAddresses(ctx, customers[i].ID); err != nil {
			return nil, err
		}
	}

	return &ListResult{
		Customers: customers,
		Total:     total,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}, nil
}

// Update modifies a customer's profile fields. Addresses are changed through
// ReplaceAddresses.
func (r *SQLiteRepository) Update(ctx context.Context, c *Customer) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	now := time.Now().UTC().Format(time.RFC3339)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE customers SET first_name = ?, last_name = ?, email = ?, phone = ?,
		 document_number = ?, document_type = ?, notes = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		c.FirstName, c.LastName, c.Email, c.Phone,
		c.DocumentNumber, c.DocumentType, c.Notes, boolToInt(c.IsActive), now, c.ID,
	)
	if err != nil {
		if uniqueErr := classifyUniqueViolation(err); uniqueErr != nil {
			return uniqueErr
		}
		return fmt.Errorf("updating customer: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// ReplaceAddresses swaps a customer's full address set in one transaction.
func (r *SQLiteRepository) ReplaceAddresses(ctx context.Context, customerID string, addresses []Address) error {
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after successful commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM addresses WHERE customer_id = ?", customerID); err != nil {
		return fmt.Errorf("clearing addresses: %w", err)
	}

	for i := range addresses {
		addresses[i].ID = "" // always re-generated on replace
		if err := insertAddress(ctx, tx, customerID, &addresses[i], now); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "UPDATE customers SET updated_at = ? WHERE id = ?", now, customerID); err != nil {
		return fmt.Errorf("touching customer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing addresses: %w", err)
	}
	return nil
}

// Stats returns customer counts, optionally scoped to records created by
// one account.
func (r *SQLiteRepository) Stats(ctx context.Context, createdBy string) (*Stats, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(is_active), 0) FROM customers`
	var args []any
	if createdBy != "" {
		query += " WHERE created_by = ?"
		args = append(args, createdBy)
	}

	var s Stats
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.Total, &s.Active); err != nil {
		return nil, fmt.Errorf("counting customers: %w", err)
	}
	s.Inactive = s.Total - s.Active
	return &s, nil
}

func (r *SQLiteRepository) loadAddresses(ctx context.Context, customerID string) ([]Address, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, street, city, state, zip_code, country, address_type, is_primary, notes, created_at, updated_at
		 FROM addresses WHERE customer_id = ? ORDER BY is_primary DESC, created_at ASC, id ASC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("loading addresses: %w", err)
	}
	defer rows.Close()

	addresses := []Address{}
	for rows.Next() {
		var a Address
		var addrType, createdAt, updatedAt string
		var isPrimary int
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Street, &a.City, &a.State,
			&a.ZipCode, &a.Country, &addrType, &isPrimary, &a.Notes, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning address: %w", err)
		}
		a.Type = AddressType(addrType)
		a.IsPrimary = isPrimary != 0
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating addresses: %w", err)
	}

	return addresses, nil
}

func insertAddress(ctx context.Context, tx *sql.Tx, customerID string, a *Address, now string) error {
	if a.ID == "" {
		a.ID = "adr-" + uuid.NewString()[:8]
	}
	a.CustomerID = customerID
	a.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	a.UpdatedAt = a.CreatedAt

	_, err := tx.ExecContext(ctx,
		`INSERT INTO addresses (id, customer_id, street, city, state, zip_code, country, address_type, is_primary, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, customerID, a.Street, a.City, a.State, a.ZipCode, a.Country, string(a.Type),
		boolToInt(a.IsPrimary), a.Notes, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating address: %w", err)
	}
	return nil
}

// scanner is an interface over sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(s scanner) (*Customer, error) {
	var c Customer
	var isActive int
	var createdAt, updatedAt string

	err := s.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.DocumentNumber, &c.DocumentType, &c.Notes,
		&isActive, &c.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("scanning customer: %w", err)
	}

	c.IsActive = isActive != 0
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// classifyUniqueViolation maps a SQLite UNIQUE constraint failure to the
// matching sentinel, or returns nil for any other error.
func classifyUniqueViolation(err error) error {
	if err == nil || !strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return nil
	}
	if strings.Contains(err.Error(), "customers.document_number") {
		return ErrDocumentExists
	}
	return ErrEmailExists
}

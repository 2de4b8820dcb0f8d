package customer

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the customer schema applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "customer-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name    TEXT NOT NULL,
			last_name     TEXT NOT NULL,
			role          TEXT NOT NULL,
			is_active     INTEGER NOT NULL DEFAULT 1,
			created_by    TEXT REFERENCES users(id),
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		) STRICT;

		CREATE TABLE customers (
			id              TEXT PRIMARY KEY,
			first_name      TEXT NOT NULL,
			last_name       TEXT NOT NULL,
			email           TEXT NOT NULL UNIQUE,
			phone           TEXT NOT NULL DEFAULT '',
			document_number TEXT NOT NULL DEFAULT '',
			document_type   TEXT NOT NULL DEFAULT '',
			notes           TEXT NOT NULL DEFAULT '',
			is_active       INTEGER NOT NULL DEFAULT 1,
			created_by      TEXT NOT NULL REFERENCES users(id),
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		) STRICT;

		CREATE UNIQUE INDEX idx_customers_document_number ON customers(document_number)
			WHERE document_number != '';

		CREATE TABLE addresses (
			id           TEXT PRIMARY KEY,
			customer_id  TEXT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
			street       TEXT NOT NULL,
			city         TEXT NOT NULL,
			state        TEXT NOT NULL DEFAULT '',
			zip_code     TEXT NOT NULL DEFAULT '',
			country      TEXT NOT NULL,
			address_type TEXT NOT NULL,
			is_primary   INTEGER NOT NULL DEFAULT 0,
			notes        TEXT NOT NULL DEFAULT '',
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		) STRICT;

		CREATE TABLE audit_logs (
			id          TEXT PRIMARY KEY,
			occurred_at TEXT NOT NULL,
			actor_id    TEXT NOT NULL DEFAULT '',
			actor_email TEXT NOT NULL DEFAULT '',
			action      TEXT NOT NULL,
			entity_type TEXT NOT NULL DEFAULT '',
			entity_id   TEXT NOT NULL DEFAULT '',
			outcome     TEXT NOT NULL,
			detail      TEXT NOT NULL DEFAULT ''
		) STRICT;

		INSERT INTO users (id, email, password_hash, first_name, last_name, role, created_at, updated_at)
		VALUES ('usr-owner01', 'owner1@example.com', 'x', 'Owner', 'One', 'ADMIN', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z'),
		       ('usr-owner02', 'owner2@example.com', 'x', 'Owner', 'Two', 'ADMIN', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z'),
		       ('usr-super01', 'root@example.com', 'x', 'Super', 'Admin', 'SUPERADMIN', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z');
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying test schema: %v", err)
	}

	return db
}

func testCustomer(email, createdBy string) *Customer {
	return &Customer{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     email,
		Phone:     "+1-809-555-0100",
		IsActive:  true,
		CreatedBy: createdBy,
		Addresses: []Address{
			{Street: "1 Main St", City: "Santo Domingo", Country: "DO", Type: AddressHome, IsPrimary: true},
			{Street: "2 Office Rd", City: "Santiago", Country: "DO", Type: AddressWork},
		},
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewRepository(testDB(t))

	c := testCustomer("Jane.Doe@Example.com", "usr-owner01")
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(c.ID) != len("cus-")+8 {
		t.Errorf("ID = %q, want cus- prefix with 8-char suffix", c.ID)
	}

	got, err := repo.GetByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != "jane.doe@example.com" {
		t.Errorf("Email = %q, want lowercased jane.doe@example.com", got.Email)
	}
	if got.CreatedBy != "usr-owner01" {
		t.Errorf("CreatedBy = %q, want usr-owner01", got.CreatedBy)
	}
	if len(got.Addresses) != 2 {
		t.Fatalf("Addresses = %d, want 2", len(got.Addresses))
	}
	if got.Addresses[0].Type != AddressHome || !got.Addresses[0].IsPrimary {
		t.Errorf("first address = %q primary=%v, want the primary HOME address", got.Addresses[0].Type, got.Addresses[0].IsPrimary)
	}
	if p := got.PrimaryAddress(); p == nil || p.Street != "1 Main St" {
		t.Errorf("PrimaryAddress() = %+v, want 1 Main St", p)
	}
	if got.Addresses[0].CustomerID != c.ID {
		t.Errorf("address CustomerID = %q, want %q", got.Addresses[0].CustomerID, c.ID)
	}
}

func TestRepository_DuplicateEmail(t *testing.T) {
	repo := NewRepository(testDB(t))

	if err := repo.Create(context.Background(), testCustomer("dup@example.com", "usr-owner01")); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	err := repo.Create(context.Background(), testCustomer("DUP@example.com", "usr-owner02"))
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("second Create() error = %v, want ErrEmailExists", err)
	}
}

func TestRepository_DuplicateDocument(t *testing.T) {
	repo := NewRepository(testDB(t))

	first := testCustomer("first@example.com", "usr-owner01")
	first.DocumentNumber = "001-1234567-8"
	first.DocumentType = "CEDULA"
	if err := repo.Create(context.Background(), first); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	second := testCustomer("second@example.com", "usr-owner01")
	second.DocumentNumber = "001-1234567-8"
	second.DocumentType = "CEDULA"
	if err := repo.Create(context.Background(), second); !errors.Is(err, ErrDocumentExists) {
		t.Errorf("second Create() error = %v, want ErrDocumentExists", err)
	}

	// A blank document number is "not recorded" and never conflicts.
	for _, email := range []string{"blank1@example.com", "blank2@example.com"} {
		if err := repo.Create(context.Background(), testCustomer(email, "usr-owner01")); err != nil {
			t.Fatalf("Create(%s) error = %v", email, err)
		}
	}
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo := NewRepository(testDB(t))

	if _, err := repo.GetByID(context.Background(), "cus-missing"); !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("GetByID() error = %v, want ErrCustomerNotFound", err)
	}
}

func TestRepository_List_FilterByCreator(t *testing.T) {
	repo := NewRepository(testDB(t))

	for i, spec := range []struct {
		email string
		owner string
	}{
		{"c1@example.com", "usr-owner01"},
		{"c2@example.com", "usr-owner01"},
		{"c3@example.com", "usr-owner02"},
	} {
		if err := repo.Create(context.Background(), testCustomer(spec.email, spec.owner)); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
	}

	all, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all.Total != 3 || len(all.Customers) != 3 {
		t.Errorf("unscoped list = %d/%d, want 3/3", len(all.Customers), all.Total)
	}

	scoped, err := repo.List(context.Background(), Filter{CreatedBy: "usr-owner01"})
	if err != nil {
		t.Fatalf("List(scoped) error = %v", err)
	}
	if scoped.Total != 2 {
		t.Errorf("scoped Total = %d, want 2", scoped.Total)
	}
	for _, c := range scoped.Customers {
		if c.CreatedBy != "usr-owner01" {
			t.Errorf("scoped list leaked customer owned by %q", c.CreatedBy)
		}
	}
}

func TestRepository_List_Search(t *testing.T) {
	repo := NewRepository(testDB(t))

	alice := testCustomer("alice.search@example.com", "usr-owner01")
	alice.FirstName = "Alice"
	alice.LastName = "Romero"
	if err := repo.Create(context.Background(), alice); err != nil {
		t.Fatalf("Create(alice) error = %v", err)
	}
	bob := testCustomer("bob@example.com", "usr-owner01")
	bob.FirstName = "Bob"
	bob.LastName = "Marte"
	if err := repo.Create(context.Background(), bob); err != nil {
		t.Fatalf("Create(bob) error = %v", err)
	}

	tests := []struct {
		search string
		want   int
	}{
		{"alice", 1},
		{"ROMERO", 1},
		{"example.com", 2},
		{"nomatch", 0},
	}
	for _, tt := range tests {
		result, err := repo.List(context.Background(), Filter{Search: tt.search})
		if err != nil {
			t.Fatalf("List(search=%q) error = %v", tt.search, err)
		}
		if result.Total != tt.want {
			t.Errorf("List(search=%q) Total = %d, want %d", tt.search, result.Total, tt.want)
		}
	}
}

func TestRepository_List_ActiveOnlyAndPagination(t *testing.T) {
	repo := NewRepository(testDB(t))

	active := testCustomer("active@example.com", "usr-owner01")
	if err := repo.Create(context.Background(), active); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	inactive := testCustomer("inactive@example.com", "usr-owner01")
	inactive.IsActive = false
	if err := repo.Create(context.Background(), inactive); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := repo.List(context.Background(), Filter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("List(active) error = %v", err)
	}
	if result.Total != 1 {
		t.Errorf("ActiveOnly Total = %d, want 1", result.Total)
	}

	page, err := repo.List(context.Background(), Filter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("List(page) error = %v", err)
	}
	if len(page.Customers) != 1 || page.Total != 2 {
		t.Errorf("page = %d customers, total %d; want 1 and 2", len(page.Customers), page.Total)
	}
}

func TestRepository_Update(t *testing.T) {
	repo := NewRepository(testDB(t))

	c := testCustomer("update@example.com", "usr-owner01")
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	c.FirstName = "Janet"
	c.Phone = "+1-809-555-0199"
	c.IsActive = false
	if err := repo.Update(context.Background(), c); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.FirstName != "Janet" || got.Phone != "+1-809-555-0199" || got.IsActive {
		t.Errorf("updated customer = %+v, fields not persisted", got)
	}
	if len(got.Addresses) != 2 {
		t.Errorf("Update() touched addresses: %d, want 2", len(got.Addresses))
	}
}

func TestRepository_Update_NotFound(t *testing.T) {
	repo := NewRepository(testDB(t))

	err := repo.Update(context.Background(), &Customer{ID: "cus-missing", FirstName: "X", LastName: "Y", Email: "x@example.com"})
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("Update() error = %v, want ErrCustomerNotFound", err)
	}
}

func TestRepository_ReplaceAddresses(t *testing.T) {
	repo := NewRepository(testDB(t))

	c := testCustomer("addr@example.com", "usr-owner01")
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	replacement := []Address{
		{Street: "9 New Ave", City: "La Romana", Country: "DO", Type: AddressBilling},
	}
	if err := repo.ReplaceAddresses(context.Background(), c.ID, replacement); err != nil {
		t.Fatalf("ReplaceAddresses() error = %v", err)
	}

	got, err := repo.GetByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Addresses) != 1 {
		t.Fatalf("Addresses = %d, want 1", len(got.Addresses))
	}
	if got.Addresses[0].Type != AddressBilling {
		t.Errorf("address type = %q, want BILLING", got.Addresses[0].Type)
	}

	// Clearing is a valid replacement.
	if err := repo.ReplaceAddresses(context.Background(), c.ID, nil); err != nil {
		t.Fatalf("ReplaceAddresses(nil) error = %v", err)
	}
	got, err = repo.GetByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Addresses) != 0 {
		t.Errorf("Addresses = %d after clearing, want 0", len(got.Addresses))
	}
}

func TestRepository_Stats(t *testing.T) {
	repo := NewRepository(testDB(t))

	specs := []struct {
		email  string
		owner  string
		active bool
	}{
		{"s1@example.com", "usr-owner01", true},
		{"s2@example.com", "usr-owner01", false},
		{"s3@example.com", "usr-owner02", true},
	}
	for _, spec := range specs {
		c := testCustomer(spec.email, spec.owner)
		c.IsActive = spec.active
		if err := repo.Create(context.Background(), c); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	global, err := repo.Stats(context.Background(), "")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if global.Total != 3 || global.Active != 2 || global.Inactive != 1 {
		t.Errorf("global stats = %+v, want 3/2/1", global)
	}

	scoped, err := repo.Stats(context.Background(), "usr-owner01")
	if err != nil {
		t.Fatalf("Stats(scoped) error = %v", err)
	}
	if scoped.Total != 2 || scoped.Active != 1 {
		t.Errorf("scoped stats = %+v, want 2 total 1 active", scoped)
	}
}

package auth

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the users and audit_logs
// tables applied. The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
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
			role          TEXT NOT NULL CHECK (role IN ('ADMIN', 'SUPERADMIN')),
			is_active     INTEGER NOT NULL DEFAULT 1,
			created_by    TEXT REFERENCES users(id),
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		) STRICT;

		CREATE INDEX idx_users_email ON users(email);

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
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying test schema: %v", err)
	}

	return db
}

// testSigningKey is a fixed 32-byte HMAC key for token tests.
var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

// testCodec returns a token codec with the test key and a one-hour TTL.
func testCodec(t *testing.T) *TokenCodec {
	t.Helper()
	return NewTokenCodec(testSigningKey, time.Hour)
}

// seedTestUser inserts a staff account with the password "test-password".
func seedTestUser(t *testing.T, db *sql.DB, email string, role Role, active bool) *User {
	t.Helper()

	hash, err := HashPassword("test-password")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	repo := NewUserRepository(db)
	user := &User{
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %s: %v", email, err)
	}
	return user
}

// testPrincipal builds a principal for policy and service calls.
func testPrincipal(user *User) *Principal {
	return &Principal{UserID: user.ID, Email: user.Email, Role: user.Role}
}

// newTestService wires a Service against the given database with no audit
// recorder and no metrics.
func newTestService(t *testing.T, db *sql.DB) *Service {
	t.Helper()
	return NewService(NewUserRepository(db), testCodec(t), nil, nil, nil)
}

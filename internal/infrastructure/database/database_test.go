package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/oriontek/customer-core/migrations"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func TestOpen_CreatesDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestOpen_CreatesMissingDirectory(t *testing.T) {
	cfg := Config{
		Path:        filepath.Join(t.TempDir(), "nested", "dir", "test.db"),
		WALMode:     false,
		BusyTimeout: 5,
	}

	db, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if got := db.Path(); got != cfg.Path {
		t.Errorf("Path() = %q, want %q", got, cfg.Path)
	}
}

func TestMigrate_AppliesEmbeddedSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	for _, table := range []string{"users", "customers", "addresses", "audit_logs"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}

	applied, err := db.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations() error = %v", err)
	}
	if len(applied) == 0 {
		t.Error("AppliedMigrations() returned no versions after Migrate()")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("first Migrate() error = %v", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrate_AppliesInVersionOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// Second migration depends on the table from the first; out-of-order
	// application would fail.
	fsys := fstest.MapFS{
		"20260101_000000_base.up.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE things (id TEXT PRIMARY KEY) STRICT;"),
		},
		"20260101_000000_base.down.sql": &fstest.MapFile{
			Data: []byte("DROP TABLE things;"),
		},
		"20260102_000000_extend.up.sql": &fstest.MapFile{
			Data: []byte("ALTER TABLE things ADD COLUMN name TEXT NOT NULL DEFAULT '';"),
		},
		"20260102_000000_extend.down.sql": &fstest.MapFile{
			Data: []byte("ALTER TABLE things DROP COLUMN name;"),
		},
	}

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	applied, err := db.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations() error = %v", err)
	}
	want := []string{"20260101_000000_base", "20260102_000000_extend"}
	if len(applied) != len(want) {
		t.Fatalf("AppliedMigrations() = %v, want %v", applied, want)
	}
	for i := range want {
		if applied[i] != want[i] {
			t.Errorf("applied[%d] = %q, want %q", i, applied[i], want[i])
		}
	}
}

func TestMigrateDown_RevertsLastMigration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"20260101_000000_base.up.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE things (id TEXT PRIMARY KEY) STRICT;"),
		},
		"20260101_000000_base.down.sql": &fstest.MapFile{
			Data: []byte("DROP TABLE things;"),
		},
	}

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx, fsys); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	applied, err := db.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("AppliedMigrations() = %v, want empty after rollback", applied)
	}

	var name string
	err = db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='things'",
	).Scan(&name)
	if err == nil {
		t.Error("table things still exists after MigrateDown()")
	}
}

func TestMigrate_MissingUpScript(t *testing.T) {
	db := openTestDB(t)

	fsys := fstest.MapFS{
		"20260101_000000_orphan.down.sql": &fstest.MapFile{
			Data: []byte("DROP TABLE things;"),
		},
	}

	if err := db.Migrate(context.Background(), fsys); err == nil {
		t.Error("Migrate() with orphan down script succeeded, want error")
	}
}

func TestHealthCheck_ClosedDatabase(t *testing.T) {
	db, err := Open(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	db.Close()

	if err := db.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() on closed database succeeded, want error")
	}
}

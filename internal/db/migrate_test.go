package db

import (
	"testing"
	"testing/fstest"

	gallerysql "gallery/sql"
)

func TestApplyMigrations_Embedded(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()

	if err := ApplyMigrations(database, gallerysql.MigrationsFS, "schema"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	// second run is a no-op
	if err := ApplyMigrations(database, gallerysql.MigrationsFS, "schema"); err != nil {
		t.Fatalf("re-apply: %v", err)
	}

	var count int
	err = database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('images', 'image_history')`).Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 tables, found %d", count)
	}
}

func TestApplyMigrations_OrderAndSkip(t *testing.T) {
	fsys := fstest.MapFS{
		"m/010_second.sql": {Data: []byte(`INSERT INTO t(v) VALUES (2);`)},
		"m/002_first.sql":  {Data: []byte(`CREATE TABLE t (v INTEGER); INSERT INTO t(v) VALUES (1);`)},
		"m/README.md":      {Data: []byte(`ignored`)},
		"m/nodigits.sql":   {Data: []byte(`THIS IS NOT SQL`)},
	}
	database, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if err := ApplyMigrations(database, fsys, "m"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}

func TestApplyMigrations_FailureRollsBack(t *testing.T) {
	fsys := fstest.MapFS{
		"m/001_bad.sql": {Data: []byte(`CREATE TABLE ok (v INTEGER); SELEC nonsense;`)},
	}
	database, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if err := ApplyMigrations(database, fsys, "m"); err == nil {
		t.Fatalf("expected error for invalid migration")
	}
	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("failed migration must not be recorded")
	}
}

func TestInitDB_ForeignKeysEnabled(t *testing.T) {
	database, err := InitDB(":memory:")
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer database.Close()

	var on int
	if err := database.QueryRow(`PRAGMA foreign_keys`).Scan(&on); err != nil {
		t.Fatal(err)
	}
	if on != 1 {
		t.Fatalf("expected foreign keys on")
	}
}

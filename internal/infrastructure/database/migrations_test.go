package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/nerrad567/lightguard-core/migrations"
)

// testMigrations is a two-step schema used to exercise the migrator.
func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20260101_000000_create_events.up.sql":   {Data: []byte("CREATE TABLE events (id INTEGER PRIMARY KEY);")},
		"20260101_000000_create_events.down.sql": {Data: []byte("DROP TABLE events;")},
		"20260102_000000_add_note.up.sql":        {Data: []byte("ALTER TABLE events ADD COLUMN note TEXT;")},
		"20260102_000000_add_note.down.sql":      {Data: []byte("ALTER TABLE events DROP COLUMN note;")},
		"README.md":                              {Data: []byte("ignored")},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&n)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return n == 1
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, testMigrations()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "events") {
		t.Fatal("events table not created")
	}

	applied, pending, err := db.MigrationStatus(ctx, testMigrations())
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("applied=%d pending=%d, want 2 and 0", len(applied), len(pending))
	}
	if applied[0].Version != "20260101_000000" || applied[0].AppliedAt.IsZero() {
		t.Errorf("applied[0] = %+v", applied[0])
	}

	// Idempotent.
	if err := db.Migrate(ctx, testMigrations()); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}

func TestMigrate_FailureRollsBackOnlyThatStep(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	src := testMigrations()
	src["20260102_000000_add_note.up.sql"] = &fstest.MapFile{Data: []byte("ALTER TABLE nowhere ADD COLUMN x;")}

	if err := db.Migrate(ctx, src); err == nil {
		t.Fatal("Migrate() should fail on a broken migration")
	}

	applied, pending, err := db.MigrationStatus(ctx, src)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 1 || len(pending) != 1 {
		t.Errorf("applied=%d pending=%d, want 1 and 1", len(applied), len(pending))
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, testMigrations()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := db.MigrateDown(ctx, testMigrations()); err != nil {
			t.Fatalf("MigrateDown() #%d error = %v", i+1, err)
		}
	}
	if tableExists(t, db, "events") {
		t.Error("events table still present after rolling everything back")
	}
	if err := db.MigrateDown(ctx, testMigrations()); err != nil {
		t.Errorf("MigrateDown() with nothing applied error = %v", err)
	}
}

func TestMigrate_NilSource(t *testing.T) {
	db := openTestDB(t)

	if err := db.Migrate(context.Background(), nil); err != nil {
		t.Errorf("Migrate(nil) error = %v", err)
	}
}

func TestMigrate_EmbeddedSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "journal") {
		t.Fatal("journal table not created")
	}
	if err := db.MigrateDown(ctx, migrations.FS); err != nil {
		t.Errorf("MigrateDown() error = %v", err)
	}
	if err := db.MigrateDown(ctx, migrations.FS); err != nil {
		t.Errorf("MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "journal") {
		t.Error("journal table still present")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantIsUp    bool
		wantOk      bool
	}{
		{name: "up", filename: "20260301_090000_journal.up.sql", wantVersion: "20260301_090000", wantIsUp: true, wantOk: true},
		{name: "down", filename: "20260301_090000_journal.down.sql", wantVersion: "20260301_090000", wantOk: true},
		{name: "not sql", filename: "readme.txt"},
		{name: "missing direction", filename: "20260301_090000_journal.sql"},
		{name: "no version", filename: "journal.up.sql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && (version != tt.wantVersion || isUp != tt.wantIsUp) {
				t.Errorf("got (%q, %v), want (%q, %v)", version, isUp, tt.wantVersion, tt.wantIsUp)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"20260301_090000_journal.up.sql", "journal"},
		{"20260315_140000_journal_seq.down.sql", "journal_seq"},
	}

	for _, tt := range tests {
		if got := extractMigrationName(tt.filename); got != tt.want {
			t.Errorf("extractMigrationName(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

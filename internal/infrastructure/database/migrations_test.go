package database

import (
	"strings"
	"testing"
)

func TestMigrationSource_FindsMeetingsTable(t *testing.T) {
	migrations, err := MigrationSource().FindMigrations()
	if err != nil {
		t.Fatalf("failed to load migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one migration")
	}

	var found bool
	for _, m := range migrations {
		if len(m.Down) == 0 {
			t.Errorf("migration %s has no down step", m.Id)
		}
		for _, stmt := range m.Up {
			if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS meetings") {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("meetings table migration not found")
	}
}

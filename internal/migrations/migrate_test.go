package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Simplici0/printdesk/internal/db"
)

func TestUpIsRepeatable(t *testing.T) {
	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "migrate-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := Up(database); err != nil {
			t.Fatalf("run migrations (iteration=%d): %v", i, err)
		}
	}

	version, err := Version(database)
	if err != nil {
		t.Fatalf("read version: %v", err)
	}
	if version != 2 {
		t.Fatalf("expected schema version 2, got %d", version)
	}

	for _, table := range []string{"users", "settings", "filaments", "clients", "marketplace_fees", "quotes", "expenses", "ledger_entries", "production_orders"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("expected table %s: %v", table, err)
		}
	}
}

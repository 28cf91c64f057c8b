package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestAssetsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_assets.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS assets",
		"CHECK (quantity >= 0)",
		"ix_assets_assigned_to_email",
		"DROP TABLE IF EXISTS assets",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAssetRequestsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_asset_requests.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS asset_requests",
		"REFERENCES assets(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPurchasesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_purchases.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS purchases",
		"FOREIGN KEY (purchase_id) REFERENCES purchases(id) ON DELETE CASCADE",
		"CHECK (qty > 0)",
		"DROP TABLE IF EXISTS purchase_items",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationContainsUniqueEventIndex(t *testing.T) {
	content := readMigration(t, "*_create_outbox.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS outbox_events",
		"ux_outbox_events_event_aggregate",
		"WHERE published_at IS NULL",
		"CREATE TABLE IF NOT EXISTS outbox_dlq",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

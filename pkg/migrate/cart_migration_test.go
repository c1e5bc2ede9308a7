package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/casspea/casspea-backend/pkg/migrate"
)

func TestCartMigrationEnforcesSingleActiveCart(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_cart_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no cart migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS carts",
		"CHECK ((user_id IS NULL) <> (session_id IS NULL))",
		"idx_carts_one_active_per_user",
		"idx_carts_one_active_per_session",
		"CREATE TABLE IF NOT EXISTS cart_item_box_customizations",
		"DROP TABLE IF EXISTS carts",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrderMigrationContainsIdempotencyKeys(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_order_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no order migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"order_number TEXT NOT NULL UNIQUE",
		"checkout_session_id UUID NOT NULL UNIQUE",
		"CREATE TABLE IF NOT EXISTS emails_sent",
		"idx_email_sent_target",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAllMigrationsValidate(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

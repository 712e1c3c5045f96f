package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/boutiquenoire/storefront-backend/pkg/migrate"
)

func TestEmbeddedMigrationsValidate(t *testing.T) {
	if err := migrate.ValidateFS(migrate.Migrations, "migrations"); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("on-disk migrations invalid: %v", err)
	}
}

func TestVariantMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_products.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS product_variants",
		"REFERENCES products(id) ON DELETE CASCADE",
		"CHECK (quantity >= 0)",
		"ON product_variants (product_id, size, COALESCE(color, ''))",
		"DROP TABLE IF EXISTS product_variants",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestReservationMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_cart_reservations.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS cart_reservations",
		"CHECK (quantity > 0)",
		"idx_cart_reservations_expires_at ON cart_reservations (expires_at)",
		"DROP TABLE IF EXISTS cart_reservations",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrderMigrationListsEveryStatus(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")
	for _, status := range []string{"pending", "preparing", "in_delivery", "delivery_failed", "confirmed_delivery"} {
		if !strings.Contains(content, "'"+status+"'") {
			t.Errorf("status %q missing from orders check constraint", status)
		}
	}
	if !strings.Contains(content, "inventory_restored boolean NOT NULL DEFAULT false") {
		t.Error("orders must carry inventory_restored")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

	path, err := migrate.CreateSQLMigration(dir, "Add Variant SKU!", now)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if filepath.Base(path) != "20260302103000_add_variant_sku.sql" {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "add variant sku", now); err == nil {
		t.Fatal("expected duplicate migration to fail")
	}
	if _, err := migrate.CreateSQLMigration(dir, "!!!", now); err == nil {
		t.Fatal("expected empty sanitized name to fail")
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected empty dir to fail")
	}

	bad := filepath.Join(dir, "bad-name.sql")
	if err := os.WriteFile(bad, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename to fail")
	}
	_ = os.Remove(bad)

	noDown := filepath.Join(dir, "20260101000000_up_only.sql")
	if err := os.WriteFile(noDown, []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected missing down section to fail")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

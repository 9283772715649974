package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	up, down, err := createMigration(dir, "add_card_weight", now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Base(up) != "20260301120000_add_card_weight.up.sql" {
		t.Fatalf("unexpected up path %s", up)
	}
	if _, err := os.Stat(down); err != nil {
		t.Fatalf("down migration missing: %v", err)
	}

	if _, _, err := createMigration(dir, "add_card_weight", now); err == nil {
		t.Fatalf("expected error for existing migration")
	}
	if _, _, err := createMigration(dir, "bad name", now); err == nil {
		t.Fatalf("expected error for name with spaces")
	}
}

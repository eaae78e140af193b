package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/mediastats/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestSettingsRepository(t *testing.T) {
	t.Run("Set And Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingsRepository(db)
		if err := repo.Set("theme", `"dark"`); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		got, err := repo.Get("theme")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got != `"dark"` {
			t.Errorf("expected %q, got %q", `"dark"`, got)
		}
	})

	t.Run("Set Overwrites", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingsRepository(db)
		_ = repo.Set("theme", "light")
		if err := repo.Set("theme", "dark"); err != nil {
			t.Fatalf("failed to overwrite: %v", err)
		}

		got, _ := repo.Get("theme")
		if got != "dark" {
			t.Errorf("expected dark, got %s", got)
		}

		keys, err := repo.Keys()
		if err != nil {
			t.Fatalf("failed to list keys: %v", err)
		}
		if len(keys) != 1 {
			t.Errorf("expected a single key after overwrite, got %v", keys)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewSettingsRepository(db).Get("plexData")
		if !errors.Is(err, shared.ErrSettingNotFound) {
			t.Errorf("expected ErrSettingNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSettingsRepository(db)
		_ = repo.Set("plexData", "{}")

		if err := repo.Delete("plexData"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get("plexData"); !errors.Is(err, shared.ErrSettingNotFound) {
			t.Errorf("expected key to be gone, got %v", err)
		}
		if err := repo.Delete("plexData"); err != nil {
			t.Errorf("deleting a missing key should succeed, got %v", err)
		}
	})

	t.Run("Empty Key", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewSettingsRepository(db).Set("  ", "x"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSettingsRepository(db)
		db.Close()

		if _, err := repo.Get("theme"); err == nil || errors.Is(err, shared.ErrSettingNotFound) {
			t.Errorf("expected query error, got %v", err)
		}
		if err := repo.Set("theme", "dark"); err == nil {
			t.Error("expected error writing to closed database")
		}
		if _, err := repo.Keys(); err == nil {
			t.Error("expected error listing closed database")
		}
	})
}

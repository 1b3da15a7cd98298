package main

import (
	"fmt"

	"notefiber-editor-be/internal/model"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

var extensions = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
}

var postMigration = []string{
	`CREATE OR REPLACE FUNCTION set_current_timestamp_updated_at() RETURNS trigger LANGUAGE plpgsql AS $$
	BEGIN
	  NEW.updated_at = now();
	  RETURN NEW;
	END; $$;`,
	`DROP TRIGGER IF EXISTS set_notes_updated_at ON notes;`,
	`CREATE TRIGGER set_notes_updated_at BEFORE UPDATE ON notes
	 FOR EACH ROW EXECUTE FUNCTION set_current_timestamp_updated_at();`,
	`CREATE INDEX IF NOT EXISTS idx_notes_lower_title ON notes (lower(title)) WHERE deleted_at IS NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes (updated_at DESC) WHERE deleted_at IS NULL;`,
}

func models() []interface{} {
	return []interface{}{&model.Vault{}, &model.Note{}}
}

func migrateUp(db *gorm.DB) error {
	// Extensions need superuser on some hosts; the schema works without them.
	for _, stmt := range extensions {
		if err := db.Exec(stmt).Error; err != nil {
			color.Yellow("skipping extension: %v", err)
		}
	}
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range postMigration {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("post migration: %w", err)
		}
	}
	return nil
}

func dropAll(db *gorm.DB) error {
	// notes references vaults, so drop it first.
	return db.Migrator().DropTable(&model.Note{}, &model.Vault{})
}

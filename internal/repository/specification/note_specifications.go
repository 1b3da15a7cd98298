package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InVault struct {
	VaultID uuid.UUID
}

func (s InVault) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("vault_id = ?", s.VaultID)
}

// NoteSearchQuery matches title or content, case-insensitive.
type NoteSearchQuery struct {
	Query string
}

func (s NoteSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	return db.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
}

// IncludeDeleted lifts the soft-delete filter, used to tell a deleted note
// from one that never existed.
type IncludeDeleted struct{}

func (s IncludeDeleted) Apply(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

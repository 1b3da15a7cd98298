package entity

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string
	Content     string
	ContentType string
	Headline    string
	VaultId     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}

// Locked reports whether the note lives in a vault.
func (n *Note) Locked() bool {
	return n.VaultId != nil
}

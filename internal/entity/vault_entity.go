package entity

import (
	"time"

	"github.com/google/uuid"
)

type Vault struct {
	Id           uuid.UUID
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

type ListNotesRequest struct {
	Query   string `query:"q" validate:"max=200"`
	VaultId string `query:"vault_id" validate:"omitempty,uuid"`
	Limit   int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset  int    `query:"offset" validate:"omitempty,min=0"`
}

type NoteSummary struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Headline  string     `json:"headline"`
	Locked    bool       `json:"locked"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type DeleteNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

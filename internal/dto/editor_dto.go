package dto

import "github.com/google/uuid"

type ThemeRequest struct {
	Name   string            `json:"name" validate:"required,max=64"`
	Dark   bool              `json:"dark"`
	Colors map[string]string `json:"colors"`
}

type SetTitleRequest struct {
	Title string `json:"title" validate:"max=255"`
}

type UnlockRequest struct {
	VaultId  uuid.UUID `json:"vault_id" validate:"required"`
	Password string    `json:"password" validate:"required"`
}

type CreateVaultRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8"`
}

type CreateVaultResponse struct {
	Id uuid.UUID `json:"id"`
}

type LockNoteRequest struct {
	VaultId uuid.UUID `json:"vault_id" validate:"required"`
}

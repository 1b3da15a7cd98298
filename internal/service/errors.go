package service

import (
	"errors"

	"notefiber-editor-be/internal/pkg/serverutils"
	"notefiber-editor-be/pkg/editor"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrNoteNotFound       = serverutils.NotFound("Note not found")
	ErrVaultNotFound      = serverutils.NotFound("Vault not found")
	ErrWrongVaultPassword = serverutils.NewDomainError(fiber.StatusForbidden, "VAULT_PASSWORD_INVALID", "Wrong vault password", nil)
	ErrUnlockTimedOut     = serverutils.NewDomainError(fiber.StatusRequestTimeout, "VAULT_UNLOCK_TIMEOUT", "Vault was not unlocked in time", nil)
)

// editorError maps controller errors onto HTTP-aware domain errors.
func editorError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, editor.ErrSurfaceUnresponsive):
		return serverutils.NewDomainError(fiber.StatusServiceUnavailable, "SURFACE_UNRESPONSIVE", "The editor did not respond and was reset", nil)
	case errors.Is(err, editor.ErrNothingToRetry):
		return serverutils.Conflict("NOTHING_TO_RETRY", "No note to reopen")
	case errors.Is(err, editor.ErrTornDown):
		return serverutils.NewDomainError(fiber.StatusServiceUnavailable, "EDITOR_STOPPED", "The editor is shutting down", nil)
	default:
		return err
	}
}

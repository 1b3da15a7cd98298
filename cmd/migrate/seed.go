package main

import (
	"fmt"

	"notefiber-editor-be/internal/model"
	"notefiber-editor-be/pkg/lexical"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Fixed ids keep seeding idempotent and easy to open from editorctl.
var (
	demoVaultID  = uuid.MustParse("5d2f3c4e-0000-4000-8000-000000000001")
	welcomeID    = uuid.MustParse("5d2f3c4e-0000-4000-8000-000000000101")
	shortcutsID  = uuid.MustParse("5d2f3c4e-0000-4000-8000-000000000102")
	lockedNoteID = uuid.MustParse("5d2f3c4e-0000-4000-8000-000000000103")
)

func paragraph(text string) string {
	return fmt.Sprintf(`{"root":{"type":"root","version":1,"children":[{"type":"paragraph","version":1,"children":[{"type":"text","version":1,"text":%q}]}]}}`, text)
}

func demoNotes() []model.Note {
	notes := []model.Note{
		{Id: welcomeID, Title: "Welcome", Content: paragraph("Start typing, the editor saves on its own.")},
		{Id: shortcutsID, Title: "Shortcuts", Content: paragraph("Switching notes flushes the current one first.")},
		{Id: lockedNoteID, Title: "Locked", Content: paragraph("This note lives in the demo vault."), VaultId: &demoVaultID},
	}
	for i := range notes {
		notes[i].ContentType = lexical.ContentType
		notes[i].Headline = lexical.Headline(notes[i].Content, 140)
	}
	return notes
}

func seedDemo(db *gorm.DB, password string) ([]model.Note, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	notes := demoNotes()

	err = db.Transaction(func(tx *gorm.DB) error {
		vault := model.Vault{Id: demoVaultID, Name: "Demo vault", PasswordHash: string(hash)}
		if err := tx.Where(model.Vault{Id: demoVaultID}).FirstOrCreate(&vault).Error; err != nil {
			return fmt.Errorf("vault: %w", err)
		}
		for i := range notes {
			if err := tx.Where(model.Note{Id: notes[i].Id}).FirstOrCreate(&notes[i]).Error; err != nil {
				return fmt.Errorf("note %s: %w", notes[i].Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}

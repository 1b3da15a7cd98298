package service

import (
	"context"
	"testing"
	"time"

	"notefiber-editor-be/internal/dto"
	"notefiber-editor-be/internal/entity"
	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/internal/repository/memory"
	"notefiber-editor-be/pkg/editor/autosave"
	"notefiber-editor-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vaultFixture struct {
	db      *memoryDB
	bus     *recordingBus
	unlocks *memory.UnlockRepository
	svc     IVaultService
	vaultID uuid.UUID
	note    *entity.Note
}

func newVaultFixture(t *testing.T, timeout time.Duration) *vaultFixture {
	t.Helper()
	db := newMemoryDB()
	bus := &recordingBus{}
	unlocks := memory.NewUnlockRepository(time.Minute)
	svc := NewVaultService(db, unlocks, bus, timeout, logger.NewNopLogger())

	res, err := svc.Create(context.Background(), &dto.CreateVaultRequest{Name: "private", Password: "correct horse"})
	require.NoError(t, err)

	note := &entity.Note{Id: uuid.New(), Title: "diary"}
	db.put(note)
	require.NoError(t, svc.AddNote(context.Background(), res.Id, note.Id))

	return &vaultFixture{db: db, bus: bus, unlocks: unlocks, svc: svc, vaultID: res.Id, note: db.note(note.Id)}
}

func TestVaultCreateHashesPassword(t *testing.T) {
	f := newVaultFixture(t, time.Second)

	vault := f.db.vaults[f.vaultID]
	require.NotNil(t, vault)
	assert.NotEqual(t, "correct horse", vault.PasswordHash)
	assert.True(t, f.note.Locked())
}

func TestUnlockWaitsForPassword(t *testing.T) {
	f := newVaultFixture(t, 2*time.Second)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.svc.Unlock(ctx, f.note.Id) }()

	assert.Eventually(t, func() bool {
		return len(f.bus.ofType(events.EditorUnlockRequired)) == 1
	}, time.Second, 5*time.Millisecond)
	prompt := f.bus.ofType(events.EditorUnlockRequired)[0]
	assert.Equal(t, f.vaultID.String(), prompt.Payload()[events.KeyVaultID])
	assert.Equal(t, f.note.Id.String(), prompt.Payload()[events.KeyNoteID])

	err := f.svc.SubmitPassword(ctx, &dto.UnlockRequest{VaultId: f.vaultID, Password: "wrong"})
	assert.ErrorIs(t, err, ErrWrongVaultPassword)

	require.NoError(t, f.svc.SubmitPassword(ctx, &dto.UnlockRequest{VaultId: f.vaultID, Password: "correct horse"}))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("unlock did not return after the password was accepted")
	}
	assert.True(t, f.unlocks.Granted(f.vaultID))

	// Granted vaults do not prompt again.
	require.NoError(t, f.svc.Unlock(ctx, f.note.Id))
	assert.Len(t, f.bus.ofType(events.EditorUnlockRequired), 1)
}

func TestUnlockTimesOut(t *testing.T) {
	f := newVaultFixture(t, 30*time.Millisecond)

	err := f.svc.Unlock(context.Background(), f.note.Id)
	assert.ErrorIs(t, err, ErrUnlockTimedOut)
}

func TestUnlockDeletedNote(t *testing.T) {
	f := newVaultFixture(t, time.Second)

	err := f.svc.Unlock(context.Background(), uuid.New())
	assert.ErrorIs(t, err, autosave.ErrNoteDeleted)
}

func TestLockRevokesGrant(t *testing.T) {
	f := newVaultFixture(t, time.Second)

	require.NoError(t, f.svc.SubmitPassword(context.Background(), &dto.UnlockRequest{VaultId: f.vaultID, Password: "correct horse"}))
	f.svc.Lock(f.vaultID)
	assert.False(t, f.unlocks.Granted(f.vaultID))
}

func TestLockAllRevokesEveryGrant(t *testing.T) {
	f := newVaultFixture(t, time.Second)
	other := uuid.New()
	f.unlocks.Grant(other)

	require.NoError(t, f.svc.SubmitPassword(context.Background(), &dto.UnlockRequest{VaultId: f.vaultID, Password: "correct horse"}))
	f.svc.LockAll()
	assert.False(t, f.unlocks.Granted(f.vaultID))
	assert.False(t, f.unlocks.Granted(other))
}

func TestSubmitPasswordUnknownVault(t *testing.T) {
	f := newVaultFixture(t, time.Second)

	err := f.svc.SubmitPassword(context.Background(), &dto.UnlockRequest{VaultId: uuid.New(), Password: "x"})
	assert.ErrorIs(t, err, ErrVaultNotFound)
}

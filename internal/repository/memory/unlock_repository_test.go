package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUnlockRepositoryExpires(t *testing.T) {
	repo := NewUnlockRepository(30 * time.Millisecond)
	vault := uuid.New()

	assert.False(t, repo.Granted(vault))
	repo.Grant(vault)
	assert.True(t, repo.Granted(vault))

	assert.Eventually(t, func() bool { return !repo.Granted(vault) }, time.Second, 10*time.Millisecond)
}

func TestUnlockRepositoryRevoke(t *testing.T) {
	repo := NewUnlockRepository(time.Hour)
	a, b := uuid.New(), uuid.New()

	repo.Grant(a)
	repo.Grant(b)
	repo.Revoke(a)
	assert.False(t, repo.Granted(a))
	assert.True(t, repo.Granted(b))

	repo.RevokeAll()
	assert.False(t, repo.Granted(b))
}

package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// UnlockRepository remembers which vaults were unlocked recently. Entries
// expire on their own after the configured TTL.
type UnlockRepository struct {
	cache *cache.Cache
}

func NewUnlockRepository(ttl time.Duration) *UnlockRepository {
	return &UnlockRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *UnlockRepository) Grant(vaultID uuid.UUID) {
	r.cache.Set(vaultID.String(), time.Now(), cache.DefaultExpiration)
}

func (r *UnlockRepository) Granted(vaultID uuid.UUID) bool {
	_, found := r.cache.Get(vaultID.String())
	return found
}

func (r *UnlockRepository) Revoke(vaultID uuid.UUID) {
	r.cache.Delete(vaultID.String())
}

// RevokeAll locks every vault again.
func (r *UnlockRepository) RevokeAll() {
	r.cache.Flush()
}

package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// revocationPrefix namespaces blacklist keys so they never collide with
// rate-limiter state living in the same redis database.
const revocationPrefix = "blacklist:"

// RevocationStore tracks refresh tokens that were rotated out. Entries
// carry a TTL equal to the remaining validity of the token they block,
// so no entry ever outlives the token it revokes. The store is shared
// across service instances; redis performs each operation atomically.
type RevocationStore struct {
	rdb *redis.Client
}

func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	return &RevocationStore{rdb: rdb}
}

// Revoke records the token as revoked for at most ttl. Revoking an
// already revoked token is a no-op apart from refreshing the entry, and
// a non-positive ttl means the token has expired on its own, so there
// is nothing left to block.
func (s *RevocationStore) Revoke(ctx context.Context, rawToken string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, revocationPrefix+rawToken, "revoked", ttl).Err(); err != nil {
		return ErrStoreUnavailable
	}
	return nil
}

// IsRevoked reports whether the token has a live blacklist entry. A
// store error is surfaced as ErrStoreUnavailable; callers must reject
// the token in that case rather than assume it is still honorable.
func (s *RevocationStore) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revocationPrefix+rawToken).Result()
	if err != nil {
		return false, ErrStoreUnavailable
	}
	return n > 0, nil
}

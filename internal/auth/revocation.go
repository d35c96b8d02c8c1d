package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore keeps a redis denylist of accounts whose tokens must no
// longer be accepted, for example after deactivation or deletion. Entries
// live at least as long as the token TTL so every outstanding token has
// expired before the entry does.
type RevocationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRevocationStore builds the store. A nil client disables revocation
// checks (every IsRevoked call reports false).
func NewRevocationStore(client *redis.Client, tokenTTL time.Duration) *RevocationStore {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &RevocationStore{client: client, ttl: 2 * tokenTTL}
}

// RevokeUser marks all outstanding tokens for the account as invalid.
func (s *RevocationStore) RevokeUser(ctx context.Context, userID int64) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Set(ctx, revocationKey(userID), time.Now().Unix(), s.ttl).Err()
}

// IsRevoked reports whether the account's tokens have been revoked.
func (s *RevocationStore) IsRevoked(ctx context.Context, userID int64) (bool, error) {
	if s == nil || s.client == nil {
		return false, nil
	}
	_, err := s.client.Get(ctx, revocationKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func revocationKey(userID int64) string {
	return fmt.Sprintf("auth:revoked:%d", userID)
}

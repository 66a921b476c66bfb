// README: Session store backed by Redis; a session lives while its key exists.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"carpool/internal/types"
)

const keyPrefix = "carpool:session:"

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

func (s *Store) Save(ctx context.Context, id string, email types.Email, ttl time.Duration) error {
	return s.redis.Set(ctx, keyPrefix+id, string(email), ttl).Err()
}

// Lookup returns the email bound to session id; ok is false once it expired or was revoked.
func (s *Store) Lookup(ctx context.Context, id string) (types.Email, bool, error) {
	v, err := s.redis.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return types.Email(v), true, nil
}

func (s *Store) Revoke(ctx context.Context, id string) error {
	return s.redis.Del(ctx, keyPrefix+id).Err()
}

package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the server-side session state: a revocation list keyed by JWT ID.
// Logging out revokes the token's jti until the token would have expired
// anyway, so a stolen or cached token stops working immediately.
type Store interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type store struct{ rdb *redis.Client }

func New(rdb *redis.Client) Store { return &store{rdb: rdb} }

func key(jti string) string { return "session:revoked:" + jti }

func (s *store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return s.rdb.Set(ctx, key(jti), "1", ttl).Err()
}

func (s *store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

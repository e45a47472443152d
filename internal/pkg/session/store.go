package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yigit/placement/internal/pkg/logger"
)

const keyPrefix = "session:revoked:"

// ErrStoreNotAvailable is returned by Ping when no Redis client is configured
var ErrStoreNotAvailable = errors.New("session store not available")

// RevocationStore keeps the IDs of logged-out session tokens until they
// would have expired anyway. A store without a client accepts every call
// and never reports a token as revoked.
type RevocationStore struct {
	client *redis.Client
}

// NewRevocationStore creates a store backed by client, which may be nil
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	logger.Info().Str("addr", addr).Msg("Connected to redis")
	return client, nil
}

// Enabled reports whether revocations are persisted
func (s *RevocationStore) Enabled() bool {
	return s != nil && s.client != nil
}

// Revoke marks jti as revoked for ttl. Non-positive ttl means the token has
// already expired and nothing is stored.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if !s.Enabled() || jti == "" || ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !s.Enabled() || jti == "" {
		return false, nil
	}
	_, err := s.client.Get(ctx, keyPrefix+jti).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return true, nil
}

// Ping verifies connectivity
func (s *RevocationStore) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return ErrStoreNotAvailable
	}
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client
func (s *RevocationStore) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Close()
}

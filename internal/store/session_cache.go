package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-vault-keeper/internal/config"
	"github.com/MKhiriev/go-vault-keeper/internal/logger"
	"github.com/redis/go-redis/v9"
)

// sessionCache is the Redis-backed implementation of [SessionCache]. Session
// payloads live only here: losing the cache logs everyone out but destroys no
// persistent data.
type sessionCache struct {
	logger *logger.Logger
	client *redis.Client
}

// NewConnectRedis opens a Redis connection, verifies it with a ping, and
// returns a [SessionCache] over it.
func NewConnectRedis(ctx context.Context, cfg config.Cache, log *logger.Logger) (SessionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Err(err).Str("func", "NewConnectRedis").Msg("error connecting session cache (ping)")
		return nil, fmt.Errorf("%w: %w", ErrSessionCacheUnavailable, err)
	}
	log.Info().Str("func", "NewConnectRedis").Msg("connected to session cache successfully")

	return &sessionCache{
		client: client,
		logger: log,
	}, nil
}

// Set stores a session payload under the given token with an absolute TTL.
func (c *sessionCache) Set(ctx context.Context, token string, payload []byte, ttl time.Duration) error {
	log := logger.FromContext(ctx)

	if err := c.client.Set(ctx, token, payload, ttl).Err(); err != nil {
		log.Err(err).Str("func", "sessionCache.Set").Msg("failed to store session")
		return fmt.Errorf("%w: %w", ErrSessionCacheUnavailable, err)
	}

	return nil
}

// Get retrieves a session payload by token.
//
// Error handling:
//   - Missing or expired key ([redis.Nil]) → [ErrSessionNotFound].
//   - Any other client-level error → [ErrSessionCacheUnavailable].
func (c *sessionCache) Get(ctx context.Context, token string) ([]byte, error) {
	log := logger.FromContext(ctx)

	payload, err := c.client.Get(ctx, token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}

		log.Err(err).Str("func", "sessionCache.Get").Msg("failed to read session")
		return nil, fmt.Errorf("%w: %w", ErrSessionCacheUnavailable, err)
	}

	return payload, nil
}

// Del removes a session by token. Deleting an absent token is not an error.
func (c *sessionCache) Del(ctx context.Context, token string) error {
	log := logger.FromContext(ctx)

	if err := c.client.Del(ctx, token).Err(); err != nil {
		log.Err(err).Str("func", "sessionCache.Del").Msg("failed to delete session")
		return fmt.Errorf("%w: %w", ErrSessionCacheUnavailable, err)
	}

	return nil
}

// Expire resets the TTL of an existing session, implementing sliding
// expiration. Returns [ErrSessionNotFound] if the token no longer exists.
func (c *sessionCache) Expire(ctx context.Context, token string, ttl time.Duration) error {
	log := logger.FromContext(ctx)

	ok, err := c.client.Expire(ctx, token, ttl).Result()
	if err != nil {
		log.Err(err).Str("func", "sessionCache.Expire").Msg("failed to refresh session ttl")
		return fmt.Errorf("%w: %w", ErrSessionCacheUnavailable, err)
	}
	if !ok {
		return ErrSessionNotFound
	}

	return nil
}

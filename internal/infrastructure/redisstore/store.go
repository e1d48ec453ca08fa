// Package redisstore backs the pending-verification store with Redis, for
// multi-instance deployments. One hash per identifier, expired via Redis TTL;
// HIncrBy gives the atomic attempt counter.
package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zycare/auth-api/internal/config"
	"github.com/zycare/auth-api/internal/domain"
)

const keyPrefix = "auth:pending:"

type Store struct {
	client *redis.Client
}

func New(cfg *config.Config) *Store {
	return &Store{client: redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})}
}

// NewWithClient is used by tests and callers that manage their own client.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func key(identifier string) string { return keyPrefix + identifier }

// Put writes the entry and sets the key TTL to the entry's remaining
// lifetime, overwriting any existing entry for the same identifier.
func (s *Store) Put(ctx context.Context, v *domain.PendingVerification) error {
	ttl := time.Until(time.Unix(v.ExpiresAt, 0))
	if ttl <= 0 {
		return fmt.Errorf("entry already expired: %w", domain.ErrBadRequest)
	}
	k := key(v.Identifier)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k, map[string]interface{}{
		"code_hash":    v.CodeHash,
		"owner_name":   v.OwnerName,
		"issued_at":    v.IssuedAt.UTC().Format(time.RFC3339),
		"expires_at":   v.ExpiresAt,
		"attempts":     v.Attempts,
		"max_attempts": v.MaxAttempts,
	})
	pipe.Expire(ctx, k, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Get(ctx context.Context, identifier string) (*domain.PendingVerification, error) {
	fields, err := s.client.HGetAll(ctx, key(identifier)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	v := &domain.PendingVerification{
		Identifier: identifier,
		CodeHash:   fields["code_hash"],
		OwnerName:  fields["owner_name"],
	}
	if t, err := time.Parse(time.RFC3339, fields["issued_at"]); err == nil {
		v.IssuedAt = t
	}
	v.ExpiresAt, _ = strconv.ParseInt(fields["expires_at"], 10, 64)
	v.Attempts, _ = strconv.Atoi(fields["attempts"])
	v.MaxAttempts, _ = strconv.Atoi(fields["max_attempts"])
	return v, nil
}

// IncrementAttempts bumps the counter atomically via HIncrBy. A counter that
// comes back as 1 on a key with no hash would mean the entry vanished; the
// existence check keeps the semantics aligned with the other backends.
func (s *Store) IncrementAttempts(ctx context.Context, identifier string) (int, error) {
	k := key(identifier)
	exists, err := s.client.Exists(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	n, err := s.client.HIncrBy(ctx, k, "attempts", 1).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Delete removes the entry. Deleting a non-existent entry is not an error.
func (s *Store) Delete(ctx context.Context, identifier string) error {
	return s.client.Del(ctx, key(identifier)).Err()
}

// DeleteExpired is a no-op: Redis evicts keys on TTL expiry by itself.
func (s *Store) DeleteExpired(context.Context) (int, error) {
	return 0, nil
}

// Ping verifies connectivity at startup.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

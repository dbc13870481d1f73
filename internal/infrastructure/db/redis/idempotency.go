package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tasknest/todo-api/internal/core/ports"
)

// IdempotencyTTL is how long a create key is remembered.
const IdempotencyTTL = 24 * time.Hour

// IdempotencyStore maps a client supplied Idempotency-Key to the task it
// created. Key format: idem:task:<owner_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// NewIdempotencyStore wraps client. A non-positive ttl selects IdempotencyTTL.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = IdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup returns the task id stored for key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, ownerID, key string) (int64, bool, error) {
	id, err := s.client.Get(ctx, s.key(ownerID, key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, true, nil
}

// Remember records taskID for key. An existing entry is kept.
func (s *IdempotencyStore) Remember(ctx context.Context, ownerID, key string, taskID int64) error {
	if err := s.client.SetNX(ctx, s.key(ownerID, key), taskID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(ownerID, key string) string {
	return fmt.Sprintf("idem:task:%s:%s", ownerID, key)
}

package proof

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"vitalis/pkg/domain"
)

const keyPrefix = "vitalis:proof:"

// RedisStore implements the dedup set on Redis. SETNX is the atomic
// check-and-set: exactly one of any number of racing consumers wins. Keys
// are written without TTL; the set never evicts.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) TryConsume(ctx context.Context, commitment domain.ProofCommitment) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+commitment.String(), 1, 0).Result()
	if err != nil {
		return false, fmt.Errorf("consume proof commitment: %w", err)
	}
	return ok, nil
}

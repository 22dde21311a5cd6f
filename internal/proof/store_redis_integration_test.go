//go:build integration

package proof_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"vitalis/internal/proof"
	"vitalis/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *proof.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = proof.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestTryConsume() {
	ctx := context.Background()

	consumed, err := s.store.TryConsume(ctx, "evidence-abc")
	s.Require().NoError(err)
	s.True(consumed)

	consumed, err = s.store.TryConsume(ctx, "evidence-abc")
	s.Require().NoError(err)
	s.False(consumed)
}

// TestConcurrentConsume verifies SETNX gives exactly one winner under
// contention across connections.
func (s *RedisStoreSuite) TestConcurrentConsume() {
	ctx := context.Background()
	const goroutines = 50

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumed, err := s.store.TryConsume(ctx, "contended-evidence")
			s.Require().NoError(err)
			if consumed {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
}

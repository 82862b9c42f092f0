//go:build integration

package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"trichluc/pkg/testutil/containers"
)

type RedisCounterSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisCounterSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCounterSuite))
}

func (s *RedisCounterSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedis(s.redis.Client)
}

func (s *RedisCounterSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCounterSuite) TestIncrementAndPeek() {
	ctx := context.Background()

	value, err := s.store.Increment(ctx, "Minh Hưng")
	s.Require().NoError(err)
	s.EqualValues(1, value)

	value, err = s.store.Peek(ctx, "Minh Hưng")
	s.Require().NoError(err)
	s.EqualValues(1, value)
}

func (s *RedisCounterSuite) TestOverwriteThenIncrement() {
	ctx := context.Background()

	s.Require().NoError(s.store.Overwrite(ctx, "k", 7))
	value, err := s.store.Increment(ctx, "k")
	s.Require().NoError(err)
	s.EqualValues(8, value)
}

func (s *RedisCounterSuite) TestConcurrentIncrementsAreGapless() {
	ctx := context.Background()
	const goroutines = 50

	var mu sync.Mutex
	seen := make(map[int64]bool, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			value, err := s.store.Increment(ctx, "race")
			s.NoError(err)
			mu.Lock()
			seen[value] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Require().Len(seen, goroutines)
	for i := int64(1); i <= goroutines; i++ {
		s.True(seen[i], "gap at %d", i)
	}
}

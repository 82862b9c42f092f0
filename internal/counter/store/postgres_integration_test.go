//go:build integration

package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"trichluc/pkg/testutil/containers"
)

type PostgresCounterSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *PostgresStore
}

func TestPostgresCounterSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresCounterSuite))
}

func (s *PostgresCounterSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.postgres.DB)
}

func (s *PostgresCounterSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "counters"))
}

func (s *PostgresCounterSuite) TestImplicitCreate() {
	ctx := context.Background()

	value, err := s.store.Peek(ctx, "Minh Hưng")
	s.Require().NoError(err)
	s.Zero(value)

	value, err = s.store.Increment(ctx, "Minh Hưng")
	s.Require().NoError(err)
	s.EqualValues(1, value)
}

func (s *PostgresCounterSuite) TestOverwriteThenIncrement() {
	ctx := context.Background()

	s.Require().NoError(s.store.Overwrite(ctx, "k", 100))
	value, err := s.store.Increment(ctx, "k")
	s.Require().NoError(err)
	s.EqualValues(101, value)
}

// TestConcurrentIncrementsAreGapless drives the upsert from many goroutines
// and verifies the returned values are exactly 1..N with no repeats.
func (s *PostgresCounterSuite) TestConcurrentIncrementsAreGapless() {
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
			s.False(seen[value], "duplicate issued value %d", value)
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

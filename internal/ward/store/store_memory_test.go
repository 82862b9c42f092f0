package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trichluc/internal/ward"
	"trichluc/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("list preserves insertion order", func(t *testing.T) {
		s := NewInMemory()
		for _, name := range []string{"Nha Bích", "Minh Hưng", "An Khương"} {
			require.NoError(t, s.Add(ctx, ward.Ward{Name: name, AddedAt: now}))
		}

		wards, err := s.List(ctx)
		require.NoError(t, err)
		names := make([]string, len(wards))
		for i, w := range wards {
			names[i] = w.Name
		}
		assert.Equal(t, []string{"Nha Bích", "Minh Hưng", "An Khương"}, names)
	})

	t.Run("add rejects duplicates case-sensitively", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.Add(ctx, ward.Ward{Name: "Minh Hưng", AddedAt: now}))

		err := s.Add(ctx, ward.Ward{Name: "Minh Hưng", AddedAt: now})
		assert.ErrorIs(t, err, sentinel.ErrConflict)

		// Different case is a different ward.
		assert.NoError(t, s.Add(ctx, ward.Ward{Name: "minh hưng", AddedAt: now}))
	})

	t.Run("remove missing ward", func(t *testing.T) {
		s := NewInMemory()
		assert.ErrorIs(t, s.Remove(ctx, "ghost"), sentinel.ErrNotFound)
	})

	t.Run("remove keeps order of the rest", func(t *testing.T) {
		s := NewInMemory()
		for _, name := range []string{"a", "b", "c"} {
			require.NoError(t, s.Add(ctx, ward.Ward{Name: name, AddedAt: now}))
		}
		require.NoError(t, s.Remove(ctx, "b"))

		wards, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, wards, 2)
		assert.Equal(t, "a", wards[0].Name)
		assert.Equal(t, "c", wards[1].Name)
	})

	t.Run("replace swaps the whole set", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.Add(ctx, ward.Ward{Name: "custom", AddedAt: now}))
		require.NoError(t, s.Replace(ctx, ward.DefaultWards(), now))

		wards, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, wards, len(ward.DefaultWards()))
		assert.Equal(t, "Minh Hưng", wards[0].Name)

		ok, err := s.Contains(ctx, "custom")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

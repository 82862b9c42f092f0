package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	counterstore "trichluc/internal/counter/store"
	"trichluc/internal/events"
	dErrors "trichluc/pkg/domain-errors"
)

func newService() (*Service, *counterstore.InMemoryStore) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	store := counterstore.NewInMemory()
	return New(store, logger, nil, events.NoopPublisher{}, 2025), store
}

func TestPeek_RoutesByScopeKey(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	_, err := store.Increment(ctx, "Minh Hưng")
	require.NoError(t, err)
	_, err = store.Increment(ctx, "Minh Hưng#2026")
	require.NoError(t, err)
	_, err = store.Increment(ctx, "Minh Hưng#2026")
	require.NoError(t, err)

	legacy, err := svc.Peek(ctx, "Minh Hưng", 2023)
	require.NoError(t, err)
	assert.EqualValues(t, 1, legacy, "every legacy year reads the ward bucket")

	current, err := svc.Peek(ctx, " Minh Hưng ", 2026)
	require.NoError(t, err)
	assert.EqualValues(t, 2, current)
}

func TestPeek_RequiresWard(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Peek(context.Background(), "  ", 2026)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestOverwrite(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	require.NoError(t, svc.Overwrite(ctx, "Nha Bích", 2026, 40))

	value, err := store.Peek(ctx, "Nha Bích#2026")
	require.NoError(t, err)
	assert.EqualValues(t, 40, value)

	next, err := store.Increment(ctx, "Nha Bích#2026")
	require.NoError(t, err)
	assert.EqualValues(t, 41, next, "increments resume from the overwritten value")
}

func TestOverwrite_RejectsNegative(t *testing.T) {
	svc, _ := newService()
	err := svc.Overwrite(context.Background(), "Nha Bích", 2026, -5)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

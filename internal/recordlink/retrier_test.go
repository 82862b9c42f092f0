package recordlink

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyLinker fails the first n attach attempts, then succeeds.
type flakyLinker struct {
	mu       sync.Mutex
	failures int
	attached map[string]int64
}

func (l *flakyLinker) FindByCode(context.Context, string) (*RecordMeta, error) {
	return nil, errors.New("not used")
}

func (l *flakyLinker) AttachIssuedNumber(_ context.Context, code string, number int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failures > 0 {
		l.failures--
		return errors.New("records system down")
	}
	if l.attached == nil {
		l.attached = make(map[string]int64)
	}
	l.attached[code] = number
	return nil
}

func (l *flakyLinker) attachedNumber(code string) (int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.attached[code]
	return n, ok
}

func newTestRetrier(linker Linker, maxAttempts int) *Retrier {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := NewRetrier(linker, logger, nil, maxAttempts)
	r.backoff = 10 * time.Millisecond
	return r
}

func TestRetrier_SucceedsFirstAttempt(t *testing.T) {
	linker := &flakyLinker{}
	r := newTestRetrier(linker, 3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	r.Enqueue("HS-2025-0042", 7)

	require.Eventually(t, func() bool {
		_, ok := linker.attachedNumber("HS-2025-0042")
		return ok
	}, time.Second, 10*time.Millisecond)

	n, _ := linker.attachedNumber("HS-2025-0042")
	assert.EqualValues(t, 7, n)
}

func TestRetrier_RetriesUntilSuccess(t *testing.T) {
	linker := &flakyLinker{failures: 2}
	r := newTestRetrier(linker, 5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	r.Enqueue("HS-2025-0042", 9)

	require.Eventually(t, func() bool {
		_, ok := linker.attachedNumber("HS-2025-0042")
		return ok
	}, 3*time.Second, 20*time.Millisecond)
}

func TestRetrier_GivesUpAfterMaxAttempts(t *testing.T) {
	linker := &flakyLinker{failures: 100}
	r := newTestRetrier(linker, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	r.Enqueue("HS-2025-0042", 9)

	time.Sleep(200 * time.Millisecond)
	_, ok := linker.attachedNumber("HS-2025-0042")
	assert.False(t, ok, "exhausted job is dropped, the issued number stays valid")
}

func TestRetrier_RunStopsOnCancel(t *testing.T) {
	r := newTestRetrier(&flakyLinker{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

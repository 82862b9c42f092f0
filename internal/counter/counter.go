package counter

import "context"

// Store is the durable scope-key to value map. It is the only component
// allowed to mutate counter values.
//
// Increment must be linearizable per scope key: concurrent callers on the
// same key each observe a distinct, gapless value, as if all increments were
// serialized. Implementations use a single atomic primitive (mutex, Redis
// INCR, or an atomic SQL upsert); a read-then-write-back sequence without a
// consistency guard is not an acceptable implementation.
type Store interface {
	// Increment adds exactly 1 to the counter and returns the new value.
	// A missing key reads as 0, so the first increment returns 1.
	Increment(ctx context.Context, scopeKey string) (int64, error)

	// Peek returns the current value without mutating it. The result may be
	// stale by the time an increment runs and must never be used as the
	// issued value.
	Peek(ctx context.Context, scopeKey string) (int64, error)

	// Overwrite replaces the stored value directly, bypassing increment
	// semantics. Administrative use only: manual correction or initializing
	// a migrated ward.
	Overwrite(ctx context.Context, scopeKey string, value int64) error
}

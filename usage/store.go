package usage

import (
	"context"
	"time"
)

// Store persists attempts and counters.
type Store interface {
	// Record stores a and increments its day counter atomically. A second
	// call with the same identity and key returns false and no error.
	Record(ctx context.Context, a Attempt) (recorded bool, err error)

	// Count returns the counter for identity, the UTC day of day, and kind.
	Count(ctx context.Context, identity string, day time.Time, kind string) (int64, error)
}

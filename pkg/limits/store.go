package limits

import (
	"context"

	"github.com/google/uuid"
)

// UsageStore persists per-user usage counters for the current billing period.
//
// A missing counter reads as zero usage and is lazily initialized on the
// first increment; absence is never an error. IncrementBy must be atomic
// relative to concurrent consumers of the same user.
type UsageStore interface {
	// Get returns the current usage of a resource for a user.
	Get(ctx context.Context, userID uuid.UUID, res Resource) (int64, error)

	// IncrementBy atomically adds delta to a user's usage counter and
	// returns the new value.
	IncrementBy(ctx context.Context, userID uuid.UUID, res Resource, delta int64) (int64, error)
}

package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists queue items.
//
// ClaimOldestPending is the linchpin of delivery correctness: the select and
// the pending->sending flip must be atomic so that two workers can never both
// claim the same item. Implementations return ErrNoItemToClaim when the
// queue has no pending work and ErrConcurrencyConflict when a status update
// finds the item no longer in the expected state.
type Repository interface {
	// CreateItem appends exactly one pending item.
	CreateItem(ctx context.Context, item *Item) error

	// GetItem loads an item by id.
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)

	// ClaimOldestPending atomically selects the oldest pending item (FIFO by
	// creation time), marks it sending, and records the claiming worker.
	ClaimOldestPending(ctx context.Context, workerID uuid.UUID) (*Item, error)

	// MarkSent finalizes a sending item with the provider's message id.
	MarkSent(ctx context.Context, itemID uuid.UUID, providerMessageID string) error

	// MarkFailed finalizes a sending item with the delivery error preserved
	// for diagnostics. Failed items are never deleted.
	MarkFailed(ctx context.Context, itemID uuid.UUID, errorMsg string) error

	// ListStuckSending returns items claimed longer than olderThan ago that
	// never reached a terminal state, for manual requeue.
	ListStuckSending(ctx context.Context, olderThan time.Duration) ([]*Item, error)

	// ListByOwner returns a user's items, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*Item, error)
}

// ContactRecorder records which coach addresses were actually emailed for a
// school, so the UI can flag "already contacted" on future sends.
type ContactRecorder interface {
	RecordContact(ctx context.Context, ownerID, schoolID uuid.UUID, addresses []string) error
}

package dispatch

import "errors"

var (
	// ErrRepositoryNil is returned when a nil repository is provided.
	ErrRepositoryNil = errors.New("dispatch.errors.repository_nil")

	// ErrAnonymousOwner is returned when enqueue is attempted without an
	// authenticated owner.
	ErrAnonymousOwner = errors.New("dispatch.errors.anonymous_owner")

	// ErrNoRecipients is returned when an item has no coach addresses.
	ErrNoRecipients = errors.New("dispatch.errors.no_recipients")

	// ErrEmptyContent is returned when an item has no rendered body.
	ErrEmptyContent = errors.New("dispatch.errors.empty_content")

	// ErrNoItemToClaim signals an empty queue; workers treat it as a normal
	// no-op, not a failure.
	ErrNoItemToClaim = errors.New("dispatch.errors.no_item_to_claim")

	// ErrItemNotFound is returned when an item id does not exist.
	ErrItemNotFound = errors.New("dispatch.errors.item_not_found")

	// ErrConcurrencyConflict is returned when a status update races another
	// worker: the item is no longer in the expected state. The loser skips
	// the item rather than erroring.
	ErrConcurrencyConflict = errors.New("dispatch.errors.concurrency_conflict")

	// ErrNotRequeueable is returned when Requeue targets an item that is
	// still pending or actively sending.
	ErrNotRequeueable = errors.New("dispatch.errors.not_requeueable")

	// ErrDeliveryClientNil is returned when a worker is built without a
	// delivery client.
	ErrDeliveryClientNil = errors.New("dispatch.errors.delivery_client_nil")
)

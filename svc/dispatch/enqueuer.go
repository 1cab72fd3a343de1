package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Enqueuer appends delivery work to the queue. It returns as soon as the
// item is persisted; delivery happens asynchronously in a worker.
type Enqueuer struct {
	repo Repository
}

// NewEnqueuer creates a new Enqueuer.
func NewEnqueuer(repo Repository) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	return &Enqueuer{repo: repo}, nil
}

// Enqueue validates params and persists exactly one pending item.
func (e *Enqueuer) Enqueue(ctx context.Context, params EnqueueParams) (*Item, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	item := &Item{
		ID:          uuid.New(),
		OwnerID:     params.OwnerID,
		SchoolID:    params.SchoolID,
		Recipients:  params.Recipients,
		Subject:     params.Subject,
		Content:     params.Content,
		Attachments: params.Attachments,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := e.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to enqueue item for school %s: %w", params.SchoolID, err)
	}
	return item, nil
}

// EnqueueBatch persists one pending item per params entry. A failing entry
// does not block the others: the successfully enqueued items are returned
// alongside the joined errors.
func (e *Enqueuer) EnqueueBatch(ctx context.Context, batch []EnqueueParams) ([]*Item, error) {
	items := make([]*Item, 0, len(batch))
	var errs []error

	for i, params := range batch {
		item, err := e.Enqueue(ctx, params)
		if err != nil {
			errs = append(errs, fmt.Errorf("batch entry %d (school %s): %w", i, params.SchoolID, err))
			continue
		}
		items = append(items, item)
	}

	return items, errors.Join(errs...)
}

// Requeue creates a fresh pending item carrying the content of a failed or
// stuck-sending item. History is never mutated: the original keeps its status
// and the new item gets its own id and creation time. Pending and sent items
// are not requeueable; re-sending a delivered email takes a new enqueue.
func (e *Enqueuer) Requeue(ctx context.Context, itemID uuid.UUID) (*Item, error) {
	orig, err := e.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if orig.Status == StatusPending {
		return nil, fmt.Errorf("%w: item %s is still pending", ErrNotRequeueable, itemID)
	}
	if orig.Status == StatusSent {
		return nil, fmt.Errorf("%w: item %s was already delivered", ErrNotRequeueable, itemID)
	}
	if orig.Status == StatusSending && orig.ClaimedAt != nil && time.Since(*orig.ClaimedAt) < stuckSendingBound {
		return nil, fmt.Errorf("%w: item %s is actively sending", ErrNotRequeueable, itemID)
	}

	return e.Enqueue(ctx, EnqueueParams{
		OwnerID:     orig.OwnerID,
		SchoolID:    orig.SchoolID,
		Recipients:  orig.Recipients,
		Subject:     orig.Subject,
		Content:     orig.Content,
		Attachments: orig.Attachments,
	})
}

// stuckSendingBound is how long a sending item must sit before it is
// considered abandoned by a dead worker and becomes eligible for requeue.
const stuckSendingBound = 15 * time.Minute

func validateParams(params EnqueueParams) error {
	if params.OwnerID == uuid.Nil {
		return ErrAnonymousOwner
	}
	if len(params.Recipients) == 0 {
		return ErrNoRecipients
	}
	if params.Content == "" {
		return ErrEmptyContent
	}
	return nil
}

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/athletereach/outreach/pkg/delivery"
	"github.com/athletereach/outreach/pkg/rawemail"
)

// AttachmentLoader resolves blob storage keys into attachment payloads at
// drain time.
type AttachmentLoader interface {
	Load(ctx context.Context, key string) (rawemail.Attachment, error)
}

// FailureNotifier is told about items that reached the failed state, so
// failure is observable to the owner rather than buried in the queue table.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, item *Item, cause error)
}

// Worker drains the dispatch queue one item at a time. Each DrainOne call
// claims, composes, and delivers a single item; horizontal scaling is done by
// invoking multiple workers concurrently; claim atomicity in the repository
// keeps them from double-delivering.
type Worker struct {
	repo     Repository
	client   delivery.Client
	recorder ContactRecorder
	notifier FailureNotifier
	loader   AttachmentLoader
	policy   rawemail.AddressPolicy
	workerID uuid.UUID
	logger   *slog.Logger

	pullInterval    time.Duration
	deliveryTimeout time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a queue worker.
func NewWorker(repo Repository, client delivery.Client, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	if client == nil {
		return nil, ErrDeliveryClientNil
	}

	w := &Worker{
		repo:            repo,
		client:          client,
		workerID:        uuid.New(),
		logger:          slog.Default(),
		pullInterval:    5 * time.Second,
		deliveryTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// DrainOne claims the oldest pending item and drives it to a terminal state.
//
// Returns (nil, nil) when the queue is empty or another worker won the claim
// race; both are normal no-ops. Delivery and composition failures are
// captured on the item as the failed status, not returned as errors; only
// repository failures propagate.
func (w *Worker) DrainOne(ctx context.Context) (item *Item, err error) {
	item, err = w.repo.ClaimOldestPending(ctx, w.workerID)
	if err != nil {
		if errors.Is(err, ErrNoItemToClaim) || errors.Is(err, ErrConcurrencyConflict) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim item: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			cause := fmt.Errorf("panic while processing item: %v", r)
			w.logger.Error("worker panicked",
				slog.String("worker_id", w.workerID.String()),
				slog.String("item_id", item.ID.String()),
				slog.Any("panic", r))
			item, err = w.fail(ctx, item, cause)
		}
	}()

	start := time.Now()

	msg, composeErr := w.compose(ctx, item)
	if composeErr != nil {
		return w.fail(ctx, item, composeErr)
	}

	deliverCtx, cancel := context.WithTimeout(ctx, w.deliveryTimeout)
	providerID, deliverErr := w.client.Deliver(deliverCtx, msg)
	cancel()

	if deliverErr != nil {
		return w.fail(ctx, item, deliverErr)
	}

	if err := w.repo.MarkSent(ctx, item.ID, providerID); err != nil {
		return nil, fmt.Errorf("failed to mark item %s sent: %w", item.ID, err)
	}

	now := time.Now().UTC()
	item.Status = StatusSent
	item.ProviderMessageID = &providerID
	item.CompletedAt = &now

	// Contact records are best effort: a bookkeeping failure must not undo a
	// successful delivery.
	if w.recorder != nil {
		if err := w.recorder.RecordContact(ctx, item.OwnerID, item.SchoolID, item.Recipients); err != nil {
			w.logger.Warn("failed to record contacted coaches",
				slog.String("item_id", item.ID.String()),
				slog.String("school_id", item.SchoolID.String()),
				slog.String("error", err.Error()))
		}
	}

	w.logger.Info("item delivered",
		slog.String("worker_id", w.workerID.String()),
		slog.String("item_id", item.ID.String()),
		slog.String("provider_message_id", providerID),
		slog.Duration("duration", time.Since(start)))

	return item, nil
}

func (w *Worker) compose(ctx context.Context, item *Item) (rawemail.TransportMessage, error) {
	var attachments []rawemail.Attachment
	for _, key := range item.Attachments {
		if w.loader == nil {
			return rawemail.TransportMessage{}, fmt.Errorf("no attachment loader configured for key %q", key)
		}
		att, err := w.loader.Load(ctx, key)
		if err != nil {
			return rawemail.TransportMessage{}, fmt.Errorf("failed to load attachment %q: %w", key, err)
		}
		attachments = append(attachments, att)
	}

	return rawemail.Compose(rawemail.Email{
		To:       item.Recipients,
		Subject:  item.Subject,
		HTMLBody: item.Content,
	}, attachments, w.policy)
}

// fail records the cause on the item and moves it to the terminal failed
// state. The item stays in the queue for inspection; nothing is deleted.
func (w *Worker) fail(ctx context.Context, item *Item, cause error) (*Item, error) {
	w.logger.Error("item failed",
		slog.String("worker_id", w.workerID.String()),
		slog.String("item_id", item.ID.String()),
		slog.String("school_id", item.SchoolID.String()),
		slog.String("error", cause.Error()))

	if err := w.repo.MarkFailed(ctx, item.ID, cause.Error()); err != nil {
		return nil, fmt.Errorf("failed to mark item %s failed: %w", item.ID, err)
	}

	now := time.Now().UTC()
	msg := cause.Error()
	item.Status = StatusFailed
	item.Error = &msg
	item.CompletedAt = &now

	if w.notifier != nil {
		w.notifier.NotifyFailure(ctx, item, cause)
	}
	return item, nil
}

// Start begins draining in the background until the context is canceled or
// Stop is called.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return errors.New("worker already started")
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("dispatch worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Duration("pull_interval", w.pullInterval))
	return nil
}

// Stop cancels the drain loop and waits for an in-flight item to finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return errors.New("worker not started")
	}
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.logger.Info("dispatch worker stopped", slog.String("worker_id", w.workerID.String()))
	return nil
}

// Run returns a function suitable for errgroup: it starts the worker and
// blocks until the context is done.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.DrainOne(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("drain failed",
					slog.String("worker_id", w.workerID.String()),
					slog.String("error", err.Error()))
			}
		}
	}
}

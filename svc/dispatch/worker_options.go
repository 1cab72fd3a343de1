package dispatch

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/athletereach/outreach/pkg/rawemail"
)

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithLogger sets the worker's logger.
func WithLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWorkerID overrides the generated worker identity. Useful in tests and
// when the identity must survive restarts.
func WithWorkerID(id uuid.UUID) WorkerOption {
	return func(w *Worker) {
		if id != uuid.Nil {
			w.workerID = id
		}
	}
}

// WithPullInterval sets how often the background loop polls for pending items.
func WithPullInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.pullInterval = d
		}
	}
}

// WithDeliveryTimeout bounds a single delivery attempt.
func WithDeliveryTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.deliveryTimeout = d
		}
	}
}

// WithAddressPolicy sets the From/Reply-To policy applied when composing
// transport messages.
func WithAddressPolicy(p rawemail.AddressPolicy) WorkerOption {
	return func(w *Worker) {
		w.policy = p
	}
}

// WithContactRecorder registers a recorder that is told about successfully
// contacted coaches.
func WithContactRecorder(r ContactRecorder) WorkerOption {
	return func(w *Worker) {
		w.recorder = r
	}
}

// WithFailureNotifier registers a notifier invoked for items that reach the
// failed state.
func WithFailureNotifier(n FailureNotifier) WorkerOption {
	return func(w *Worker) {
		w.notifier = n
	}
}

// WithAttachmentLoader registers the loader used to resolve attachment
// storage keys.
func WithAttachmentLoader(l AttachmentLoader) WorkerOption {
	return func(w *Worker) {
		w.loader = l
	}
}

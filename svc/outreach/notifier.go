package outreach

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/google/uuid"

	"github.com/athletereach/outreach/pkg/email"
	"github.com/athletereach/outreach/svc/dispatch"
)

// OwnerEmailLookup resolves a user id to their notification address.
type OwnerEmailLookup func(ctx context.Context, ownerID uuid.UUID) (string, error)

// FailureMailer emails the owner when one of their queued items fails, so a
// broken send is noticed without watching the queue screen.
type FailureMailer struct {
	sender email.EmailSender
	lookup OwnerEmailLookup
	logger *slog.Logger
}

// NewFailureMailer creates a notifier that sends through the given mailer.
func NewFailureMailer(sender email.EmailSender, lookup OwnerEmailLookup, logger *slog.Logger) *FailureMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FailureMailer{sender: sender, lookup: lookup, logger: logger}
}

// NotifyFailure implements dispatch.FailureNotifier. Notification problems
// are logged and swallowed; they must never affect queue processing.
func (m *FailureMailer) NotifyFailure(ctx context.Context, item *dispatch.Item, cause error) {
	address, err := m.lookup(ctx, item.OwnerID)
	if err != nil {
		m.logger.Warn("failed to resolve owner address for failure notice",
			slog.String("owner_id", item.OwnerID.String()),
			slog.String("error", err.Error()))
		return
	}

	body := fmt.Sprintf(
		"<p>Your email %q could not be delivered.</p><p>Reason: %s</p>"+
			"<p>You can requeue it from the outbox once the problem is resolved.</p>",
		html.EscapeString(item.Subject), html.EscapeString(cause.Error()))

	if err := m.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   address,
		Subject:  "An outreach email could not be delivered",
		BodyHTML: body,
		Tag:      "dispatch-failure",
	}); err != nil {
		m.logger.Warn("failed to send failure notice",
			slog.String("owner_id", item.OwnerID.String()),
			slog.String("item_id", item.ID.String()),
			slog.String("error", err.Error()))
	}
}

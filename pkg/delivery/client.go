package delivery

import (
	"context"

	"github.com/athletereach/outreach/pkg/rawemail"
)

// Client hands a composed raw message to the mailbox provider.
//
// Implementations must return the provider's message id on success. Any
// provider rejection or transport failure is returned as an error wrapping
// ErrDelivery with the provider's own message preserved for diagnostics.
type Client interface {
	Deliver(ctx context.Context, msg rawemail.TransportMessage) (providerID string, err error)
}

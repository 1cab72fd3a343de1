package dispatch

import (
	"time"

	"github.com/google/uuid"
)

// Status is the delivery state of a queue item.
//
// The lifecycle is strictly monotonic: pending -> sending -> sent | failed.
// No transition skips sending, terminal states are final, and a failed item
// is never mutated back to life. Re-sending means enqueueing a new item.
type Status string

const (
	StatusPending Status = "pending"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// validNext encodes the legal lifecycle edges.
var validNext = map[Status][]Status{
	StatusPending: {StatusSending},
	StatusSending: {StatusSent, StatusFailed},
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// edge.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range validNext[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Item is one unit of email delivery work. Recipients holds every coach
// address at the target school; Content is the fully rendered HTML body, so
// draining needs no further template work.
type Item struct {
	ID                uuid.UUID  `json:"id"`
	OwnerID           uuid.UUID  `json:"owner_id"`
	SchoolID          uuid.UUID  `json:"school_id"`
	Recipients        []string   `json:"recipients"`
	Subject           string     `json:"subject"`
	Content           string     `json:"content"`
	Attachments       []string   `json:"attachments,omitempty"` // blob storage keys
	Status            Status     `json:"status"`
	Error             *string    `json:"error,omitempty"`
	ProviderMessageID *string    `json:"provider_message_id,omitempty"`
	ClaimedBy         *uuid.UUID `json:"claimed_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ClaimedAt         *time.Time `json:"claimed_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// EnqueueParams describes one email to be queued for delivery.
type EnqueueParams struct {
	OwnerID     uuid.UUID
	SchoolID    uuid.UUID
	Recipients  []string
	Subject     string
	Content     string
	Attachments []string
}

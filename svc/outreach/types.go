package outreach

import (
	"time"

	"github.com/google/uuid"

	"github.com/athletereach/outreach/pkg/placeholder"
)

// Template is a reusable outreach email authored by an athlete. Subject and
// Body are free text that may contain placeholder tokens any number of times.
type Template struct {
	ID             uuid.UUID           `json:"id"`
	OwnerID        uuid.UUID           `json:"owner_id"`
	Title          string              `json:"title"`
	Subject        string              `json:"subject"`
	Body           string              `json:"body"`
	RequiredTokens []placeholder.Token `json:"required_tokens,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Readiness reports which required tokens are missing from the body. The
// result is advisory: the UI warns, the user may still send.
func (t Template) Readiness() placeholder.Check {
	return placeholder.CheckRequired(t.Body, t.RequiredTokens)
}

// Coach is one coach at a target school.
type Coach struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Recipient is the per-school binding input for one send. It is derived from
// school and coach records at send time and never persisted on its own.
type Recipient struct {
	SchoolID            uuid.UUID `json:"school_id"`
	SchoolName          string    `json:"school_name"`
	Coaches             []Coach   `json:"coaches"`
	PersonalizedMessage string    `json:"personalized_message,omitempty"`
}

// Addresses returns the coach email addresses, skipping coaches without one.
func (r Recipient) Addresses() []string {
	out := make([]string, 0, len(r.Coaches))
	for _, c := range r.Coaches {
		if c.Email != "" {
			out = append(out, c.Email)
		}
	}
	return out
}

// RenderedEmail is a fully substituted subject and body for one school.
type RenderedEmail struct {
	SchoolID   uuid.UUID `json:"school_id"`
	SchoolName string    `json:"school_name"`
	Recipients []string  `json:"recipients"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
}

// CoachEmailRecord remembers which addresses a user has actually emailed at a
// school. Upserted after successful delivery, merged rather than replaced, so
// the UI can flag already contacted coaches.
type CoachEmailRecord struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	SchoolID  uuid.UUID `json:"school_id"`
	Addresses []string  `json:"addresses"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTemplateParams describes a new template.
type CreateTemplateParams struct {
	OwnerID        uuid.UUID
	Title          string
	Subject        string
	Body           string
	RequiredTokens []placeholder.Token
}

// UpdateTemplateParams carries a template edit. The zero value of a field
// means "unchanged" except for Body and Subject, which are always written so
// autosave can clear them.
type UpdateTemplateParams struct {
	Title          string
	Subject        string
	Body           string
	RequiredTokens []placeholder.Token
}

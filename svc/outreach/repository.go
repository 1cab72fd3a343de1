package outreach

import (
	"context"

	"github.com/google/uuid"
)

// TemplateRepository persists outreach templates.
type TemplateRepository interface {
	CreateTemplate(ctx context.Context, tpl *Template) error

	// GetTemplate loads a template scoped to its owner. A template belonging
	// to another user reads as not found.
	GetTemplate(ctx context.Context, ownerID, id uuid.UUID) (*Template, error)

	// ListTemplates returns a user's templates, most recently updated first.
	ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]*Template, error)

	UpdateTemplate(ctx context.Context, tpl *Template) error

	DeleteTemplate(ctx context.Context, ownerID, id uuid.UUID) error
}

// RecordRepository persists coach email records.
type RecordRepository interface {
	// UpsertRecord merges addresses into the (owner, school) record, creating
	// it when absent. Merging never drops previously recorded addresses.
	UpsertRecord(ctx context.Context, ownerID, schoolID uuid.UUID, addresses []string) error

	// GetRecord loads the record for an (owner, school) pair, or
	// ErrRecordNotFound.
	GetRecord(ctx context.Context, ownerID, schoolID uuid.UUID) (*CoachEmailRecord, error)
}

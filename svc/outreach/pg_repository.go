package outreach

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/athletereach/outreach/pkg/pg"
	"github.com/athletereach/outreach/pkg/placeholder"
)

// PgTemplateRepository is the PostgreSQL-backed TemplateRepository.
type PgTemplateRepository struct {
	db *pgxpool.Pool
}

// NewPgTemplateRepository creates a repository backed by the given pool.
func NewPgTemplateRepository(db *pgxpool.Pool) *PgTemplateRepository {
	return &PgTemplateRepository{db: db}
}

const templateColumns = `id, owner_id, title, subject, body, required_tokens, created_at, updated_at`

func (r *PgTemplateRepository) CreateTemplate(ctx context.Context, tpl *Template) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO templates (id, owner_id, title, subject, body, required_tokens, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tpl.ID, tpl.OwnerID, tpl.Title, tpl.Subject, tpl.Body,
		tokenStrings(tpl.RequiredTokens), tpl.CreatedAt, tpl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}
	return nil
}

func (r *PgTemplateRepository) GetTemplate(ctx context.Context, ownerID, id uuid.UUID) (*Template, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1 AND owner_id = $2`, id, ownerID)

	tpl, err := scanTemplate(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return tpl, nil
}

func (r *PgTemplateRepository) ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]*Template, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return templates, nil
}

func (r *PgTemplateRepository) UpdateTemplate(ctx context.Context, tpl *Template) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE templates
		SET title = $1, subject = $2, body = $3, required_tokens = $4, updated_at = $5
		WHERE id = $6 AND owner_id = $7`,
		tpl.Title, tpl.Subject, tpl.Body, tokenStrings(tpl.RequiredTokens),
		tpl.UpdatedAt, tpl.ID, tpl.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *PgTemplateRepository) DeleteTemplate(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM templates WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func scanTemplate(row interface{ Scan(dest ...any) error }) (*Template, error) {
	var (
		tpl    Template
		tokens []string
	)
	if err := row.Scan(
		&tpl.ID, &tpl.OwnerID, &tpl.Title, &tpl.Subject, &tpl.Body,
		&tokens, &tpl.CreatedAt, &tpl.UpdatedAt,
	); err != nil {
		return nil, err
	}
	tpl.RequiredTokens = make([]placeholder.Token, len(tokens))
	for i, t := range tokens {
		tpl.RequiredTokens[i] = placeholder.Token(t)
	}
	return &tpl, nil
}

func tokenStrings(tokens []placeholder.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = string(t)
	}
	return out
}

// PgRecordRepository is the PostgreSQL-backed RecordRepository. The upsert
// merges address arrays server-side so concurrent workers cannot lose each
// other's writes.
type PgRecordRepository struct {
	db *pgxpool.Pool
}

// NewPgRecordRepository creates a repository backed by the given pool.
func NewPgRecordRepository(db *pgxpool.Pool) *PgRecordRepository {
	return &PgRecordRepository{db: db}
}

func (r *PgRecordRepository) UpsertRecord(ctx context.Context, ownerID, schoolID uuid.UUID, addresses []string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO coach_email_records (owner_id, school_id, addresses, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (owner_id, school_id) DO UPDATE
		SET addresses = (
			SELECT array_agg(DISTINCT a ORDER BY a)
			FROM unnest(coach_email_records.addresses || EXCLUDED.addresses) AS a
		), updated_at = now()`,
		ownerID, schoolID, addresses)
	if err != nil {
		return fmt.Errorf("failed to upsert coach email record: %w", err)
	}
	return nil
}

func (r *PgRecordRepository) GetRecord(ctx context.Context, ownerID, schoolID uuid.UUID) (*CoachEmailRecord, error) {
	var record CoachEmailRecord
	err := r.db.QueryRow(ctx, `
		SELECT owner_id, school_id, addresses, updated_at
		FROM coach_email_records
		WHERE owner_id = $1 AND school_id = $2`,
		ownerID, schoolID).Scan(&record.OwnerID, &record.SchoolID, &record.Addresses, &record.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load coach email record: %w", err)
	}
	return &record, nil
}

package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/athletereach/outreach/pkg/pg"
)

// PgRepository is the PostgreSQL-backed Repository. Claiming relies on
// FOR UPDATE SKIP LOCKED so concurrent workers never block each other and
// never select the same row; the status predicate on every UPDATE makes
// terminal transitions compare-and-set.
type PgRepository struct {
	db *pgxpool.Pool
}

// NewPgRepository creates a repository backed by the given pool.
func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

const itemColumns = `id, owner_id, school_id, recipients, subject, content, attachments,
	status, error, provider_message_id, claimed_by, created_at, claimed_at, completed_at`

func (r *PgRepository) CreateItem(ctx context.Context, item *Item) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO queue_items (id, owner_id, school_id, recipients, subject, content, attachments, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.OwnerID, item.SchoolID, item.Recipients, item.Subject,
		item.Content, item.Attachments, item.Status, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert queue item: %w", err)
	}
	return nil
}

func (r *PgRepository) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	row := r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM queue_items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load queue item: %w", err)
	}
	return item, nil
}

func (r *PgRepository) ClaimOldestPending(ctx context.Context, workerID uuid.UUID) (*Item, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE queue_items
		SET status = $1, claimed_by = $2, claimed_at = now()
		WHERE id = (
			SELECT id FROM queue_items
			WHERE status = $3
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		) AND status = $3
		RETURNING `+itemColumns,
		StatusSending, workerID, StatusPending)

	item, err := scanItem(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNoItemToClaim
		}
		return nil, fmt.Errorf("failed to claim queue item: %w", err)
	}
	return item, nil
}

func (r *PgRepository) MarkSent(ctx context.Context, itemID uuid.UUID, providerMessageID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE queue_items
		SET status = $1, provider_message_id = $2, completed_at = now()
		WHERE id = $3 AND status = $4`,
		StatusSent, providerMessageID, itemID, StatusSending)
	if err != nil {
		return fmt.Errorf("failed to mark queue item sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrencyConflict
	}
	return nil
}

func (r *PgRepository) MarkFailed(ctx context.Context, itemID uuid.UUID, errorMsg string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE queue_items
		SET status = $1, error = $2, completed_at = now()
		WHERE id = $3 AND status = $4`,
		StatusFailed, errorMsg, itemID, StatusSending)
	if err != nil {
		return fmt.Errorf("failed to mark queue item failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrencyConflict
	}
	return nil
}

func (r *PgRepository) ListStuckSending(ctx context.Context, olderThan time.Duration) ([]*Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM queue_items
		WHERE status = $1 AND claimed_at < now() - $2::interval
		ORDER BY created_at`,
		StatusSending, fmt.Sprintf("%f seconds", olderThan.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("failed to list stuck items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *PgRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*Item, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM queue_items
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list items by owner: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	if err := row.Scan(
		&item.ID, &item.OwnerID, &item.SchoolID, &item.Recipients, &item.Subject,
		&item.Content, &item.Attachments, &item.Status, &item.Error,
		&item.ProviderMessageID, &item.ClaimedBy, &item.CreatedAt,
		&item.ClaimedAt, &item.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

func scanItems(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queue items: %w", err)
	}
	return items, nil
}

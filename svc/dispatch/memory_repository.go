package dispatch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for tests and local
// development. A single mutex across read-modify-write makes the claim
// compare-and-set atomic, which is the same guarantee the SQL implementation
// gets from row locking.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Item
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]*Item)}
}

func (r *MemoryRepository) CreateItem(_ context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := cloneItem(item)
	r.items[cp.ID] = cp
	return nil
}

func (r *MemoryRepository) GetItem(_ context.Context, id uuid.UUID) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return cloneItem(item), nil
}

func (r *MemoryRepository) ClaimOldestPending(_ context.Context, workerID uuid.UUID) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var oldest *Item
	for _, item := range r.items {
		if item.Status != StatusPending {
			continue
		}
		if oldest == nil || item.CreatedAt.Before(oldest.CreatedAt) {
			oldest = item
		}
	}
	if oldest == nil {
		return nil, ErrNoItemToClaim
	}

	now := time.Now().UTC()
	oldest.Status = StatusSending
	oldest.ClaimedBy = &workerID
	oldest.ClaimedAt = &now
	return cloneItem(oldest), nil
}

func (r *MemoryRepository) MarkSent(_ context.Context, itemID uuid.UUID, providerMessageID string) error {
	return r.finalize(itemID, func(item *Item) {
		item.Status = StatusSent
		item.ProviderMessageID = &providerMessageID
	})
}

func (r *MemoryRepository) MarkFailed(_ context.Context, itemID uuid.UUID, errorMsg string) error {
	return r.finalize(itemID, func(item *Item) {
		item.Status = StatusFailed
		item.Error = &errorMsg
	})
}

func (r *MemoryRepository) finalize(itemID uuid.UUID, apply func(*Item)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok {
		return ErrItemNotFound
	}
	if item.Status != StatusSending {
		return ErrConcurrencyConflict
	}

	now := time.Now().UTC()
	apply(item)
	item.CompletedAt = &now
	return nil
}

func (r *MemoryRepository) ListStuckSending(_ context.Context, olderThan time.Duration) ([]*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	var stuck []*Item
	for _, item := range r.items {
		if item.Status == StatusSending && item.ClaimedAt != nil && item.ClaimedAt.Before(cutoff) {
			stuck = append(stuck, cloneItem(item))
		}
	}
	sort.Slice(stuck, func(i, j int) bool { return stuck[i].CreatedAt.Before(stuck[j].CreatedAt) })
	return stuck, nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID uuid.UUID, limit int) ([]*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Item
	for _, item := range r.items {
		if item.OwnerID == ownerID {
			out = append(out, cloneItem(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneItem(item *Item) *Item {
	cp := *item
	cp.Recipients = append([]string(nil), item.Recipients...)
	cp.Attachments = append([]string(nil), item.Attachments...)
	if item.Error != nil {
		v := *item.Error
		cp.Error = &v
	}
	if item.ProviderMessageID != nil {
		v := *item.ProviderMessageID
		cp.ProviderMessageID = &v
	}
	if item.ClaimedBy != nil {
		v := *item.ClaimedBy
		cp.ClaimedBy = &v
	}
	if item.ClaimedAt != nil {
		v := *item.ClaimedAt
		cp.ClaimedAt = &v
	}
	if item.CompletedAt != nil {
		v := *item.CompletedAt
		cp.CompletedAt = &v
	}
	return &cp
}

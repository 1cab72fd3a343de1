package outreach

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/athletereach/outreach/pkg/cache"
)

// Records tracks which coach addresses a user has already emailed per school.
// Reads go through an LRU cache; writes invalidate the cached entry so the
// next lookup sees the merged set.
type Records struct {
	repo  RecordRepository
	cache *cache.LRUCache[string, []string]
}

// DefaultRecordCacheSize bounds the in-process contacted-address cache.
const DefaultRecordCacheSize = 1024

// NewRecords creates a record service over the given repository.
func NewRecords(repo RecordRepository) *Records {
	return &Records{
		repo:  repo,
		cache: cache.NewLRUCache[string, []string](DefaultRecordCacheSize),
	}
}

// RecordContact merges the addresses into the (owner, school) record. It is
// called by the dispatch worker after a successful delivery.
func (r *Records) RecordContact(ctx context.Context, ownerID, schoolID uuid.UUID, addresses []string) error {
	if len(addresses) == 0 {
		return nil
	}
	if err := r.repo.UpsertRecord(ctx, ownerID, schoolID, normalizeAddresses(addresses)); err != nil {
		return fmt.Errorf("failed to upsert coach email record: %w", err)
	}
	r.cache.Remove(recordKey(ownerID, schoolID))
	return nil
}

// AlreadyContacted reports whether the user has previously emailed the given
// address at the school. Unknown (owner, school) pairs read as not contacted.
func (r *Records) AlreadyContacted(ctx context.Context, ownerID, schoolID uuid.UUID, address string) (bool, error) {
	addresses, err := r.contacted(ctx, ownerID, schoolID)
	if err != nil {
		return false, err
	}
	needle := normalizeAddress(address)
	for _, a := range addresses {
		if a == needle {
			return true, nil
		}
	}
	return false, nil
}

// ContactedAddresses returns every address on record for the (owner, school)
// pair, normalized and sorted.
func (r *Records) ContactedAddresses(ctx context.Context, ownerID, schoolID uuid.UUID) ([]string, error) {
	return r.contacted(ctx, ownerID, schoolID)
}

func (r *Records) contacted(ctx context.Context, ownerID, schoolID uuid.UUID) ([]string, error) {
	key := recordKey(ownerID, schoolID)
	if cached, ok := r.cache.Get(key); ok {
		return cached, nil
	}

	record, err := r.repo.GetRecord(ctx, ownerID, schoolID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			r.cache.Put(key, nil)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load coach email record: %w", err)
	}

	addresses := normalizeAddresses(record.Addresses)
	r.cache.Put(key, addresses)
	return addresses, nil
}

func recordKey(ownerID, schoolID uuid.UUID) string {
	return ownerID.String() + ":" + schoolID.String()
}

func normalizeAddress(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}

// normalizeAddresses lowercases, trims, dedupes, and sorts.
func normalizeAddresses(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		n := normalizeAddress(a)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

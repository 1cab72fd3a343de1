package outreach

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/athletereach/outreach/pkg/placeholder"
)

// MemoryTemplateRepository is an in-memory TemplateRepository for tests and
// local development.
type MemoryTemplateRepository struct {
	mu        sync.RWMutex
	templates map[uuid.UUID]*Template
}

// NewMemoryTemplateRepository creates an empty template repository.
func NewMemoryTemplateRepository() *MemoryTemplateRepository {
	return &MemoryTemplateRepository{templates: make(map[uuid.UUID]*Template)}
}

func (r *MemoryTemplateRepository) CreateTemplate(_ context.Context, tpl *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[tpl.ID] = cloneTemplate(tpl)
	return nil
}

func (r *MemoryTemplateRepository) GetTemplate(_ context.Context, ownerID, id uuid.UUID) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tpl, ok := r.templates[id]
	if !ok || tpl.OwnerID != ownerID {
		return nil, ErrTemplateNotFound
	}
	return cloneTemplate(tpl), nil
}

func (r *MemoryTemplateRepository) ListTemplates(_ context.Context, ownerID uuid.UUID) ([]*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Template
	for _, tpl := range r.templates {
		if tpl.OwnerID == ownerID {
			out = append(out, cloneTemplate(tpl))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryTemplateRepository) UpdateTemplate(_ context.Context, tpl *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.templates[tpl.ID]
	if !ok || existing.OwnerID != tpl.OwnerID {
		return ErrTemplateNotFound
	}
	r.templates[tpl.ID] = cloneTemplate(tpl)
	return nil
}

func (r *MemoryTemplateRepository) DeleteTemplate(_ context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.templates[id]
	if !ok || existing.OwnerID != ownerID {
		return ErrTemplateNotFound
	}
	delete(r.templates, id)
	return nil
}

func cloneTemplate(tpl *Template) *Template {
	cp := *tpl
	cp.RequiredTokens = append([]placeholder.Token(nil), tpl.RequiredTokens...)
	return &cp
}

// MemoryRecordRepository is an in-memory RecordRepository.
type MemoryRecordRepository struct {
	mu      sync.RWMutex
	records map[string]*CoachEmailRecord
}

// NewMemoryRecordRepository creates an empty record repository.
func NewMemoryRecordRepository() *MemoryRecordRepository {
	return &MemoryRecordRepository{records: make(map[string]*CoachEmailRecord)}
}

func (r *MemoryRecordRepository) UpsertRecord(_ context.Context, ownerID, schoolID uuid.UUID, addresses []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey(ownerID, schoolID)
	existing, ok := r.records[key]
	if !ok {
		r.records[key] = &CoachEmailRecord{
			OwnerID:   ownerID,
			SchoolID:  schoolID,
			Addresses: normalizeAddresses(addresses),
			UpdatedAt: time.Now().UTC(),
		}
		return nil
	}

	existing.Addresses = normalizeAddresses(append(existing.Addresses, addresses...))
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRecordRepository) GetRecord(_ context.Context, ownerID, schoolID uuid.UUID) (*CoachEmailRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[recordKey(ownerID, schoolID)]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *record
	cp.Addresses = append([]string(nil), record.Addresses...)
	return &cp, nil
}

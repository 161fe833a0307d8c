package calllog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrForced is returned by MemoryRepo when a forced failure is configured.
var ErrForced = errors.New("calllog: forced failure")

// MemoryRepo is an in-memory Repository useful for tests and local wiring.
// It honors the same (provider, external_call_id) uniqueness as Postgres.
// Not intended for production use.

type MemoryRepo struct {
	mu      sync.Mutex
	byKey   map[string]CallRecord
	clock   func() time.Time
	failKey string // when set, Upsert for this natural key returns ErrForced
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byKey: map[string]CallRecord{}, clock: time.Now}
}

func naturalKey(p Provider, externalCallID string) string {
	return string(p) + "|" + externalCallID
}

func (r *MemoryRepo) FindByProviderAndExternalCallID(_ context.Context, provider Provider, externalCallID string) (CallRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byKey[naturalKey(provider, externalCallID)]
	return rec, ok, nil
}

func (r *MemoryRepo) Upsert(_ context.Context, rec CallRecord) (CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := naturalKey(rec.Provider, rec.ExternalCallID)
	if r.failKey != "" && key == r.failKey {
		return CallRecord{}, ErrForced
	}

	now := r.clock().UTC()
	if existing, ok := r.byKey[key]; ok {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.CreatedAt = now
	}
	if rec.Status == "" {
		rec.Status = CallStatusUnknown
	}
	rec.UpdatedAt = now
	r.byKey[key] = rec
	return rec, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (CallRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.byKey {
		if rec.ID == id {
			return rec, true, nil
		}
	}
	return CallRecord{}, false, nil
}

func (r *MemoryRepo) List(_ context.Context, filter ListFilter) ([]CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []CallRecord
	for _, rec := range r.byKey {
		if filter.Provider != "" && rec.Provider != filter.Provider {
			continue
		}
		if filter.ExternalAssistantID != "" && rec.ExternalAssistantID != filter.ExternalAssistantID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Count reports the number of stored records.
func (r *MemoryRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byKey)
}

// FailUpsertFor makes Upsert return ErrForced for one natural key, to test
// per-item persistence failure handling.
func (r *MemoryRepo) FailUpsertFor(provider Provider, externalCallID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failKey = naturalKey(provider, externalCallID)
}

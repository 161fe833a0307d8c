package callsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/saityagci/newBackendFrontend-sub001/internal/calllog"
	"github.com/saityagci/newBackendFrontend-sub001/internal/payload"
)

// RemoteClient fetches the complete remote call/conversation list.
// Pagination is the client's concern; the orchestrator consumes the
// materialized set.
type RemoteClient interface {
	ListCalls(ctx context.Context) ([]json.RawMessage, error)
}

// Store is the narrow persistence surface the orchestrator needs.
// *calllog.PostgresRepo and *calllog.MemoryRepo satisfy it.
type Store interface {
	FindByProviderAndExternalCallID(ctx context.Context, provider calllog.Provider, externalCallID string) (calllog.CallRecord, bool, error)
	Upsert(ctx context.Context, rec calllog.CallRecord) (calllog.CallRecord, error)
}

// Summary is the immutable result of one completed sync run.
// A run that fails during fetch emits no Summary at all.
type Summary struct {
	Provider calllog.Provider `json:"provider"`

	Fetched int `json:"fetched"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`

	UpdatedIDs []string `json:"updated_ids,omitempty"`
	SkippedIDs []string `json:"skipped_ids,omitempty"`
	ErrorIDs   []string `json:"error_ids,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Orchestrator reconciles the remote call set against local storage:
// fetch, normalize each item, then create/update/skip per record. One bad
// item never aborts a run; an unreachable remote aborts before any
// reconciliation happens.
//
// It performs no locking of its own. Convergence under overlapping runs and
// concurrent webhook deliveries rests on the store's (provider,
// external_call_id) uniqueness; last write wins, which is acceptable because
// both paths write the same normalized shape.
type Orchestrator struct {
	provider calllog.Provider
	client   RemoteClient
	store    Store
	log      *slog.Logger
	clock    func() time.Time
}

func NewOrchestrator(provider calllog.Provider, client RemoteClient, store Store, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		provider: provider,
		client:   client,
		store:    store,
		log:      log,
		clock:    time.Now,
	}
}

// Run executes one sync pass. The returned error is non-nil only for
// run-level failures (fetch failed, context canceled); per-item extraction
// and persistence failures are counted in the Summary instead.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	start := o.clock().UTC()

	items, err := o.client.ListCalls(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("callsync: fetch %s: %w", o.provider, err)
	}

	s := Summary{Provider: o.provider, Fetched: len(items), StartedAt: start}
	for _, raw := range items {
		if ctx.Err() != nil {
			return Summary{}, ctx.Err()
		}

		rec, err := payload.Normalize(o.provider, raw)
		if err != nil {
			s.Errors++
			s.ErrorIDs = append(s.ErrorIDs, bestEffortID(raw))
			o.log.Warn("sync item unusable", "provider", o.provider, "err", err)
			continue
		}

		existing, found, err := o.store.FindByProviderAndExternalCallID(ctx, o.provider, rec.ExternalCallID)
		if err != nil {
			s.Errors++
			s.ErrorIDs = append(s.ErrorIDs, rec.ExternalCallID)
			continue
		}
		if found && existing.SameAs(rec) {
			s.Skipped++
			s.SkippedIDs = append(s.SkippedIDs, rec.ExternalCallID)
			continue
		}
		if found {
			rec.ID = existing.ID
			rec.CreatedAt = existing.CreatedAt
		}
		if _, err := o.store.Upsert(ctx, rec); err != nil {
			s.Errors++
			s.ErrorIDs = append(s.ErrorIDs, rec.ExternalCallID)
			o.log.Warn("sync item upsert failed", "provider", o.provider, "external_call_id", rec.ExternalCallID, "err", err)
			continue
		}
		s.Updated++
		s.UpdatedIDs = append(s.UpdatedIDs, rec.ExternalCallID)
	}

	s.DurationMS = o.clock().UTC().Sub(start).Milliseconds()
	o.log.Info("sync run completed",
		"provider", o.provider,
		"fetched", s.Fetched,
		"updated", s.Updated,
		"skipped", s.Skipped,
		"errors", s.Errors,
		"duration_ms", s.DurationMS,
	)
	return s, nil
}

// bestEffortID digs an identifier out of an unusable payload so the error
// bucket stays attributable. Falls back to a placeholder.
func bestEffortID(raw json.RawMessage) string {
	root, err := payload.Parse(raw)
	if err != nil {
		return "unparseable"
	}
	if id, ok := payload.FirstString(root, "conversation_id", "call_id", "id", "message.call.id"); ok {
		return id
	}
	return "unidentified"
}

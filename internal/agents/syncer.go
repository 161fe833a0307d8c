package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/saityagci/newBackendFrontend-sub001/internal/calllog"
	"github.com/saityagci/newBackendFrontend-sub001/internal/payload"
)

// RemoteCatalog lists the assistants configured at a provider.
// Pagination is the client's concern; the syncer sees the full set.
type RemoteCatalog interface {
	ListAgents(ctx context.Context) ([]json.RawMessage, error)
}

// Result summarizes one catalog sync pass.
type Result struct {
	Fetched int `json:"fetched"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Syncer mirrors a provider's assistant catalog into local storage so call
// records can be joined to agents by external_assistant_id.
type Syncer struct {
	provider calllog.Provider
	catalog  RemoteCatalog
	repo     Repository
	log      *slog.Logger
}

func NewSyncer(provider calllog.Provider, catalog RemoteCatalog, repo Repository, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{provider: provider, catalog: catalog, repo: repo, log: log}
}

var agentIDPaths = []string{"agent_id", "agentId", "assistant_id", "id"}
var agentNamePaths = []string{"name", "agent_name"}

// Run fetches the remote catalog and reconciles it. An item without a
// resolvable id counts as an error and the pass continues; a fetch failure
// fails the whole pass.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	items, err := s.catalog.ListAgents(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("agents: fetch %s catalog: %w", s.provider, err)
	}

	res := Result{Fetched: len(items)}
	for _, raw := range items {
		root, err := payload.Parse(raw)
		if err != nil {
			res.Errors++
			continue
		}
		externalID, ok := payload.FirstString(root, agentIDPaths...)
		if !ok || externalID == "" {
			res.Errors++
			continue
		}
		name, _ := payload.FirstString(root, agentNamePaths...)

		existing, found, err := s.repo.FindByProviderAndExternalID(ctx, s.provider, externalID)
		if err != nil {
			res.Errors++
			continue
		}
		if found && existing.Name == name {
			res.Skipped++
			continue
		}
		if _, err := s.repo.Upsert(ctx, Agent{Provider: s.provider, ExternalAssistantID: externalID, Name: name}); err != nil {
			res.Errors++
			continue
		}
		res.Updated++
	}

	s.log.Info("agent catalog sync",
		"provider", s.provider,
		"fetched", res.Fetched,
		"updated", res.Updated,
		"skipped", res.Skipped,
		"errors", res.Errors,
	)
	return res, nil
}

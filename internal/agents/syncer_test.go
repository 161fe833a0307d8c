package agents

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/saityagci/newBackendFrontend-sub001/internal/calllog"
)

type stubCatalog struct {
	items []json.RawMessage
	err   error
}

func (s stubCatalog) ListAgents(ctx context.Context) ([]json.RawMessage, error) {
	return s.items, s.err
}

func TestSyncer_CreatesThenSkipsUnchangedAgents(t *testing.T) {
	repo := NewMemoryRepo()
	catalog := stubCatalog{items: []json.RawMessage{
		json.RawMessage(`{"agent_id":"a-1","name":"Receptionist"}`),
		json.RawMessage(`{"agent_id":"a-2","name":"Scheduler"}`),
	}}
	s := NewSyncer(calllog.ProviderElevenLabs, catalog, repo, nil)

	first, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if first.Fetched != 2 || first.Updated != 2 || first.Skipped != 0 {
		t.Fatalf("unexpected first pass: %+v", first)
	}

	second, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if second.Updated != 0 || second.Skipped != 2 {
		t.Fatalf("unchanged catalog must be all skips: %+v", second)
	}
}

func TestSyncer_RenameCountsAsUpdate(t *testing.T) {
	repo := NewMemoryRepo()
	s := NewSyncer(calllog.ProviderElevenLabs, stubCatalog{items: []json.RawMessage{
		json.RawMessage(`{"agent_id":"a-1","name":"Old"}`),
	}}, repo, nil)
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	s = NewSyncer(calllog.ProviderElevenLabs, stubCatalog{items: []json.RawMessage{
		json.RawMessage(`{"agent_id":"a-1","name":"New"}`),
	}}, repo, nil)
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Updated != 1 || res.Skipped != 0 {
		t.Fatalf("rename must count as update: %+v", res)
	}

	a, found, _ := repo.FindByProviderAndExternalID(context.Background(), calllog.ProviderElevenLabs, "a-1")
	if !found || a.Name != "New" {
		t.Fatalf("expected renamed agent, got %+v found=%v", a, found)
	}
}

func TestSyncer_BadItemCountsErrorAndContinues(t *testing.T) {
	repo := NewMemoryRepo()
	s := NewSyncer(calllog.ProviderElevenLabs, stubCatalog{items: []json.RawMessage{
		json.RawMessage(`{"name":"no id here"}`),
		json.RawMessage(`not even json`),
		json.RawMessage(`{"agent_id":"a-3","name":"Survivor"}`),
	}}, repo, nil)

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Errors != 2 || res.Updated != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSyncer_FetchFailureFailsPass(t *testing.T) {
	s := NewSyncer(calllog.ProviderElevenLabs, stubCatalog{err: errors.New("remote down")}, NewMemoryRepo(), nil)
	if _, err := s.Run(context.Background()); err == nil {
		t.Fatalf("expected fetch failure to propagate")
	}
}

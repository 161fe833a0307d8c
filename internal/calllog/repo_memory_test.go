package calllog

import (
	"context"
	"testing"
)

func TestMemoryRepo_UpsertIsIdempotentByNaturalKey(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	first, err := repo.Upsert(ctx, CallRecord{Provider: ProviderElevenLabs, ExternalCallID: "conv-1", Status: CallStatusInProgress})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	second, err := repo.Upsert(ctx, CallRecord{Provider: ProviderElevenLabs, ExternalCallID: "conv-1", Status: CallStatusCompleted})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if repo.Count() != 1 {
		t.Fatalf("expected one row, got %d", repo.Count())
	}
	if second.ID != first.ID {
		t.Fatalf("row id must survive updates")
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at must survive updates")
	}
	if second.Status != CallStatusCompleted {
		t.Fatalf("expected updated status, got %q", second.Status)
	}
}

func TestMemoryRepo_SameExternalIDDifferentProviderIsSeparate(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, CallRecord{Provider: ProviderVapi, ExternalCallID: "id-1"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := repo.Upsert(ctx, CallRecord{Provider: ProviderElevenLabs, ExternalCallID: "id-1"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if repo.Count() != 2 {
		t.Fatalf("expected two rows, got %d", repo.Count())
	}
}

func TestService_GetUnknownIDIsNotFound(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.Get(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), ""); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestService_ListRejectsUnknownProvider(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.List(context.Background(), ListFilter{Provider: "TWILIO"}); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

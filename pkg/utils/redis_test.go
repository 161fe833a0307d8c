package utils

import (
	"context"
	"testing"
	"time"
)

func TestSyncLockReleaseScriptCompiles(t *testing.T) {
	// Compile-time smoke test: script should be initialized.
	if syncLockReleaseScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}

func TestAcquireSyncLock_ValidatesInputs(t *testing.T) {
	ctx := context.Background()
	if _, err := AcquireSyncLock(ctx, nil, "k", "t", time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := AcquireSyncLock(ctx, nil, "", "t", time.Second); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestReleaseSyncLock_ValidatesInputs(t *testing.T) {
	if err := ReleaseSyncLock(context.Background(), nil, "k", "t"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	entry := &CacheEntry{
		CacheKey:     "key-1",
		ResponseText: "use git rebase -i",
		Provider:     "anthropic",
	}
	if err := store.SetCached(ctx, entry); err != nil {
		t.Fatalf("SetCached() error = %v", err)
	}

	got, err := store.GetCached(ctx, "key-1")
	if err != nil {
		t.Fatalf("GetCached() error = %v", err)
	}
	if got.ResponseText != entry.ResponseText {
		t.Errorf("ResponseText = %q, want %q", got.ResponseText, entry.ResponseText)
	}
	if got.ExpiresAtUnixMs <= got.CreatedAtUnixMs {
		t.Error("default TTL not applied")
	}
}

func TestCache_Miss(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	_, err := store.GetCached(context.Background(), "absent")
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("error = %v, want ErrCacheNotFound", err)
	}
}

func TestCache_ExpiredTreatedAsMiss(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()
	ctx := context.Background()

	now := time.Now().UnixMilli()
	entry := &CacheEntry{
		CacheKey:        "stale",
		ResponseText:    "old answer",
		Provider:        "openai",
		CreatedAtUnixMs: now - 2000,
		ExpiresAtUnixMs: now - 1000,
	}
	if err := store.SetCached(ctx, entry); err != nil {
		t.Fatalf("SetCached() error = %v", err)
	}

	if _, err := store.GetCached(ctx, "stale"); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("error = %v, want ErrCacheNotFound for expired entry", err)
	}

	pruned, err := store.PruneExpiredCache(ctx)
	if err != nil {
		t.Fatalf("PruneExpiredCache() error = %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}
}

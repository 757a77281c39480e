package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	store := NewMemoryStore()

	store.Set("k", "v", time.Minute)
	if got, ok := store.Get("k"); !ok || got != "v" {
		t.Fatalf("Get after Set = (%q, %v), want (v, true)", got, ok)
	}

	store.Delete("k")
	if _, ok := store.Get("k"); ok {
		t.Fatal("expected key to be gone after Delete")
	}
}

func TestMemoryStore_GetExpired(t *testing.T) {
	store := NewMemoryStore()

	store.Set("k", "v", -time.Second)
	if _, ok := store.Get("k"); ok {
		t.Fatal("expected expired key to be treated as missing")
	}
}

func TestMemoryStore_FirstSeen(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.FirstSeen(ctx, "wa:wamid.1")
	if err != nil || !first {
		t.Fatalf("first claim = (%v, %v), want (true, nil)", first, err)
	}

	again, err := store.FirstSeen(ctx, "wa:wamid.1")
	if err != nil || again {
		t.Fatalf("second claim = (%v, %v), want (false, nil)", again, err)
	}
}

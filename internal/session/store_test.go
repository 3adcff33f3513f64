package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr
}

func testSession(now time.Time) *Session {
	return &Session{
		ID:          "sess-1",
		UserID:      "u1",
		TenantID:    "t1",
		Roles:       []string{"user"},
		RawToken:    "raw",
		TokenExpiry: now.Add(time.Hour),
		CreatedAt:   now,
		ExpiresAt:   now.Add(24 * time.Hour),
	}
}

func TestRedisStore_PutGetDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.Put(ctx, testSession(now)); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "u1" || got.TenantID != "t1" || got.RawToken != "raw" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "sess-1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after delete, got %v", err)
	}
}

func TestRedisStore_UnknownSession(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestRedisStore_SessionsEvictOnExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sess := testSession(now)
	sess.ExpiresAt = now.Add(time.Minute)
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after TTL, got %v", err)
	}
}

func TestRedisStore_RejectsPastExpiry(t *testing.T) {
	store, _ := newTestStore(t)
	sess := testSession(time.Now().UTC().Add(-48 * time.Hour))
	if err := store.Put(context.Background(), sess); err == nil {
		t.Fatalf("expected error for session expiring in the past")
	}
}

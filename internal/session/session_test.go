package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return NewRedisStore(rdb, "test", ttl), mr
}

func TestNewID(t *testing.T) {
	a, err := NewID()
	if err != nil {
		t.Fatalf("NewID failed: %v", err)
	}
	b, err := NewID()
	if err != nil {
		t.Fatalf("NewID failed: %v", err)
	}
	if a == b {
		t.Error("expected distinct session ids")
	}
	if !ValidID(a) {
		t.Errorf("expected %q to be valid", a)
	}
	if ValidID("short") || ValidID("") {
		t.Error("expected malformed ids to be invalid")
	}
}

func TestMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	if _, ok, err := store.Get(ctx, "sid", "k"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "sid", "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := store.Get(ctx, "sid", "k")
	if err != nil || !ok || v != "v" {
		t.Errorf("want v, got %q ok=%v err=%v", v, ok, err)
	}

	// 別セッションからは見えない
	if _, ok, _ := store.Get(ctx, "other", "k"); ok {
		t.Error("expected key to be scoped to its session")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "sid", "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	now = now.Add(59 * time.Second)
	if _, ok, _ := store.Get(ctx, "sid", "k"); !ok {
		t.Error("expected key before expiry")
	}

	now = now.Add(time.Second)
	if _, ok, _ := store.Get(ctx, "sid", "k"); ok {
		t.Error("expected key to expire")
	}
}

func TestMemoryStore_SweepsAbandonedSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for _, sid := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, sid, "k", "v"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	// a, b, c は二度と読まれないまま期限切れになる
	now = now.Add(2 * time.Minute)
	if err := store.Set(ctx, "d", "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.sessions) != 1 {
		t.Errorf("expected only the live session to remain, got %d", len(store.sessions))
	}
	if _, ok := store.sessions["d"]; !ok {
		t.Error("expected the new session to be kept")
	}
}

func TestRedisStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStoreTest(t, time.Hour)

	if _, ok, err := store.Get(ctx, "sid", "k"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "sid", "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := store.Get(ctx, "sid", "k")
	if err != nil || !ok || v != "v" {
		t.Errorf("want v, got %q ok=%v err=%v", v, ok, err)
	}

	if got := mr.HGet("test:sid", "k"); got != "v" {
		t.Errorf("expected hash field in redis, got %q", got)
	}
	if ttl := mr.TTL("test:sid"); ttl != time.Hour {
		t.Errorf("expected ttl 1h, got %v", ttl)
	}

	mr.FastForward(time.Hour + time.Second)
	if _, ok, _ := store.Get(ctx, "sid", "k"); ok {
		t.Error("expected key to expire")
	}
}

func TestRedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStoreTest(t, time.Hour)
	mr.Close()

	if _, _, err := store.Get(ctx, "sid", "k"); err == nil {
		t.Error("expected error when redis is down")
	}
	if err := store.Set(ctx, "sid", "k", "v"); err == nil {
		t.Error("expected error when redis is down")
	}
}

func TestMiddleware_IssuesAndReusesCookie(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	var seen []string
	h := Middleware(store, CookieOptions{Name: "sid", MaxAge: time.Hour})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := FromContext(r.Context())
			if !ok {
				t.Fatal("expected session in context")
			}
			seen = append(seen, s.ID())
			if err := s.Set(r.Context(), "k", "v"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "sid" || !cookies[0].HttpOnly {
		t.Fatalf("expected one HttpOnly session cookie, got %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 0 {
		t.Error("expected no new cookie for a known session")
	}

	if len(seen) != 2 || seen[0] != seen[1] {
		t.Errorf("expected same session id across requests, got %v", seen)
	}

	// 不正な形式のCookieは新しいIDで置き換える
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 1 {
		t.Error("expected a fresh cookie for a malformed session id")
	}
	if seen[2] == "forged" {
		t.Error("expected malformed session id to be replaced")
	}
}

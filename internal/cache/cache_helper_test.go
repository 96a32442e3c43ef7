package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T, prefix string) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, prefix), mr
}

func TestCacheHelperSetGet(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t, "proposal:")

	type payload struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
	}

	if err := helper.Set(ctx, "id:1", payload{ID: 1, Title: "Talk"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "id:1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Talk" {
		t.Errorf("got %q, want %q", got.Title, "Talk")
	}
}

func TestCacheHelperGetMiss(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t, "proposal:")

	var dest struct{}
	if err := helper.Get(ctx, "missing", &dest); err != ErrCacheNotFound {
		t.Errorf("got %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperNilClient(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "")

	var dest struct{}
	if err := helper.Get(ctx, "key", &dest); err != ErrCacheNotAvailable {
		t.Errorf("get: got %v, want ErrCacheNotAvailable", err)
	}
	if err := helper.Set(ctx, "key", struct{}{}, time.Minute); err != nil {
		t.Errorf("set should degrade gracefully, got %v", err)
	}
	if err := helper.InvalidatePattern(ctx, "*"); err != nil {
		t.Errorf("invalidate should degrade gracefully, got %v", err)
	}
}

func TestCacheHelperInvalidatePattern(t *testing.T) {
	ctx := context.Background()
	helper, mr := newTestHelper(t, "top_rated:")

	for _, key := range []string{"limit:10", "limit:25", "limit:50"} {
		if err := helper.Set(ctx, key, 1, time.Minute); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	if err := helper.InvalidatePattern(ctx, "limit:*"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if mr.Exists("top_rated:limit:10") || mr.Exists("top_rated:limit:50") {
		t.Error("pattern keys should be gone")
	}
}

func TestCacheOrExecute(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t, "tag:")

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []string{"go", "testing"}, nil
	}

	var first []string
	if err := helper.CacheOrExecute(ctx, "list:all", &first, time.Minute, fetch); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("fetch should run once, ran %d times", calls)
	}

	// The async cache write races the second read; poll briefly
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		var probe []string
		if err := helper.Get(ctx, "list:all", &probe); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	var second []string
	if err := helper.CacheOrExecute(ctx, "list:all", &second, time.Minute, fetch); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls != 1 {
		t.Errorf("second call should hit the cache, fetch ran %d times", calls)
	}
	if len(second) != 2 {
		t.Errorf("cached value lost: %v", second)
	}
}

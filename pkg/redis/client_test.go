package redis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.ItemKey("Nicole", "abc"); got != "trolley:item:Nicole:abc" {
		t.Fatalf("unexpected item key %s", got)
	}
	if got := client.ItemScanPattern("Nicole"); got != "trolley:item:Nicole:*" {
		t.Fatalf("unexpected owner scan pattern %s", got)
	}
	if got := client.ItemScanPattern(""); got != "trolley:item:*" {
		t.Fatalf("unexpected household scan pattern %s", got)
	}
	if got := client.ShopKey("s1"); got != "trolley:shop:s1" {
		t.Fatalf("unexpected shop key %s", got)
	}
	if got := client.LayoutKey(); got != "trolley:layout:active" {
		t.Fatalf("unexpected layout key %s", got)
	}
	if got := client.CacheKey("deadbeef"); got != "trolley:aicache:deadbeef" {
		t.Fatalf("unexpected cache key %s", got)
	}
	if got := client.CompletionLockKey(); got != "trolley:lock:complete" {
		t.Fatalf("unexpected lock key %s", got)
	}
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	if err := client.Set(ctx, "trolley:item:o:1", `{"name":"Milk"}`, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value, err := client.Get(ctx, "trolley:item:o:1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if value != `{"name":"Milk"}` {
		t.Fatalf("unexpected value %q", value)
	}

	deleted, err := client.Del(ctx, "trolley:item:o:1")
	if err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deletion, got %d", deleted)
	}
	if _, err := client.Get(ctx, "trolley:item:o:1"); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestSetNXIsConditional(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	ok, err := client.SetNX(ctx, "trolley:lock:complete:o", "owner-1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first setnx should succeed, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "trolley:lock:complete:o", "owner-2", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("second setnx should fail while key exists")
	}
}

func TestScanKeysAndGetMany(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	seed := map[string]string{
		"trolley:item:Nicole:1":   "a",
		"trolley:item:Nicole:2":   "b",
		"trolley:item:Gianluca:3": "c",
		"trolley:shop:x":          "d",
	}
	for k, v := range seed {
		if err := client.Set(ctx, k, v, 0); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	keys, err := client.ScanKeys(ctx, client.ItemScanPattern("Nicole"))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "trolley:item:Nicole:1" {
		t.Fatalf("unexpected keys %v", keys)
	}

	all, err := client.ScanKeys(ctx, client.ItemScanPattern(""))
	if err != nil {
		t.Fatalf("scan all failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 item keys across owners, got %d", len(all))
	}

	values, err := client.GetMany(ctx, "trolley:item:Nicole:1", "trolley:item:missing")
	if err != nil {
		t.Fatalf("getmany failed: %v", err)
	}
	if values[0] != "a" || values[1] != "" {
		t.Fatalf("unexpected values %v", values)
	}
}

type mockCmdable struct {
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			removed++
		}
		delete(m.data, key)
	}
	return redis.NewIntResult(removed, nil)
}

func (m *mockCmdable) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	prefix := strings.TrimSuffix(match, "*")
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	cmd := redis.NewScanCmd(ctx, nil)
	cmd.SetVal(keys, 0)
	return cmd
}

func (m *mockCmdable) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	values := make([]any, len(keys))
	for i, key := range keys {
		if v, ok := m.data[key]; ok {
			values[i] = v
		}
	}
	cmd := redis.NewSliceCmd(ctx)
	cmd.SetVal(values)
	return cmd
}

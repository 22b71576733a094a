package worker

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore { return &fakeStore{values: map[string]string{}} }

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) (int64, error) {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return removed, nil
}

func TestLockAcquireAndRelease(t *testing.T) {
	store := newFakeStore()
	lock, err := NewRedisLock(store, "trolley:lock:reconcile", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected acquisition, got ok=%v err=%v", ok, err)
	}

	other, _ := NewRedisLock(store, "trolley:lock:reconcile", time.Minute)
	ok, err = other.Acquire(context.Background())
	if err != nil || ok {
		t.Fatalf("second holder must be rejected, got ok=%v err=%v", ok, err)
	}

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = other.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("lock should be free after release, got ok=%v err=%v", ok, err)
	}
}

func TestReleaseLeavesForeignLockAlone(t *testing.T) {
	store := newFakeStore()
	store.values["trolley:lock:reconcile"] = "someone-else"

	lock, err := NewRedisLock(store, "trolley:lock:reconcile", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release without ownership must be a no-op: %v", err)
	}
	if store.values["trolley:lock:reconcile"] != "someone-else" {
		t.Fatal("foreign lock value must be untouched")
	}
}

package cron

import (
	"context"
	"sync"
	"testing"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	vals map[string]string
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vals == nil {
		m.vals = map[string]string{}
	}
	if _, ok := m.vals[key]; ok {
		return false, nil
	}
	m.vals[key] = value.(string)
	return true, nil
}

func (m *memoryStore) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vals[key] != expected {
		return false, nil
	}
	delete(m.vals, key)
	return true, nil
}

func TestRedisLockExclusive(t *testing.T) {
	store := &memoryStore{}
	ctx := context.Background()
	first, err := NewRedisLock(store, "sf:lock:cron", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(store, "sf:lock:cron", time.Minute)

	if ok, err := first.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatalf("second acquire should fail while held")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if _, held := store.vals["sf:lock:cron"]; !held {
		t.Fatalf("non-owner release dropped the lock")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := second.Acquire(ctx); !ok {
		t.Fatalf("acquire after release should succeed")
	}
}

func TestRedisLockRequiresKey(t *testing.T) {
	if _, err := NewRedisLock(&memoryStore{}, "", 0); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := NewRedisLock(nil, "k", 0); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestLocalLock(t *testing.T) {
	lock := NewLocalLock()
	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatalf("first acquire failed")
	}
	if ok, _ := lock.Acquire(ctx); ok {
		t.Fatalf("second acquire should fail")
	}
	_ = lock.Release(ctx)
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatalf("acquire after release failed")
	}
}

package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
)

type fakeLockStore struct {
	mu       sync.Mutex
	values   map[string]string
	setErr   error
	releases int
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: map[string]string{}}
}

func (f *fakeLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return false, f.setErr
	}
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeLockStore) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[key] != expected {
		return false, nil
	}
	delete(f.values, key)
	f.releases++
	return true, nil
}

func (f *fakeLockStore) LockKey(scope, id string) string {
	return "sf:lock:" + scope + ":" + id
}

func TestRedisLockerAcquireAndRelease(t *testing.T) {
	store := newFakeLockStore()
	locker, err := NewRedisLocker(RedisLockerParams{Store: store, Wait: 50 * time.Millisecond})
	require.NoError(t, err)

	product := uuid.New()
	unlock, err := locker.Lock(context.Background(), product)
	require.NoError(t, err)
	assert.Contains(t, store.values, "sf:lock:product:"+product.String())

	unlock()
	unlock()
	assert.Equal(t, 1, store.releases)
	assert.Empty(t, store.values)
}

func TestRedisLockerTimesOutWhenHeld(t *testing.T) {
	store := newFakeLockStore()
	locker, err := NewRedisLocker(RedisLockerParams{Store: store, Wait: 40 * time.Millisecond})
	require.NoError(t, err)

	product := uuid.New()
	unlock, err := locker.Lock(context.Background(), product)
	require.NoError(t, err)
	defer unlock()

	_, err = locker.Lock(context.Background(), product)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))

	other, err := locker.Lock(context.Background(), uuid.New())
	require.NoError(t, err, "other products are independent")
	other()
}

func TestRedisLockerWaitsForRelease(t *testing.T) {
	store := newFakeLockStore()
	locker, err := NewRedisLocker(RedisLockerParams{Store: store, Wait: time.Second})
	require.NoError(t, err)

	product := uuid.New()
	unlock, err := locker.Lock(context.Background(), product)
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		unlock()
	}()

	second, err := locker.Lock(context.Background(), product)
	require.NoError(t, err)
	second()
}

func TestRedisLockerStoreFailure(t *testing.T) {
	store := newFakeLockStore()
	store.setErr = errors.New("connection refused")
	locker, err := NewRedisLocker(RedisLockerParams{Store: store})
	require.NoError(t, err)

	_, err = locker.Lock(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestNewRedisLockerRequiresStore(t *testing.T) {
	_, err := NewRedisLocker(RedisLockerParams{})
	require.Error(t, err)
}

func TestLocalLockerSerialisesPerProduct(t *testing.T) {
	locker := NewLocalLocker(time.Second, nil)
	product := uuid.New()

	var inside, maxInside int32
	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			unlock, err := locker.Lock(context.Background(), product)
			if err != nil {
				return err
			}
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				prev := atomic.LoadInt32(&maxInside)
				if n <= prev || atomic.CompareAndSwapInt32(&maxInside, prev, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, locker.slots, "slots are dropped once unused")
}

func TestLocalLockerTimeout(t *testing.T) {
	locker := NewLocalLocker(20*time.Millisecond, nil)
	product := uuid.New()

	unlock, err := locker.Lock(context.Background(), product)
	require.NoError(t, err)

	_, err = locker.Lock(context.Background(), product)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))

	unlock()
	again, err := locker.Lock(context.Background(), product)
	require.NoError(t, err)
	again()
}

func TestLocalLockerHonoursContext(t *testing.T) {
	locker := NewLocalLocker(0, nil)
	product := uuid.New()
	unlock, err := locker.Lock(context.Background(), product)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locker.Lock(ctx, product)
	require.Error(t, err)
}

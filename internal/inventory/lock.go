package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/boutiquenoire/storefront-backend/pkg/errors"
	"github.com/boutiquenoire/storefront-backend/pkg/metrics"
	"github.com/boutiquenoire/storefront-backend/pkg/redis"
)

const (
	lockScope          = "product"
	defaultLockTTL     = 10 * time.Second
	defaultLockWait    = 3 * time.Second
	initialLockBackoff = 10 * time.Millisecond
	maxLockBackoff     = 200 * time.Millisecond
	releaseTimeout     = 2 * time.Second
)

// Unlock releases a product lock. It is safe to call more than once.
type Unlock func()

// Locker serialises stock mutations per product.
type Locker interface {
	Lock(ctx context.Context, productID uuid.UUID) (Unlock, error)
}

// RedisLocker holds a SETNX key per product so every API instance observes
// the same lock. Keys expire after ttl if the holder dies.
type RedisLocker struct {
	store   redis.LockStore
	ttl     time.Duration
	wait    time.Duration
	metrics *metrics.InventoryMetrics
	now     func() time.Time
}

type RedisLockerParams struct {
	Store   redis.LockStore
	TTL     time.Duration
	Wait    time.Duration
	Metrics *metrics.InventoryMetrics
}

func NewRedisLocker(params RedisLockerParams) (*RedisLocker, error) {
	if params.Store == nil {
		return nil, errors.New("redis lock store required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	wait := params.Wait
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &RedisLocker{store: params.Store, ttl: ttl, wait: wait, metrics: params.Metrics, now: time.Now}, nil
}

func (l *RedisLocker) Lock(ctx context.Context, productID uuid.UUID) (Unlock, error) {
	started := l.now()
	key := l.store.LockKey(lockScope, productID.String())
	owner := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	backoff := initialLockBackoff
	for {
		ok, err := l.store.SetNX(ctx, key, owner, l.ttl)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, lockTimeout(ctxErr)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire product lock")
		}
		if ok {
			l.metrics.ObserveLockWait(l.now().Sub(started))
			return l.unlocker(ctx, key, owner), nil
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lockTimeout(ctx.Err())
		case <-timer.C:
		}
		backoff *= 2
		if backoff > maxLockBackoff {
			backoff = maxLockBackoff
		}
	}
}

func (l *RedisLocker) unlocker(ctx context.Context, key, owner string) Unlock {
	base := context.WithoutCancel(ctx)
	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(base, releaseTimeout)
			defer cancel()
			// A lost key means the ttl lapsed; nothing left to release.
			_, _ = l.store.CompareAndDelete(releaseCtx, key, owner)
		})
	}
}

// LocalLocker is an in-process keyed mutex. It only serialises callers
// inside one process.
type LocalLocker struct {
	mu      sync.Mutex
	slots   map[uuid.UUID]*lockSlot
	wait    time.Duration
	metrics *metrics.InventoryMetrics
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker(wait time.Duration, m *metrics.InventoryMetrics) *LocalLocker {
	return &LocalLocker{
		slots:   make(map[uuid.UUID]*lockSlot),
		wait:    wait,
		metrics: m,
	}
}

func (l *LocalLocker) Lock(ctx context.Context, productID uuid.UUID) (Unlock, error) {
	started := time.Now()
	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	slot := l.acquireSlot(productID)
	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(productID, slot)
		return nil, lockTimeout(ctx.Err())
	}
	l.metrics.ObserveLockWait(time.Since(started))

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.releaseSlot(productID, slot)
		})
	}, nil
}

func (l *LocalLocker) acquireSlot(id uuid.UUID) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[id]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[id] = slot
	}
	slot.refs++
	return slot
}

func (l *LocalLocker) releaseSlot(id uuid.UUID, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, id)
	}
}

func lockTimeout(cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "timed out waiting for product lock")
}

// Package locks provides Redis-backed distributed locking. No command in
// this module acquires a lock; the server only runs CleanupOrphanedLocks at
// startup.
package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrLockTimeout     = errors.New("timeout acquiring lock")
	ErrLockNotHeld     = errors.New("lock not held by this instance")
	ErrLockAlreadyHeld = errors.New("lock already held by another instance")
)

const (
	DefaultLockTTL        = 30 * time.Second
	DefaultAcquireTimeout = 5 * time.Second
	DefaultRetryAttempts  = 3
	OrphanedLockAge       = 60 * time.Second
)

// Manager hands out distributed locks backed by Redis SETNX.
type Manager struct {
	redis      *redis.Client
	instanceID string
	log        *zap.Logger
}

// Lock is a held distributed lock; release it via Release.
type Lock struct {
	key        string
	value      string
	manager    *Manager
	ttl        time.Duration
	acquiredAt time.Time
}

// NewManager builds a Manager around an existing redis client.
func NewManager(redisClient *redis.Client, log *zap.Logger) *Manager {
	return &Manager{
		redis:      redisClient,
		instanceID: uuid.New().String(),
		log:        log,
	}
}

// Acquire attempts to take a named lock, retrying with exponential backoff
// and evicting an orphaned holder if one is found.
func (m *Manager) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	if ttl == 0 {
		ttl = DefaultLockTTL
	}

	acquireCtx, cancel := context.WithTimeout(ctx, DefaultAcquireTimeout)
	defer cancel()

	lockValue := fmt.Sprintf("%s:%s", m.instanceID, uuid.New().String())
	lockKey := fmt.Sprintf("lock:%s", key)

	var lastErr error
	for attempt := 0; attempt < DefaultRetryAttempts; attempt++ {
		select {
		case <-acquireCtx.Done():
			return nil, ErrLockTimeout
		default:
		}

		acquired, err := m.redis.SetNX(acquireCtx, lockKey, lockValue, ttl).Result()
		if err != nil {
			lastErr = fmt.Errorf("redis error: %w", err)
			m.log.Warn("lock acquire redis error", zap.String("key", lockKey), zap.Int("attempt", attempt+1), zap.Error(err))
			time.Sleep(m.calculateBackoff(attempt))
			continue
		}

		if acquired {
			return &Lock{key: lockKey, value: lockValue, manager: m, ttl: ttl, acquiredAt: time.Now()}, nil
		}

		if err := m.checkAndCleanOrphanedLock(acquireCtx, lockKey); err != nil {
			m.log.Warn("orphaned lock check failed", zap.String("key", lockKey), zap.Error(err))
		}
		lastErr = ErrLockAlreadyHeld

		select {
		case <-acquireCtx.Done():
			return nil, ErrLockTimeout
		case <-time.After(m.calculateBackoff(attempt)):
		}
	}

	if lastErr == nil {
		lastErr = ErrLockTimeout
	}
	return nil, lastErr
}

// Release drops the lock if this instance still holds it, via a Lua
// script that checks ownership and deletes atomically.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil {
		return ErrLockNotHeld
	}
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
	result, err := script.Run(ctx, l.manager.redis, []string{l.key}, l.value).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if result == int64(0) {
		return ErrLockNotHeld
	}
	return nil
}

func (m *Manager) checkAndCleanOrphanedLock(ctx context.Context, lockKey string) error {
	idleTime, err := m.redis.ObjectIdleTime(ctx, lockKey).Result()
	if err != nil {
		return nil
	}
	if idleTime > OrphanedLockAge {
		if _, err := m.redis.Del(ctx, lockKey).Result(); err != nil {
			return fmt.Errorf("failed to delete orphaned lock: %w", err)
		}
		m.log.Info("cleaned orphaned lock", zap.String("key", lockKey), zap.Duration("idle", idleTime))
	}
	return nil
}

func (m *Manager) calculateBackoff(attempt int) time.Duration {
	backoff := time.Duration(500*(1<<attempt)) * time.Millisecond
	if backoff > 2*time.Second {
		backoff = 2 * time.Second
	}
	return backoff
}

// CleanupOrphanedLocks scans every outstanding lock key and evicts any
// that have sat idle past OrphanedLockAge. Intended to run once on
// process startup.
func (m *Manager) CleanupOrphanedLocks(ctx context.Context) (int, error) {
	keys, err := m.redis.Keys(ctx, "lock:*").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list locks: %w", err)
	}

	cleaned := 0
	for _, key := range keys {
		if err := m.checkAndCleanOrphanedLock(ctx, key); err != nil {
			m.log.Warn("orphaned lock cleanup failed", zap.String("key", key), zap.Error(err))
			continue
		}
		exists, _ := m.redis.Exists(ctx, key).Result()
		if exists == 0 {
			cleaned++
		}
	}
	m.log.Info("orphaned lock cleanup complete", zap.Int("cleaned", cleaned), zap.Int("scanned", len(keys)))
	return cleaned, nil
}

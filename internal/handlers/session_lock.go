package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrSessionLocked means another request is already working on the session.
var ErrSessionLocked = errors.New("interview session is busy")

// SessionLocker serializes mutating requests for one session. Lock never waits:
// a held lock fails fast with ErrSessionLocked.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID string) (unlock func(), err error)
}

// LocalLocker is a keyed mutex for single-instance deployments.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) Lock(_ context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[sessionID]; busy {
		return nil, ErrSessionLocked
	}
	l.held[sessionID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, sessionID)
			l.mu.Unlock()
		})
	}, nil
}

// RedisLocker holds a redsync mutex per session so several instances can share
// one store.
type RedisLocker struct {
	rs     *redsync.Redsync
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		ttl:    ttl,
		logger: logger,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	mutex := l.rs.NewMutex("interview:lock:"+sessionID,
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(1))

	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.As(err, &taken) || errors.Is(err, redsync.ErrFailed) {
			return nil, ErrSessionLocked
		}
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}

	return func() {
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if _, err := mutex.UnlockContext(unlockCtx); err != nil {
			l.logger.Warn("Failed to release session lock",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
	}, nil
}

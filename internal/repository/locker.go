package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
)

// Unlock releases a lock taken by Locker.Acquire.
type Unlock func(ctx context.Context) error

// Locker allows at most one in-flight move per game. Acquire never waits:
// a held lock fails with apperror.ErrEvaluationInFlight.
type Locker interface {
	Acquire(ctx context.Context, gameID string) (Unlock, error)
}

const defaultLockTTL = 10 * time.Second

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker - a SETNX based lock; the ttl bounds how long a crashed holder blocks the game.
func NewRedisLocker(client *redis.Client, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	return &redisLocker{
		client: client,
		ttl:    ttl,
	}
}

func lockKey(gameID string) string {
	return "lock:game:" + gameID
}

func (that *redisLocker) Acquire(ctx context.Context, gameID string) (Unlock, error) {
	key := lockKey(gameID)
	token := uuid.NewString()

	ok, err := that.client.SetNX(ctx, key, token, that.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !ok {
		return nil, apperror.ErrEvaluationInFlight
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, that.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock: %w", err)
		}

		return nil
	}, nil
}

type memoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() Locker {
	return &memoryLocker{
		held: make(map[string]struct{}),
	}
}

func (that *memoryLocker) Acquire(_ context.Context, gameID string) (Unlock, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.held[gameID]; ok {
		return nil, apperror.ErrEvaluationInFlight
	}

	that.held[gameID] = struct{}{}

	var once sync.Once

	return func(context.Context) error {
		once.Do(func() {
			that.mu.Lock()
			delete(that.held, gameID)
			that.mu.Unlock()
		})

		return nil
	}, nil
}

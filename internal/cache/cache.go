package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

var ErrLockHeld = errors.New("lock already held")

// TokenCache stores short-lived secrets such as gateway access tokens.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Locker hands out expiring exclusive locks. The returned release func is
// safe to call after the lock expired.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// NewRedisClient parses a redis:// URL and checks the server is reachable.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

type redisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisTokenCache(rdb *redis.Client) TokenCache {
	return &redisStore{rdb: rdb, prefix: "rpm:token:"}
}

func NewRedisLocker(rdb *redis.Client) Locker {
	return &redisStore{rdb: rdb, prefix: "rpm:lock:"}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *redisStore) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, s.prefix+key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func() {
		releaseScript.Run(context.Background(), s.rdb, []string{s.prefix + key}, token)
	}, nil
}

type entry struct {
	value     string
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryTokenCache() TokenCache {
	return newMemoryStore()
}

func NewMemoryLocker() Locker {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]entry), now: time.Now}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *memoryStore) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && s.now().Before(e.expiresAt) {
		return nil, ErrLockHeld
	}
	token := uuid.NewString()
	s.entries[key] = entry{value: token, expiresAt: s.now().Add(ttl)}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e, ok := s.entries[key]; ok && e.value == token {
			delete(s.entries, key)
		}
	}, nil
}

package uistate

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// PreferenceStore persists theme preferences by visitor key.
type PreferenceStore interface {
	GetTheme(ctx context.Context, key string) (Theme, bool, error)
	SetTheme(ctx context.Context, key string, t Theme) error
}

type MemoryPreferenceStore struct {
	mu     sync.RWMutex
	themes map[string]Theme
}

func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{themes: make(map[string]Theme)}
}

func (m *MemoryPreferenceStore) GetTheme(_ context.Context, key string) (Theme, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.themes[key]
	return t, ok, nil
}

func (m *MemoryPreferenceStore) SetTheme(_ context.Context, key string, t Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themes[key] = t
	return nil
}

// DefaultPreferenceTTL bounds how long an untouched preference is kept.
const DefaultPreferenceTTL = 365 * 24 * time.Hour

// RedisPreferenceStore keeps preferences under "<prefix><key>".
type RedisPreferenceStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisPreferenceStore(client *redis.Client) *RedisPreferenceStore {
	return &RedisPreferenceStore{
		client: client,
		prefix: "portal:theme:",
		ttl:    DefaultPreferenceTTL,
	}
}

// DialRedis connects and pings the server.
func DialRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "[DialRedis] ping %s", addr)
	}
	return client, nil
}

func (r *RedisPreferenceStore) key(k string) string {
	return r.prefix + k
}

func (r *RedisPreferenceStore) GetTheme(ctx context.Context, key string) (Theme, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "[RedisPreferenceStore GetTheme]")
	}
	t, err := ParseTheme(val)
	if err != nil {
		return "", false, errors.Wrap(err, "[RedisPreferenceStore GetTheme] stored value")
	}
	return t, true, nil
}

func (r *RedisPreferenceStore) SetTheme(ctx context.Context, key string, t Theme) error {
	if err := r.client.Set(ctx, r.key(key), string(t), r.ttl).Err(); err != nil {
		return errors.Wrap(err, "[RedisPreferenceStore SetTheme]")
	}
	return nil
}

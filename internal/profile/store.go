package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Store persists profiles keyed by contact id. Put writes the whole
// profile in one shot; partial field updates are not part of the contract.
type Store interface {
	Get(ctx context.Context, key string) (Profile, bool, error)
	Put(ctx context.Context, p Profile) error
}

// RedisStore is the production Store.
type RedisStore struct {
	rdb    *redis.Client
	tracer trace.Tracer
}

// NewRedisStore creates a Redis-backed profile store.
func NewRedisStore(rdb *redis.Client, tracer trace.Tracer) *RedisStore {
	if rdb == nil {
		panic("profile: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("trialbot.internal.profile")
	}
	return &RedisStore{rdb: rdb, tracer: tracer}
}

func profileKey(key string) string {
	return fmt.Sprintf("profile:%s", key)
}

// Get loads a profile. The second return value is false when the contact
// has never been seen.
func (s *RedisStore) Get(ctx context.Context, key string) (Profile, bool, error) {
	ctx, span := s.tracer.Start(ctx, "profile.get")
	defer span.End()

	data, err := s.rdb.Get(ctx, profileKey(key)).Bytes()
	if err == redis.Nil {
		return Profile{Key: key}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return Profile{}, false, fmt.Errorf("profile: failed to load %s: %w", key, err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		span.RecordError(err)
		return Profile{}, false, fmt.Errorf("profile: failed to decode %s: %w", key, err)
	}
	return p, true, nil
}

// Put stores the profile entirely, replacing any previous version.
func (s *RedisStore) Put(ctx context.Context, p Profile) error {
	ctx, span := s.tracer.Start(ctx, "profile.put")
	defer span.End()

	p.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(p)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("profile: failed to marshal %s: %w", p.Key, err)
	}
	if err := s.rdb.Set(ctx, profileKey(p.Key), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("profile: failed to persist %s: %w", p.Key, err)
	}
	return nil
}

// KeyedMutex serializes the read-merge-write cycle per contact key.
// Two near-simultaneous messages from the same contact (e.g. transport
// delivery retries) would otherwise race the merge.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty per-key lock set.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the lock for key and returns the matching unlock func.
// Entries are reference-counted and removed once unused.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

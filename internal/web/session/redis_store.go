package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces session keys in Redis
const DefaultKeyPrefix = "careboard:session:"

// Hash fields of a stored session
const (
	fieldCreated = "created"
	fieldFlashes = "flashes"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix is prepended to every session key
	KeyPrefix string
}

// RedisStore keeps each session in a Redis hash whose key TTL is the
// session lifetime.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisStore connects a store to the Redis server in config
func NewRedisStore(config RedisConfig) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}), config.KeyPrefix)
}

// NewRedisStoreFromClient creates a store over an existing client
func NewRedisStoreFromClient(rdb redis.UniversalClient, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{rdb: rdb, prefix: keyPrefix}
}

// Get reads the session hash and its remaining TTL in one round trip
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	key := s.prefix + sessionID

	var fields *redis.MapStringStringCmd
	var ttl *redis.DurationCmd
	if _, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		fields = p.HGetAll(ctx, key)
		ttl = p.PTTL(ctx, key)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	values := fields.Val()
	if len(values) == 0 {
		return nil, ErrSessionNotFound
	}

	created, err := strconv.ParseInt(values[fieldCreated], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	sess := &Session{
		ID:        sessionID,
		CreatedAt: time.Unix(created, 0),
		ExpiresAt: time.Now().Add(ttl.Val()),
	}
	if err := json.Unmarshal([]byte(values[fieldFlashes]), &sess.Flashes); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return sess, nil
}

// Set replaces the session hash and restarts its TTL atomically
func (s *RedisStore) Set(ctx context.Context, sessionID string, session *Session, ttl time.Duration) error {
	flashes, err := json.Marshal(session.Flashes)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	key := s.prefix + sessionID
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			fieldCreated, session.CreatedAt.Unix(),
			fieldFlashes, flashes,
		)
		p.PExpire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete removes a session from Redis
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, s.prefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession means no active session exists for the given id. Expired and
// never-existed are indistinguishable on purpose.
var ErrNoSession = errors.New("session: no active session")

// Store is the session persistence contract. It is the pluggable collaborator
// of the issuer; the issuer only depends on get/put/delete semantics, not on
// any particular transport or engine.
type Store interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

const sessionKeyPrefix = "session:"

// RedisStore keeps sessions as JSON values with a TTL matching the session
// expiry, so abandoned sessions evict themselves.
type RedisStore struct {
	rdb   *redis.Client
	clock func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, clock: time.Now}
}

func (s *RedisStore) Put(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session: id is required")
	}
	ttl := sess.ExpiresAt.Sub(s.clock())
	if ttl <= 0 {
		return fmt.Errorf("session: expiry in the past")
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKeyPrefix+sess.ID, b, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	b, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	if !s.clock().Before(sess.ExpiresAt) {
		// Redis TTL normally handles this; guard against clock drift.
		_ = s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
		return nil, ErrNoSession
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}

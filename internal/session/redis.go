package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a durable Store backed by Redis. Sessions are serialized as
// JSON and expire after the configured TTL, so abandoned dialogues clean
// themselves up. A missing or expired key behaves exactly like a missing
// in-memory session: the engine starts over at the greeting.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore wraps an existing Redis client. ttl must be positive; keys
// are namespaced under "session:".
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: "session:"}
}

// Get loads and decodes the session, returning (nil, nil) when the key does
// not exist or has expired.
func (r *RedisStore) Get(ctx context.Context, businessID, userID string) (*Session, error) {
	data, err := r.client.Get(ctx, r.prefix+Key(businessID, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}
	if s.Intake == nil {
		s.Intake = make(map[string]string)
	}
	return &s, nil
}

// Put serializes the session and refreshes its TTL.
func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	s.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+Key(s.BusinessID, s.UserID), data, r.ttl).Err()
}

// Delete removes the session key; deleting an absent key is not an error.
func (r *RedisStore) Delete(ctx context.Context, businessID, userID string) error {
	return r.client.Del(ctx, r.prefix+Key(businessID, userID)).Err()
}

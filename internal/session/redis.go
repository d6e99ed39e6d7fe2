package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "smakbot:session:"

// RedisStore keeps sessions in Redis so a restart does not drop in-progress
// workflows. Values are JSON documents with a TTL refreshed on every write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing Redis client. ttl must be positive.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(userID int64) string {
	return redisKeyPrefix + strconv.FormatInt(userID, 10)
}

func (s *RedisStore) Set(ctx context.Context, userID int64, state string, data map[string]string) error {
	payload, err := json.Marshal(Session{State: state, Data: data})
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(userID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (Session, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(userID)).Bytes()
	if err == redis.Nil {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("session: redis get: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, false, fmt.Errorf("session: unmarshal: %w", err)
	}
	return sess, true, nil
}

func (s *RedisStore) Merge(ctx context.Context, userID int64, partial map[string]string) error {
	sess, ok, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if sess.Data == nil {
		sess.Data = make(map[string]string, len(partial))
	}
	for k, v := range partial {
		sess.Data[k] = v
	}
	return s.Set(ctx, userID, sess.State, sess.Data)
}

func (s *RedisStore) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ikiguide/ikiguide/internal/logger"
)

// RedisStore keeps sessions in Redis under session:<id> keys. The TTL is
// refreshed on every read so an active visitor never loses their session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis using a redis:// URL.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create allocates a new session with a fresh id.
func (r *RedisStore) Create(ctx context.Context) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
		Responses:    make(map[int]string),
	}
	if err := r.save(ctx, sess); err != nil {
		return nil, err
	}
	logger.Info().Str("session_id", sess.ID).Msg("created new session")
	return sess, nil
}

// Get returns the session, refreshing its TTL and last-activity timestamp.
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	sess.LastActivity = time.Now().UTC()
	if err := r.save(ctx, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// SaveResponses merges the given answers into the session.
func (r *RedisStore) SaveResponses(ctx context.Context, id string, responses map[int]string) error {
	sess, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.Responses == nil {
		sess.Responses = make(map[int]string)
	}
	for qid, text := range responses {
		sess.Responses[qid] = text
	}
	return r.save(ctx, sess)
}

// SetPaths records the generated results for the session.
func (r *RedisStore) SetPaths(ctx context.Context, id string, paths []string) error {
	sess, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.Paths = paths
	return r.save(ctx, sess)
}

// Delete removes the session.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	logger.Info().Str("session_id", id).Msg("deleted session")
	return nil
}

// Exists checks whether the session key is live.
func (r *RedisStore) Exists(ctx context.Context, id string) (bool, error) {
	count, err := r.client.Exists(ctx, sessionKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return count > 0, nil
}

// Ping tests the Redis connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(sess.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

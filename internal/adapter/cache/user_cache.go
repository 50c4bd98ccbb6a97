package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-crud-service/internal/domain/user"
)

const (
	keyPrefix       = "user:"
	tombstoneSuffix = ":deleted"

	// TombstoneTTL bounds how long a deleted id refuses read fills.
	TombstoneTTL = 30 * time.Second
)

// fillScript stores the user only when neither an entry nor a tombstone exists.
// KEYS[1] entry, KEYS[2] tombstone; ARGV[1] payload, ARGV[2] ttl in ms (0 keeps it).
var fillScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then
  return 0
end
local ok
if tonumber(ARGV[2]) > 0 then
  ok = redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2], 'NX')
else
  ok = redis.call('SET', KEYS[1], ARGV[1], 'NX')
end
if ok then
  return 1
end
return 0
`)

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get returns nil, nil on a cache miss.
	Get(ctx context.Context, id string) (*domain.User, error)

	// Set stores a user with the configured TTL, replacing any entry.
	Set(ctx context.Context, user *domain.User) error

	// Fill stores a user read from the store unless a newer entry or a
	// tombstone is already present. It reports whether the user was stored.
	Fill(ctx context.Context, user *domain.User) (bool, error)

	Delete(ctx context.Context, id string) error

	// MarkDeleted drops the entry and blocks fills for TombstoneTTL.
	MarkDeleted(ctx context.Context, id string) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Key returns the Redis key holding the user with the given id.
func Key(id string) string {
	return keyPrefix + id
}

func tombstoneKey(id string) string {
	return keyPrefix + id + tombstoneSuffix
}

// Get retrieves a user from Redis.
func (c *RedisUserCache) Get(ctx context.Context, id string) (*domain.User, error) {
	data, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.String("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.String("user_id", id))
	return &user, nil
}

// Set stores a user in Redis with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}

	data, err := json.Marshal(user)
	if err != nil {
		c.log.Error("failed to marshal user for cache", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, Key(user.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.String("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Fill caches a user loaded on a read miss.
func (c *RedisUserCache) Fill(ctx context.Context, user *domain.User) (bool, error) {
	if user == nil {
		return false, fmt.Errorf("cannot cache nil user")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return false, err
	}

	stored, err := fillScript.Run(ctx, c.client,
		[]string{Key(user.ID), tombstoneKey(user.ID)},
		data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		c.log.Error("failed to fill cache", zap.String("user_id", user.ID), zap.Error(err))
		return false, err
	}

	if stored == 0 {
		c.log.Debug("cache fill skipped", zap.String("user_id", user.ID))
		return false, nil
	}
	c.log.Debug("cached user", zap.String("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return true, nil
}

// MarkDeleted removes the entry and leaves a short-lived tombstone so a read
// that loaded the user before the delete cannot put it back.
func (c *RedisUserCache) MarkDeleted(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, Key(id))
		pipe.Set(ctx, tombstoneKey(id), 1, TombstoneTTL)
		return nil
	})
	if err != nil {
		c.log.Error("failed to mark user deleted in cache", zap.String("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("marked deleted in cache", zap.String("user_id", id))
	return nil
}

// Delete removes a user from Redis. Deleting a missing key is not an error.
func (c *RedisUserCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, Key(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.String("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.String("user_id", id))
	return nil
}

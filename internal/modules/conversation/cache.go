// README: Redis copy of each conversation context. Postgres stays authoritative.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"samanainn/internal/chat"
)

const contextKeyPrefix = "chat:ctx:%s"

type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCache(redis *redis.Client, ttl time.Duration) *Cache {
	return &Cache{redis: redis, ttl: ttl}
}

// Get reports false on a miss.
func (c *Cache) Get(ctx context.Context, id string) (chat.Context, bool, error) {
	raw, err := c.redis.Get(ctx, contextKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return chat.Context{}, false, nil
	}
	if err != nil {
		return chat.Context{}, false, err
	}
	var out chat.Context
	if err := json.Unmarshal(raw, &out); err != nil {
		return chat.Context{}, false, fmt.Errorf("decode cached context: %w", err)
	}
	return out, true, nil
}

func (c *Cache) Set(ctx context.Context, id string, cc chat.Context) error {
	raw, err := json.Marshal(cc)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, contextKey(id), raw, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, id string) error {
	return c.redis.Del(ctx, contextKey(id)).Err()
}

func contextKey(id string) string {
	return fmt.Sprintf(contextKeyPrefix, id)
}

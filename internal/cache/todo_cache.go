package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	dom "reminder/internal/domain"
)

const keyUserList = "todo:user:"

// TodoCache caches per-user todo listings in Redis. Each (user, limit,
// offset) window is a separate key; any write touching a user drops all of
// that user's windows.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached window or nil on a miss.
func (c *TodoCache) GetList(ctx context.Context, userID string, limit, offset int) ([]dom.Todo, error) {
	b, err := c.rdb.Get(ctx, listKey(userID, limit, offset)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeList(b)
}

// SetList stores the window in cache.
func (c *TodoCache) SetList(ctx context.Context, userID string, limit, offset int, list []dom.Todo) error {
	b, err := encodeList(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(userID, limit, offset), b, c.ttl).Err()
}

// InvalidateUser removes every cached window for the user.
func (c *TodoCache) InvalidateUser(ctx context.Context, userID string) error {
	iter := c.rdb.Scan(ctx, 0, keyUserList+userID+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func listKey(userID string, limit, offset int) string {
	return keyUserList + userID + ":" + strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
}

// encodeList marshals a listing for storage. A nil slice is written as []
// rather than null so an empty listing stays a cache hit; null would decode
// back to nil, which callers read as a miss.
func encodeList(list []dom.Todo) ([]byte, error) {
	if list == nil {
		list = []dom.Todo{}
	}
	return json.Marshal(list)
}

// decodeList is the inverse of encodeList; it never returns a nil slice for
// a present key.
func decodeList(b []byte) ([]dom.Todo, error) {
	var list []dom.Todo
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []dom.Todo{}
	}
	return list, nil
}

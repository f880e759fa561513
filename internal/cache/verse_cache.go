// Package cache holds injected memoization layers. Nothing here is
// process-global: every cache is constructed and handed to its consumer,
// and can be invalidated explicitly.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"versebattle/internal/model"
)

// VerseCache memoizes verse lookups by identifier.
type VerseCache interface {
	Get(ctx context.Context, id string) (*model.Verse, error)
	Set(ctx context.Context, verse *model.Verse) error
	Invalidate(ctx context.Context, id string) error
	InvalidateAll(ctx context.Context) error
}

type verseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVerseCache creates a new verse cache
func NewVerseCache(client *redis.Client) VerseCache {
	return &verseCache{
		client: client,
		ttl:    12 * time.Hour,
	}
}

func (c *verseCache) key(id string) string {
	return fmt.Sprintf("verse:%s", id)
}

func (c *verseCache) Get(ctx context.Context, id string) (*model.Verse, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var verse model.Verse
	if err := json.Unmarshal([]byte(data), &verse); err != nil {
		return nil, err
	}
	return &verse, nil
}

func (c *verseCache) Set(ctx context.Context, verse *model.Verse) error {
	data, err := json.Marshal(verse)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(verse.ID), data, c.ttl).Err()
}

func (c *verseCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *verseCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "verse:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

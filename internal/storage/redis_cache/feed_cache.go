package redis_cache

import (
	"Learnify/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
)

const feedKeyPrefix = "feed:global:"

// FeedCache holds the first page of the global feed. A nil client turns
// every call into a miss so the service falls through to the store.
type FeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFeedCache(client *redis.Client, ttl time.Duration) *FeedCache {
	return &FeedCache{client: client, ttl: ttl}
}

// Posts are encoded as BSON so like and save sets survive the round trip.
type cachedPage struct {
	Posts []models.Post `bson:"posts"`
}

func feedKey(limit int) string {
	return fmt.Sprintf("%s%d", feedKeyPrefix, limit)
}

func (c *FeedCache) GlobalFeed(ctx context.Context, limit int) ([]models.Post, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, feedKey(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get feed page: %w", err)
	}
	var page cachedPage
	if err := bson.Unmarshal(raw, &page); err != nil {
		return nil, false, fmt.Errorf("decode feed page: %w", err)
	}
	if page.Posts == nil {
		page.Posts = []models.Post{}
	}
	return page.Posts, true, nil
}

func (c *FeedCache) SetGlobalFeed(ctx context.Context, limit int, posts []models.Post) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := bson.Marshal(cachedPage{Posts: posts})
	if err != nil {
		return fmt.Errorf("encode feed page: %w", err)
	}
	if err := c.client.Set(ctx, feedKey(limit), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set feed page: %w", err)
	}
	return nil
}

// Invalidate drops every cached page size.
func (c *FeedCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, feedKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan feed keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete feed keys: %w", err)
	}
	return nil
}

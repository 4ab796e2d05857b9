package redis_cache

import (
	"Learnify/internal/models"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestCache(t *testing.T) (*FeedCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewFeedCache(rdb, 30*time.Second), mr
}

func TestFeedCache_RoundTripKeepsLikes(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	liker := primitive.NewObjectID()
	posts := []models.Post{{
		ID:       primitive.NewObjectID(),
		AuthorID: primitive.NewObjectID(),
		Caption:  "hi #go",
		Hashtags: []string{"go"},
		Likes:    []primitive.ObjectID{liker},
		Saves:    []primitive.ObjectID{},
		Media:    []models.Media{{ObjectKey: "post-media/a/1.png", Type: models.MediaTypeImage}},
	}}

	_, ok, err := c.GlobalFeed(ctx, 20)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetGlobalFeed(ctx, 20, posts))

	got, ok, err := c.GlobalFeed(ctx, 20)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, posts[0].ID, got[0].ID)
	assert.Equal(t, []primitive.ObjectID{liker}, got[0].Likes)
	assert.Equal(t, "post-media/a/1.png", got[0].Media[0].ObjectKey)
}

func TestFeedCache_Expires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetGlobalFeed(ctx, 20, []models.Post{}))
	mr.FastForward(31 * time.Second)

	_, ok, err := c.GlobalFeed(ctx, 20)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFeedCache_InvalidateDropsAllPageSizes(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetGlobalFeed(ctx, 10, []models.Post{}))
	require.NoError(t, c.SetGlobalFeed(ctx, 20, []models.Post{}))
	require.NoError(t, mr.Set("unrelated", "x"))

	require.NoError(t, c.Invalidate(ctx))

	assert.False(t, mr.Exists(feedKey(10)))
	assert.False(t, mr.Exists(feedKey(20)))
	assert.True(t, mr.Exists("unrelated"))
}

func TestFeedCache_NilClientIsMiss(t *testing.T) {
	c := NewFeedCache(nil, time.Second)
	ctx := context.Background()

	require.NoError(t, c.SetGlobalFeed(ctx, 20, nil))
	_, ok, err := c.GlobalFeed(ctx, 20)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx))
}

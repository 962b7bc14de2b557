package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"widt/internal/models"
)

// fakeCache is a map-backed cache recording hits for the read-through
// assertions.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	Hits int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.data[key]
	if ok {
		c.Hits++
	}
	return val, ok
}

func (c *fakeCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

func (c *fakeCache) Del(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

func TestMetaRepository_MergeAndGet(t *testing.T) {
	repo := NewMetaRepository(NewMemory(), newFakeCache())
	ctx := context.Background()

	err := repo.Merge(ctx, "chat1", map[string]interface{}{
		"timezone":   8,
		"end_of_day": 22,
		"email":      "someone@example.com",
	})
	require.NoError(t, err)

	meta, err := repo.Get(ctx, "chat1")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "chat1", meta.ChatID)
	assert.Equal(t, 8, meta.TimezoneOffset())
	assert.Equal(t, 22, meta.EndOfDayHour())
	assert.Equal(t, "someone@example.com", meta.Email)
	assert.True(t, meta.Configured())
}

func TestMetaRepository_GetUnknownChatReturnsNil(t *testing.T) {
	repo := NewMetaRepository(NewMemory(), newFakeCache())
	meta, err := repo.Get(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, meta)
}

func TestMetaRepository_SecondReadHitsCache(t *testing.T) {
	cache := newFakeCache()
	repo := NewMetaRepository(NewMemory(), cache)
	ctx := context.Background()

	require.NoError(t, repo.Merge(ctx, "chat1", map[string]interface{}{"timezone": 1, "end_of_day": 20}))

	_, err := repo.Get(ctx, "chat1")
	require.NoError(t, err)
	_, err = repo.Get(ctx, "chat1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Hits)
}

func TestMetaRepository_MergeInvalidatesCache(t *testing.T) {
	cache := newFakeCache()
	repo := NewMetaRepository(NewMemory(), cache)
	ctx := context.Background()

	require.NoError(t, repo.Merge(ctx, "chat1", map[string]interface{}{"timezone": 1, "end_of_day": 20}))
	_, err := repo.Get(ctx, "chat1")
	require.NoError(t, err)

	require.NoError(t, repo.Merge(ctx, "chat1", map[string]interface{}{"end_of_day": 23}))

	meta, err := repo.Get(ctx, "chat1")
	require.NoError(t, err)
	assert.Equal(t, 23, meta.EndOfDayHour())
	assert.Equal(t, 1, meta.TimezoneOffset())
}

func TestMetaRepository_All(t *testing.T) {
	repo := NewMetaRepository(NewMemory(), newFakeCache())
	ctx := context.Background()

	require.NoError(t, repo.Merge(ctx, "chat1", map[string]interface{}{"timezone": 1, "end_of_day": 20}))
	require.NoError(t, repo.Merge(ctx, "chat2", map[string]interface{}{"email": "late@example.com"}))

	metas, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 2)

	byID := make(map[string]*models.ChatMetadata, len(metas))
	for _, meta := range metas {
		byID[meta.ChatID] = meta
	}
	assert.True(t, byID["chat1"].Configured())
	assert.False(t, byID["chat2"].Configured())
	assert.Equal(t, "late@example.com", byID["chat2"].Email)
}

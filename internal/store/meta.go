package store

import (
	"context"
	"fmt"
	"widt/internal/models"
	"widt/internal/providers"

	json "github.com/goccy/go-json"
)

// MetaRepository owns the meta collection: one ChatMetadata document per
// chat, cached read-through.
type MetaRepository struct {
	db    Store
	cache providers.CacheProviderInterface
}

func NewMetaRepository(db Store, cache providers.CacheProviderInterface) *MetaRepository {
	return &MetaRepository{db: db, cache: cache}
}

func cacheKey(chatID string) string {
	return "meta:" + chatID
}

// Get returns the chat's metadata, or nil when none was ever written.
func (r *MetaRepository) Get(ctx context.Context, chatID string) (*models.ChatMetadata, error) {
	if body, ok := r.cache.Get(cacheKey(chatID)); ok {
		var meta models.ChatMetadata
		if err := json.Unmarshal(body, &meta); err == nil {
			meta.ChatID = chatID
			return &meta, nil
		}
		r.cache.Del(cacheKey(chatID))
	}

	doc, ok, err := r.db.Get(ctx, CollectionMeta, chatID)
	if err != nil {
		return nil, fmt.Errorf("loading metadata for chat %s: %w", chatID, err)
	}
	if !ok {
		return nil, nil
	}
	meta, err := decodeMetadata(chatID, doc)
	if err != nil {
		return nil, err
	}
	if body, err := json.Marshal(meta); err == nil {
		r.cache.Set(cacheKey(chatID), body)
	}
	return meta, nil
}

// Merge writes fields into the chat's metadata document and drops the
// cached copy so the next read sees the commit.
func (r *MetaRepository) Merge(ctx context.Context, chatID string, fields map[string]interface{}) error {
	if err := r.db.SetMerge(ctx, CollectionMeta, chatID, fields); err != nil {
		return fmt.Errorf("merging metadata for chat %s: %w", chatID, err)
	}
	r.cache.Del(cacheKey(chatID))
	return nil
}

// All streams every chat's metadata, for the scheduler sweep. The cache
// is bypassed: the sweep must see current end-of-day settings.
func (r *MetaRepository) All(ctx context.Context) ([]*models.ChatMetadata, error) {
	var metas []*models.ChatMetadata
	err := r.db.Scan(ctx, CollectionMeta, func(id string, doc map[string]interface{}) error {
		meta, err := decodeMetadata(id, doc)
		if err != nil {
			return err
		}
		metas = append(metas, meta)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning metadata: %w", err)
	}
	return metas, nil
}

func decodeMetadata(chatID string, doc map[string]interface{}) (*models.ChatMetadata, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata for chat %s: %w", chatID, err)
	}
	var meta models.ChatMetadata
	if err = json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("decoding metadata for chat %s: %w", chatID, err)
	}
	meta.ChatID = chatID
	return &meta, nil
}

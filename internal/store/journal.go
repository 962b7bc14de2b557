package store

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"widt/internal/models"
)

// JournalRepository owns the live collection: one document per chat,
// field name = unix second of the append, value = entry text.
type JournalRepository struct {
	db Store
}

func NewJournalRepository(db Store) *JournalRepository {
	return &JournalRepository{db: db}
}

// Document returns the raw live document as field → text.
func (r *JournalRepository) Document(ctx context.Context, chatID string) (map[string]string, bool, error) {
	doc, ok, err := r.db.Get(ctx, CollectionLive, chatID)
	if err != nil || !ok {
		return nil, ok, err
	}
	return stringFields(doc), true, nil
}

// Entries returns the chat's live entries sorted ascending by timestamp.
func (r *JournalRepository) Entries(ctx context.Context, chatID string) ([]models.JournalEntry, error) {
	doc, ok, err := r.Document(ctx, chatID)
	if err != nil || !ok {
		return nil, err
	}
	return models.EntriesFromDocument(doc), nil
}

// Append stores text under the current unix second. When that key is
// already taken the key is bumped forward until free, so a same-second
// append is never dropped.
func (r *JournalRepository) Append(ctx context.Context, chatID string, now time.Time, text string) (models.JournalEntry, error) {
	doc, _, err := r.Document(ctx, chatID)
	if err != nil {
		return models.JournalEntry{}, err
	}
	key := now.Unix()
	for {
		if _, taken := doc[strconv.FormatInt(key, 10)]; !taken {
			break
		}
		key++
	}
	entry := models.JournalEntry{Key: key, Text: text}
	if err = r.db.SetMerge(ctx, CollectionLive, chatID, map[string]interface{}{
		entry.KeyString(): text,
	}); err != nil {
		return models.JournalEntry{}, fmt.Errorf("appending entry for chat %s: %w", chatID, err)
	}
	return entry, nil
}

// UpdateEntry replaces the text of one live entry.
func (r *JournalRepository) UpdateEntry(ctx context.Context, chatID string, key int64, text string) error {
	return r.db.UpdateField(ctx, CollectionLive, chatID, strconv.FormatInt(key, 10), text)
}

// DeleteEntry removes one live entry.
func (r *JournalRepository) DeleteEntry(ctx context.Context, chatID string, key int64) error {
	return r.db.DeleteField(ctx, CollectionLive, chatID, strconv.FormatInt(key, 10))
}

// Clear drops the whole live document for the chat.
func (r *JournalRepository) Clear(ctx context.Context, chatID string) error {
	return r.db.Delete(ctx, CollectionLive, chatID)
}

func stringFields(doc map[string]interface{}) map[string]string {
	out := make(map[string]string, len(doc))
	for key, val := range doc {
		text, ok := val.(string)
		if !ok {
			continue
		}
		out[key] = text
	}
	return out
}

package store

import (
	"context"
	"fmt"
	"sort"
	"widt/internal/models"
)

// ArchiveRepository owns the archive collection: one document per chat
// mapping period key → sealed entries. Bundles are append-only; merging
// into an existing period key only happens when a report for that exact
// period is regenerated, and entry keys make the merge idempotent.
type ArchiveRepository struct {
	db Store
}

func NewArchiveRepository(db Store) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Merge seals entries under the given period key.
func (r *ArchiveRepository) Merge(ctx context.Context, chatID, periodKey string, entries map[string]string) error {
	bundle := make(map[string]interface{}, len(entries))
	for key, text := range entries {
		bundle[key] = text
	}
	err := r.db.SetMerge(ctx, CollectionArchive, chatID, map[string]interface{}{
		periodKey: bundle,
	})
	if err != nil {
		return fmt.Errorf("archiving period %s for chat %s: %w", periodKey, chatID, err)
	}
	return nil
}

// Has reports whether a bundle already exists for the period.
func (r *ArchiveRepository) Has(ctx context.Context, chatID, periodKey string) (bool, error) {
	doc, ok, err := r.db.Get(ctx, CollectionArchive, chatID)
	if err != nil || !ok {
		return false, err
	}
	_, exists := doc[periodKey]
	return exists, nil
}

// Bundles returns every sealed period for the chat, ordered by period key.
func (r *ArchiveRepository) Bundles(ctx context.Context, chatID string) ([]models.ArchiveBundle, error) {
	doc, ok, err := r.db.Get(ctx, CollectionArchive, chatID)
	if err != nil {
		return nil, fmt.Errorf("loading archive for chat %s: %w", chatID, err)
	}
	if !ok {
		return nil, nil
	}

	bundles := make([]models.ArchiveBundle, 0, len(doc))
	for periodKey, val := range doc {
		fields, ok := val.(map[string]interface{})
		if !ok {
			continue
		}
		bundles = append(bundles, models.ArchiveBundle{
			ChatID:    chatID,
			PeriodKey: periodKey,
			Entries:   stringFields(fields),
		})
	}
	sort.Slice(bundles, func(i, j int) bool {
		return bundles[i].PeriodKey < bundles[j].PeriodKey
	})
	return bundles, nil
}

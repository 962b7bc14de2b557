// Package store provides the document-oriented persistence layer: named
// collections of JSON documents with merge-set, field-level update and
// delete, and full-collection scans.
package store

import "context"

const (
	CollectionLive    = "live"
	CollectionMeta    = "meta"
	CollectionArchive = "archive"
)

type Store interface {
	// Get returns the document fields, or ok=false when it does not exist.
	Get(ctx context.Context, collection, id string) (map[string]interface{}, bool, error)
	// SetMerge merges fields into the document, creating it if needed.
	// Map-valued fields merge recursively; scalar fields are replaced.
	SetMerge(ctx context.Context, collection, id string, fields map[string]interface{}) error
	// UpdateField replaces a single field of an existing document.
	UpdateField(ctx context.Context, collection, id, field string, value interface{}) error
	// DeleteField removes a single field from an existing document.
	DeleteField(ctx context.Context, collection, id, field string) error
	// Delete removes the whole document. Deleting a missing document is
	// not an error.
	Delete(ctx context.Context, collection, id string) error
	// Scan streams every document of a collection. Returning an error
	// from fn stops the scan.
	Scan(ctx context.Context, collection string, fn func(id string, doc map[string]interface{}) error) error
	Close() error
}

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
}

// mergeFields overlays src onto dst, descending into map values so that
// re-archiving the same period key stays idempotent.
func mergeFields(dst, src map[string]interface{}) {
	for key, val := range src {
		srcMap, srcIsMap := val.(map[string]interface{})
		dstMap, dstIsMap := dst[key].(map[string]interface{})
		if srcIsMap && dstIsMap {
			mergeFields(dstMap, srcMap)
			continue
		}
		dst[key] = val
	}
}

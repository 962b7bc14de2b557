package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	json "github.com/goccy/go-json"
)

// MemoryStore is an in-memory Store used by tests. Documents round-trip
// through JSON so values decode to the same shapes the sqlite store
// produces.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]interface{} // collection → id → doc

	// FailWrites makes every mutation return an error; lets tests
	// exercise the archive-before-clear guarantees.
	FailWrites bool
}

func NewMemory() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]map[string]interface{})}
}

func roundTrip(doc map[string]interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err = json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, collection, id string) (map[string]interface{}, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.data[collection][id]
	if !ok {
		return nil, false, nil
	}
	copied, err := roundTrip(doc)
	if err != nil {
		return nil, false, err
	}
	return copied, true, nil
}

func (m *MemoryStore) SetMerge(_ context.Context, collection, id string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("memory store: writes disabled")
	}
	normalized, err := roundTrip(fields)
	if err != nil {
		return err
	}
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]map[string]interface{})
	}
	doc, ok := m.data[collection][id]
	if !ok {
		doc = make(map[string]interface{}, len(normalized))
		m.data[collection][id] = doc
	}
	mergeFields(doc, normalized)
	return nil
}

func (m *MemoryStore) UpdateField(_ context.Context, collection, id, field string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("memory store: writes disabled")
	}
	doc, ok := m.data[collection][id]
	if !ok {
		return fmt.Errorf("updating %s/%s: document does not exist", collection, id)
	}
	normalized, err := roundTrip(map[string]interface{}{field: value})
	if err != nil {
		return err
	}
	doc[field] = normalized[field]
	return nil
}

func (m *MemoryStore) DeleteField(_ context.Context, collection, id, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("memory store: writes disabled")
	}
	doc, ok := m.data[collection][id]
	if !ok {
		return fmt.Errorf("deleting field of %s/%s: document does not exist", collection, id)
	}
	delete(doc, field)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("memory store: writes disabled")
	}
	delete(m.data[collection], id)
	return nil
}

func (m *MemoryStore) Scan(_ context.Context, collection string, fn func(id string, doc map[string]interface{}) error) error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.data[collection]))
	for id := range m.data[collection] {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)

	for _, id := range ids {
		m.mu.RLock()
		doc, ok := m.data[collection][id]
		var copied map[string]interface{}
		var err error
		if ok {
			copied, err = roundTrip(doc)
		}
		m.mu.RUnlock()
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err = fn(id, copied); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

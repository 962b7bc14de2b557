package store

import (
	"context"
	"time"
	"widt/internal/providers"
)

// InstrumentedStore decorates a Store with operation-duration metrics.
type InstrumentedStore struct {
	inner   Store
	metrics providers.MetricsProviderInterface
}

func NewInstrumented(inner Store, metrics providers.MetricsProviderInterface) Store {
	return &InstrumentedStore{inner: inner, metrics: metrics}
}

func (s *InstrumentedStore) observe(op string, start time.Time) {
	s.metrics.ObserveStoreDuration(op, time.Since(start))
}

func (s *InstrumentedStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, bool, error) {
	defer s.observe("get", time.Now())
	return s.inner.Get(ctx, collection, id)
}

func (s *InstrumentedStore) SetMerge(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	defer s.observe("set_merge", time.Now())
	return s.inner.SetMerge(ctx, collection, id, fields)
}

func (s *InstrumentedStore) UpdateField(ctx context.Context, collection, id, field string, value interface{}) error {
	defer s.observe("update_field", time.Now())
	return s.inner.UpdateField(ctx, collection, id, field, value)
}

func (s *InstrumentedStore) DeleteField(ctx context.Context, collection, id, field string) error {
	defer s.observe("delete_field", time.Now())
	return s.inner.DeleteField(ctx, collection, id, field)
}

func (s *InstrumentedStore) Delete(ctx context.Context, collection, id string) error {
	defer s.observe("delete", time.Now())
	return s.inner.Delete(ctx, collection, id)
}

func (s *InstrumentedStore) Scan(ctx context.Context, collection string, fn func(id string, doc map[string]interface{}) error) error {
	defer s.observe("scan", time.Now())
	return s.inner.Scan(ctx, collection, fn)
}

func (s *InstrumentedStore) Close() error {
	return s.inner.Close()
}

package store

import (
	"widt/internal/providers"
	"widt/internal/structures"
)

// NewStore opens the document store described by the configuration and
// wraps it with latency instrumentation.
func NewStore(conf *structures.Config, compressor CompressorInterface, metrics providers.MetricsProviderInterface) (Store, error) {
	db, err := OpenSqlite(conf.Store.Path, compressor, conf.Store.CompressMinSize)
	if err != nil {
		return nil, err
	}
	return NewInstrumented(db, metrics), nil
}

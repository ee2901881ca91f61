package classification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SectorLookup resolves the sector of a symbol the static table does not know.
// A zero Entry with a nil error means the lookup had no data.
type SectorLookup interface {
	LookupSector(ctx context.Context, symbol string) (Entry, error)
}

// Enricher runs sector lookups in the background and stores results in the cache.
// Callers never wait on it; failures are logged and dropped.
type Enricher struct {
	lookup  SectorLookup
	cache   *SectorCache
	timeout time.Duration
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewEnricher creates a new enricher. A nil lookup disables enrichment.
func NewEnricher(lookup SectorLookup, cache *SectorCache, timeout time.Duration, log zerolog.Logger) *Enricher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Enricher{
		lookup:  lookup,
		cache:   cache,
		timeout: timeout,
		log:     log.With().Str("service", "sector_enricher").Logger(),
	}
}

// Request queues a lookup for symbol unless one is cached or already in flight.
// It returns true when a lookup was started.
func (e *Enricher) Request(symbol string) bool {
	if e == nil || e.lookup == nil || symbol == "" {
		return false
	}
	if !e.cache.MarkRequested(symbol) {
		return false
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.resolve(symbol)
	}()
	return true
}

// Wait blocks until every started lookup has finished
func (e *Enricher) Wait() {
	if e == nil {
		return
	}
	e.wg.Wait()
}

func (e *Enricher) resolve(symbol string) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	entry, err := e.lookup.LookupSector(ctx, symbol)
	if err != nil {
		// The pending marker stays until the cache sweep so a failing symbol is not retried on every rebuild
		e.log.Warn().Err(err).Str("symbol", symbol).Msg("Sector lookup failed")
		return
	}
	if entry.Sector == "" && entry.AssetClass == "" {
		e.log.Debug().Str("symbol", symbol).Msg("No sector data found for symbol")
		return
	}

	e.cache.Put(symbol, entry)
	e.log.Info().
		Str("symbol", symbol).
		Str("asset_class", string(entry.AssetClass)).
		Str("sector", entry.Sector).
		Msg("Enriched symbol sector")
}

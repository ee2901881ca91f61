// Package classification maps instrument symbols to an asset class and a rebalancing sector.
package classification

import (
	"github.com/aristath/rebalancer/internal/domain"
	"github.com/rs/zerolog"
)

// Classification is the result of classifying a symbol. Both fields are always set.
type Classification struct {
	AssetClass domain.AssetClass `json:"asset_class"`
	Sector     string            `json:"sector"`
}

// Classifier resolves symbols against the static table, enrichment results and the
// holder's own positions. It never fails.
type Classifier struct {
	table    map[string]Entry
	cache    *SectorCache
	enricher *Enricher
	log      zerolog.Logger
}

// NewClassifier creates a classifier over the built-in table.
// cache and enricher may be nil.
func NewClassifier(cache *SectorCache, enricher *Enricher, log zerolog.Logger) *Classifier {
	return NewClassifierWithTable(staticTable, cache, enricher, log)
}

// NewClassifierWithTable creates a classifier over a custom table
func NewClassifierWithTable(table map[string]Entry, cache *SectorCache, enricher *Enricher, log zerolog.Logger) *Classifier {
	if cache == nil {
		cache = NewSectorCache(0)
	}
	copied := make(map[string]Entry, len(table))
	for symbol, entry := range table {
		copied[domain.NormalizeSymbol(symbol)] = entry
	}
	return &Classifier{
		table:    copied,
		cache:    cache,
		enricher: enricher,
		log:      log.With().Str("service", "classifier").Logger(),
	}
}

// Cache returns the enrichment cache used by the classifier
func (c *Classifier) Cache() *SectorCache {
	return c.cache
}

// Classify returns the asset class and rebalancing sector for symbol.
//
// Known symbols come from enrichment results or the static table. Unknown symbols
// take the class recorded on a matching position, or fallback when the symbol is
// not held, and the Unclassified sector; they are also queued for enrichment.
func (c *Classifier) Classify(symbol string, positions []domain.Position, fallback domain.AssetClass) Classification {
	symbol = domain.NormalizeSymbol(symbol)

	if entry, ok := c.lookup(symbol); ok {
		class := entry.AssetClass
		if !class.Valid() {
			class = c.heldClass(symbol, positions, fallback)
		}
		return Classification{
			AssetClass: class,
			Sector:     RebalancingSector(class, entry.Sector),
		}
	}

	if c.enricher.Request(symbol) {
		c.log.Debug().Str("symbol", symbol).Msg("Queued unknown symbol for sector enrichment")
	}

	return Classification{
		AssetClass: c.heldClass(symbol, positions, fallback),
		Sector:     Unclassified,
	}
}

// ResolvePositions returns a copy of positions with class and sector filled in.
// A recorded sector wins over the table but is still remapped for rebalancing.
func (c *Classifier) ResolvePositions(positions []domain.Position) []domain.Position {
	resolved := make([]domain.Position, len(positions))
	for i, pos := range positions {
		pos.Symbol = domain.NormalizeSymbol(pos.Symbol)
		cls := c.Classify(pos.Symbol, positions, pos.AssetClass)
		if !pos.AssetClass.Valid() {
			pos.AssetClass = cls.AssetClass
		}

		switch {
		case pos.Sector != "":
			pos.Sector = RebalancingSector(pos.AssetClass, pos.Sector)
		case cls.AssetClass == pos.AssetClass:
			pos.Sector = cls.Sector
		default:
			pos.Sector = Unclassified
		}
		resolved[i] = pos
	}
	return resolved
}

func (c *Classifier) lookup(symbol string) (Entry, bool) {
	if entry, ok := c.cache.Get(symbol); ok {
		return entry, true
	}
	entry, ok := c.table[symbol]
	return entry, ok
}

func (c *Classifier) heldClass(symbol string, positions []domain.Position, fallback domain.AssetClass) domain.AssetClass {
	for _, pos := range positions {
		if domain.NormalizeSymbol(pos.Symbol) == symbol && pos.AssetClass.Valid() {
			return pos.AssetClass
		}
	}
	if fallback.Valid() {
		return fallback
	}
	return domain.AssetClassEquity
}

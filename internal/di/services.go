// Package di provides dependency injection for services.
package di

import (
	"fmt"

	"github.com/aristath/rebalancer/internal/clients/sectors"
	"github.com/aristath/rebalancer/internal/config"
	"github.com/aristath/rebalancer/internal/modules/allocation"
	"github.com/aristath/rebalancer/internal/modules/classification"
	"github.com/rs/zerolog"
)

// InitializeServices creates the classification pipeline and the target service
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.PositionRepo == nil || container.TargetStateRepo == nil {
		return fmt.Errorf("repositories must be initialized before services")
	}

	container.SectorCache = classification.NewSectorCache(cfg.ClassificationCacheTTL)

	// Enrichment is optional; without a lookup URL unknown symbols stay unclassified
	var lookup classification.SectorLookup
	if cfg.SectorLookupURL != "" {
		container.SectorClient = sectors.NewClient(cfg.SectorLookupURL, cfg.SectorLookupAPIKey, cfg.SectorLookupTimeout, log)
		lookup = container.SectorClient
		log.Info().Str("url", cfg.SectorLookupURL).Msg("Sector enrichment enabled")
	} else {
		log.Info().Msg("Sector enrichment disabled")
	}

	container.Enricher = classification.NewEnricher(lookup, container.SectorCache, cfg.SectorLookupTimeout, log)
	container.Classifier = classification.NewClassifier(container.SectorCache, container.Enricher, log)

	container.TargetService = allocation.NewService(
		container.PositionRepo,
		container.TargetStateRepo,
		container.Classifier,
		cfg.PersistTimeout,
		log,
	)

	log.Info().Msg("Services initialized")
	return nil
}

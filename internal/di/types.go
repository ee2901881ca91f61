/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server for route mounting.
 */
package di

import (
	"github.com/aristath/rebalancer/internal/clients/sectors"
	"github.com/aristath/rebalancer/internal/database"
	"github.com/aristath/rebalancer/internal/modules/allocation"
	"github.com/aristath/rebalancer/internal/modules/classification"
	"github.com/aristath/rebalancer/internal/modules/portfolio"
	"github.com/aristath/rebalancer/internal/scheduler"
)

// Container holds all dependencies for the application
type Container struct {
	// Database
	DB *database.DB

	// Repositories
	PositionRepo    *portfolio.PositionRepository
	TargetStateRepo *allocation.Repository

	// Classification
	SectorClient *sectors.Client // nil when enrichment is disabled
	SectorCache  *classification.SectorCache
	Enricher     *classification.Enricher
	Classifier   *classification.Classifier

	// Services
	TargetService *allocation.Service

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds references to registered jobs for manual triggering
type JobInstances struct {
	SweepClassificationCache *scheduler.SweepClassificationCacheJob
	CheckDatabase            *scheduler.CheckDatabaseJob
}

// All returns every job instance
func (j *JobInstances) All() []scheduler.Job {
	return []scheduler.Job{j.SweepClassificationCache, j.CheckDatabase}
}

// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/aristath/rebalancer/internal/config"
	"github.com/aristath/rebalancer/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the scheduler and registers all periodic jobs.
// Returns JobInstances for manual triggering via API.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	container.Scheduler = scheduler.New(log)
	instances := &JobInstances{}

	sweep := scheduler.NewSweepClassificationCacheJob(container.SectorCache)
	sweep.SetLogger(log.With().Str("job", sweep.Name()).Logger())
	if err := container.Scheduler.AddJob(cfg.CacheSweepSchedule, sweep); err != nil {
		return nil, fmt.Errorf("failed to register %s job: %w", sweep.Name(), err)
	}
	instances.SweepClassificationCache = sweep

	check := scheduler.NewCheckDatabaseJob(container.DB)
	check.SetLogger(log.With().Str("job", check.Name()).Logger())
	if err := container.Scheduler.AddJob(cfg.DatabaseCheckSchedule, check); err != nil {
		return nil, fmt.Errorf("failed to register %s job: %w", check.Name(), err)
	}
	instances.CheckDatabase = check

	log.Info().Int("jobs", container.Scheduler.Len()).Msg("Jobs registered")
	return instances, nil
}

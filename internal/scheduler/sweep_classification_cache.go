package scheduler

import (
	"github.com/aristath/rebalancer/internal/modules/classification"
	"github.com/rs/zerolog"
)

// SweepClassificationCacheJob drops expired sector enrichment results
type SweepClassificationCacheJob struct {
	log   zerolog.Logger
	cache *classification.SectorCache
}

// NewSweepClassificationCacheJob creates a new SweepClassificationCacheJob
func NewSweepClassificationCacheJob(cache *classification.SectorCache) *SweepClassificationCacheJob {
	return &SweepClassificationCacheJob{
		log:   zerolog.Nop(),
		cache: cache,
	}
}

// SetLogger sets the logger for the job
func (j *SweepClassificationCacheJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *SweepClassificationCacheJob) Name() string {
	return "sweep_classification_cache"
}

// Run executes the sweep
func (j *SweepClassificationCacheJob) Run() error {
	if j.cache == nil {
		return nil
	}

	removed := j.cache.Sweep()
	j.log.Info().
		Int("removed", removed).
		Int("remaining", j.cache.Len()).
		Msg("Classification cache swept")

	return nil
}

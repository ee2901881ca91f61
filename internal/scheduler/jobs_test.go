package scheduler

import (
	"testing"
	"time"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/aristath/rebalancer/internal/modules/classification"
	testingpkg "github.com/aristath/rebalancer/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepClassificationCacheJob_Name(t *testing.T) {
	job := NewSweepClassificationCacheJob(nil)
	assert.Equal(t, "sweep_classification_cache", job.Name())
}

func TestSweepClassificationCacheJob_Run(t *testing.T) {
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	cache := classification.NewSectorCache(time.Hour).WithClock(func() time.Time { return now })
	cache.Put("OLD3", classification.Entry{AssetClass: domain.AssetClassEquity, Sector: "Energy"})

	now = now.Add(30 * time.Minute)
	cache.Put("NEW3", classification.Entry{AssetClass: domain.AssetClassEquity, Sector: "Retail"})

	now = now.Add(45 * time.Minute)
	job := NewSweepClassificationCacheJob(cache)
	job.SetLogger(zerolog.Nop())
	require.NoError(t, job.Run())

	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("NEW3")
	assert.True(t, ok)
}

func TestSweepClassificationCacheJob_NilCache(t *testing.T) {
	assert.NoError(t, NewSweepClassificationCacheJob(nil).Run())
}

func TestCheckDatabaseJob_Name(t *testing.T) {
	job := &CheckDatabaseJob{
		log: zerolog.Nop(),
	}
	assert.Equal(t, "check_database", job.Name())
}

func TestCheckDatabaseJob_Run_NoDatabase(t *testing.T) {
	job := NewCheckDatabaseJob(nil)
	job.SetLogger(zerolog.New(nil).Level(zerolog.Disabled))

	assert.NoError(t, job.Run())
}

func TestCheckDatabaseJob_Run(t *testing.T) {
	job := NewCheckDatabaseJob(testingpkg.NewTestDB(t))
	assert.NoError(t, job.Run())
}

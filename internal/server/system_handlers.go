package server

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/database"
	"github.com/aristath/rebalancer/internal/modules/classification"
	"github.com/aristath/rebalancer/internal/scheduler"
)

// SystemHandlers serves process status and manual job triggers
type SystemHandlers struct {
	log       zerolog.Logger
	db        *database.DB
	cache     *classification.SectorCache
	jobs      map[string]scheduler.Job
	startedAt time.Time
	mu        sync.RWMutex
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger, db *database.DB, cache *classification.SectorCache) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		db:        db,
		cache:     cache,
		jobs:      make(map[string]scheduler.Job),
		startedAt: time.Now(),
	}
}

// SetJobs registers job instances for manual triggering via API
func (h *SystemHandlers) SetJobs(jobs ...scheduler.Job) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, job := range jobs {
		h.jobs[job.Name()] = job
	}
}

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status             string  `json:"status"` // "healthy" or "unhealthy"
	Uptime             string  `json:"uptime"`
	DatabaseName       string  `json:"database_name,omitempty"`
	DatabaseSizeMB     float64 `json:"database_size_mb"`
	ClassificationSize int     `json:"classification_cache_entries"`
	Goroutines         int     `json:"goroutines"`
	HeapAllocMB        float64 `json:"heap_alloc_mb"`
}

// HandleSystemStatus returns process and storage status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	response := SystemStatusResponse{
		Status:      "healthy",
		Uptime:      time.Since(h.startedAt).Round(time.Second).String(),
		Goroutines:  runtime.NumGoroutine(),
		HeapAllocMB: float64(mem.HeapAlloc) / 1024 / 1024,
	}

	if h.db != nil {
		response.DatabaseName = h.db.Name()
		if err := h.db.HealthCheck(r.Context()); err != nil {
			h.log.Warn().Err(err).Msg("Database unhealthy")
			response.Status = "unhealthy"
		}
		if info, err := os.Stat(h.db.Path()); err == nil {
			response.DatabaseSizeMB = float64(info.Size()) / 1024 / 1024
		}
	}
	if h.cache != nil {
		response.ClassificationSize = h.cache.Len()
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleListJobs lists the jobs that can be triggered manually
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	names := make([]string, 0, len(h.jobs))
	for name := range h.jobs {
		names = append(names, name)
	}
	h.mu.RUnlock()
	sort.Strings(names)

	h.writeJSON(w, http.StatusOK, map[string][]string{"jobs": names})
}

// HandleRunJob runs a registered job immediately
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	h.mu.RLock()
	job, ok := h.jobs[name]
	h.mu.RUnlock()
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{
			"status":  "error",
			"message": "Job not registered: " + name,
		})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job triggered")

	if err := job.Run(); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": name + " completed",
	})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

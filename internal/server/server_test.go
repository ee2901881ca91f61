package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/rebalancer/internal/database"
	"github.com/aristath/rebalancer/internal/modules/classification"
	testingpkg "github.com/aristath/rebalancer/internal/testing"
)

type pingModule struct{}

func (pingModule) RegisterRoutes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
}

type stubJob struct {
	name string
	err  error
	runs int
}

func (j *stubJob) Name() string { return j.name }

func (j *stubJob) Run() error {
	j.runs++
	return j.err
}

func newTestServer(t *testing.T, db *database.DB, system *SystemHandlers) http.Handler {
	t.Helper()
	return New(Config{
		Log:     zerolog.Nop(),
		DB:      db,
		System:  system,
		Modules: []RouteRegistrar{pingModule{}},
		Port:    0,
		DevMode: true,
	}).Handler()
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, testingpkg.NewTestDB(t), nil)

	rec := serve(h, "GET", "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "rebalancer", body["service"])
}

func TestHealth_ClosedDatabase(t *testing.T) {
	db := testingpkg.NewTestDB(t)
	h := newTestServer(t, db, nil)
	require.NoError(t, db.Close())

	rec := serve(h, "GET", "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestModulesMountUnderAPI(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := serve(h, "GET", "/api/ping")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())

	rec = serve(h, "GET", "/ping")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoverer(t *testing.T) {
	h := newTestServer(t, nil, nil)

	rec := serve(h, "GET", "/api/panic")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil, nil)

	req := httptest.NewRequest("OPTIONS", "/api/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestSystemRoutes(t *testing.T) {
	db := testingpkg.NewTestDB(t)
	cache := classification.NewSectorCache(0)
	cache.Put("AAAA3", classification.Entry{Sector: "Energy"})

	system := NewSystemHandlers(zerolog.Nop(), db, cache)
	ok := &stubJob{name: "sweep"}
	failing := &stubJob{name: "check", err: errors.New("corrupted")}
	system.SetJobs(ok, failing)
	h := newTestServer(t, db, system)

	rec := serve(h, "GET", "/api/system/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var status SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "rebalancer", status.DatabaseName)
	assert.Equal(t, 1, status.ClassificationSize)
	assert.Positive(t, status.Goroutines)

	rec = serve(h, "GET", "/api/system/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	var jobs map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	assert.Equal(t, []string{"check", "sweep"}, jobs["jobs"])

	rec = serve(h, "POST", "/api/system/jobs/sweep")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ok.runs)

	rec = serve(h, "POST", "/api/system/jobs/check")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(h, "POST", "/api/system/jobs/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

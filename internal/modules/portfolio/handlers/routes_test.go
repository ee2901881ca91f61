package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/rebalancer/internal/modules/portfolio"
	testingpkg "github.com/aristath/rebalancer/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) chi.Router {
	t.Helper()
	db := testingpkg.NewTestDB(t)

	handler := NewHandler(portfolio.NewPositionRepository(db.Conn(), zerolog.Nop()), zerolog.Nop())
	router := chi.NewRouter()
	require.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRoutes(t *testing.T) {
	router := setupRouter(t)

	testCases := []struct {
		method string
		path   string
		body   string
		name   string
	}{
		{"GET", "/portfolio/h1/", "", "GetPortfolio"},
		{"GET", "/portfolio/h1/positions/", "", "GetPositions"},
		{"PUT", "/portfolio/h1/positions/", "[]", "ReplacePositions"},
		{"PUT", "/portfolio/h1/positions/ITUB4", `{"asset_class":"equity","quantity":1,"average_cost":1}`, "UpsertPosition"},
		{"PUT", "/portfolio/h1/positions/ITUB4/price", `{"price":2}`, "UpdatePrice"},
		{"DELETE", "/portfolio/h1/positions/ITUB4", "", "DeletePosition"},
		{"GET", "/portfolio/h1/fixed-income/", "", "GetFixedIncome"},
		{"PUT", "/portfolio/h1/fixed-income/", "[]", "ReplaceFixedIncome"},
		{"DELETE", "/portfolio/h1/fixed-income/CDB-1", "", "DeleteFixedIncome"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(router, tc.method, tc.path, tc.body)
			assert.NotEqual(t, http.StatusNotFound, rec.Code, "Route %s %s should be registered (got %d)", tc.method, tc.path, rec.Code)
			assert.NotEqual(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}
}

func TestRegisterRoutes_RoutePrefix(t *testing.T) {
	router := setupRouter(t)

	rec := do(router, "GET", "/positions/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "Route without /portfolio prefix should return 404")
}

func TestHandleGetPortfolio_TotalValue(t *testing.T) {
	router := setupRouter(t)

	rec := do(router, "PUT", "/portfolio/h1/positions/", `[
		{"symbol":"itub4","asset_class":"equity","cap_bucket":"LargeCap","sector":"Banking","quantity":100,"average_cost":30},
		{"symbol":"BOVA11","asset_class":"exchangeTradedFund","quantity":10,"average_cost":100,"current_price":110}
	]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(router, "PUT", "/portfolio/h1/fixed-income/", `[{"id":"CDB-1","counterparty":"Banco X","principal":2000}]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(router, "GET", "/portfolio/h1/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PortfolioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Positions, 2)
	assert.Equal(t, "ITUB4", resp.Positions[0].Symbol)
	require.Len(t, resp.FixedIncome, 1)
	assert.InDelta(t, 3000+1100+2000, resp.TotalValue, 1e-9)
}

func TestHandleReplacePositions_BadInput(t *testing.T) {
	router := setupRouter(t)

	rec := do(router, "PUT", "/portfolio/h1/positions/", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, "PUT", "/portfolio/h1/positions/", `[{"symbol":"X","asset_class":"crypto"}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "invalid asset class")
}

func TestHandleUpdatePrice_UnknownPosition(t *testing.T) {
	router := setupRouter(t)

	rec := do(router, "PUT", "/portfolio/h1/positions/NOPE3/price", `{"price":10}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, "PUT", "/portfolio/h1/positions/NOPE3/price", `{"price":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

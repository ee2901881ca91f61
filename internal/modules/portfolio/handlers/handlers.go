// Package handlers provides HTTP handlers for portfolio holdings.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/aristath/rebalancer/internal/modules/portfolio"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	positionRepo *portfolio.PositionRepository
	log          zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(positionRepo *portfolio.PositionRepository, log zerolog.Logger) *Handler {
	return &Handler{
		positionRepo: positionRepo,
		log:          log.With().Str("handler", "portfolio").Logger(),
	}
}

// PortfolioResponse is the holder's full portfolio with its market value
type PortfolioResponse struct {
	Positions   []domain.Position        `json:"positions"`
	FixedIncome []domain.FixedIncomeItem `json:"fixed_income"`
	TotalValue  float64                  `json:"total_value"`
}

type priceRequest struct {
	Price float64 `json:"price"`
}

// HandleGetPortfolio returns positions, fixed income and the total value
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	holderID := chi.URLParam(r, "holder")

	positions, err := h.positionRepo.GetPositions(r.Context(), holderID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	fixedIncome, err := h.positionRepo.GetFixedIncome(r.Context(), holderID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var total float64
	for _, p := range positions {
		total += p.Value()
	}
	for _, item := range fixedIncome {
		total += item.Principal
	}

	h.writeJSON(w, http.StatusOK, PortfolioResponse{
		Positions:   positions,
		FixedIncome: fixedIncome,
		TotalValue:  total,
	})
}

// HandleGetPositions returns the holder's positions
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.positionRepo.GetPositions(r.Context(), chi.URLParam(r, "holder"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, positions)
}

// HandleReplacePositions replaces the holder's positions with the request body
func (h *Handler) HandleReplacePositions(w http.ResponseWriter, r *http.Request) {
	var positions []domain.Position
	if err := json.NewDecoder(r.Body).Decode(&positions); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	holderID := chi.URLParam(r, "holder")
	if err := h.positionRepo.ReplacePositions(r.Context(), holderID, positions); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.HandleGetPositions(w, r)
}

// HandleUpsertPosition inserts or updates one position
func (h *Handler) HandleUpsertPosition(w http.ResponseWriter, r *http.Request) {
	var position domain.Position
	if err := json.NewDecoder(r.Body).Decode(&position); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	position.Symbol = chi.URLParam(r, "symbol")

	if err := h.positionRepo.UpsertPosition(r.Context(), chi.URLParam(r, "holder"), position); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleUpdatePrice sets the current price of a position
func (h *Handler) HandleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Price <= 0 {
		h.writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	err := h.positionRepo.UpdatePrice(r.Context(), chi.URLParam(r, "holder"), chi.URLParam(r, "symbol"), req.Price)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleDeletePosition deletes one position
func (h *Handler) HandleDeletePosition(w http.ResponseWriter, r *http.Request) {
	if err := h.positionRepo.DeletePosition(r.Context(), chi.URLParam(r, "holder"), chi.URLParam(r, "symbol")); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetFixedIncome returns the holder's fixed-income items
func (h *Handler) HandleGetFixedIncome(w http.ResponseWriter, r *http.Request) {
	items, err := h.positionRepo.GetFixedIncome(r.Context(), chi.URLParam(r, "holder"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

// HandleReplaceFixedIncome replaces the holder's fixed-income items with the request body
func (h *Handler) HandleReplaceFixedIncome(w http.ResponseWriter, r *http.Request) {
	var items []domain.FixedIncomeItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.positionRepo.ReplaceFixedIncome(r.Context(), chi.URLParam(r, "holder"), items); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.HandleGetFixedIncome(w, r)
}

// HandleDeleteFixedIncome deletes one fixed-income item
func (h *Handler) HandleDeleteFixedIncome(w http.ResponseWriter, r *http.Request) {
	if err := h.positionRepo.DeleteFixedIncome(r.Context(), chi.URLParam(r, "holder"), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

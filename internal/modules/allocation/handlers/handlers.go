// Package handlers provides HTTP handlers for target allocation management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/aristath/rebalancer/internal/modules/allocation"
	"github.com/aristath/rebalancer/internal/modules/classification"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles target allocation HTTP requests
type Handler struct {
	service *allocation.Service
	log     zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(service *allocation.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "allocation").Logger(),
	}
}

// ClassTargetRequest edits one asset-class target
type ClassTargetRequest struct {
	Class string  `json:"class"`
	Value float64 `json:"value"`
}

// CapTargetRequest edits one equity cap-tier target
type CapTargetRequest struct {
	Cap   string  `json:"cap"`
	Value float64 `json:"value"`
}

// SectorTargetRequest edits one sector target under a parent path
type SectorTargetRequest struct {
	Parent string  `json:"parent"`
	Sector string  `json:"sector"`
	Value  float64 `json:"value"`
}

// TickerTargetRequest edits one instrument target under a parent path
type TickerTargetRequest struct {
	Parent string  `json:"parent"`
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

// ProfileRequest applies a preset profile
type ProfileRequest struct {
	Profile string `json:"profile"`
}

// InstrumentRequest adds a planned instrument
type InstrumentRequest struct {
	Symbol     string `json:"symbol"`
	AssetClass string `json:"asset_class"`
	Cap        string `json:"cap,omitempty"`
}

// InstrumentResponse is the rebuilt tree plus the class the instrument landed in
type InstrumentResponse struct {
	Tree           allocation.Tree                `json:"tree"`
	Classification classification.Classification `json:"classification"`
}

// SuggestionRequest asks for a contribution plan
type SuggestionRequest struct {
	Amount float64 `json:"amount"`
}

// HandleGetProfiles returns the preset allocation profiles
func (h *Handler) HandleGetProfiles(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, allocation.Profiles())
}

// HandleGetTree returns the allocation tree for a holder
func (h *Handler) HandleGetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.GetTree(r.Context(), chi.URLParam(r, "holder"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tree)
}

// HandleGetState returns the stored target state in its persisted shape
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context(), chi.URLParam(r, "holder"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, state.ToRecord())
}

// HandleEditClassTarget sets an asset-class target and redistributes its siblings
func (h *Handler) HandleEditClassTarget(w http.ResponseWriter, r *http.Request) {
	var req ClassTargetRequest
	if !h.decode(w, r, &req) {
		return
	}

	tree, err := h.service.EditClassTarget(r.Context(), chi.URLParam(r, "holder"), domain.AssetClass(req.Class), req.Value)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tree)
}

// HandleEditCapTarget sets a cap-tier target and redistributes its siblings
func (h *Handler) HandleEditCapTarget(w http.ResponseWriter, r *http.Request) {
	var req CapTargetRequest
	if !h.decode(w, r, &req) {
		return
	}

	tree, err := h.service.EditCapTarget(r.Context(), chi.URLParam(r, "holder"), domain.CapBucket(req.Cap), req.Value)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tree)
}

// HandleEditSectorTarget sets a sector target and redistributes its siblings
func (h *Handler) HandleEditSectorTarget(w http.ResponseWriter, r *http.Request) {
	var req SectorTargetRequest
	if !h.decode(w, r, &req) {
		return
	}

	tree, err := h.service.EditSectorTarget(r.Context(), chi.URLParam(r, "holder"), req.Parent, req.Sector, req.Value)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tree)
}

// HandleEditTickerTarget sets an instrument target and redistributes its siblings
func (h *Handler) HandleEditTickerTarget(w http.ResponseWriter, r *http.Request) {
	var req TickerTargetRequest
	if !h.decode(w, r, &req) {
		return
	}

	tree, err := h.service.EditTickerTarget(r.Context(), chi.URLParam(r, "holder"), req.Parent, req.Symbol, req.Value)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tree)
}

// HandleApplyProfile replaces the holder's targets with a preset profile
func (h *Handler) HandleApplyProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	tree, err := h.service.ApplyProfile(r.Context(), chi.URLParam(r, "holder"), req.Profile)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tree)
}

// HandleAddInstrument adds a planned instrument with a zero target
func (h *Handler) HandleAddInstrument(w http.ResponseWriter, r *http.Request) {
	var req InstrumentRequest
	if !h.decode(w, r, &req) {
		return
	}

	viewClass := domain.AssetClassEquity
	if req.AssetClass != "" {
		class, ok := domain.ParseAssetClass(req.AssetClass)
		if !ok {
			h.writeError(w, http.StatusBadRequest, "unknown asset class: "+req.AssetClass)
			return
		}
		viewClass = class
	}

	tree, cls, err := h.service.AddInstrument(r.Context(), chi.URLParam(r, "holder"), req.Symbol, viewClass, domain.CapBucket(req.Cap))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, InstrumentResponse{Tree: tree, Classification: cls})
}

// HandleSuggest plans how to invest a contribution
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestionRequest
	if !h.decode(w, r, &req) {
		return
	}

	suggestion, err := h.service.SuggestForContribution(r.Context(), chi.URLParam(r, "holder"), req.Amount)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, suggestion)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, allocation.ErrInvalidKey),
		errors.Is(err, allocation.ErrUnknownClass),
		errors.Is(err, allocation.ErrUnknownCap),
		errors.Is(err, allocation.ErrUnknownProfile):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Target request failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
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

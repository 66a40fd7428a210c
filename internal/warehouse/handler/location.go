package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/service"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
	"github.com/pharmadist/pharmadist-backend/pkg/httputil"
	"github.com/pharmadist/pharmadist-backend/pkg/logger"
)

// LocationHandler handles area and location HTTP endpoints
type LocationHandler struct {
	stockService *service.StockService
	logger       *logger.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(svc *service.StockService, log *logger.Logger) *LocationHandler {
	return &LocationHandler{
		stockService: svc,
		logger:       log,
	}
}

type createAreaRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type createLocationRequest struct {
	AreaID string `json:"area_id" validate:"required,uuid"`
	Bay    int    `json:"bay" validate:"gte=0"`
	Row    int    `json:"row" validate:"gte=0"`
	Column int    `json:"column" validate:"gte=0"`
}

// CreateArea creates a warehouse area
// POST /areas
func (h *LocationHandler) CreateArea(w http.ResponseWriter, r *http.Request) {
	var req createAreaRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	area := &domain.Area{Name: req.Name, Description: req.Description}
	if err := h.stockService.CreateArea(r.Context(), area); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, area)
}

// ListAreas lists all areas
// GET /areas
func (h *LocationHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.stockService.ListAreas(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, areas)
}

// GetArea gets an area
// GET /areas/{id}
func (h *LocationHandler) GetArea(w http.ResponseWriter, r *http.Request) {
	area, err := h.stockService.GetArea(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, area)
}

// CreateLocation creates a storage location
// POST /locations
func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	loc := &domain.Location{
		AreaID: req.AreaID,
		Bay:    req.Bay,
		Row:    req.Row,
		Column: req.Column,
	}
	if err := h.stockService.CreateLocation(r.Context(), loc); err != nil {
		h.logger.Error().Err(err).Str("area_id", req.AreaID).Msg("failed to create location")
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, loc)
}

// GetLocation gets a location
// GET /locations/{id}
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := h.stockService.GetLocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, loc)
}

// ListLocations lists locations, optionally filtered by area
// GET /locations?area_id=...
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.stockService.ListLocations(r.Context(), r.URL.Query().Get("area_id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, locations)
}

// Lookup resolves a location from its physical coordinates
// GET /locations/lookup?area_id=...&bay=...&row=...&column=...
func (h *LocationHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	areaID := r.URL.Query().Get("area_id")
	if areaID == "" {
		httputil.Error(w, errors.BadRequest("area_id is required"))
		return
	}

	bay, err := strconv.Atoi(r.URL.Query().Get("bay"))
	if err != nil {
		httputil.Error(w, errors.BadRequest("bay must be an integer"))
		return
	}
	row, err := strconv.Atoi(r.URL.Query().Get("row"))
	if err != nil {
		httputil.Error(w, errors.BadRequest("row must be an integer"))
		return
	}
	column, err := strconv.Atoi(r.URL.Query().Get("column"))
	if err != nil {
		httputil.Error(w, errors.BadRequest("column must be an integer"))
		return
	}

	loc, err := h.stockService.LookupLocation(r.Context(), areaID, bay, row, column)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, loc)
}

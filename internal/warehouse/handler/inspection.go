package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/service"
	"github.com/pharmadist/pharmadist-backend/pkg/actor"
	"github.com/pharmadist/pharmadist-backend/pkg/httputil"
	"github.com/pharmadist/pharmadist-backend/pkg/logger"
)

// InspectionHandler handles inspection HTTP endpoints
type InspectionHandler struct {
	auditService *service.AuditService
	logger       *logger.Logger
}

// NewInspectionHandler creates a new inspection handler
func NewInspectionHandler(svc *service.AuditService, log *logger.Logger) *InspectionHandler {
	return &InspectionHandler{
		auditService: svc,
		logger:       log,
	}
}

type finishInspectionRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type recordCheckItemRequest struct {
	PackageID      string `json:"package_id" validate:"required,uuid"`
	LocationID     string `json:"location_id" validate:"required,uuid"`
	ActualQuantity int    `json:"actual_quantity" validate:"gte=0"`
	Type           string `json:"type,omitempty" validate:"omitempty,oneof=valid under_expected over_expected"`
}

// Get returns an inspection with its check items
// GET /inspections/{id}
func (h *InspectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	insp, err := h.auditService.GetInspection(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, insp)
}

// Claim assigns the inspection to the calling user
// POST /inspections/{id}/claim
func (h *InspectionHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a := actor.MustFromContext(r.Context())

	insp, err := h.auditService.ClaimInspection(r.Context(), id, a.ID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, insp)
}

// Finish marks the inspection as checked
// POST /inspections/{id}/finish
func (h *InspectionHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req finishInspectionRequest
	if r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
		if err := httputil.Validate(req); err != nil {
			httputil.Error(w, err)
			return
		}
	}

	a := actor.MustFromContext(r.Context())

	insp, err := h.auditService.FinishInspection(r.Context(), id, a.ID, req.Notes)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, insp)
}

// ListItems lists the check items of an inspection
// GET /inspections/{id}/items
func (h *InspectionHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	items, err := h.auditService.ListCheckItems(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// RecordItem records a count for one package
// PUT /inspections/{id}/items
func (h *InspectionHandler) RecordItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req recordCheckItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	a := actor.MustFromContext(r.Context())

	item, err := h.auditService.RecordCheckItem(r.Context(), id, a.ID, service.RecordCheckItemInput{
		PackageID:      req.PackageID,
		LocationID:     req.LocationID,
		ActualQuantity: req.ActualQuantity,
		Type:           domain.ItemType(req.Type),
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// DeleteItem removes an erroneous over_expected entry
// DELETE /inspections/{id}/items/{itemID}
func (h *InspectionHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")
	a := actor.MustFromContext(r.Context())

	if err := h.auditService.DeleteCheckItem(r.Context(), id, itemID, a.ID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

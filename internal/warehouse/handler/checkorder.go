package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/repository"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/service"
	"github.com/pharmadist/pharmadist-backend/pkg/actor"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
	"github.com/pharmadist/pharmadist-backend/pkg/httputil"
	"github.com/pharmadist/pharmadist-backend/pkg/logger"
)

// CheckOrderHandler handles check order HTTP endpoints
type CheckOrderHandler struct {
	auditService *service.AuditService
	logger       *logger.Logger
}

// NewCheckOrderHandler creates a new check order handler
func NewCheckOrderHandler(svc *service.AuditService, log *logger.Logger) *CheckOrderHandler {
	return &CheckOrderHandler{
		auditService: svc,
		logger:       log,
	}
}

type createCheckOrderRequest struct {
	InventoryCheckDate string  `json:"inventory_check_date" validate:"required,datetime=2006-01-02"`
	WarehouseManager   string  `json:"warehouse_manager" validate:"required,uuid"`
	Notes              *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type updateCheckOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=processing completed cancelled"`
}

// Create schedules a new inventory check
// POST /check-orders
func (h *CheckOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCheckOrderRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	checkDate, _ := time.Parse("2006-01-02", req.InventoryCheckDate)
	a := actor.MustFromContext(r.Context())

	order := &domain.CheckOrder{
		InventoryCheckDate: checkDate,
		WarehouseManager:   req.WarehouseManager,
		CreatedBy:          a.ID,
		Notes:              req.Notes,
	}
	if err := h.auditService.CreateCheckOrder(r.Context(), order); err != nil {
		h.logger.Error().Err(err).Msg("failed to create check order")
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, order)
}

// Get returns a check order with its progress and inspections
// GET /check-orders/{id}
func (h *CheckOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.auditService.GetCheckOrder(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, detail)
}

// List lists check orders
// GET /check-orders — supports status, date, created_by, page, per_page
func (h *CheckOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	filter := repository.CheckOrderFilter{
		Status:    r.URL.Query().Get("status"),
		CreatedBy: r.URL.Query().Get("created_by"),
		Page:      page,
		PerPage:   perPage,
	}
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		t, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			httputil.Error(w, errors.BadRequest("date must be in format 2006-01-02"))
			return
		}
		filter.Date = &t
	}

	orders, total, err := h.auditService.ListCheckOrders(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}
	totalPages := int(total) / filter.PerPage
	if int(total)%filter.PerPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, orders, &httputil.Meta{
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// UpdateStatus drives the check order lifecycle. The target status selects
// the transition: processing starts the audit and seeds inspections,
// completed closes it after reconciliation, cancelled abandons it.
// PUT /check-orders/{id}/status
func (h *CheckOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateCheckOrderStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	a := actor.MustFromContext(r.Context())

	var detail *service.CheckOrderDetail
	var err error
	switch domain.CheckOrderStatus(req.Status) {
	case domain.CheckOrderProcessing:
		detail, err = h.auditService.StartCheckOrder(r.Context(), id, a.ID)
	case domain.CheckOrderCompleted:
		detail, err = h.auditService.CompleteCheckOrder(r.Context(), id, a.ID)
	case domain.CheckOrderCancelled:
		detail, err = h.auditService.CancelCheckOrder(r.Context(), id, a.ID)
	}
	if err != nil {
		h.logger.Error().Err(err).Str("check_order_id", id).Str("status", req.Status).Msg("check order transition failed")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, detail)
}

// ListInspections lists the inspections of a check order
// GET /check-orders/{id}/inspections
func (h *CheckOrderHandler) ListInspections(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	inspections, err := h.auditService.ListInspections(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, inspections)
}

// ClearInspections discards all counts of a processing order and releases
// its inspections back to draft
// POST /check-orders/{id}/inspections/clear
func (h *CheckOrderHandler) ClearInspections(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a := actor.MustFromContext(r.Context())

	if err := h.auditService.ClearInspections(r.Context(), id, a.ID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

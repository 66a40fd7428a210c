package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/service"
	"github.com/pharmadist/pharmadist-backend/pkg/actor"
	"github.com/pharmadist/pharmadist-backend/pkg/httputil"
	"github.com/pharmadist/pharmadist-backend/pkg/logger"
)

// PackageHandler handles batch and package HTTP endpoints
type PackageHandler struct {
	stockService *service.StockService
	labelService *service.LabelService
	logger       *logger.Logger
}

// NewPackageHandler creates a new package handler
func NewPackageHandler(stockSvc *service.StockService, labelSvc *service.LabelService, log *logger.Logger) *PackageHandler {
	return &PackageHandler{
		stockService: stockSvc,
		labelService: labelSvc,
		logger:       log,
	}
}

type createBatchRequest struct {
	BatchNumber  string  `json:"batch_number" validate:"required,max=100"`
	MedicineName string  `json:"medicine_name" validate:"required,max=200"`
	ExpiryDate   *string `json:"expiry_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type createPackageRequest struct {
	BatchID    string  `json:"batch_id" validate:"required,uuid"`
	Quantity   int     `json:"quantity" validate:"gte=0"`
	LocationID *string `json:"location_id,omitempty" validate:"omitempty,uuid"`
}

type putAwayRequest struct {
	LocationID string `json:"location_id" validate:"required,uuid"`
}

// CreateBatch registers a medicine batch
// POST /batches
func (h *PackageHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	batch := &domain.Batch{
		BatchNumber:  req.BatchNumber,
		MedicineName: req.MedicineName,
	}
	if req.ExpiryDate != nil {
		t, _ := time.Parse("2006-01-02", *req.ExpiryDate)
		batch.ExpiryDate = &t
	}

	if err := h.stockService.CreateBatch(r.Context(), batch); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, batch)
}

// GetBatch gets a batch
// GET /batches/{id}
func (h *PackageHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.stockService.GetBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batch)
}

// ListBatches lists batches
// GET /batches
func (h *PackageHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r)

	batches, total, err := h.stockService.ListBatches(r.Context(), page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, batches, paginationMeta(page, perPage, total))
}

// CreatePackage records a received package
// POST /packages
func (h *PackageHandler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var req createPackageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	pkg := &domain.Package{
		BatchID:    req.BatchID,
		Quantity:   req.Quantity,
		LocationID: req.LocationID,
	}
	if err := h.stockService.CreatePackage(r.Context(), pkg); err != nil {
		h.logger.Error().Err(err).Str("batch_id", req.BatchID).Msg("failed to create package")
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, pkg)
}

// GetPackage gets a package
// GET /packages/{id}
func (h *PackageHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.stockService.GetPackage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, pkg)
}

// ListPackages lists packages
// GET /packages?unarranged=true
func (h *PackageHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r)
	unarranged := r.URL.Query().Get("unarranged") == "true"

	packages, total, err := h.stockService.ListPackages(r.Context(), page, perPage, unarranged)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, packages, paginationMeta(page, perPage, total))
}

// PutAway assigns a location to an unarranged package
// POST /packages/{id}/putaway
func (h *PackageHandler) PutAway(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req putAwayRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	a := actor.MustFromContext(r.Context())

	pkg, err := h.stockService.PutAwayPackage(r.Context(), id, req.LocationID, a.ID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, pkg)
}

// Label renders the package QR label as PNG
// GET /packages/{id}/label?size=256
func (h *PackageHandler) Label(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	png, err := h.labelService.PackageLabel(r.Context(), id, size)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.PNG(w, png)
}

func pagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

func paginationMeta(page, perPage int, total int64) *httputil.Meta {
	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}
	return &httputil.Meta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

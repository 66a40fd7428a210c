package service

import (
	"context"

	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/events"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/repository"
	"github.com/pharmadist/pharmadist-backend/pkg/logger"
)

// StockService handles the static warehouse layout (areas, locations) and
// the received goods (batches, packages) that the audit workflow counts.
type StockService struct {
	areaRepo     *repository.AreaRepository
	locationRepo *repository.LocationRepository
	batchRepo    *repository.BatchRepository
	packageRepo  *repository.PackageRepository
	publisher    *events.WarehouseEventPublisher
	logger       *logger.Logger
}

// NewStockService creates a new stock service
func NewStockService(
	areaRepo *repository.AreaRepository,
	locationRepo *repository.LocationRepository,
	batchRepo *repository.BatchRepository,
	packageRepo *repository.PackageRepository,
	publisher *events.WarehouseEventPublisher,
	log *logger.Logger,
) *StockService {
	return &StockService{
		areaRepo:     areaRepo,
		locationRepo: locationRepo,
		batchRepo:    batchRepo,
		packageRepo:  packageRepo,
		publisher:    publisher,
		logger:       log,
	}
}

// Area operations

// CreateArea creates a new warehouse area
func (s *StockService) CreateArea(ctx context.Context, area *domain.Area) error {
	return s.areaRepo.Create(ctx, area)
}

// GetArea gets an area by ID
func (s *StockService) GetArea(ctx context.Context, id string) (*domain.Area, error) {
	return s.areaRepo.GetByID(ctx, id)
}

// ListAreas lists all areas
func (s *StockService) ListAreas(ctx context.Context) ([]*domain.Area, error) {
	return s.areaRepo.List(ctx)
}

// Location operations

// CreateLocation creates a new storage location. The coordinate tuple is
// unique per area; a duplicate surfaces as Conflict.
func (s *StockService) CreateLocation(ctx context.Context, loc *domain.Location) error {
	if _, err := s.areaRepo.GetByID(ctx, loc.AreaID); err != nil {
		return err
	}
	return s.locationRepo.Create(ctx, loc)
}

// GetLocation gets a location by ID
func (s *StockService) GetLocation(ctx context.Context, id string) (*domain.Location, error) {
	return s.locationRepo.GetByID(ctx, id)
}

// LookupLocation resolves a location from its physical coordinates, the way
// a scanning client addresses shelves.
func (s *StockService) LookupLocation(ctx context.Context, areaID string, bay, row, column int) (*domain.Location, error) {
	return s.locationRepo.Lookup(ctx, areaID, bay, row, column)
}

// ListLocations lists locations, optionally filtered by area
func (s *StockService) ListLocations(ctx context.Context, areaID string) ([]*domain.Location, error) {
	return s.locationRepo.List(ctx, areaID)
}

// Batch operations

// CreateBatch registers a new medicine batch
func (s *StockService) CreateBatch(ctx context.Context, batch *domain.Batch) error {
	return s.batchRepo.Create(ctx, batch)
}

// GetBatch gets a batch by ID
func (s *StockService) GetBatch(ctx context.Context, id string) (*domain.Batch, error) {
	return s.batchRepo.GetByID(ctx, id)
}

// ListBatches lists batches
func (s *StockService) ListBatches(ctx context.Context, page, perPage int) ([]*domain.Batch, int64, error) {
	return s.batchRepo.List(ctx, page, perPage)
}

// Package operations

// CreatePackage records a received package. Most packages arrive unarranged
// and get a location later through put-away.
func (s *StockService) CreatePackage(ctx context.Context, pkg *domain.Package) error {
	if _, err := s.batchRepo.GetByID(ctx, pkg.BatchID); err != nil {
		return err
	}
	if pkg.LocationID != nil {
		if _, err := s.locationRepo.GetByID(ctx, *pkg.LocationID); err != nil {
			return err
		}
	}
	return s.packageRepo.Create(ctx, pkg)
}

// GetPackage gets a package by ID
func (s *StockService) GetPackage(ctx context.Context, id string) (*domain.Package, error) {
	return s.packageRepo.GetByID(ctx, id)
}

// ListPackages lists packages, optionally only the unarranged ones
func (s *StockService) ListPackages(ctx context.Context, page, perPage int, unarranged bool) ([]*domain.Package, int64, error) {
	return s.packageRepo.List(ctx, page, perPage, unarranged)
}

// PutAwayPackage assigns a location to an unarranged package
func (s *StockService) PutAwayPackage(ctx context.Context, packageID, locationID, performedBy string) (*domain.Package, error) {
	if _, err := s.locationRepo.GetByID(ctx, locationID); err != nil {
		return nil, err
	}

	if err := s.packageRepo.PutAway(ctx, packageID, locationID); err != nil {
		return nil, err
	}

	pkg, err := s.packageRepo.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishPackagePutAway(ctx, pkg, performedBy)

	s.logger.Info().
		Str("package_id", packageID).
		Str("location_id", locationID).
		Msg("package put away")

	return pkg, nil
}

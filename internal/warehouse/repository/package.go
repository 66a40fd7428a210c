package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/domain"
	"github.com/pharmadist/pharmadist-backend/pkg/database"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
)

// PackageRepository handles package persistence
type PackageRepository struct {
	db *database.DB
}

// NewPackageRepository creates a new package repository
func NewPackageRepository(db *database.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

// Create creates a new package (goods received, not yet put away unless a
// location is given)
func (r *PackageRepository) Create(ctx context.Context, pkg *domain.Package) error {
	if pkg.ID == "" {
		pkg.ID = uuid.New().String()
	}

	query := `
		INSERT INTO packages (id, batch_id, quantity, location_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		pkg.ID, pkg.BatchID, pkg.Quantity, pkg.LocationID,
	).Scan(&pkg.CreatedAt, &pkg.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a package by ID
func (r *PackageRepository) GetByID(ctx context.Context, id string) (*domain.Package, error) {
	var pkg domain.Package
	query := `
		SELECT id, batch_id, quantity, location_id, created_at, updated_at
		FROM packages WHERE id = $1
	`
	err := r.db.GetContext(ctx, &pkg, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("package")
	}
	if err != nil {
		return nil, err
	}

	return &pkg, nil
}

// List lists packages with pagination. When unarranged is true only packages
// without a location are returned.
func (r *PackageRepository) List(ctx context.Context, page, perPage int, unarranged bool) ([]*domain.Package, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	where := ""
	if unarranged {
		where = "WHERE location_id IS NULL"
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM packages "+where); err != nil {
		return nil, 0, err
	}

	var packages []*domain.Package
	query := `
		SELECT id, batch_id, quantity, location_id, created_at, updated_at
		FROM packages ` + where + `
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &packages, query, perPage, offset); err != nil {
		return nil, 0, err
	}

	return packages, total, nil
}

// PutAway assigns a location to an unarranged package. Returns Conflict if
// the package already has a location, so a double scan cannot silently move
// stock.
func (r *PackageRepository) PutAway(ctx context.Context, packageID, locationID string) error {
	query := `
		UPDATE packages SET location_id = $2, updated_at = NOW()
		WHERE id = $1 AND location_id IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, packageID, locationID)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		pkg, err := r.GetByID(ctx, packageID)
		if err != nil {
			return err
		}
		if pkg.Arranged() {
			return errors.Conflict("package has already been put away")
		}
		return errors.NotFound("package")
	}

	return nil
}

// ListArrangedTx lists every package currently assigned to a location,
// ordered by location. Used inside the seeding transaction when a check
// order starts, so the expected picture is read under the same snapshot the
// inspections are created in.
func (r *PackageRepository) ListArrangedTx(ctx context.Context, tx *sqlx.Tx) ([]*domain.Package, error) {
	var packages []*domain.Package
	query := `
		SELECT id, batch_id, quantity, location_id, created_at, updated_at
		FROM packages
		WHERE location_id IS NOT NULL
		ORDER BY location_id, created_at
	`
	if err := tx.SelectContext(ctx, &packages, query); err != nil {
		return nil, err
	}

	return packages, nil
}

package service

import (
	"context"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/pharmadist/pharmadist-backend/internal/warehouse/repository"
	"github.com/pharmadist/pharmadist-backend/pkg/errors"
)

// LabelService renders scannable package labels
type LabelService struct {
	packageRepo *repository.PackageRepository
}

// NewLabelService creates a new label service
func NewLabelService(packageRepo *repository.PackageRepository) *LabelService {
	return &LabelService{packageRepo: packageRepo}
}

// PackageLabel renders the QR label for a package as a PNG. The code encodes
// the package ID, which is what the counting clients scan.
func (s *LabelService) PackageLabel(ctx context.Context, packageID string, size int) ([]byte, error) {
	if size < 64 || size > 1024 {
		size = 256
	}

	pkg, err := s.packageRepo.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(pkg.ID, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Internal("failed to render label")
	}

	return png, nil
}

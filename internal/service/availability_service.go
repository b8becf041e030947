package service

import (
	"context"
	"errors"
	"fmt"

	"rentalportal/internal/model"
	"rentalportal/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type AvailabilityItem struct {
	AssetID  string `json:"asset_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// --- Interface ---

// AvailabilityService performs a point-in-time stock check. It never reserves
// inventory; checkout re-runs it immediately before terminal submission.
type AvailabilityService interface {
	ValidateAvailability(ctx context.Context, items []AvailabilityItem) ([]string, error)
}

type availabilityService struct {
	assetRepo repository.AssetRepository
}

func NewAvailabilityService(assetRepo repository.AssetRepository) AvailabilityService {
	return &availabilityService{assetRepo: assetRepo}
}

// ValidateAvailability returns one human-readable issue string per problem;
// an empty slice means every requested quantity can be served right now.
func (s *availabilityService) ValidateAvailability(ctx context.Context, items []AvailabilityItem) ([]string, error) {
	issues := make([]string, 0)

	for _, item := range items {
		assetID, err := uuid.Parse(item.AssetID)
		if err != nil {
			return nil, fmt.Errorf("invalid asset_id %q: %w", item.AssetID, err)
		}

		asset, err := s.assetRepo.FindByID(ctx, assetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("asset not found: %s", item.AssetID)
			}
			return nil, fmt.Errorf("failed to look up asset %s: %w", item.AssetID, err)
		}

		if asset.Status != model.AssetAvailable {
			issues = append(issues, fmt.Sprintf("%s is no longer available", asset.Name))
			continue
		}
		if item.Quantity > asset.AvailableQty {
			issues = append(issues, fmt.Sprintf("%s: only %d available (you have %d)",
				asset.Name, asset.AvailableQty, item.Quantity))
		}
	}

	return issues, nil
}

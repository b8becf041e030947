package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentalportal/internal/model"
	"rentalportal/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type FeasibilityItem struct {
	AssetID  string `json:"asset_id" binding:"required"`
	Decision string `json:"decision" binding:"required,oneof=FIX_IN_ORDER USE_AS_IS"`
}

type FeasibilityIssue struct {
	AssetID              string    `json:"asset_id"`
	AssetName            string    `json:"asset_name"`
	EarliestFeasibleDate time.Time `json:"earliest_feasible_date"`
}

type FeasibilityResult struct {
	Feasible bool               `json:"feasible"`
	Issues   []FeasibilityIssue `json:"issues"`
}

// --- Interface ---

// FeasibilityService checks whether refurbishment of damaged items can complete
// before the event start date. Stateless and idempotent per call: the caller
// owns cache invalidation when the event date changes. The same algorithm
// serves both the speculative check (RED-only items, run as soon as the event
// date is known) and the authoritative pre-submission check over all items.
type FeasibilityService interface {
	Check(ctx context.Context, items []FeasibilityItem, eventStartDate time.Time) (FeasibilityResult, error)
}

type feasibilityService struct {
	assetRepo repository.AssetRepository
}

func NewFeasibilityService(assetRepo repository.AssetRepository) FeasibilityService {
	return &feasibilityService{assetRepo: assetRepo}
}

func (s *feasibilityService) Check(ctx context.Context, items []FeasibilityItem, eventStartDate time.Time) (FeasibilityResult, error) {
	today := truncateToDay(time.Now())
	eventStart := truncateToDay(eventStartDate)

	issues := make([]FeasibilityIssue, 0)
	for _, item := range items {
		// USE_AS_IS never blocks submission; the choice is only recorded
		// for downstream display.
		if item.Decision != model.DecisionFixInOrder {
			continue
		}

		assetID, err := uuid.Parse(item.AssetID)
		if err != nil {
			return FeasibilityResult{}, fmt.Errorf("invalid asset_id %q: %w", item.AssetID, err)
		}
		asset, err := s.assetRepo.FindByID(ctx, assetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return FeasibilityResult{}, fmt.Errorf("asset not found: %s", item.AssetID)
			}
			return FeasibilityResult{}, fmt.Errorf("failed to look up asset %s: %w", item.AssetID, err)
		}

		earliest := today.AddDate(0, 0, asset.RefurbLeadTimeDays)
		if earliest.After(eventStart) {
			issues = append(issues, FeasibilityIssue{
				AssetID:              asset.ID.String(),
				AssetName:            asset.Name,
				EarliestFeasibleDate: earliest,
			})
		}
	}

	return FeasibilityResult{Feasible: len(issues) == 0, Issues: issues}, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rentalportal/internal/model"
	"rentalportal/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type EstimateItem struct {
	AssetID      string `json:"asset_id"`
	Quantity     int    `json:"quantity" binding:"required,gt=0"`
	UnitVolumeM3 string `json:"unit_volume_m3"` // decimal string
	UnitWeightKg string `json:"unit_weight_kg"` // decimal string
	HasRebrand   bool   `json:"has_rebrand"`
}

type EstimateRequest struct {
	Items    []EstimateItem `json:"items" binding:"required,min=1,dive"`
	Country  string         `json:"country" binding:"required"`
	City     string         `json:"city"`
	TripType string         `json:"trip_type" binding:"required,oneof=ROUND_TRIP ONE_WAY"`
}

// PricingEstimate is ephemeral. HasTier=false means no automatic estimate is
// possible and the caller must show the manual-quote message; HasRebrandItems
// warns that rebrand cost is never part of the automatic total.
type PricingEstimate struct {
	HasTier         bool            `json:"has_tier"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	HasRebrandItems bool            `json:"has_rebrand_items"`
	TotalVolumeM3   decimal.Decimal `json:"total_volume_m3"`
	TotalWeightKg   decimal.Decimal `json:"total_weight_kg"`
}

type CreateTierRequest struct {
	Country          string `json:"country" binding:"required"`
	City             string `json:"city"`
	FlatRate         string `json:"flat_rate" binding:"required"` // decimal string
	Margin           string `json:"margin"`
	OneWayAdjustment string `json:"one_way_adjustment"`
	Currency         string `json:"currency" binding:"required,len=3"`
}

type TierResponse struct {
	ID               string `json:"id"`
	Country          string `json:"country"`
	City             string `json:"city"`
	FlatRate         string `json:"flat_rate"`
	Margin           string `json:"margin"`
	OneWayAdjustment string `json:"one_way_adjustment"`
	Currency         string `json:"currency"`
	IsActive         bool   `json:"is_active"`
}

// --- Interface ---

type PricingService interface {
	EstimatePrice(ctx context.Context, req EstimateRequest) (PricingEstimate, error)
	ListTiers(ctx context.Context, page, limit int) ([]TierResponse, int64, error)
	CreateTier(ctx context.Context, req CreateTierRequest, userID string) (TierResponse, error)
	UpdateTier(ctx context.Context, id string, req CreateTierRequest, userID string) (TierResponse, error)
	DeleteTier(ctx context.Context, id string, userID string) error
}

type pricingService struct {
	tierRepo  repository.PricingTierRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewPricingService(
	tierRepo repository.PricingTierRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) PricingService {
	return &pricingService{tierRepo: tierRepo, auditRepo: auditRepo, txManager: txManager}
}

// --- Implementation ---

// EstimatePrice resolves the destination to a tier and computes the flat-rate
// total. The estimate is deliberately not volume-based: trip overhead dominates
// logistics cost in this domain, so volume/weight are aggregated for display
// only.
func (s *pricingService) EstimatePrice(ctx context.Context, req EstimateRequest) (PricingEstimate, error) {
	estimate := PricingEstimate{
		Total:         decimal.Zero,
		TotalVolumeM3: decimal.Zero,
		TotalWeightKg: decimal.Zero,
	}

	for _, item := range req.Items {
		if item.HasRebrand {
			estimate.HasRebrandItems = true
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		if item.UnitVolumeM3 != "" {
			vol, err := decimal.NewFromString(item.UnitVolumeM3)
			if err != nil {
				return PricingEstimate{}, fmt.Errorf("invalid unit_volume_m3 %q: %w", item.UnitVolumeM3, err)
			}
			estimate.TotalVolumeM3 = estimate.TotalVolumeM3.Add(vol.Mul(qty))
		}
		if item.UnitWeightKg != "" {
			weight, err := decimal.NewFromString(item.UnitWeightKg)
			if err != nil {
				return PricingEstimate{}, fmt.Errorf("invalid unit_weight_kg %q: %w", item.UnitWeightKg, err)
			}
			estimate.TotalWeightKg = estimate.TotalWeightKg.Add(weight.Mul(qty))
		}
	}

	tier, err := s.tierRepo.FindByDestination(ctx, req.Country, req.City)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No tier: caller shows "custom quote within 24-48h".
			return estimate, nil
		}
		return PricingEstimate{}, fmt.Errorf("failed to resolve pricing tier: %w", err)
	}

	total := tier.FlatRate.Add(tier.Margin)
	if req.TripType == model.TripOneWay {
		total = total.Sub(tier.OneWayAdjustment)
	}

	estimate.HasTier = true
	estimate.Total = total
	estimate.Currency = tier.Currency
	return estimate, nil
}

func (s *pricingService) ListTiers(ctx context.Context, page, limit int) ([]TierResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	tiers, total, err := s.tierRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch pricing tiers: %w", err)
	}

	res := make([]TierResponse, 0, len(tiers))
	for _, t := range tiers {
		res = append(res, toTierResponse(t))
	}
	return res, total, nil
}

func (s *pricingService) CreateTier(ctx context.Context, req CreateTierRequest, userID string) (TierResponse, error) {
	flatRate, margin, oneWay, err := parseTierFields(req.FlatRate, req.Margin, req.OneWayAdjustment)
	if err != nil {
		return TierResponse{}, err
	}

	tier := model.PricingTier{
		Country:          req.Country,
		City:             req.City,
		FlatRate:         flatRate,
		Margin:           margin,
		OneWayAdjustment: oneWay,
		Currency:         req.Currency,
		IsActive:         true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tierRepo.Create(txCtx, &tier); err != nil {
			return fmt.Errorf("failed to create pricing tier: %w", err)
		}
		return s.writeAudit(txCtx, userID, model.ActionCreateTier, tier.ID.String(), tier.Country+"/"+tier.City, req)
	})
	if err != nil {
		return TierResponse{}, err
	}

	return toTierResponse(tier), nil
}

func (s *pricingService) UpdateTier(ctx context.Context, id string, req CreateTierRequest, userID string) (TierResponse, error) {
	tierID, err := uuid.Parse(id)
	if err != nil {
		return TierResponse{}, fmt.Errorf("invalid pricing tier id: %w", err)
	}

	tier, err := s.tierRepo.FindByID(ctx, tierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TierResponse{}, errors.New("pricing tier not found")
		}
		return TierResponse{}, fmt.Errorf("database error: %w", err)
	}

	flatRate, margin, oneWay, err := parseTierFields(req.FlatRate, req.Margin, req.OneWayAdjustment)
	if err != nil {
		return TierResponse{}, err
	}

	tier.Country = req.Country
	tier.City = req.City
	tier.FlatRate = flatRate
	tier.Margin = margin
	tier.OneWayAdjustment = oneWay
	tier.Currency = req.Currency

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tierRepo.Update(txCtx, tier); err != nil {
			return fmt.Errorf("failed to update pricing tier: %w", err)
		}
		return s.writeAudit(txCtx, userID, model.ActionUpdateTier, tier.ID.String(), tier.Country+"/"+tier.City, req)
	})
	if err != nil {
		return TierResponse{}, err
	}

	return toTierResponse(*tier), nil
}

func (s *pricingService) DeleteTier(ctx context.Context, id string, userID string) error {
	tierID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid pricing tier id: %w", err)
	}

	tier, err := s.tierRepo.FindByID(ctx, tierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("pricing tier not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tierRepo.Delete(txCtx, tierID); err != nil {
			return fmt.Errorf("failed to delete pricing tier: %w", err)
		}
		return s.writeAudit(txCtx, userID, model.ActionDeleteTier, tier.ID.String(), tier.Country+"/"+tier.City, nil)
	})
}

// --- Helpers ---

func (s *pricingService) writeAudit(ctx context.Context, userID, action, entityID, entityName string, payload interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}
	details, _ := json.Marshal(payload)
	audit := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, audit); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func parseTierFields(flatRate, margin, oneWay string) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	fr, err := decimal.NewFromString(flatRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("invalid flat_rate %q: %w", flatRate, err)
	}
	m := decimal.Zero
	if margin != "" {
		if m, err = decimal.NewFromString(margin); err != nil {
			return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("invalid margin %q: %w", margin, err)
		}
	}
	ow := decimal.Zero
	if oneWay != "" {
		if ow, err = decimal.NewFromString(oneWay); err != nil {
			return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("invalid one_way_adjustment %q: %w", oneWay, err)
		}
	}
	return fr, m, ow, nil
}

func toTierResponse(t model.PricingTier) TierResponse {
	return TierResponse{
		ID:               t.ID.String(),
		Country:          t.Country,
		City:             t.City,
		FlatRate:         t.FlatRate.StringFixed(2),
		Margin:           t.Margin.StringFixed(2),
		OneWayAdjustment: t.OneWayAdjustment.StringFixed(2),
		Currency:         t.Currency,
		IsActive:         t.IsActive,
	}
}

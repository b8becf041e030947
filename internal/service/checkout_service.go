package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentalportal/internal/model"
	"rentalportal/internal/repository"
	"rentalportal/internal/status"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type SubmitItem struct {
	AssetID             string `json:"asset_id" binding:"required"`
	Quantity            int    `json:"quantity" binding:"required,gt=0"`
	UnitVolumeM3        string `json:"unit_volume_m3"`
	UnitWeightKg        string `json:"unit_weight_kg"`
	Condition           string `json:"condition" binding:"omitempty,oneof=GREEN ORANGE RED"`
	MaintenanceDecision string `json:"maintenance_decision" binding:"omitempty,oneof=FIX_IN_ORDER USE_AS_IS"`
	RebrandBrand        string `json:"rebrand_brand"`
	RebrandInstructions string `json:"rebrand_instructions"`
}

type SubmitRequest struct {
	Kind           string       `json:"kind" binding:"required,oneof=ORDER INBOUND_REQUEST SERVICE_REQUEST"`
	ClientID       string       `json:"client_id"`
	Items          []SubmitItem `json:"items" binding:"required,min=1,dive"`
	Country        string       `json:"country"`
	City           string       `json:"city"`
	TripType       string       `json:"trip_type" binding:"omitempty,oneof=ROUND_TRIP ONE_WAY"`
	EventStartDate string       `json:"event_start_date"` // YYYY-MM-DD
	BillingMode    string       `json:"billing_mode" binding:"omitempty,oneof=CLIENT_BILLABLE INTERNAL"`
}

// SubmitResult reports either a created entity or the structured blockers that
// stopped submission. Infeasible schedules and missing tiers are results, not
// errors: the caller changes the event date or waits for a manual quote.
type SubmitResult struct {
	Entity             *EntityResponse    `json:"entity,omitempty"`
	AvailabilityIssues []string           `json:"availability_issues,omitempty"`
	Feasibility        *FeasibilityResult `json:"feasibility,omitempty"`
	Estimate           *PricingEstimate   `json:"estimate,omitempty"`
}

// --- Interface ---

// CheckoutService orchestrates order submission: availability, maintenance
// decision validation, the authoritative feasibility check over all items, a
// price preview, and finally entity creation in the initial status. The
// feasibility check always re-runs here even if the client ran a speculative
// one earlier, so a decision changed on the last step can never slip through.
type CheckoutService interface {
	Submit(ctx context.Context, req SubmitRequest, actor Actor) (SubmitResult, error)
}

type checkoutService struct {
	entityRepo   repository.EntityRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	availability AvailabilityService
	feasibility  FeasibilityService
	pricing      PricingService
}

func NewCheckoutService(
	entityRepo repository.EntityRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	availability AvailabilityService,
	feasibility FeasibilityService,
	pricing PricingService,
) CheckoutService {
	return &checkoutService{
		entityRepo:   entityRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		availability: availability,
		feasibility:  feasibility,
		pricing:      pricing,
	}
}

// --- Implementation ---

func (s *checkoutService) Submit(ctx context.Context, req SubmitRequest, actor Actor) (SubmitResult, error) {
	if err := validateItems(req.Items); err != nil {
		return SubmitResult{}, err
	}

	var eventStart *time.Time
	if req.EventStartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EventStartDate)
		if err != nil {
			return SubmitResult{}, fmt.Errorf("%w: invalid event_start_date %q", status.ErrValidation, req.EventStartDate)
		}
		eventStart = &parsed
	}

	availabilityItems := make([]AvailabilityItem, 0, len(req.Items))
	for _, item := range req.Items {
		availabilityItems = append(availabilityItems, AvailabilityItem{AssetID: item.AssetID, Quantity: item.Quantity})
	}
	issues, err := s.availability.ValidateAvailability(ctx, availabilityItems)
	if err != nil {
		return SubmitResult{}, err
	}
	if len(issues) > 0 {
		return SubmitResult{AvailabilityIssues: issues}, nil
	}

	// Authoritative feasibility pass over every item carrying a decision;
	// the speculative RED-only check the client may have run earlier does
	// not count.
	var feasibility *FeasibilityResult
	if eventStart != nil {
		feasibilityItems := make([]FeasibilityItem, 0, len(req.Items))
		for _, item := range req.Items {
			if item.MaintenanceDecision == "" {
				continue
			}
			feasibilityItems = append(feasibilityItems, FeasibilityItem{AssetID: item.AssetID, Decision: item.MaintenanceDecision})
		}
		if len(feasibilityItems) > 0 {
			result, checkErr := s.feasibility.Check(ctx, feasibilityItems, *eventStart)
			if checkErr != nil {
				return SubmitResult{}, checkErr
			}
			feasibility = &result
			if !result.Feasible {
				return SubmitResult{Feasibility: feasibility}, nil
			}
		}
	}

	var estimate *PricingEstimate
	if req.Country != "" {
		estimateItems := make([]EstimateItem, 0, len(req.Items))
		for _, item := range req.Items {
			estimateItems = append(estimateItems, EstimateItem{
				AssetID:      item.AssetID,
				Quantity:     item.Quantity,
				UnitVolumeM3: item.UnitVolumeM3,
				UnitWeightKg: item.UnitWeightKg,
				HasRebrand:   item.RebrandBrand != "",
			})
		}
		tripType := req.TripType
		if tripType == "" {
			tripType = model.TripRoundTrip
		}
		result, estimateErr := s.pricing.EstimatePrice(ctx, EstimateRequest{
			Items:    estimateItems,
			Country:  req.Country,
			City:     req.City,
			TripType: tripType,
		})
		if estimateErr != nil {
			return SubmitResult{}, estimateErr
		}
		estimate = &result
	}

	entity, err := s.createEntity(ctx, req, eventStart, actor)
	if err != nil {
		return SubmitResult{}, err
	}

	res := toEntityResponse(entity, true)
	return SubmitResult{Entity: &res, Feasibility: feasibility, Estimate: estimate}, nil
}

// validateItems enforces per-line invariants before any collaborator call:
// a non-GREEN condition requires a maintenance decision, and the rebrand
// fields come together or not at all.
func validateItems(items []SubmitItem) error {
	for _, item := range items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", status.ErrValidation)
		}
		if (item.Condition == model.ConditionOrange || item.Condition == model.ConditionRed) && item.MaintenanceDecision == "" {
			return fmt.Errorf("%w: missing maintenance decision for %s item %s", status.ErrValidation, item.Condition, item.AssetID)
		}
		if item.Condition == model.ConditionRed && item.MaintenanceDecision == model.DecisionUseAsIs {
			return fmt.Errorf("%w: RED item %s must be fixed before use", status.ErrValidation, item.AssetID)
		}
		hasBrand := item.RebrandBrand != ""
		hasInstructions := item.RebrandInstructions != ""
		if hasBrand != hasInstructions {
			return fmt.Errorf("%w: rebrand brand and instructions are required together", status.ErrValidation)
		}
	}
	return nil
}

func (s *checkoutService) createEntity(ctx context.Context, req SubmitRequest, eventStart *time.Time, actor Actor) (*model.Entity, error) {
	kind := status.Kind(req.Kind)

	billingMode := req.BillingMode
	if billingMode == "" {
		billingMode = model.BillingClientBillable
		if kind == status.KindInboundRequest {
			billingMode = model.BillingInternal
		}
	}

	commercial := ""
	if billingMode == model.BillingClientBillable {
		commercial = string(status.InitialStatus(status.DimCommercial))
	}

	entity := &model.Entity{
		Kind:               req.Kind,
		Status:             string(status.InitialStatus(status.DimOperational)),
		CommercialStatus:   commercial,
		BillingMode:        billingMode,
		DestinationCountry: req.Country,
		DestinationCity:    req.City,
		TripType:           req.TripType,
		EventStartDate:     eventStart,
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid client_id", status.ErrValidation)
		}
		entity.ClientID = &clientID
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		code, genErr := s.generateCode(txCtx, kind)
		if genErr != nil {
			return fmt.Errorf("failed to generate code: %w", genErr)
		}
		entity.Code = code

		if createErr := s.entityRepo.Create(txCtx, entity); createErr != nil {
			return fmt.Errorf("failed to create entity: %w", createErr)
		}

		for _, itemReq := range req.Items {
			assetID, parseErr := uuid.Parse(itemReq.AssetID)
			if parseErr != nil {
				return fmt.Errorf("%w: invalid asset_id %q", status.ErrValidation, itemReq.AssetID)
			}
			item := &model.LineItem{
				EntityID:            entity.ID,
				AssetID:             assetID,
				Quantity:            itemReq.Quantity,
				Condition:           itemReq.Condition,
				MaintenanceDecision: itemReq.MaintenanceDecision,
				RebrandBrand:        itemReq.RebrandBrand,
				RebrandInstructions: itemReq.RebrandInstructions,
			}
			if itemReq.UnitVolumeM3 != "" {
				vol, volErr := decimal.NewFromString(itemReq.UnitVolumeM3)
				if volErr != nil {
					return fmt.Errorf("%w: invalid unit_volume_m3 %q", status.ErrValidation, itemReq.UnitVolumeM3)
				}
				item.UnitVolumeM3 = vol
			}
			if itemReq.UnitWeightKg != "" {
				weight, weightErr := decimal.NewFromString(itemReq.UnitWeightKg)
				if weightErr != nil {
					return fmt.Errorf("%w: invalid unit_weight_kg %q", status.ErrValidation, itemReq.UnitWeightKg)
				}
				item.UnitWeightKg = weight
			}
			if itemErr := s.entityRepo.CreateItem(txCtx, item); itemErr != nil {
				return fmt.Errorf("failed to create line item: %w", itemErr)
			}
		}

		// Initial history entries anchor the append-only invariant: the
		// last entry per dimension always matches the current status.
		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(actor.ID); parseErr == nil {
			uid = &parsed
		}
		opEntry := &model.StatusHistory{
			EntityID:  entity.ID,
			Dimension: string(status.DimOperational),
			ToStatus:  entity.Status,
			ActorID:   uid,
			ActorRole: actor.Role,
		}
		if histErr := s.entityRepo.AppendHistory(txCtx, opEntry); histErr != nil {
			return fmt.Errorf("failed to append initial history: %w", histErr)
		}
		if entity.CommercialStatus != "" {
			comEntry := &model.StatusHistory{
				EntityID:  entity.ID,
				Dimension: string(status.DimCommercial),
				ToStatus:  entity.CommercialStatus,
				ActorID:   uid,
				ActorRole: actor.Role,
			}
			if histErr := s.entityRepo.AppendHistory(txCtx, comEntry); histErr != nil {
				return fmt.Errorf("failed to append initial history: %w", histErr)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"kind":       req.Kind,
			"item_count": len(req.Items),
			"country":    req.Country,
			"city":       req.City,
		})
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionSubmitEntity,
			EntityID:   entity.ID.String(),
			EntityName: entity.Code,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.entityRepo.FindByID(ctx, entity.ID)
}

var codePrefixes = map[status.Kind]string{
	status.KindOrder:          "ORD",
	status.KindInboundRequest: "INB",
	status.KindServiceRequest: "SRV",
}

func (s *checkoutService) generateCode(ctx context.Context, kind status.Kind) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", codePrefixes[kind], time.Now().Format("20060102"))
	count, err := s.entityRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

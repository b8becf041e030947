package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"rentalportal/internal/model"
	"rentalportal/internal/repository"
	"rentalportal/internal/status"
	ws "rentalportal/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type CreateAssetRequest struct {
	SKU                string `json:"sku" binding:"required"`
	Name               string `json:"name" binding:"required"`
	AvailableQty       int    `json:"available_qty" binding:"min=0"`
	Condition          string `json:"condition" binding:"omitempty,oneof=GREEN ORANGE RED"`
	RefurbLeadTimeDays int    `json:"refurb_lead_time_days" binding:"min=0"`
	UnitVolumeM3       string `json:"unit_volume_m3"`
	UnitWeightKg       string `json:"unit_weight_kg"`
	UnitPrice          string `json:"unit_price"`
}

type UpdateAssetRequest struct {
	Name               string `json:"name" binding:"required"`
	Status             string `json:"status" binding:"omitempty,oneof=AVAILABLE MAINTENANCE RETIRED"`
	Condition          string `json:"condition" binding:"omitempty,oneof=GREEN ORANGE RED"`
	RefurbLeadTimeDays int    `json:"refurb_lead_time_days" binding:"min=0"`
	UnitVolumeM3       string `json:"unit_volume_m3"`
	UnitWeightKg       string `json:"unit_weight_kg"`
	UnitPrice          string `json:"unit_price"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

type AssetResponse struct {
	ID                 string `json:"id"`
	SKU                string `json:"sku"`
	Name               string `json:"name"`
	Status             string `json:"status"`
	AvailableQty       int    `json:"available_qty"`
	Condition          string `json:"condition"`
	RefurbLeadTimeDays int    `json:"refurb_lead_time_days"`
	UnitVolumeM3       string `json:"unit_volume_m3"`
	UnitWeightKg       string `json:"unit_weight_kg"`
	UnitPrice          string `json:"unit_price"`
}

// Websocket payload for stock changes.
type AssetEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

type AssetService interface {
	GetAssets(ctx context.Context, page, limit int, search string) ([]AssetResponse, int64, error)
	GetAsset(ctx context.Context, id string) (AssetResponse, error)
	CreateAsset(ctx context.Context, userID string, req CreateAssetRequest) (AssetResponse, error)
	UpdateAsset(ctx context.Context, userID string, id string, req UpdateAssetRequest) (AssetResponse, error)
	DeleteAsset(ctx context.Context, userID string, id string) error
	AdjustStock(ctx context.Context, userID string, id string, req AdjustStockRequest) (AssetResponse, error)
}

type assetService struct {
	assetRepo repository.AssetRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewAssetService(
	assetRepo repository.AssetRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) AssetService {
	return &assetService{
		assetRepo: assetRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
	}
}

func (s *assetService) GetAssets(ctx context.Context, page, limit int, search string) ([]AssetResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	assets, total, err := s.assetRepo.List(ctx, page, limit, search)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AssetResponse, 0, len(assets))
	for _, a := range assets {
		res = append(res, toAssetResponse(a))
	}
	return res, total, nil
}

func (s *assetService) GetAsset(ctx context.Context, id string) (AssetResponse, error) {
	assetID, err := uuid.Parse(id)
	if err != nil {
		return AssetResponse{}, fmt.Errorf("%w: invalid asset id", status.ErrValidation)
	}
	asset, err := s.assetRepo.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AssetResponse{}, errors.New("asset not found")
		}
		return AssetResponse{}, fmt.Errorf("database error: %w", err)
	}
	return toAssetResponse(*asset), nil
}

func (s *assetService) CreateAsset(ctx context.Context, userID string, req CreateAssetRequest) (AssetResponse, error) {
	condition := req.Condition
	if condition == "" {
		condition = model.ConditionGreen
	}
	asset := model.Asset{
		SKU:                req.SKU,
		Name:               req.Name,
		Status:             model.AssetAvailable,
		AvailableQty:       req.AvailableQty,
		Condition:          condition,
		RefurbLeadTimeDays: req.RefurbLeadTimeDays,
	}
	if err := setAssetDecimals(&asset, req.UnitVolumeM3, req.UnitWeightKg, req.UnitPrice); err != nil {
		return AssetResponse{}, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.assetRepo.Create(txCtx, &asset); err != nil {
			return fmt.Errorf("failed to create asset: %w", err)
		}

		var uid *uuid.UUID
		if parsed, err := uuid.Parse(userID); err == nil {
			uid = &parsed
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionCreateAsset,
			EntityID:   asset.ID.String(),
			EntityName: asset.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return AssetResponse{}, err
	}

	return toAssetResponse(asset), nil
}

func (s *assetService) UpdateAsset(ctx context.Context, userID string, id string, req UpdateAssetRequest) (AssetResponse, error) {
	assetID, err := uuid.Parse(id)
	if err != nil {
		return AssetResponse{}, fmt.Errorf("%w: invalid asset id", status.ErrValidation)
	}

	asset, err := s.assetRepo.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AssetResponse{}, errors.New("asset not found")
		}
		return AssetResponse{}, fmt.Errorf("database error: %w", err)
	}

	asset.Name = req.Name
	if req.Status != "" {
		asset.Status = req.Status
	}
	if req.Condition != "" {
		asset.Condition = req.Condition
	}
	asset.RefurbLeadTimeDays = req.RefurbLeadTimeDays
	if err := setAssetDecimals(asset, req.UnitVolumeM3, req.UnitWeightKg, req.UnitPrice); err != nil {
		return AssetResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.assetRepo.Update(txCtx, asset); err != nil {
			return fmt.Errorf("failed to update asset: %w", err)
		}

		var uid *uuid.UUID
		if parsed, err := uuid.Parse(userID); err == nil {
			uid = &parsed
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionUpdateAsset,
			EntityID:   asset.ID.String(),
			EntityName: asset.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return AssetResponse{}, err
	}

	return toAssetResponse(*asset), nil
}

func (s *assetService) DeleteAsset(ctx context.Context, userID string, id string) error {
	assetID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid asset id", status.ErrValidation)
	}

	asset, err := s.assetRepo.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("asset not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.assetRepo.Delete(txCtx, assetID); err != nil {
			return fmt.Errorf("failed to delete asset: %w", err)
		}

		var uid *uuid.UUID
		if parsed, err := uuid.Parse(userID); err == nil {
			uid = &parsed
		}

		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionDeleteAsset,
			EntityID:   asset.ID.String(),
			EntityName: asset.Name,
			Details:    `{"deleted": true}`,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

// AdjustStock applies a manual correction (damage write-off, found stock) and
// records a movement row with no entity reference.
func (s *assetService) AdjustStock(ctx context.Context, userID string, id string, req AdjustStockRequest) (AssetResponse, error) {
	assetID, err := uuid.Parse(id)
	if err != nil {
		return AssetResponse{}, fmt.Errorf("%w: invalid asset id", status.ErrValidation)
	}

	var updated *model.Asset
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var applyErr error
		updated, applyErr = s.assetRepo.ApplyStockDelta(txCtx, assetID, req.Delta)
		if applyErr != nil {
			return fmt.Errorf("failed to adjust stock: %w", applyErr)
		}
		if updated.AvailableQty < 0 {
			return fmt.Errorf("%w: stock for %s cannot go below zero", status.ErrValidation, updated.Name)
		}

		movementType := model.MovementIn
		if req.Delta < 0 {
			movementType = model.MovementOut
		}
		movement := &model.AssetMovement{
			AssetID:         assetID,
			MovementType:    movementType,
			QuantityChanged: req.Delta,
			StockAfter:      updated.AvailableQty,
		}
		if createErr := s.assetRepo.CreateMovement(txCtx, movement); createErr != nil {
			return fmt.Errorf("failed to record stock movement: %w", createErr)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			uid = &parsed
		}
		details, _ := json.Marshal(map[string]interface{}{
			"delta":       req.Delta,
			"reason":      req.Reason,
			"stock_after": updated.AvailableQty,
		})
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionAdjustStock,
			EntityID:   assetID.String(),
			EntityName: updated.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return AssetResponse{}, err
	}

	s.broadcastStock(updated)
	return toAssetResponse(*updated), nil
}

// broadcastStock pushes the new quantity to connected dashboards. Dropped if
// no reader is draining the channel; stock events are best-effort.
func (s *assetService) broadcastStock(asset *model.Asset) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(AssetEvent{
		Event: "stock_changed",
		Data: map[string]interface{}{
			"asset_id":      asset.ID.String(),
			"sku":           asset.SKU,
			"available_qty": asset.AvailableQty,
		},
	})
	if err != nil {
		log.Printf("failed to marshal stock event: %v", err)
		return
	}
	select {
	case s.hub.Broadcast <- payload:
	default:
	}
}

// --- Helpers ---

func setAssetDecimals(asset *model.Asset, volume, weight, price string) error {
	if volume != "" {
		v, err := decimal.NewFromString(volume)
		if err != nil {
			return fmt.Errorf("%w: invalid unit_volume_m3 %q", status.ErrValidation, volume)
		}
		asset.UnitVolumeM3 = v
	}
	if weight != "" {
		w, err := decimal.NewFromString(weight)
		if err != nil {
			return fmt.Errorf("%w: invalid unit_weight_kg %q", status.ErrValidation, weight)
		}
		asset.UnitWeightKg = w
	}
	if price != "" {
		p, err := decimal.NewFromString(price)
		if err != nil {
			return fmt.Errorf("%w: invalid unit_price %q", status.ErrValidation, price)
		}
		asset.UnitPrice = p
	}
	return nil
}

func toAssetResponse(a model.Asset) AssetResponse {
	return AssetResponse{
		ID:                 a.ID.String(),
		SKU:                a.SKU,
		Name:               a.Name,
		Status:             a.Status,
		AvailableQty:       a.AvailableQty,
		Condition:          a.Condition,
		RefurbLeadTimeDays: a.RefurbLeadTimeDays,
		UnitVolumeM3:       a.UnitVolumeM3.String(),
		UnitWeightKg:       a.UnitWeightKg.String(),
		UnitPrice:          a.UnitPrice.StringFixed(2),
	}
}

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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

// Actor identifies who requested a transition. Authorization is enforced by the
// HTTP layer; the lifecycle engine only records the actor in history.
type Actor struct {
	ID   string
	Role string
}

type HistoryEntryResponse struct {
	Dimension  string `json:"dimension"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ActorID    string `json:"actor_id,omitempty"`
	ActorRole  string `json:"actor_role,omitempty"`
	Note       string `json:"note,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type QuoteResponse struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type EntityResponse struct {
	ID                    string                 `json:"id"`
	Code                  string                 `json:"code"`
	Kind                  string                 `json:"kind"`
	Status                string                 `json:"status"`
	StatusLabel           string                 `json:"status_label"`
	CommercialStatus      string                 `json:"commercial_status,omitempty"`
	CommercialStatusLabel string                 `json:"commercial_status_label,omitempty"`
	BillingMode           string                 `json:"billing_mode"`
	DestinationCountry    string                 `json:"destination_country,omitempty"`
	DestinationCity       string                 `json:"destination_city,omitempty"`
	TripType              string                 `json:"trip_type,omitempty"`
	EventStartDate        string                 `json:"event_start_date,omitempty"`
	Version               int64                  `json:"version"`
	ItemCount             int                    `json:"item_count"`
	Quote                 *QuoteResponse         `json:"quote,omitempty"`
	History               []HistoryEntryResponse `json:"history,omitempty"`
}

// --- Interface ---

// Notifier receives post-transition notifications. Delivery (email, push) is an
// external collaborator; failures are logged and retried outside this core and
// never roll back a committed transition.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, entity *model.Entity, entry *model.StatusHistory)
}

type logNotifier struct{}

func (logNotifier) NotifyStatusChange(_ context.Context, entity *model.Entity, entry *model.StatusHistory) {
	log.Printf("notify: %s %s -> %s (%s)", entity.Code, entry.FromStatus, entry.ToStatus, entry.Dimension)
}

// NewLogNotifier returns the default notifier, which only logs.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

// LifecycleService is the authoritative mutator for entity statuses. Every
// status change in the system goes through Transition; nothing else writes the
// status columns or the history table.
type LifecycleService interface {
	Transition(ctx context.Context, entityID string, action status.Action, actor Actor, note string) (EntityResponse, error)
	GetEntity(ctx context.Context, entityID string) (EntityResponse, error)
	ListEntities(ctx context.Context, kind string, page, limit int) ([]EntityResponse, int64, error)
}

type lifecycleService struct {
	entityRepo repository.EntityRepository
	assetRepo  repository.AssetRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	invoices   InvoiceService
	notifier   Notifier
}

func NewLifecycleService(
	entityRepo repository.EntityRepository,
	assetRepo repository.AssetRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	invoices InvoiceService,
	notifier Notifier,
) LifecycleService {
	return &lifecycleService{
		entityRepo: entityRepo,
		assetRepo:  assetRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		invoices:   invoices,
		notifier:   notifier,
	}
}

// --- Implementation ---

// Transition validates and applies one action:
//  1. catalog lookup of the current status (ErrUnknownStatus)
//  2. action table lookup for the entity kind (ErrInvalidAction)
//  3. legality of the target against allowed successors (ErrInvalidTransition)
//  4. history append
//  5. atomic persist with a version guard (ErrConcurrentModification)
//
// Post-transition side effects run after commit and never undo the transition.
func (s *lifecycleService) Transition(ctx context.Context, entityID string, action status.Action, actor Actor, note string) (EntityResponse, error) {
	id, err := uuid.Parse(entityID)
	if err != nil {
		return EntityResponse{}, fmt.Errorf("%w: invalid entity id", status.ErrValidation)
	}

	var entity *model.Entity
	var entries []*model.StatusHistory

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		entity, txErr = s.entityRepo.FindByID(txCtx, id)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("entity not found: %s", entityID)
			}
			return fmt.Errorf("failed to load entity: %w", txErr)
		}

		kind := status.Kind(entity.Kind)
		spec, txErr := status.Spec(kind, action)
		if txErr != nil {
			return txErr
		}

		entries = entries[:0]
		switch spec.Dimension {
		case status.DimOperational:
			entry, moveErr := s.applyMove(kind, status.DimOperational, entity.Status, spec.Target, actor, note)
			if moveErr != nil {
				return moveErr
			}
			entity.Status = string(spec.Target)
			entries = append(entries, entry)

			if spec.CommercialTarget != "" && entity.BillingMode == model.BillingClientBillable {
				comEntry, moveErr := s.applyMove(kind, status.DimCommercial, entity.CommercialStatus, spec.CommercialTarget, actor, note)
				if moveErr != nil {
					return moveErr
				}
				entity.CommercialStatus = string(spec.CommercialTarget)
				entries = append(entries, comEntry)
			}

		case status.DimCommercial:
			if entity.BillingMode != model.BillingClientBillable {
				return fmt.Errorf("%w: %s is not billable", status.ErrInvalidAction, entity.Code)
			}
			entry, moveErr := s.applyMove(kind, status.DimCommercial, entity.CommercialStatus, spec.Target, actor, note)
			if moveErr != nil {
				return moveErr
			}
			entity.CommercialStatus = string(spec.Target)
			entries = append(entries, entry)
		}

		if entity.CommercialStatus != "" {
			if crossErr := status.ValidateCrossDimensions(kind, status.Status(entity.Status), status.Status(entity.CommercialStatus)); crossErr != nil {
				return crossErr
			}
		}

		if txErr = s.entityRepo.SaveTransition(txCtx, entity, entries...); txErr != nil {
			return txErr
		}

		details, _ := json.Marshal(map[string]interface{}{
			"action":            string(action),
			"status":            entity.Status,
			"commercial_status": entity.CommercialStatus,
			"note":              note,
		})
		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(actor.ID); parseErr == nil {
			uid = &parsed
		}
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionTransition,
			EntityID:   entity.ID.String(),
			EntityName: entity.Code,
			Details:    string(details),
		}
		if txErr = s.auditRepo.Log(txCtx, audit); txErr != nil {
			return fmt.Errorf("failed to write audit log: %w", txErr)
		}

		return nil
	})
	if err != nil {
		return EntityResponse{}, err
	}

	// Committed: side effects are best-effort from here on.
	s.runHooks(ctx, entity, action, actor, entries)

	reloaded, err := s.entityRepo.FindByID(ctx, id)
	if err != nil {
		return EntityResponse{}, fmt.Errorf("failed to reload entity: %w", err)
	}
	return toEntityResponse(reloaded, true), nil
}

// applyMove validates one dimension's transition and builds its history entry.
func (s *lifecycleService) applyMove(kind status.Kind, dim status.Dimension, from string, to status.Status, actor Actor, note string) (*model.StatusHistory, error) {
	ok, err := status.CanTransition(kind, dim, status.Status(from), to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s (%s/%s)", status.ErrInvalidTransition, from, to, kind, dim)
	}

	entry := &model.StatusHistory{
		Dimension:  string(dim),
		FromStatus: from,
		ToStatus:   string(to),
		ActorRole:  actor.Role,
		Note:       note,
	}
	if parsed, parseErr := uuid.Parse(actor.ID); parseErr == nil {
		entry.ActorID = &parsed
	}
	return entry, nil
}

// runHooks executes post-transition side effects. Failures are logged and
// independently retryable; the committed transition stands regardless.
func (s *lifecycleService) runHooks(ctx context.Context, entity *model.Entity, action status.Action, actor Actor, entries []*model.StatusHistory) {
	for _, entry := range entries {
		s.notifier.NotifyStatusChange(ctx, entity, entry)
	}

	switch action {
	case status.ActionApprove:
		if entity.BillingMode == model.BillingClientBillable && s.invoices != nil {
			if _, err := s.invoices.CreateForEntity(ctx, entity.ID, actor.ID); err != nil {
				log.Printf("post-transition hook: invoice creation for %s failed: %v", entity.Code, err)
			}
		}
	case status.ActionIssueInvoice:
		if s.invoices != nil {
			if err := s.invoices.MarkIssued(ctx, entity.ID); err != nil {
				log.Printf("post-transition hook: marking invoice issued for %s failed: %v", entity.Code, err)
			}
		}
	case status.ActionMarkPaid:
		if s.invoices != nil {
			if err := s.invoices.MarkPaid(ctx, entity.ID); err != nil {
				log.Printf("post-transition hook: marking invoice paid for %s failed: %v", entity.Code, err)
			}
		}
	case status.ActionMarkDelivered:
		s.recordMovements(ctx, entity, model.MovementOut)
	case status.ActionMarkReceived:
		s.recordMovements(ctx, entity, model.MovementIn)
	case status.ActionClose:
		// Rented items come back into stock when an order closes after return.
		if entity.Kind == string(status.KindOrder) {
			s.recordMovements(ctx, entity, model.MovementIn)
		}
	}
}

func (s *lifecycleService) recordMovements(ctx context.Context, entity *model.Entity, movementType string) {
	for _, item := range entity.Items {
		delta := item.Quantity
		if movementType == model.MovementOut {
			delta = -delta
		}
		asset, err := s.assetRepo.ApplyStockDelta(ctx, item.AssetID, delta)
		if err != nil {
			log.Printf("post-transition hook: stock update for asset %s failed: %v", item.AssetID, err)
			continue
		}
		movement := &model.AssetMovement{
			AssetID:         item.AssetID,
			EntityID:        &entity.ID,
			MovementType:    movementType,
			QuantityChanged: delta,
			StockAfter:      asset.AvailableQty,
		}
		if err := s.assetRepo.CreateMovement(ctx, movement); err != nil {
			log.Printf("post-transition hook: movement record for asset %s failed: %v", item.AssetID, err)
		}
	}
}

func (s *lifecycleService) GetEntity(ctx context.Context, entityID string) (EntityResponse, error) {
	id, err := uuid.Parse(entityID)
	if err != nil {
		return EntityResponse{}, fmt.Errorf("%w: invalid entity id", status.ErrValidation)
	}
	entity, err := s.entityRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EntityResponse{}, fmt.Errorf("entity not found: %s", entityID)
		}
		return EntityResponse{}, fmt.Errorf("failed to load entity: %w", err)
	}
	return toEntityResponse(entity, true), nil
}

func (s *lifecycleService) ListEntities(ctx context.Context, kind string, page, limit int) ([]EntityResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	entities, total, err := s.entityRepo.List(ctx, kind, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch entities: %w", err)
	}

	res := make([]EntityResponse, 0, len(entities))
	for i := range entities {
		res = append(res, toEntityResponse(&entities[i], false))
	}
	return res, total, nil
}

// --- Helpers ---

func toEntityResponse(entity *model.Entity, includeHistory bool) EntityResponse {
	res := EntityResponse{
		ID:                 entity.ID.String(),
		Code:               entity.Code,
		Kind:               entity.Kind,
		Status:             entity.Status,
		CommercialStatus:   entity.CommercialStatus,
		BillingMode:        entity.BillingMode,
		DestinationCountry: entity.DestinationCountry,
		DestinationCity:    entity.DestinationCity,
		TripType:           entity.TripType,
		Version:            entity.Version,
		ItemCount:          len(entity.Items),
	}
	if info, err := status.Lookup(status.Kind(entity.Kind), status.DimOperational, status.Status(entity.Status)); err == nil {
		res.StatusLabel = info.Label
	}
	if entity.CommercialStatus != "" {
		if info, err := status.Lookup(status.Kind(entity.Kind), status.DimCommercial, status.Status(entity.CommercialStatus)); err == nil {
			res.CommercialStatusLabel = info.Label
		}
	}
	if entity.EventStartDate != nil {
		res.EventStartDate = entity.EventStartDate.Format("2006-01-02")
	}
	if entity.Quote != nil {
		res.Quote = &QuoteResponse{
			Total:    entity.Quote.Total.StringFixed(2),
			Currency: entity.Quote.Currency,
		}
	}
	if includeHistory {
		for _, h := range entity.History {
			e := HistoryEntryResponse{
				Dimension:  h.Dimension,
				FromStatus: h.FromStatus,
				ToStatus:   h.ToStatus,
				ActorRole:  h.ActorRole,
				Note:       h.Note,
				CreatedAt:  h.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			}
			if h.ActorID != nil {
				e.ActorID = h.ActorID.String()
			}
			res.History = append(res.History, e)
		}
	}
	return res
}

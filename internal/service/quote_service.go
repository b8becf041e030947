package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rentalportal/internal/model"
	"rentalportal/internal/repository"
	"rentalportal/internal/status"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Minimum length for a decline reason; shorter reasons give staff nothing to
// act on when requoting.
const minDeclineReasonLen = 10

// --- DTOs ---

type QuoteDecisionRequest struct {
	Action string `json:"action" binding:"required,oneof=APPROVE DECLINE REQUEST_REVISION"`
	Note   string `json:"note"`
}

type SetQuoteRequest struct {
	Total     string `json:"total" binding:"required"` // decimal string
	Currency  string `json:"currency" binding:"required,len=3"`
	Breakdown string `json:"breakdown"` // optional JSON per-line detail
}

// --- Interface ---

// QuoteService implements the approve/decline/request-revision protocol over
// the lifecycle machine. Decisions are only possible while the commercial
// status is QUOTED; re-submitting an applied decision fails with
// ErrInvalidTransition rather than silently succeeding, which keeps retried
// network requests from triggering duplicate invoicing.
type QuoteService interface {
	SetQuote(ctx context.Context, entityID string, req SetQuoteRequest, actor Actor) (EntityResponse, error)
	SubmitQuoteDecision(ctx context.Context, entityID string, req QuoteDecisionRequest, actor Actor) (EntityResponse, error)
}

type quoteService struct {
	entityRepo repository.EntityRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	lifecycle  LifecycleService
}

func NewQuoteService(
	entityRepo repository.EntityRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	lifecycle LifecycleService,
) QuoteService {
	return &quoteService{
		entityRepo: entityRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		lifecycle:  lifecycle,
	}
}

// --- Implementation ---

// SetQuote attaches staff pricing to the entity and moves it to QUOTED in both
// dimensions via the lifecycle machine.
func (s *quoteService) SetQuote(ctx context.Context, entityID string, req SetQuoteRequest, actor Actor) (EntityResponse, error) {
	id, err := uuid.Parse(entityID)
	if err != nil {
		return EntityResponse{}, fmt.Errorf("%w: invalid entity id", status.ErrValidation)
	}

	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		return EntityResponse{}, fmt.Errorf("%w: invalid quote total %q", status.ErrValidation, req.Total)
	}
	if total.IsNegative() {
		return EntityResponse{}, fmt.Errorf("%w: quote total must not be negative", status.ErrValidation)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quote := &model.QuoteState{
			EntityID: id,
			Total:    total,
			Currency: req.Currency,
		}
		if req.Breakdown != "" {
			quote.Breakdown = req.Breakdown
		}
		if upsertErr := s.entityRepo.UpsertQuote(txCtx, quote); upsertErr != nil {
			return fmt.Errorf("failed to save quote: %w", upsertErr)
		}

		details, _ := json.Marshal(req)
		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(actor.ID); parseErr == nil {
			uid = &parsed
		}
		audit := &model.AuditLog{
			UserID:   uid,
			Action:   model.ActionSetQuote,
			EntityID: id.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return EntityResponse{}, err
	}

	return s.lifecycle.Transition(ctx, entityID, status.ActionSubmitQuote, actor, "")
}

// SubmitQuoteDecision applies a client decision to a quoted entity.
func (s *quoteService) SubmitQuoteDecision(ctx context.Context, entityID string, req QuoteDecisionRequest, actor Actor) (EntityResponse, error) {
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

	if entity.BillingMode != model.BillingClientBillable {
		return EntityResponse{}, fmt.Errorf("%w: %s is internal and has no quote to decide", status.ErrInvalidAction, entity.Code)
	}

	var action status.Action
	switch req.Action {
	case "APPROVE":
		action = status.ActionApprove
	case "DECLINE":
		if len(strings.TrimSpace(req.Note)) < minDeclineReasonLen {
			return EntityResponse{}, fmt.Errorf("%w: decline reason must be at least %d characters", status.ErrValidation, minDeclineReasonLen)
		}
		action = status.ActionDecline
	case "REQUEST_REVISION":
		action = status.ActionRequestRevision
	default:
		return EntityResponse{}, fmt.Errorf("%w: %s", status.ErrInvalidAction, req.Action)
	}

	// The lifecycle machine is the real gate: if the decision was already
	// applied, the commercial status has left QUOTED and the transition
	// fails with ErrInvalidTransition.
	res, err := s.lifecycle.Transition(ctx, entityID, action, actor, req.Note)
	if err != nil {
		return EntityResponse{}, err
	}

	details, _ := json.Marshal(map[string]interface{}{
		"decision": req.Action,
		"note":     req.Note,
	})
	var uid *uuid.UUID
	if parsed, parseErr := uuid.Parse(actor.ID); parseErr == nil {
		uid = &parsed
	}
	audit := &model.AuditLog{
		UserID:     uid,
		Action:     model.ActionQuoteDecide,
		EntityID:   entity.ID.String(),
		EntityName: entity.Code,
		Details:    string(details),
	}
	if auditErr := s.auditRepo.Log(ctx, audit); auditErr != nil {
		return EntityResponse{}, fmt.Errorf("failed to write audit log: %w", auditErr)
	}

	return res, nil
}

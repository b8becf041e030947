package service

import (
	"context"
	"errors"
	"testing"

	"rentalportal/internal/model"
	"rentalportal/internal/status"

	"github.com/google/uuid"
)

// quotedOrder submits an order and walks it to the QUOTED state with a quote
// attached.
func (e *testEnv) quotedOrder(t *testing.T) EntityResponse {
	t.Helper()
	chair := e.mustCreateAsset(t, "Banquet Chair", 50, 0)
	entity := e.mustSubmit(t, orderRequest([]SubmitItem{{AssetID: chair.ID.String(), Quantity: 10}}))
	e.mustTransition(t, entity.ID, status.ActionStartPricingReview)
	e.mustTransition(t, entity.ID, status.ActionSendForApproval)

	quoted, err := e.quote.SetQuote(context.Background(), entity.ID, SetQuoteRequest{
		Total: "1200", Currency: "USD",
	}, testActor)
	if err != nil {
		t.Fatalf("set quote: %v", err)
	}
	return quoted
}

func TestSetQuoteMovesBothDimensions(t *testing.T) {
	env := newTestEnv(t)
	quoted := env.quotedOrder(t)

	if quoted.Status != string(status.StatusQuoted) {
		t.Errorf("status = %s, want QUOTED", quoted.Status)
	}
	if quoted.CommercialStatus != string(status.StatusQuoted) {
		t.Errorf("commercial status = %s, want QUOTED", quoted.CommercialStatus)
	}
	if quoted.Quote == nil || quoted.Quote.Total != "1200.00" {
		t.Errorf("quote = %+v, want total 1200.00", quoted.Quote)
	}
}

func TestSetQuoteRejectsNegativeTotal(t *testing.T) {
	env := newTestEnv(t)
	chair := env.mustCreateAsset(t, "Banquet Chair", 50, 0)
	entity := env.mustSubmit(t, orderRequest([]SubmitItem{{AssetID: chair.ID.String(), Quantity: 1}}))

	_, err := env.quote.SetQuote(context.Background(), entity.ID, SetQuoteRequest{
		Total: "-10", Currency: "USD",
	}, testActor)
	if !errors.Is(err, status.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// Approving a quote advances both dimensions and issues the invoice hook.
func TestQuoteDecisionApprove(t *testing.T) {
	env := newTestEnv(t)
	quoted := env.quotedOrder(t)

	approved, err := env.quote.SubmitQuoteDecision(context.Background(), quoted.ID, QuoteDecisionRequest{
		Action: "APPROVE",
	}, testActor)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != string(status.StatusApproved) {
		t.Errorf("status = %s, want APPROVED", approved.Status)
	}
	if approved.CommercialStatus != string(status.StatusQuoteApproved) {
		t.Errorf("commercial status = %s, want QUOTE_APPROVED", approved.CommercialStatus)
	}

	invoice, err := env.invoiceRepo.FindByEntityID(context.Background(), uuid.MustParse(quoted.ID))
	if err != nil {
		t.Fatalf("expected invoice after approval: %v", err)
	}
	if invoice.Status != model.InvoicePending {
		t.Errorf("invoice status = %s, want PENDING", invoice.Status)
	}
	if invoice.TotalAmount.StringFixed(2) != "1200.00" {
		t.Errorf("invoice total = %s, want 1200.00", invoice.TotalAmount)
	}
}

// A retried APPROVE finds the commercial status already past QUOTED and fails
// instead of double-processing.
func TestQuoteDecisionApproveTwice(t *testing.T) {
	env := newTestEnv(t)
	quoted := env.quotedOrder(t)

	if _, err := env.quote.SubmitQuoteDecision(context.Background(), quoted.ID, QuoteDecisionRequest{
		Action: "APPROVE",
	}, testActor); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	_, err := env.quote.SubmitQuoteDecision(context.Background(), quoted.ID, QuoteDecisionRequest{
		Action: "APPROVE",
	}, testActor)
	if !errors.Is(err, status.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on second approve, got %v", err)
	}
}

// Decline reasons shorter than ten characters are rejected before any state
// change; ten characters is enough.
func TestQuoteDecisionDeclineReasonLength(t *testing.T) {
	env := newTestEnv(t)
	quoted := env.quotedOrder(t)

	_, err := env.quote.SubmitQuoteDecision(context.Background(), quoted.ID, QuoteDecisionRequest{
		Action: "DECLINE", Note: "too steep",
	}, testActor)
	if !errors.Is(err, status.ErrValidation) {
		t.Fatalf("expected ErrValidation for 9-char reason, got %v", err)
	}
	unchanged, err := env.lifecycle.GetEntity(context.Background(), quoted.ID)
	if err != nil {
		t.Fatalf("get entity: %v", err)
	}
	if unchanged.CommercialStatus != string(status.StatusQuoted) {
		t.Errorf("commercial status = %s, want QUOTED after rejected decline", unchanged.CommercialStatus)
	}

	declined, err := env.quote.SubmitQuoteDecision(context.Background(), quoted.ID, QuoteDecisionRequest{
		Action: "DECLINE", Note: "too steep!",
	}, testActor)
	if err != nil {
		t.Fatalf("10-char decline: %v", err)
	}
	if declined.Status != string(status.StatusDeclined) {
		t.Errorf("status = %s, want DECLINED", declined.Status)
	}
	if declined.CommercialStatus != string(status.StatusQuoteDeclined) {
		t.Errorf("commercial status = %s, want QUOTE_DECLINED", declined.CommercialStatus)
	}
}

// Service requests support revision requests, which send the quote back to
// PENDING_QUOTE; orders do not.
func TestQuoteDecisionRequestRevision(t *testing.T) {
	env := newTestEnv(t)
	rig := env.mustCreateAsset(t, "Light Rig", 10, 0)

	req := orderRequest([]SubmitItem{{AssetID: rig.ID.String(), Quantity: 2}})
	req.Kind = string(status.KindServiceRequest)
	entity := env.mustSubmit(t, req)
	env.mustTransition(t, entity.ID, status.ActionStartPricingReview)

	if _, err := env.quote.SetQuote(context.Background(), entity.ID, SetQuoteRequest{
		Total: "500", Currency: "USD",
	}, testActor); err != nil {
		t.Fatalf("set quote: %v", err)
	}

	revised, err := env.quote.SubmitQuoteDecision(context.Background(), entity.ID, QuoteDecisionRequest{
		Action: "REQUEST_REVISION", Note: "please split delivery out",
	}, testActor)
	if err != nil {
		t.Fatalf("request revision: %v", err)
	}
	if revised.CommercialStatus != string(status.StatusPendingQuote) {
		t.Errorf("commercial status = %s, want PENDING_QUOTE", revised.CommercialStatus)
	}
	if revised.Status != string(status.StatusQuoted) {
		t.Errorf("operational status = %s, want QUOTED (revision is commercial-only)", revised.Status)
	}
}

func TestQuoteDecisionRevisionNotAllowedForOrders(t *testing.T) {
	env := newTestEnv(t)
	quoted := env.quotedOrder(t)

	_, err := env.quote.SubmitQuoteDecision(context.Background(), quoted.ID, QuoteDecisionRequest{
		Action: "REQUEST_REVISION",
	}, testActor)
	if !errors.Is(err, status.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestQuoteDecisionOnInternalEntity(t *testing.T) {
	env := newTestEnv(t)
	chair := env.mustCreateAsset(t, "Banquet Chair", 50, 0)

	req := orderRequest([]SubmitItem{{AssetID: chair.ID.String(), Quantity: 1}})
	req.BillingMode = model.BillingInternal
	entity := env.mustSubmit(t, req)

	_, err := env.quote.SubmitQuoteDecision(context.Background(), entity.ID, QuoteDecisionRequest{
		Action: "APPROVE",
	}, testActor)
	if !errors.Is(err, status.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction for internal entity, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rentalportal/internal/model"
	"rentalportal/internal/status"
)

func orderRequest(items []SubmitItem) SubmitRequest {
	return SubmitRequest{
		Kind:           string(status.KindOrder),
		Items:          items,
		Country:        "UAE",
		City:           "Dubai",
		TripType:       model.TripRoundTrip,
		EventStartDate: time.Now().AddDate(0, 0, 30).Format("2006-01-02"),
	}
}

// A damaged item with no maintenance decision is rejected before any entity
// or history row is written.
func TestSubmitRejectsMissingMaintenanceDecision(t *testing.T) {
	env := newTestEnv(t)
	arch := env.mustCreateAsset(t, "Entrance Arch", 5, 4)

	_, err := env.checkout.Submit(context.Background(), orderRequest([]SubmitItem{
		{AssetID: arch.ID.String(), Quantity: 1, Condition: model.ConditionOrange},
	}), testActor)
	if !errors.Is(err, status.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing maintenance decision") {
		t.Errorf("error should name the missing decision: %v", err)
	}

	var count int64
	env.db.Model(&model.Entity{}).Count(&count)
	if count != 0 {
		t.Fatalf("no entity should be created on validation failure, found %d", count)
	}
}

func TestSubmitRejectsRedUseAsIs(t *testing.T) {
	env := newTestEnv(t)
	counter := env.mustCreateAsset(t, "Display Counter", 5, 8)

	_, err := env.checkout.Submit(context.Background(), orderRequest([]SubmitItem{
		{AssetID: counter.ID.String(), Quantity: 1, Condition: model.ConditionRed, MaintenanceDecision: model.DecisionUseAsIs},
	}), testActor)
	if !errors.Is(err, status.ErrValidation) {
		t.Fatalf("expected ErrValidation for RED + USE_AS_IS, got %v", err)
	}
}

func TestSubmitRejectsPartialRebrand(t *testing.T) {
	env := newTestEnv(t)
	banner := env.mustCreateAsset(t, "Backdrop Banner", 5, 0)

	_, err := env.checkout.Submit(context.Background(), orderRequest([]SubmitItem{
		{AssetID: banner.ID.String(), Quantity: 1, RebrandBrand: "Acme"},
	}), testActor)
	if !errors.Is(err, status.ErrValidation) {
		t.Fatalf("expected ErrValidation for rebrand brand without instructions, got %v", err)
	}
}

// Availability problems block submission with issue strings, not an error.
func TestSubmitBlockedByAvailability(t *testing.T) {
	env := newTestEnv(t)
	table := env.mustCreateAsset(t, "Round Table", 2, 0)

	result, err := env.checkout.Submit(context.Background(), orderRequest([]SubmitItem{
		{AssetID: table.ID.String(), Quantity: 10},
	}), testActor)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Entity != nil {
		t.Fatal("entity must not be created when stock is short")
	}
	if len(result.AvailabilityIssues) != 1 {
		t.Fatalf("expected 1 availability issue, got %v", result.AvailabilityIssues)
	}
}

// The pre-submission feasibility check runs over every decided item; an event
// six days out with an 8-day refurbishment blocks submission.
func TestSubmitBlockedByInfeasibleSchedule(t *testing.T) {
	env := newTestEnv(t)
	counter := env.mustCreateAsset(t, "Display Counter", 5, 8)

	req := orderRequest([]SubmitItem{
		{AssetID: counter.ID.String(), Quantity: 1, Condition: model.ConditionRed, MaintenanceDecision: model.DecisionFixInOrder},
	})
	req.EventStartDate = time.Now().AddDate(0, 0, 6).Format("2006-01-02")

	result, err := env.checkout.Submit(context.Background(), req, testActor)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Entity != nil {
		t.Fatal("entity must not be created when the schedule is infeasible")
	}
	if result.Feasibility == nil || result.Feasibility.Feasible {
		t.Fatalf("expected infeasible result, got %+v", result.Feasibility)
	}

	var count int64
	env.db.Model(&model.Entity{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no entities, found %d", count)
	}
}

func TestSubmitCreatesOrderWithInitialHistory(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateTier(t, "UAE", "Dubai", 1000, 200, 150)
	chair := env.mustCreateAsset(t, "Banquet Chair", 50, 0)

	result, err := env.checkout.Submit(context.Background(), orderRequest([]SubmitItem{
		{AssetID: chair.ID.String(), Quantity: 20},
	}), testActor)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Entity == nil {
		t.Fatalf("expected entity, got blocked result %+v", result)
	}

	entity := result.Entity
	if !strings.HasPrefix(entity.Code, "ORD-") {
		t.Errorf("code = %s, want ORD- prefix", entity.Code)
	}
	if entity.Status != string(status.StatusSubmitted) {
		t.Errorf("status = %s, want SUBMITTED", entity.Status)
	}
	if entity.CommercialStatus != string(status.StatusPendingQuote) {
		t.Errorf("commercial status = %s, want PENDING_QUOTE", entity.CommercialStatus)
	}
	if len(entity.History) != 2 {
		t.Fatalf("expected 2 initial history entries (one per dimension), got %d", len(entity.History))
	}
	if result.Estimate == nil || !result.Estimate.HasTier {
		t.Errorf("expected a price preview with a tier, got %+v", result.Estimate)
	}
}

// Inbound requests default to internal billing and carry no commercial status.
func TestSubmitInboundRequestIsInternal(t *testing.T) {
	env := newTestEnv(t)
	banner := env.mustCreateAsset(t, "Backdrop Banner", 10, 0)

	entity := env.mustSubmit(t, SubmitRequest{
		Kind:  string(status.KindInboundRequest),
		Items: []SubmitItem{{AssetID: banner.ID.String(), Quantity: 2}},
	})
	if !strings.HasPrefix(entity.Code, "INB-") {
		t.Errorf("code = %s, want INB- prefix", entity.Code)
	}
	if entity.BillingMode != model.BillingInternal {
		t.Errorf("billing mode = %s, want INTERNAL", entity.BillingMode)
	}
	if entity.CommercialStatus != "" {
		t.Errorf("commercial status = %s, want empty", entity.CommercialStatus)
	}
	if len(entity.History) != 1 {
		t.Errorf("expected 1 initial history entry, got %d", len(entity.History))
	}
}

func TestSubmitSequentialCodes(t *testing.T) {
	env := newTestEnv(t)
	chair := env.mustCreateAsset(t, "Banquet Chair", 50, 0)

	first := env.mustSubmit(t, orderRequest([]SubmitItem{{AssetID: chair.ID.String(), Quantity: 1}}))
	second := env.mustSubmit(t, orderRequest([]SubmitItem{{AssetID: chair.ID.String(), Quantity: 1}}))

	if first.Code == second.Code {
		t.Fatalf("codes must be unique, both %s", first.Code)
	}
	if !strings.HasSuffix(first.Code, "00001") || !strings.HasSuffix(second.Code, "00002") {
		t.Errorf("sequential codes expected, got %s then %s", first.Code, second.Code)
	}
}

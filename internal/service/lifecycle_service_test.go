package service

import (
	"context"
	"errors"
	"testing"

	"rentalportal/internal/model"
	"rentalportal/internal/status"

	"github.com/google/uuid"
)

// Drives one order through the whole operational chain and checks the
// append-only history invariant at the end: the last entry per dimension
// matches the current status.
func TestTransitionOrderHappyPath(t *testing.T) {
	env := newTestEnv(t)
	chair := env.mustCreateAsset(t, "Banquet Chair", 50, 0)
	entity := env.mustSubmit(t, orderRequest([]SubmitItem{{AssetID: chair.ID.String(), Quantity: 10}}))

	env.mustTransition(t, entity.ID, status.ActionStartPricingReview)
	env.mustTransition(t, entity.ID, status.ActionSendForApproval)
	env.mustTransition(t, entity.ID, status.ActionSubmitQuote)
	env.mustTransition(t, entity.ID, status.ActionApprove)
	env.mustTransition(t, entity.ID, status.ActionConfirm)
	env.mustTransition(t, entity.ID, status.ActionStartPreparation)
	env.mustTransition(t, entity.ID, status.ActionMarkReady)
	env.mustTransition(t, entity.ID, status.ActionDispatch)
	delivered := env.mustTransition(t, entity.ID, status.ActionMarkDelivered)

	if delivered.Status != string(status.StatusDelivered) {
		t.Errorf("status = %s, want DELIVERED", delivered.Status)
	}
	// Dispatch of 10 chairs moved stock out.
	asset, err := env.assetRepo.FindByID(context.Background(), chair.ID)
	if err != nil {
		t.Fatalf("find asset: %v", err)
	}
	if asset.AvailableQty != 40 {
		t.Errorf("available qty after delivery = %d, want 40", asset.AvailableQty)
	}

	env.mustTransition(t, entity.ID, status.ActionStartUse)
	env.mustTransition(t, entity.ID, status.ActionRequestReturn)
	closed := env.mustTransition(t, entity.ID, status.ActionClose)

	if closed.Status != string(status.StatusClosed) {
		t.Errorf("status = %s, want CLOSED", closed.Status)
	}
	asset, err = env.assetRepo.FindByID(context.Background(), chair.ID)
	if err != nil {
		t.Fatalf("find asset: %v", err)
	}
	if asset.AvailableQty != 50 {
		t.Errorf("available qty after close = %d, want 50", asset.AvailableQty)
	}

	lastPerDim := map[string]string{}
	for _, h := range closed.History {
		lastPerDim[h.Dimension] = h.ToStatus
	}
	if lastPerDim[string(status.DimOperational)] != closed.Status {
		t.Errorf("last operational history entry = %s, current status = %s",
			lastPerDim[string(status.DimOperational)], closed.Status)
	}
	if lastPerDim[string(status.DimCommercial)] != closed.CommercialStatus {
		t.Errorf("last commercial history entry = %s, current commercial status = %s",
			lastPerDim[string(status.DimCommercial)], closed.CommercialStatus)
	}
}

func TestTransitionUnknownAction(t *testing.T) {
	env := newTestEnv(t)
	chair := env.mustCreateAsset(t, "Banquet Chair", 50, 0)
	entity := env.mustSubmit(t, orderRequest([]SubmitItem{{AssetID: chair.ID.String(), Quantity: 1}}))

	_, err := env.lifecycle.Transition(context.Background(), entity.ID, status.Action("FROBNICATE"), testActor, "")
	if !errors.Is(err, status.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}

	// START_WORK exists for service requests but not orders.
	_, err = env.lifecycle.Transition(context.Background(), entity.ID, status.ActionStartWork, testActor, "")
	if !errors.Is(err, status.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction for START_WORK on an order, got %v", err)
	}
}

func TestTransitionIllegalFromCurrentStatus(t *testing.T) {
	env := newTestEnv(t)
	chair := env.mustCreateAsset(t, "Banquet Chair", 50, 0)
	entity := env.mustSubmit(t, orderRequest([]SubmitItem{{AssetID: chair.ID.String(), Quantity: 1}}))

	_, err := env.lifecycle.Transition(context.Background(), entity.ID, status.ActionDispatch, testActor, "")
	if !errors.Is(err, status.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for DISPATCH from SUBMITTED, got %v", err)
	}

	// The failed attempt must leave no trace.
	reloaded, err := env.lifecycle.GetEntity(context.Background(), entity.ID)
	if err != nil {
		t.Fatalf("get entity: %v", err)
	}
	if reloaded.Status != string(status.StatusSubmitted) {
		t.Errorf("status = %s, want SUBMITTED", reloaded.Status)
	}
	if len(reloaded.History) != len(entity.History) {
		t.Errorf("history grew from %d to %d on a rejected transition", len(entity.History), len(reloaded.History))
	}
	if reloaded.Version != entity.Version {
		t.Errorf("version changed from %d to %d on a rejected transition", entity.Version, reloaded.Version)
	}
}

// Commercial actions are meaningless on internally billed entities.
func TestTransitionCommercialActionOnInternalEntity(t *testing.T) {
	env := newTestEnv(t)
	chair := env.mustCreateAsset(t, "Banquet Chair", 50, 0)

	req := orderRequest([]SubmitItem{{AssetID: chair.ID.String(), Quantity: 1}})
	req.BillingMode = model.BillingInternal
	entity := env.mustSubmit(t, req)

	_, err := env.lifecycle.Transition(context.Background(), entity.ID, status.ActionIssueInvoice, testActor, "")
	if !errors.Is(err, status.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestTransitionEntityNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.lifecycle.Transition(context.Background(), uuid.NewString(), status.ActionCancel, testActor, "")
	if err == nil {
		t.Fatal("expected error for unknown entity")
	}
}

// A stale writer loses: the version guard rejects a save based on an
// out-of-date copy.
func TestSaveTransitionDetectsConcurrentModification(t *testing.T) {
	env := newTestEnv(t)
	chair := env.mustCreateAsset(t, "Banquet Chair", 50, 0)
	created := env.mustSubmit(t, orderRequest([]SubmitItem{{AssetID: chair.ID.String(), Quantity: 1}}))
	id := uuid.MustParse(created.ID)

	first, err := env.entityRepo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load first copy: %v", err)
	}
	stale, err := env.entityRepo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load stale copy: %v", err)
	}

	first.Status = string(status.StatusPricingReview)
	if err := env.entityRepo.SaveTransition(context.Background(), first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	stale.Status = string(status.StatusCancelled)
	err = env.entityRepo.SaveTransition(context.Background(), stale)
	if !errors.Is(err, status.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
}

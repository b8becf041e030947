package service

import (
	"context"
	"fmt"
	"testing"

	"rentalportal/internal/model"
)

func TestValidateAvailabilityAllInStock(t *testing.T) {
	env := newTestEnv(t)
	chair := env.mustCreateAsset(t, "Banquet Chair", 50, 0)

	issues, err := env.availability.ValidateAvailability(context.Background(), []AvailabilityItem{
		{AssetID: chair.ID.String(), Quantity: 20},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestValidateAvailabilityShortStock(t *testing.T) {
	env := newTestEnv(t)
	table := env.mustCreateAsset(t, "Round Table", 3, 0)

	issues, err := env.availability.ValidateAvailability(context.Background(), []AvailabilityItem{
		{AssetID: table.ID.String(), Quantity: 5},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %v", issues)
	}
	want := "Round Table: only 3 available (you have 5)"
	if issues[0] != want {
		t.Errorf("issue = %q, want %q", issues[0], want)
	}
}

func TestValidateAvailabilityRetiredAsset(t *testing.T) {
	env := newTestEnv(t)
	arch := env.mustCreateAsset(t, "Entrance Arch", 2, 0)
	arch.Status = model.AssetRetired
	if err := env.assetRepo.Update(context.Background(), arch); err != nil {
		t.Fatalf("update asset: %v", err)
	}

	issues, err := env.availability.ValidateAvailability(context.Background(), []AvailabilityItem{
		{AssetID: arch.ID.String(), Quantity: 1},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(issues) != 1 || issues[0] != "Entrance Arch is no longer available" {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestValidateAvailabilityUnknownAsset(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.availability.ValidateAvailability(context.Background(), []AvailabilityItem{
		{AssetID: "00000000-0000-0000-0000-000000000001", Quantity: 1},
	})
	if err == nil {
		t.Fatal("expected error for unknown asset")
	}
	if got := err.Error(); got != fmt.Sprintf("asset not found: %s", "00000000-0000-0000-0000-000000000001") {
		t.Errorf("unexpected error: %v", got)
	}
}

package service

import (
	"context"
	"testing"

	"rentalportal/internal/model"
)

// ONE_WAY and ROUND_TRIP estimates for the same cart differ by exactly the
// tier's one-way adjustment.
func TestEstimateOneWayAdjustment(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateTier(t, "UAE", "Dubai", 1000, 200, 150)

	items := []EstimateItem{{AssetID: "a", Quantity: 2, UnitVolumeM3: "0.5", UnitWeightKg: "12"}}

	roundTrip, err := env.pricing.EstimatePrice(context.Background(), EstimateRequest{
		Items: items, Country: "UAE", City: "Dubai", TripType: model.TripRoundTrip,
	})
	if err != nil {
		t.Fatalf("round trip estimate: %v", err)
	}
	oneWay, err := env.pricing.EstimatePrice(context.Background(), EstimateRequest{
		Items: items, Country: "UAE", City: "Dubai", TripType: model.TripOneWay,
	})
	if err != nil {
		t.Fatalf("one way estimate: %v", err)
	}

	if !roundTrip.HasTier || !oneWay.HasTier {
		t.Fatalf("expected tier match for both estimates")
	}
	if roundTrip.Total.String() != "1200" {
		t.Errorf("round trip total = %s, want 1200", roundTrip.Total)
	}
	diff := roundTrip.Total.Sub(oneWay.Total)
	if diff.String() != "150" {
		t.Errorf("round trip - one way = %s, want 150", diff)
	}
}

// An unknown destination is a result, not an error: the caller shows the
// manual-quote message.
func TestEstimateNoTier(t *testing.T) {
	env := newTestEnv(t)

	estimate, err := env.pricing.EstimatePrice(context.Background(), EstimateRequest{
		Items:    []EstimateItem{{AssetID: "a", Quantity: 1}},
		Country:  "Antarctica",
		TripType: model.TripRoundTrip,
	})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if estimate.HasTier {
		t.Fatal("expected no tier for unknown destination")
	}
}

// A country-level tier (empty city) catches destinations with no city match.
func TestEstimateCountryFallback(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateTier(t, "UAE", "", 800, 100, 0)
	env.mustCreateTier(t, "UAE", "Dubai", 1000, 200, 150)

	estimate, err := env.pricing.EstimatePrice(context.Background(), EstimateRequest{
		Items:    []EstimateItem{{AssetID: "a", Quantity: 1}},
		Country:  "UAE",
		City:     "Sharjah",
		TripType: model.TripRoundTrip,
	})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if !estimate.HasTier {
		t.Fatal("expected country-level tier match")
	}
	if estimate.Total.String() != "900" {
		t.Errorf("total = %s, want 900 (country tier, not Dubai tier)", estimate.Total)
	}
}

// Rebrand items never change the automatic total; they only raise a flag.
func TestEstimateRebrandFlag(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateTier(t, "UAE", "Dubai", 1000, 200, 150)

	plain, err := env.pricing.EstimatePrice(context.Background(), EstimateRequest{
		Items:    []EstimateItem{{AssetID: "a", Quantity: 1}},
		Country:  "UAE",
		City:     "Dubai",
		TripType: model.TripRoundTrip,
	})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	branded, err := env.pricing.EstimatePrice(context.Background(), EstimateRequest{
		Items:    []EstimateItem{{AssetID: "a", Quantity: 1, HasRebrand: true}},
		Country:  "UAE",
		City:     "Dubai",
		TripType: model.TripRoundTrip,
	})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	if branded.HasRebrandItems != true || plain.HasRebrandItems != false {
		t.Errorf("rebrand flags wrong: plain=%v branded=%v", plain.HasRebrandItems, branded.HasRebrandItems)
	}
	if !plain.Total.Equal(branded.Total) {
		t.Errorf("rebrand changed the total: %s vs %s", plain.Total, branded.Total)
	}
}

// Volume and weight are aggregated across quantities for display.
func TestEstimateAggregatesVolumeAndWeight(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateTier(t, "UAE", "Dubai", 1000, 0, 0)

	estimate, err := env.pricing.EstimatePrice(context.Background(), EstimateRequest{
		Items: []EstimateItem{
			{AssetID: "a", Quantity: 4, UnitVolumeM3: "0.25", UnitWeightKg: "10"},
			{AssetID: "b", Quantity: 2, UnitVolumeM3: "1.5", UnitWeightKg: "3.5"},
		},
		Country:  "UAE",
		City:     "Dubai",
		TripType: model.TripRoundTrip,
	})
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if estimate.TotalVolumeM3.String() != "4" {
		t.Errorf("total volume = %s, want 4", estimate.TotalVolumeM3)
	}
	if estimate.TotalWeightKg.String() != "47" {
		t.Errorf("total weight = %s, want 47", estimate.TotalWeightKg)
	}
}

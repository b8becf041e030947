package service

import (
	"context"
	"testing"
	"time"

	"rentalportal/internal/model"
)

// Two damaged items with 5- and 8-day refurbishment leads against an event six
// days out: only the 8-day item blocks, and its earliest feasible date is
// today + 8 days.
func TestCheckFlagsOnlyLateRefurbishments(t *testing.T) {
	env := newTestEnv(t)
	banner := env.mustCreateAsset(t, "Backdrop Banner", 10, 5)
	counter := env.mustCreateAsset(t, "Display Counter", 10, 8)

	eventStart := time.Now().AddDate(0, 0, 6)
	result, err := env.feasibility.Check(context.Background(), []FeasibilityItem{
		{AssetID: banner.ID.String(), Decision: model.DecisionFixInOrder},
		{AssetID: counter.ID.String(), Decision: model.DecisionFixInOrder},
	}, eventStart)
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	if result.Feasible {
		t.Fatal("expected infeasible result")
	}
	if len(result.Issues) != 1 {
		t.Fatalf("expected exactly 1 issue, got %+v", result.Issues)
	}
	issue := result.Issues[0]
	if issue.AssetID != counter.ID.String() {
		t.Errorf("flagged asset = %s, want %s", issue.AssetID, counter.ID)
	}

	y, m, d := time.Now().Date()
	wantEarliest := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 8)
	gotY, gotM, gotD := issue.EarliestFeasibleDate.Date()
	wantY, wantM, wantD := wantEarliest.Date()
	if gotY != wantY || gotM != wantM || gotD != wantD {
		t.Errorf("earliest feasible = %v, want %v", issue.EarliestFeasibleDate, wantEarliest)
	}
}

// USE_AS_IS items never appear in the issue list regardless of lead time.
func TestCheckIgnoresUseAsIs(t *testing.T) {
	env := newTestEnv(t)
	slow := env.mustCreateAsset(t, "Stage Platform", 4, 30)

	result, err := env.feasibility.Check(context.Background(), []FeasibilityItem{
		{AssetID: slow.ID.String(), Decision: model.DecisionUseAsIs},
	}, time.Now().AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Feasible || len(result.Issues) != 0 {
		t.Fatalf("USE_AS_IS must not block: %+v", result)
	}
}

func TestCheckFeasibleWhenLeadFits(t *testing.T) {
	env := newTestEnv(t)
	quick := env.mustCreateAsset(t, "Light Rig", 4, 3)

	result, err := env.feasibility.Check(context.Background(), []FeasibilityItem{
		{AssetID: quick.ID.String(), Decision: model.DecisionFixInOrder},
	}, time.Now().AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Feasible {
		t.Fatalf("expected feasible result, got %+v", result)
	}
}

// The check is stateless: the same inputs give the same verdict on every call.
func TestCheckIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	counter := env.mustCreateAsset(t, "Display Counter", 10, 8)
	eventStart := time.Now().AddDate(0, 0, 6)
	items := []FeasibilityItem{{AssetID: counter.ID.String(), Decision: model.DecisionFixInOrder}}

	first, err := env.feasibility.Check(context.Background(), items, eventStart)
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	second, err := env.feasibility.Check(context.Background(), items, eventStart)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if first.Feasible != second.Feasible || len(first.Issues) != len(second.Issues) {
		t.Fatalf("verdict changed between calls: %+v vs %+v", first, second)
	}
}

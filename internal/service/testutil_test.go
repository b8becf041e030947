package service

import (
	"context"
	"fmt"
	"testing"

	"rentalportal/internal/database"
	"rentalportal/internal/model"
	"rentalportal/internal/repository"
	"rentalportal/internal/status"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testEnv wires the full service graph over one test database.
type testEnv struct {
	db           *gorm.DB
	assetRepo    repository.AssetRepository
	entityRepo   repository.EntityRepository
	tierRepo     repository.PricingTierRepository
	invoiceRepo  repository.InvoiceRepository
	availability AvailabilityService
	feasibility  FeasibilityService
	pricing      PricingService
	invoices     InvoiceService
	lifecycle    LifecycleService
	quote        QuoteService
	checkout     CheckoutService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	txManager := repository.NewTransactionManager(db)
	assetRepo := repository.NewAssetRepository(db)
	entityRepo := repository.NewEntityRepository(db)
	tierRepo := repository.NewPricingTierRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	availability := NewAvailabilityService(assetRepo)
	feasibility := NewFeasibilityService(assetRepo)
	pricing := NewPricingService(tierRepo, auditRepo, txManager)
	invoices := NewInvoiceService(invoiceRepo, entityRepo, txManager)
	lifecycle := NewLifecycleService(entityRepo, assetRepo, auditRepo, txManager, invoices, NewLogNotifier())
	quote := NewQuoteService(entityRepo, auditRepo, txManager, lifecycle)
	checkout := NewCheckoutService(entityRepo, auditRepo, txManager, availability, feasibility, pricing)

	return &testEnv{
		db:           db,
		assetRepo:    assetRepo,
		entityRepo:   entityRepo,
		tierRepo:     tierRepo,
		invoiceRepo:  invoiceRepo,
		availability: availability,
		feasibility:  feasibility,
		pricing:      pricing,
		invoices:     invoices,
		lifecycle:    lifecycle,
		quote:        quote,
		checkout:     checkout,
	}
}

var testActor = Actor{ID: uuid.NewString(), Role: model.RoleStaff}

func (e *testEnv) mustCreateAsset(t *testing.T, name string, qty, refurbLeadDays int) *model.Asset {
	t.Helper()
	asset := &model.Asset{
		SKU:                "SKU-" + uuid.NewString()[:8],
		Name:               name,
		Status:             model.AssetAvailable,
		AvailableQty:       qty,
		Condition:          model.ConditionGreen,
		RefurbLeadTimeDays: refurbLeadDays,
		UnitPrice:          decimal.NewFromInt(100),
	}
	if err := e.assetRepo.Create(context.Background(), asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	return asset
}

func (e *testEnv) mustCreateTier(t *testing.T, country, city string, flatRate, margin, oneWayAdj int64) *model.PricingTier {
	t.Helper()
	tier := &model.PricingTier{
		Country:          country,
		City:             city,
		FlatRate:         decimal.NewFromInt(flatRate),
		Margin:           decimal.NewFromInt(margin),
		OneWayAdjustment: decimal.NewFromInt(oneWayAdj),
		Currency:         "USD",
		IsActive:         true,
	}
	if err := e.tierRepo.Create(context.Background(), tier); err != nil {
		t.Fatalf("create tier: %v", err)
	}
	return tier
}

// mustSubmit runs the full checkout flow and fails the test unless an entity
// was created.
func (e *testEnv) mustSubmit(t *testing.T, req SubmitRequest) EntityResponse {
	t.Helper()
	result, err := e.checkout.Submit(context.Background(), req, testActor)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Entity == nil {
		t.Fatalf("submit blocked: availability=%v feasibility=%+v", result.AvailabilityIssues, result.Feasibility)
	}
	return *result.Entity
}

// mustTransition applies one lifecycle action and fails the test on error.
func (e *testEnv) mustTransition(t *testing.T, entityID string, action status.Action) EntityResponse {
	t.Helper()
	res, err := e.lifecycle.Transition(context.Background(), entityID, action, testActor, "")
	if err != nil {
		t.Fatalf("transition %s: %v", action, err)
	}
	return res
}

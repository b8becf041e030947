package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentalportal/internal/model"
	"rentalportal/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type InvoiceResponse struct {
	ID          string  `json:"id"`
	InvoiceNo   string  `json:"invoice_no"`
	EntityID    string  `json:"entity_id"`
	TotalAmount string  `json:"total_amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	IssuedAt    *string `json:"issued_at"`
	PaidAt      *string `json:"paid_at"`
	CreatedAt   string  `json:"created_at"`
}

// --- Interface ---

// InvoiceService issues invoices for approved quotes and stamps them as the
// commercial machine advances. PDF rendering is an external collaborator.
type InvoiceService interface {
	CreateForEntity(ctx context.Context, entityID uuid.UUID, userID string) (InvoiceResponse, error)
	MarkIssued(ctx context.Context, entityID uuid.UUID) error
	MarkPaid(ctx context.Context, entityID uuid.UUID) error
	ListInvoices(ctx context.Context, invoiceStatus string, page, limit int) ([]InvoiceResponse, int64, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	entityRepo  repository.EntityRepository
	txManager   repository.TransactionManager
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	entityRepo repository.EntityRepository,
	txManager repository.TransactionManager,
) InvoiceService {
	return &invoiceService{invoiceRepo: invoiceRepo, entityRepo: entityRepo, txManager: txManager}
}

// --- Implementation ---

// CreateForEntity creates a PENDING invoice from the entity's approved quote.
// Idempotent against hook retries: an existing invoice for the entity is
// returned as-is rather than duplicated.
func (s *invoiceService) CreateForEntity(ctx context.Context, entityID uuid.UUID, userID string) (InvoiceResponse, error) {
	if existing, err := s.invoiceRepo.FindByEntityID(ctx, entityID); err == nil {
		return toInvoiceResponse(*existing), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return InvoiceResponse{}, fmt.Errorf("failed to check existing invoice: %w", err)
	}

	entity, err := s.entityRepo.FindByID(ctx, entityID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("entity not found: %w", err)
	}
	if entity.Quote == nil {
		return InvoiceResponse{}, fmt.Errorf("entity %s has no quote to invoice", entity.Code)
	}

	var invoice model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoiceNo, genErr := s.generateInvoiceNo(txCtx)
		if genErr != nil {
			return fmt.Errorf("failed to generate invoice number: %w", genErr)
		}
		invoice = model.Invoice{
			InvoiceNo:   invoiceNo,
			EntityID:    entity.ID,
			TotalAmount: entity.Quote.Total,
			Currency:    entity.Quote.Currency,
			Status:      model.InvoicePending,
		}
		if createErr := s.invoiceRepo.Create(txCtx, &invoice); createErr != nil {
			return fmt.Errorf("failed to create invoice: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) MarkIssued(ctx context.Context, entityID uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByEntityID(ctx, entityID)
	if err != nil {
		return fmt.Errorf("invoice not found for entity %s: %w", entityID, err)
	}
	now := time.Now()
	invoice.Status = model.InvoiceIssued
	invoice.IssuedAt = &now
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return fmt.Errorf("failed to mark invoice issued: %w", err)
	}
	return nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, entityID uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByEntityID(ctx, entityID)
	if err != nil {
		return fmt.Errorf("invoice not found for entity %s: %w", entityID, err)
	}
	now := time.Now()
	invoice.Status = model.InvoicePaid
	invoice.PaidAt = &now
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	return nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, invoiceStatus string, page, limit int) ([]InvoiceResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	invoices, total, err := s.invoiceRepo.List(ctx, invoiceStatus, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	res := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		res = append(res, toInvoiceResponse(inv))
	}
	return res, total, nil
}

// --- Helpers ---

func (s *invoiceService) generateInvoiceNo(ctx context.Context) (string, error) {
	today := time.Now().Format("20060102")
	prefix := "INV-" + today + "-"

	count, err := s.invoiceRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	res := InvoiceResponse{
		ID:          inv.ID.String(),
		InvoiceNo:   inv.InvoiceNo,
		EntityID:    inv.EntityID.String(),
		TotalAmount: inv.TotalAmount.StringFixed(2),
		Currency:    inv.Currency,
		Status:      inv.Status,
		CreatedAt:   inv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if inv.IssuedAt != nil {
		v := inv.IssuedAt.Format("2006-01-02T15:04:05Z07:00")
		res.IssuedAt = &v
	}
	if inv.PaidAt != nil {
		v := inv.PaidAt.Format("2006-01-02T15:04:05Z07:00")
		res.PaidAt = &v
	}
	return res
}

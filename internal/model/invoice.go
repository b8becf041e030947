package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus enum constants
const (
	InvoicePending = "PENDING"
	InvoiceIssued  = "ISSUED"
	InvoicePaid    = "PAID"
)

// Invoice is the financial document created when a quote is approved. The
// entity's commercial machine (ISSUE_INVOICE, MARK_PAID) stamps it forward;
// PDF rendering and payment collection happen outside this core.
type Invoice struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNo   string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"`
	EntityID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"entity_id"`
	Entity      *Entity         `gorm:"foreignKey:EntityID" json:"entity,omitempty"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	Currency    string          `gorm:"type:varchar(3);not null" json:"currency"`
	Status      string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	IssuedAt    *time.Time      `json:"issued_at"`
	PaidAt      *time.Time      `json:"paid_at"`
	Note        string          `gorm:"type:text" json:"note"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

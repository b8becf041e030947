package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AssetStatus enum constants
const (
	AssetAvailable   = "AVAILABLE"
	AssetMaintenance = "MAINTENANCE"
	AssetRetired     = "RETIRED"
)

// MovementType enum constants
const (
	MovementIn  = "IN"
	MovementOut = "OUT"
)

// Asset represents a rentable physical item in the catalog.
// RefurbLeadTimeDays feeds the maintenance feasibility check.
type Asset struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SKU                string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name               string          `gorm:"type:varchar(255);not null" json:"name"`
	Status             string          `gorm:"type:varchar(20);not null;default:'AVAILABLE';index" json:"status"`
	AvailableQty       int             `gorm:"not null;default:0" json:"available_qty"`
	Condition          string          `gorm:"type:varchar(10);not null;default:'GREEN'" json:"condition"`
	RefurbLeadTimeDays int             `gorm:"not null;default:0" json:"refurb_lead_time_days"`
	UnitVolumeM3       decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0" json:"unit_volume_m3"`
	UnitWeightKg       decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0" json:"unit_weight_kg"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_price"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AssetMovement records stock changes strictly: delivery hooks write OUT rows,
// return/receipt hooks write IN rows.
type AssetMovement struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"asset_id"`
	EntityID        *uuid.UUID `gorm:"type:uuid;index" json:"entity_id"` // nullable for manual adjustments
	MovementType    string     `gorm:"type:varchar(10);not null" json:"movement_type"`
	QuantityChanged int        `gorm:"not null" json:"quantity_changed"`
	StockAfter      int        `gorm:"not null" json:"stock_after"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (m *AssetMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

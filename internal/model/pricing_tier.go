package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingTier stores the destination-based flat pricing rule used for automatic
// estimation. Totals are tier-flat: trip overhead dominates logistics cost for
// this domain, so the estimator never multiplies a per-unit rate by volume.
type PricingTier struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Country          string          `gorm:"type:varchar(100);not null;index:idx_tier_destination" json:"country"`
	City             string          `gorm:"type:varchar(100);not null;index:idx_tier_destination" json:"city"`
	FlatRate         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"flat_rate"`
	Margin           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"margin"`
	OneWayAdjustment decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"one_way_adjustment"`
	Currency         string          `gorm:"type:varchar(3);not null" json:"currency"`
	IsActive         bool            `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (t *PricingTier) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

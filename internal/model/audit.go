package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateAsset  = "CREATE_ASSET"
	ActionUpdateAsset  = "UPDATE_ASSET"
	ActionDeleteAsset  = "DELETE_ASSET"
	ActionAdjustStock  = "ADJUST_STOCK"
	ActionCreateTier   = "CREATE_PRICING_TIER"
	ActionUpdateTier   = "UPDATE_PRICING_TIER"
	ActionDeleteTier   = "DELETE_PRICING_TIER"
	ActionSubmitEntity = "SUBMIT_ENTITY"
	ActionTransition   = "STATUS_TRANSITION"
	ActionSetQuote     = "SET_QUOTE"
	ActionQuoteDecide  = "QUOTE_DECISION"
	ActionCreateClient = "CREATE_CLIENT"
	ActionUpdateClient = "UPDATE_CLIENT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nullable for system actions
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BillingMode enum constants
const (
	BillingClientBillable = "CLIENT_BILLABLE"
	BillingInternal       = "INTERNAL"
)

// Condition tag enum constants
const (
	ConditionGreen  = "GREEN"
	ConditionOrange = "ORANGE"
	ConditionRed    = "RED"
)

// MaintenanceDecision enum constants
const (
	DecisionFixInOrder = "FIX_IN_ORDER"
	DecisionUseAsIs    = "USE_AS_IS"
)

// TripType enum constants
const (
	TripRoundTrip = "ROUND_TRIP"
	TripOneWay    = "ONE_WAY"
)

// Entity is an order, inbound stock request, or service request tracked through
// the lifecycle engine. Status (operational) and CommercialStatus are orthogonal
// dimensions; each is governed by its own catalog. Version backs the optimistic
// lock on transitions.
type Entity struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code               string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Kind               string          `gorm:"type:varchar(20);not null;index" json:"kind"` // ORDER, INBOUND_REQUEST, SERVICE_REQUEST
	ClientID           *uuid.UUID      `gorm:"type:uuid;index" json:"client_id"`
	Client             *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Status             string          `gorm:"type:varchar(30);not null;index" json:"status"`
	CommercialStatus   string          `gorm:"type:varchar(30);index" json:"commercial_status"` // empty for non-billable kinds
	BillingMode        string          `gorm:"type:varchar(20);not null;default:'CLIENT_BILLABLE'" json:"billing_mode"`
	DestinationCountry string          `gorm:"type:varchar(100)" json:"destination_country"`
	DestinationCity    string          `gorm:"type:varchar(100)" json:"destination_city"`
	TripType           string          `gorm:"type:varchar(20)" json:"trip_type"` // ROUND_TRIP, ONE_WAY
	EventStartDate     *time.Time      `gorm:"type:date" json:"event_start_date"`
	Version            int64           `gorm:"not null;default:0" json:"version"`
	Items              []LineItem      `gorm:"foreignKey:EntityID;constraint:OnDelete:CASCADE" json:"items"`
	History            []StatusHistory `gorm:"foreignKey:EntityID" json:"history,omitempty"`
	Quote              *QuoteState     `gorm:"foreignKey:EntityID" json:"quote,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (e *Entity) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// LineItem references one requested asset within an entity. Condition and the
// maintenance decision drive the feasibility check; the rebrand fields are
// required together or not at all.
type LineItem struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	EntityID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"entity_id"`
	AssetID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"asset_id"`
	Asset               *Asset          `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
	Quantity            int             `gorm:"not null" json:"quantity"`
	UnitVolumeM3        decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0" json:"unit_volume_m3"`
	UnitWeightKg        decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0" json:"unit_weight_kg"`
	Condition           string          `gorm:"type:varchar(10)" json:"condition"`            // GREEN, ORANGE, RED
	MaintenanceDecision string          `gorm:"type:varchar(20)" json:"maintenance_decision"` // FIX_IN_ORDER, USE_AS_IS
	RebrandBrand        string          `gorm:"type:varchar(255)" json:"rebrand_brand"`
	RebrandInstructions string          `gorm:"type:text" json:"rebrand_instructions"`
}

func (li *LineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}

// StatusHistory is the append-only transition log. The last entry's ToStatus for
// a dimension always equals the entity's current status in that dimension.
type StatusHistory struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"entity_id"`
	Dimension  string     `gorm:"type:varchar(20);not null" json:"dimension"` // OPERATIONAL, COMMERCIAL
	FromStatus string     `gorm:"type:varchar(30)" json:"from_status"`        // empty on the initial entry
	ToStatus   string     `gorm:"type:varchar(30);not null" json:"to_status"`
	ActorID    *uuid.UUID `gorm:"type:uuid" json:"actor_id"`
	ActorRole  string     `gorm:"type:varchar(30)" json:"actor_role"`
	Note       string     `gorm:"type:text" json:"note"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (h *StatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// QuoteState is attached once staff prices the entity and is consumed by the
// quote decision workflow.
type QuoteState struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	EntityID  uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"entity_id"`
	Total     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	Currency  string          `gorm:"type:varchar(3);not null" json:"currency"`
	Breakdown string          `gorm:"type:jsonb" json:"breakdown"` // optional per-line detail
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (q *QuoteState) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

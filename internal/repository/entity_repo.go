package repository

import (
	"context"
	"errors"
	"fmt"

	"rentalportal/internal/model"
	"rentalportal/internal/status"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntityRepository interface {
	Create(ctx context.Context, entity *model.Entity) error
	CreateItem(ctx context.Context, item *model.LineItem) error
	AppendHistory(ctx context.Context, entry *model.StatusHistory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Entity, error)
	FindByCode(ctx context.Context, code string) (*model.Entity, error)
	List(ctx context.Context, kind string, page, limit int) ([]model.Entity, int64, error)
	SaveTransition(ctx context.Context, entity *model.Entity, entries ...*model.StatusHistory) error
	UpsertQuote(ctx context.Context, quote *model.QuoteState) error
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type entityRepository struct {
	db *gorm.DB
}

func NewEntityRepository(db *gorm.DB) EntityRepository {
	return &entityRepository{db: db}
}

func (r *entityRepository) Create(ctx context.Context, entity *model.Entity) error {
	return GetDB(ctx, r.db).Create(entity).Error
}

func (r *entityRepository) CreateItem(ctx context.Context, item *model.LineItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *entityRepository) AppendHistory(ctx context.Context, entry *model.StatusHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *entityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Entity, error) {
	var entity model.Entity
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.Asset").
		Preload("Client").
		Preload("Quote").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *entityRepository) FindByCode(ctx context.Context, code string) (*model.Entity, error) {
	var entity model.Entity
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Quote").
		First(&entity, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *entityRepository) List(ctx context.Context, kind string, page, limit int) ([]model.Entity, int64, error) {
	var entities []model.Entity
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Entity{})
	if kind != "" {
		db = db.Where("kind = ?", kind)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.
		Preload("Items").
		Preload("Client").
		Preload("Quote").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return entities, total, nil
}

// SaveTransition persists new statuses and the history entries as one unit.
// A transition touching both dimensions (e.g. quote approval) passes one entry
// per dimension. The version guard makes concurrent writers lose with
// ErrConcurrentModification instead of silently overwriting; the caller must
// re-read and retry.
func (r *entityRepository) SaveTransition(ctx context.Context, entity *model.Entity, entries ...*model.StatusHistory) error {
	db := GetDB(ctx, r.db)

	res := db.Model(&model.Entity{}).
		Where("id = ? AND version = ?", entity.ID, entity.Version).
		Updates(map[string]interface{}{
			"status":            entity.Status,
			"commercial_status": entity.CommercialStatus,
			"version":           entity.Version + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to persist transition: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: entity %s was modified concurrently", status.ErrConcurrentModification, entity.ID)
	}
	entity.Version++

	for _, entry := range entries {
		entry.EntityID = entity.ID
		if err := db.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to append status history: %w", err)
		}
	}
	return nil
}

func (r *entityRepository) UpsertQuote(ctx context.Context, quote *model.QuoteState) error {
	db := GetDB(ctx, r.db)
	var existing model.QuoteState
	err := db.First(&existing, "entity_id = ?", quote.EntityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(quote).Error
	}
	if err != nil {
		return err
	}
	existing.Total = quote.Total
	existing.Currency = quote.Currency
	existing.Breakdown = quote.Breakdown
	if err := db.Save(&existing).Error; err != nil {
		return err
	}
	*quote = existing
	return nil
}

func (r *entityRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Entity{}).
		Where("code LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

package repository

import (
	"context"
	"errors"

	"rentalportal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PricingTierRepository interface {
	Create(ctx context.Context, tier *model.PricingTier) error
	Update(ctx context.Context, tier *model.PricingTier) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PricingTier, error)
	FindByDestination(ctx context.Context, country, city string) (*model.PricingTier, error)
	List(ctx context.Context, page, limit int) ([]model.PricingTier, int64, error)
}

type pricingTierRepository struct {
	db *gorm.DB
}

func NewPricingTierRepository(db *gorm.DB) PricingTierRepository {
	return &pricingTierRepository{db: db}
}

func (r *pricingTierRepository) Create(ctx context.Context, tier *model.PricingTier) error {
	return GetDB(ctx, r.db).Create(tier).Error
}

func (r *pricingTierRepository) Update(ctx context.Context, tier *model.PricingTier) error {
	return GetDB(ctx, r.db).Save(tier).Error
}

func (r *pricingTierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PricingTier{}).Error
}

func (r *pricingTierRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PricingTier, error) {
	var tier model.PricingTier
	if err := GetDB(ctx, r.db).First(&tier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

// FindByDestination resolves the active tier for a country+city pair. A
// country-wide fallback row uses an empty city.
func (r *pricingTierRepository) FindByDestination(ctx context.Context, country, city string) (*model.PricingTier, error) {
	var tier model.PricingTier
	err := GetDB(ctx, r.db).
		Where("country = ? AND city = ? AND is_active = ?", country, city, true).
		First(&tier).Error
	if err == nil {
		return &tier, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := GetDB(ctx, r.db).
		Where("country = ? AND city = '' AND is_active = ?", country, true).
		First(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *pricingTierRepository) List(ctx context.Context, page, limit int) ([]model.PricingTier, int64, error) {
	var tiers []model.PricingTier
	var total int64

	db := GetDB(ctx, r.db).Model(&model.PricingTier{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("country, city").Offset(offset).Limit(limit).Find(&tiers).Error; err != nil {
		return nil, 0, err
	}

	return tiers, total, nil
}

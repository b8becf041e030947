package repository

import (
	"context"

	"rentalportal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetRepository interface {
	Create(ctx context.Context, asset *model.Asset) error
	Update(ctx context.Context, asset *model.Asset) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Asset, error)
	FindBySKU(ctx context.Context, sku string) (*model.Asset, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Asset, error)
	List(ctx context.Context, page, limit int, search string) ([]model.Asset, int64, error)
	ApplyStockDelta(ctx context.Context, id uuid.UUID, delta int) (*model.Asset, error)
	CreateMovement(ctx context.Context, movement *model.AssetMovement) error
}

type assetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Create(ctx context.Context, asset *model.Asset) error {
	return GetDB(ctx, r.db).Create(asset).Error
}

func (r *assetRepository) Update(ctx context.Context, asset *model.Asset) error {
	return GetDB(ctx, r.db).Save(asset).Error
}

func (r *assetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Asset{}).Error
}

func (r *assetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	var asset model.Asset
	if err := GetDB(ctx, r.db).First(&asset, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) FindBySKU(ctx context.Context, sku string) (*model.Asset, error) {
	var asset model.Asset
	if err := GetDB(ctx, r.db).Where("sku = ?", sku).First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Asset, error) {
	var assets []model.Asset
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *assetRepository) List(ctx context.Context, page, limit int, search string) ([]model.Asset, int64, error) {
	var assets []model.Asset
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Asset{})
	if search != "" {
		db = db.Where("name LIKE ?", "%"+search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&assets).Error; err != nil {
		return nil, 0, err
	}

	return assets, total, nil
}

// ApplyStockDelta adjusts available quantity atomically in SQL so concurrent
// hooks never race on a read-modify-write, then returns the fresh row.
func (r *assetRepository) ApplyStockDelta(ctx context.Context, id uuid.UUID, delta int) (*model.Asset, error) {
	db := GetDB(ctx, r.db)
	res := db.Model(&model.Asset{}).
		Where("id = ?", id).
		Update("available_qty", gorm.Expr("available_qty + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	var asset model.Asset
	if err := db.First(&asset, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) CreateMovement(ctx context.Context, movement *model.AssetMovement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

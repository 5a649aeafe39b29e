package repository

import (
	"context"
	"stryvepay/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MerchantSettingsRepository struct {
	db *gorm.DB
}

func NewMerchantSettingsRepository(db *gorm.DB) *MerchantSettingsRepository {
	return &MerchantSettingsRepository{db: db}
}

func (r *MerchantSettingsRepository) GetByShop(ctx context.Context, shop string) (*domain.MerchantSettings, error) {
	var s domain.MerchantSettings
	if err := r.db.WithContext(ctx).Where("shop = ?", shop).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *MerchantSettingsRepository) Upsert(ctx context.Context, s *domain.MerchantSettings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop"}},
		DoUpdates: clause.AssignmentColumns([]string{"api_key", "base_url", "sandbox", "debug", "updated_at"}),
	}).Create(s).Error
}

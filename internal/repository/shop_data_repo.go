package repository

import (
	"context"
	"stryvepay/internal/domain"

	"gorm.io/gorm"
)

// ShopDataRepository removes everything stored for a shop (uninstall, GDPR shop/redact).
type ShopDataRepository struct {
	db *gorm.DB
}

func NewShopDataRepository(db *gorm.DB) *ShopDataRepository {
	return &ShopDataRepository{db: db}
}

type PurgeResult struct {
	Payments int64
	Settings int64
}

func (r *ShopDataRepository) PurgeShop(ctx context.Context, shop string) (PurgeResult, error) {
	var res PurgeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p := tx.Where("shop = ?", shop).Delete(&domain.StryvePayment{})
		if p.Error != nil {
			return p.Error
		}
		s := tx.Where("shop = ?", shop).Delete(&domain.MerchantSettings{})
		if s.Error != nil {
			return s.Error
		}
		res.Payments = p.RowsAffected
		res.Settings = s.RowsAffected
		return nil
	})
	return res, err
}

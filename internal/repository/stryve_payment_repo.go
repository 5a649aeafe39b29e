package repository

import (
	"context"
	"stryvepay/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StryvePaymentRepository struct {
	db *gorm.DB
}

func NewStryvePaymentRepository(db *gorm.DB) *StryvePaymentRepository {
	return &StryvePaymentRepository{db: db}
}

func (r *StryvePaymentRepository) Create(ctx context.Context, p *domain.StryvePayment) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *StryvePaymentRepository) GetByReference(ctx context.Context, shop, merchantReference string) (*domain.StryvePayment, error) {
	var p domain.StryvePayment
	err := r.db.WithContext(ctx).
		Where("shop = ? AND merchant_reference = ?", shop, merchantReference).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// UpdateStatus overwrites the status (and the Stryve order id when one
// is given) in a single read-then-write. Repeating the call with the same
// values leaves the row unchanged. It returns the status held before the write.
func (r *StryvePaymentRepository) UpdateStatus(ctx context.Context, shop, merchantReference string, status domain.StryvePaymentStatus, stryveOrderID string) (domain.StryvePaymentStatus, error) {
	var previous domain.StryvePaymentStatus
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var p domain.StryvePayment
		if err := q.Where("shop = ? AND merchant_reference = ?", shop, merchantReference).First(&p).Error; err != nil {
			return err
		}
		previous = p.Status

		updates := map[string]interface{}{"status": status}
		if stryveOrderID != "" {
			updates["stryve_order_id"] = stryveOrderID
		}
		return tx.Model(&domain.StryvePayment{}).Where("id = ?", p.ID).Updates(updates).Error
	})
	return previous, translate(err)
}

func (r *StryvePaymentRepository) ListRecent(ctx context.Context, shop string, limit int) ([]domain.StryvePayment, error) {
	var out []domain.StryvePayment
	err := r.db.WithContext(ctx).
		Where("shop = ?", shop).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

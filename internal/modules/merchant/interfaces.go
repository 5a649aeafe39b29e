package merchant

import (
	"context"

	"stryvepay/internal/domain"
	"stryvepay/internal/repository"
)

type settingsRepo interface {
	GetByShop(ctx context.Context, shop string) (*domain.MerchantSettings, error)
	Upsert(ctx context.Context, s *domain.MerchantSettings) error
}

type paymentLister interface {
	ListRecent(ctx context.Context, shop string, limit int) ([]domain.StryvePayment, error)
}

type shopPurger interface {
	PurgeShop(ctx context.Context, shop string) (repository.PurgeResult, error)
}

package payment

import (
	"context"

	"stryvepay/internal/domain"
	"stryvepay/internal/events"
	"stryvepay/internal/pkg/stryve"
)

type paymentRepo interface {
	Create(ctx context.Context, p *domain.StryvePayment) error
	GetByReference(ctx context.Context, shop, merchantReference string) (*domain.StryvePayment, error)
	UpdateStatus(ctx context.Context, shop, merchantReference string, status domain.StryvePaymentStatus, stryveOrderID string) (domain.StryvePaymentStatus, error)
}

type settingsReader interface {
	GetByShop(ctx context.Context, shop string) (*domain.MerchantSettings, error)
}

type stryveGateway interface {
	CreateOrder(ctx context.Context, p stryve.CreateOrderParams) (*stryve.Order, error)
	GetOrder(ctx context.Context, p stryve.GetOrderParams) (*stryve.Order, error)
}

type eventPublisher interface {
	PublishPaymentEvent(ctx context.Context, event events.PaymentEvent) error
}

type metricsRecorder interface {
	RecordOrderCreated(result string)
	RecordCallback(outcome string, verified bool)
}

package usecase

import (
	"context"

	"wheats/internal/domain/model"
)

type EventPublisher interface {
	PublishOrderPaid(ctx context.Context, ev model.OrderPaidEvent) error
}

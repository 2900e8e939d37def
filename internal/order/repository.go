package order

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/order/dto"
)

type Repository interface {
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	FindByID(ctx context.Context, id string) (*model.Order, error)
	ItemsByOrderIDs(ctx context.Context, orderIDs []string) ([]model.OrderItem, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus, at time.Time) error
	UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// CustomerReader resolves order owners.
type CustomerReader interface {
	FindByIDs(ctx context.Context, ids []string) ([]model.Customer, error)
}

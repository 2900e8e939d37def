package order

import (
	"context"
	"io"

	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/order/dto"
	"github.com/fekuna/omnipos-admin-service/internal/order/export"
)

type UseCase interface {
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, input *dto.UpdatePaymentStatusInput) (*model.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	ExportOrders(ctx context.Context, w io.Writer, format export.Format, filters *dto.OrderFilters) error
}

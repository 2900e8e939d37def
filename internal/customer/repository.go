package customer

import (
	"context"

	"github.com/fekuna/omnipos-admin-service/internal/customer/dto"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	orderdto "github.com/fekuna/omnipos-admin-service/internal/order/dto"
)

// Repository reads customer profiles. OrdersCount and TotalSpent are never
// stored; see Aggregate.
type Repository interface {
	FindAll(ctx context.Context, filters *dto.CustomerFilters) ([]model.Customer, int, error)
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Customer, error)
}

type OrderReader interface {
	FindAll(ctx context.Context, filters *orderdto.OrderFilters) ([]model.Order, int, error)
}

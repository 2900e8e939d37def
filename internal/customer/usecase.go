package customer

import (
	"context"

	"github.com/fekuna/omnipos-admin-service/internal/customer/dto"
	"github.com/fekuna/omnipos-admin-service/internal/model"
)

// CustomerDetail is one customer with the orders behind its totals.
type CustomerDetail struct {
	model.Customer
	Orders []model.Order `json:"orders"`
}

type UseCase interface {
	ListCustomers(ctx context.Context, filters *dto.CustomerFilters) ([]model.Customer, int, error)
	GetCustomer(ctx context.Context, id string) (*CustomerDetail, error)
}

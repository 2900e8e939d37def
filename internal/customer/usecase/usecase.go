package usecase

import (
	"context"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/customer"
	"github.com/fekuna/omnipos-admin-service/internal/customer/dto"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	orderdto "github.com/fekuna/omnipos-admin-service/internal/order/dto"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

type customerUseCase struct {
	repo   customer.Repository
	orders customer.OrderReader
	logger logger.ZapLogger
}

func NewCustomerUseCase(repo customer.Repository, orders customer.OrderReader, log logger.ZapLogger) customer.UseCase {
	return &customerUseCase{repo: repo, orders: orders, logger: log}
}

// ListCustomers loads one page of profiles, then only the orders of those
// profiles, and aggregates in memory.
func (uc *customerUseCase) ListCustomers(ctx context.Context, filters *dto.CustomerFilters) ([]model.Customer, int, error) {
	if filters == nil {
		filters = &dto.CustomerFilters{}
	}
	customers, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	if len(customers) == 0 {
		return customers, count, nil
	}

	ids := make([]string, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}
	orders, _, err := uc.orders.FindAll(ctx, &orderdto.OrderFilters{UserIDs: ids})
	if err != nil {
		return nil, 0, err
	}

	return customer.Aggregate(customers, orders), count, nil
}

func (uc *customerUseCase) GetCustomer(ctx context.Context, id string) (*customer.CustomerDetail, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFoundf("customer.Get", "customer not found")
	}

	orders, _, err := uc.orders.FindAll(ctx, &orderdto.OrderFilters{UserID: id})
	if err != nil {
		return nil, err
	}

	aggregated := customer.Aggregate([]model.Customer{*c}, orders)
	return &customer.CustomerDetail{Customer: aggregated[0], Orders: orders}, nil
}

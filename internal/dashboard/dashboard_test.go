package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerdto "github.com/fekuna/omnipos-admin-service/internal/customer/dto"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	orderdto "github.com/fekuna/omnipos-admin-service/internal/order/dto"
	productdto "github.com/fekuna/omnipos-admin-service/internal/product/dto"
)

type fakeProducts struct{}

func (fakeProducts) FindAll(_ context.Context, f *productdto.ProductFilters) ([]model.Product, int, error) {
	switch {
	case f.IsActive != nil:
		return nil, 8, nil
	case f.LowStockThreshold > 0:
		return nil, 2, nil
	}
	return nil, 10, nil
}

type fakeOrders struct {
	orders []model.Order
	err    error
}

func (f fakeOrders) FindAll(context.Context, *orderdto.OrderFilters) ([]model.Order, int, error) {
	return f.orders, len(f.orders), f.err
}

type fakeCustomers int

func (f fakeCustomers) FindAll(context.Context, *customerdto.CustomerFilters) ([]model.Customer, int, error) {
	return nil, int(f), nil
}

func TestSummary(t *testing.T) {
	orders := []model.Order{
		{ID: "1", Status: model.OrderStatusCompleted, TotalAmount: decimal.NewFromInt(100)},
		{ID: "2", Status: model.OrderStatusPending, TotalAmount: decimal.NewFromInt(40)},
		{ID: "3", Status: model.OrderStatusCompleted, TotalAmount: decimal.NewFromInt(20)},
		{ID: "4", Status: model.OrderStatusCanceled, TotalAmount: decimal.NewFromInt(5)},
		{ID: "5", Status: model.OrderStatusPending},
		{ID: "6", Status: model.OrderStatusShipped},
	}

	got, err := NewService(fakeProducts{}, fakeOrders{orders: orders}, fakeCustomers(3), 0).Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, got.TotalProducts)
	assert.Equal(t, 8, got.ActiveProducts)
	assert.Equal(t, 2, got.LowStockProducts)
	assert.Equal(t, 3, got.TotalCustomers)
	assert.Equal(t, 6, got.TotalOrders)
	assert.Equal(t, 2, got.OrdersByStatus[model.OrderStatusPending])
	assert.Equal(t, "120", got.Revenue.String())
	require.Len(t, got.RecentOrders, 5)
	assert.Equal(t, "1", got.RecentOrders[0].ID)
}

func TestSummary_EmptyStore(t *testing.T) {
	got, err := NewService(fakeProducts{}, fakeOrders{}, fakeCustomers(0), 5).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalOrders)
	assert.True(t, got.Revenue.IsZero())
	assert.NotNil(t, got.RecentOrders)
}

func TestSummary_PropagatesErrors(t *testing.T) {
	_, err := NewService(fakeProducts{}, fakeOrders{err: errors.New("boom")}, fakeCustomers(0), 5).Summary(context.Background())
	assert.Error(t, err)
}

// Package dashboard computes the landing page figures.
package dashboard

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	customerdto "github.com/fekuna/omnipos-admin-service/internal/customer/dto"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	orderdto "github.com/fekuna/omnipos-admin-service/internal/order/dto"
	productdto "github.com/fekuna/omnipos-admin-service/internal/product/dto"
)

const (
	DefaultLowStockThreshold = 5
	recentOrders             = 5
)

type Summary struct {
	TotalProducts    int                       `json:"total_products"`
	ActiveProducts   int                       `json:"active_products"`
	LowStockProducts int                       `json:"low_stock_products"`
	TotalOrders      int                       `json:"total_orders"`
	OrdersByStatus   map[model.OrderStatus]int `json:"orders_by_status"`
	Revenue          decimal.Decimal           `json:"revenue"`
	TotalCustomers   int                       `json:"total_customers"`
	RecentOrders     []model.Order             `json:"recent_orders"`
}

type ProductCounter interface {
	FindAll(ctx context.Context, filters *productdto.ProductFilters) ([]model.Product, int, error)
}

type OrderLister interface {
	FindAll(ctx context.Context, filters *orderdto.OrderFilters) ([]model.Order, int, error)
}

type CustomerCounter interface {
	FindAll(ctx context.Context, filters *customerdto.CustomerFilters) ([]model.Customer, int, error)
}

type Service struct {
	products          ProductCounter
	orders            OrderLister
	customers         CustomerCounter
	lowStockThreshold int
}

func NewService(products ProductCounter, orders OrderLister, customers CustomerCounter, lowStockThreshold int) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Service{products: products, orders: orders, customers: customers, lowStockThreshold: lowStockThreshold}
}

// Summary runs the independent queries concurrently. Repositories already
// report missing tables as empty results, so those sections are zero.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	sum := &Summary{
		OrdersByStatus: map[model.OrderStatus]int{},
		Revenue:        decimal.Zero,
		RecentOrders:   []model.Order{},
	}
	active := true

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, n, err := s.products.FindAll(ctx, &productdto.ProductFilters{PageSize: 1})
		sum.TotalProducts = n
		return err
	})
	g.Go(func() error {
		_, n, err := s.products.FindAll(ctx, &productdto.ProductFilters{IsActive: &active, PageSize: 1})
		sum.ActiveProducts = n
		return err
	})
	g.Go(func() error {
		_, n, err := s.products.FindAll(ctx, &productdto.ProductFilters{LowStockThreshold: s.lowStockThreshold, PageSize: 1})
		sum.LowStockProducts = n
		return err
	})
	g.Go(func() error {
		_, n, err := s.customers.FindAll(ctx, &customerdto.CustomerFilters{PageSize: 1})
		sum.TotalCustomers = n
		return err
	})

	var orders []model.Order
	g.Go(func() error {
		var err error
		orders, _, err = s.orders.FindAll(ctx, &orderdto.OrderFilters{})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// orders arrive newest first
	sum.TotalOrders = len(orders)
	for _, o := range orders {
		sum.OrdersByStatus[o.Status]++
		if o.Status == model.OrderStatusCompleted {
			sum.Revenue = sum.Revenue.Add(o.TotalAmount)
		}
	}
	if len(orders) > recentOrders {
		orders = orders[:recentOrders]
	}
	sum.RecentOrders = append(sum.RecentOrders, orders...)
	return sum, nil
}

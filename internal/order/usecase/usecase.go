package usecase

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/changefeed"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/order"
	"github.com/fekuna/omnipos-admin-service/internal/order/dto"
	"github.com/fekuna/omnipos-admin-service/internal/order/export"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

type orderUseCase struct {
	repo      order.Repository
	customers order.CustomerReader
	publisher changefeed.Publisher
	logger    logger.ZapLogger
	now       func() time.Time
}

func NewOrderUseCase(repo order.Repository, customers order.CustomerReader, pub changefeed.Publisher, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		customers: customers,
		publisher: pub,
		logger:    log,
		now:       time.Now,
	}
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	if filters == nil {
		filters = &dto.OrderFilters{}
	}
	orders, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	if err := uc.attach(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFoundf("order.Get", "order not found")
	}

	orders := []model.Order{*o}
	if err := uc.attach(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// attach fills Items and Customer from two separate queries joined in
// memory. Orders whose owner is gone keep a nil Customer.
func (uc *orderUseCase) attach(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	userIDs := make([]string, 0, len(orders))
	seen := map[string]bool{}
	for i, o := range orders {
		ids[i] = o.ID
		if o.UserID != nil && !seen[*o.UserID] {
			seen[*o.UserID] = true
			userIDs = append(userIDs, *o.UserID)
		}
	}

	items, err := uc.repo.ItemsByOrderIDs(ctx, ids)
	if err != nil {
		return err
	}
	byOrder := map[string][]model.OrderItem{}
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	byID := map[string]*model.Customer{}
	if uc.customers != nil && len(userIDs) > 0 {
		customers, err := uc.customers.FindByIDs(ctx, userIDs)
		if err != nil {
			return err
		}
		for i := range customers {
			byID[customers[i].ID] = &customers[i]
		}
	}

	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []model.OrderItem{}
		}
		if orders[i].UserID != nil {
			orders[i].Customer = byID[*orders[i].UserID]
		}
	}
	return nil
}

// UpdateOrderStatus accepts any known status regardless of the current one.
func (uc *orderUseCase) UpdateOrderStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error) {
	status := model.OrderStatus(input.Status)
	if !status.Valid() {
		return nil, apperr.Validationf("order.UpdateStatus", "invalid order status %q", input.Status)
	}
	if err := uc.repo.UpdateStatus(ctx, input.ID, status, uc.now()); err != nil {
		return nil, err
	}
	changefeed.Notify(uc.publisher, uc.logger, changefeed.TableOrders, changefeed.Update, input.ID)
	return uc.GetOrder(ctx, input.ID)
}

func (uc *orderUseCase) UpdatePaymentStatus(ctx context.Context, input *dto.UpdatePaymentStatusInput) (*model.Order, error) {
	status := model.PaymentStatus(input.PaymentStatus)
	if !status.Valid() {
		return nil, apperr.Validationf("order.UpdatePaymentStatus", "invalid payment status %q", input.PaymentStatus)
	}
	if err := uc.repo.UpdatePaymentStatus(ctx, input.ID, status, uc.now()); err != nil {
		return nil, err
	}
	changefeed.Notify(uc.publisher, uc.logger, changefeed.TableOrders, changefeed.Update, input.ID)
	return uc.GetOrder(ctx, input.ID)
}

func (uc *orderUseCase) DeleteOrder(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	changefeed.Notify(uc.publisher, uc.logger, changefeed.TableOrders, changefeed.Delete, id)
	return nil
}

// ExportOrders writes every order matching filters, ignoring pagination.
func (uc *orderUseCase) ExportOrders(ctx context.Context, w io.Writer, format export.Format, filters *dto.OrderFilters) error {
	f := dto.OrderFilters{}
	if filters != nil {
		f = *filters
	}
	f.Page, f.PageSize = 0, 0

	orders, _, err := uc.repo.FindAll(ctx, &f)
	if err != nil {
		return err
	}

	start := uc.now()
	if err := export.Write(w, format, orders); err != nil {
		return apperr.Classify("order.Export", err)
	}
	uc.logger.Info("orders exported",
		zap.String("format", string(format)),
		zap.Int("count", len(orders)),
		zap.Duration("took", uc.now().Sub(start)),
	)
	return nil
}

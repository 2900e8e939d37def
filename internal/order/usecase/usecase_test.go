package usecase

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/changefeed"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/internal/order/dto"
	"github.com/fekuna/omnipos-admin-service/internal/order/export"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Int(1), args.Error(2)
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *mockRepo) ItemsByOrderIDs(ctx context.Context, ids []string) ([]model.OrderItem, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id string, s model.OrderStatus, at time.Time) error {
	return m.Called(ctx, id, s, at).Error(0)
}

func (m *mockRepo) UpdatePaymentStatus(ctx context.Context, id string, s model.PaymentStatus, at time.Time) error {
	return m.Called(ctx, id, s, at).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type stubCustomers []model.Customer

func (s stubCustomers) FindByIDs(_ context.Context, ids []string) ([]model.Customer, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []model.Customer{}
	for _, c := range s {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newUseCase(repo *mockRepo) *orderUseCase {
	customers := stubCustomers{{ID: "u1", FullName: "Sari"}}
	uc := NewOrderUseCase(repo, customers, changefeed.NopPublisher{}, logger.NewNop()).(*orderUseCase)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func strPtr(s string) *string { return &s }

func TestListOrders_AttachesItemsAndCustomers(t *testing.T) {
	orders := []model.Order{
		{ID: "o1", UserID: strPtr("u1")},
		{ID: "o2", UserID: strPtr("gone")},
		{ID: "o3"},
	}
	items := []model.OrderItem{
		{ID: "i1", OrderID: "o1", Quantity: 1},
		{ID: "i2", OrderID: "o1", Quantity: 2},
	}

	repo := new(mockRepo)
	repo.On("FindAll", mock.Anything, mock.Anything).Return(orders, 3, nil)
	repo.On("ItemsByOrderIDs", mock.Anything, []string{"o1", "o2", "o3"}).Return(items, nil)

	got, count, err := newUseCase(repo).ListOrders(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.Len(t, got[0].Items, 2)
	require.NotNil(t, got[0].Customer)
	assert.Equal(t, "Sari", got[0].Customer.FullName)

	assert.NotNil(t, got[1].Items)
	assert.Empty(t, got[1].Items)
	assert.Nil(t, got[1].Customer)
	assert.Nil(t, got[2].Customer)
}

func TestGetOrder_NotFound(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, "nope").Return(nil, nil)

	_, err := newUseCase(repo).GetOrder(context.Background(), "nope")
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdateOrderStatus_AnyTransitionAllowed(t *testing.T) {
	canceled := &model.Order{ID: "o1", Status: model.OrderStatusCanceled}

	repo := new(mockRepo)
	repo.On("UpdateStatus", mock.Anything, "o1", model.OrderStatusPending, fixedNow).Return(nil)
	repo.On("FindByID", mock.Anything, "o1").Return(canceled, nil)
	repo.On("ItemsByOrderIDs", mock.Anything, []string{"o1"}).Return([]model.OrderItem{}, nil)

	_, err := newUseCase(repo).UpdateOrderStatus(context.Background(), &dto.UpdateStatusInput{ID: "o1", Status: "pending"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateStatus_RejectsUnknownValues(t *testing.T) {
	repo := new(mockRepo)
	uc := newUseCase(repo)

	_, err := uc.UpdateOrderStatus(context.Background(), &dto.UpdateStatusInput{ID: "o1", Status: "lost"})
	assert.True(t, apperr.IsValidation(err))

	_, err = uc.UpdatePaymentStatus(context.Background(), &dto.UpdatePaymentStatusInput{ID: "o1", PaymentStatus: "maybe"})
	assert.True(t, apperr.IsValidation(err))

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExportOrders_IgnoresPagination(t *testing.T) {
	orders := []model.Order{{ID: "o1", Status: "completed", PaymentStatus: "paid", TotalAmount: decimal.NewFromInt(10), CreatedAt: fixedNow}}

	repo := new(mockRepo)
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f *dto.OrderFilters) bool {
		return f.PageSize == 0 && f.Status == "completed"
	})).Return(orders, 1, nil)

	var buf bytes.Buffer
	err := newUseCase(repo).ExportOrders(context.Background(), &buf, export.FormatCSV,
		&dto.OrderFilters{Status: "completed", Page: 3, PageSize: 10})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"o1","2024-06-01 12:00","completed","paid","10","",""`, lines[1])
}

package service

import (
	"context"
	"errors"
	"testing"

	"starmf-gateway/internal/bse"
	"starmf-gateway/internal/core/domain"
	"starmf-gateway/internal/core/ports"
	"starmf-gateway/internal/core/ports/mocks"
	"starmf-gateway/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type orderServiceFixture struct {
	repo    *mocks.MockOrderRepository
	guard   *mocks.MockReferenceGuard
	cache   *mocks.MockOrderStatusCache
	gateway *mocks.MockExchangeGateway
	svc     *OrderServiceImpl
}

func newOrderServiceFixture(t *testing.T) *orderServiceFixture {
	ctrl := gomock.NewController(t)
	f := &orderServiceFixture{
		repo:    mocks.NewMockOrderRepository(ctrl),
		guard:   mocks.NewMockReferenceGuard(ctrl),
		cache:   mocks.NewMockOrderStatusCache(ctrl),
		gateway: mocks.NewMockExchangeGateway(ctrl),
	}
	f.svc = NewOrderService(f.repo, f.guard, f.cache, f.gateway, zerolog.Nop())
	return f
}

func purchaseRequest() domain.OrderRequest {
	return domain.OrderRequest{
		RefNo:           "REF1001",
		TransactionType: domain.TransactionPurchase,
		Plan:            domain.PlanLumpsum,
		ClientCode:      "CLI001",
		SchemeCode:      "SCH001",
		Amount:          "5000",
		KYCConfirmed:    true,
	}
}

func TestOrderService_PlaceOrder_Accepted(t *testing.T) {
	f := newOrderServiceFixture(t)
	req := purchaseRequest()

	f.guard.EXPECT().Claim(gomock.Any(), "REF1001", referenceClaimTTL).Return(true, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.gateway.EXPECT().PlaceOrder(gomock.Any(), req).Return(&domain.OrderResult{
		RefNo:           "REF1001",
		ExchangeOrderID: "9876543210",
		StatusCode:      "100",
		Remarks:         "ORDER CONFIRMED",
		Succeeded:       true,
	}, nil)
	f.repo.EXPECT().
		UpdateOutcome(gomock.Any(), gomock.Any(), domain.OrderStatusAccepted, "9876543210", "ORDER CONFIRMED").
		Return(nil)
	f.cache.EXPECT().Set(gomock.Any(), "REF1001", domain.OrderStatusAccepted, statusCacheTTL).Return(nil)

	order, err := f.svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAccepted, order.Status)
	assert.Equal(t, "9876543210", order.ExchangeOrderID)
	assert.Equal(t, "REF1001", order.RefNo)
}

func TestOrderService_PlaceOrder_DuplicateReference(t *testing.T) {
	f := newOrderServiceFixture(t)

	f.guard.EXPECT().Claim(gomock.Any(), "REF1001", gomock.Any()).Return(false, nil)

	_, err := f.svc.PlaceOrder(context.Background(), purchaseRequest())
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_001", appErr.Code)
}

func TestOrderService_PlaceOrder_ExchangeRejection(t *testing.T) {
	f := newOrderServiceFixture(t)
	req := purchaseRequest()

	f.guard.EXPECT().Claim(gomock.Any(), "REF1001", gomock.Any()).Return(true, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.gateway.EXPECT().PlaceOrder(gomock.Any(), req).Return(nil, &bse.ErrorRecord{
		Kind:    bse.KindExchangeRejection,
		Code:    "220",
		Message: "kyc not compliant",
	})
	f.repo.EXPECT().
		UpdateOutcome(gomock.Any(), gomock.Any(), domain.OrderStatusRejected, "", "kyc not compliant").
		Return(nil)
	f.cache.EXPECT().Set(gomock.Any(), "REF1001", domain.OrderStatusRejected, gomock.Any()).Return(nil)

	_, err := f.svc.PlaceOrder(context.Background(), req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "BSE_004", appErr.Code)
	assert.Equal(t, "kyc not compliant", appErr.Message)
}

func TestOrderService_PlaceOrder_TransportFailureStaysPending(t *testing.T) {
	f := newOrderServiceFixture(t)
	req := purchaseRequest()

	f.guard.EXPECT().Claim(gomock.Any(), "REF1001", gomock.Any()).Return(true, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.gateway.EXPECT().PlaceOrder(gomock.Any(), req).Return(nil, &bse.ErrorRecord{
		Kind:      bse.KindTransportError,
		Message:   "round-trip timed out",
		Retryable: true,
	})
	// The order keeps its row PENDING, no terminal status is cached and the
	// claim is not released: the exchange may have seen the submission.
	f.repo.EXPECT().
		UpdateOutcome(gomock.Any(), gomock.Any(), domain.OrderStatusPending, "", gomock.Any()).
		Return(nil)

	_, err := f.svc.PlaceOrder(context.Background(), req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "BSE_003", appErr.Code)
}

func TestOrderService_PlaceOrder_PersistFailureReleasesClaim(t *testing.T) {
	f := newOrderServiceFixture(t)
	req := purchaseRequest()

	f.guard.EXPECT().Claim(gomock.Any(), "REF1001", gomock.Any()).Return(true, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	f.guard.EXPECT().Release(gomock.Any(), "REF1001").Return(nil)

	_, err := f.svc.PlaceOrder(context.Background(), req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_001", appErr.Code)
}

func TestOrderService_PlaceOrder_ValidationFailureIsTerminal(t *testing.T) {
	f := newOrderServiceFixture(t)
	req := purchaseRequest()
	req.Amount = ""

	f.guard.EXPECT().Claim(gomock.Any(), "REF1001", gomock.Any()).Return(true, nil)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.gateway.EXPECT().PlaceOrder(gomock.Any(), req).Return(nil, &bse.ErrorRecord{
		Kind:    bse.KindValidationError,
		Message: "amount: exactly one of amount and quantity must be set",
	})
	f.repo.EXPECT().
		UpdateOutcome(gomock.Any(), gomock.Any(), domain.OrderStatusRejected, "", gomock.Any()).
		Return(nil)
	f.cache.EXPECT().Set(gomock.Any(), "REF1001", domain.OrderStatusRejected, gomock.Any()).Return(nil)

	_, err := f.svc.PlaceOrder(context.Background(), req)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_004", appErr.Code)
}

func TestOrderService_CancelOrder_Success(t *testing.T) {
	f := newOrderServiceFixture(t)

	f.repo.EXPECT().GetByRefNo(gomock.Any(), "REF1001").Return(&domain.Order{
		RefNo:           "REF1001",
		ClientCode:      "CLI001",
		Status:          domain.OrderStatusAccepted,
		ExchangeOrderID: "9876543210",
	}, nil)
	f.gateway.EXPECT().CancelOrder(gomock.Any(), "9876543210", "CLI001").Return(&domain.OrderResult{
		StatusCode: "100",
		Remarks:    "ORDER CANCELLED",
		Succeeded:  true,
	}, nil)
	f.repo.EXPECT().
		UpdateOutcome(gomock.Any(), gomock.Any(), domain.OrderStatusCancelled, "9876543210", "ORDER CANCELLED").
		Return(nil)
	f.cache.EXPECT().Set(gomock.Any(), "REF1001", domain.OrderStatusCancelled, gomock.Any()).Return(nil)

	order, err := f.svc.CancelOrder(context.Background(), "REF1001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
}

func TestOrderService_CancelOrder_NotFound(t *testing.T) {
	f := newOrderServiceFixture(t)

	f.repo.EXPECT().GetByRefNo(gomock.Any(), "MISSING").Return(nil, nil)

	_, err := f.svc.CancelOrder(context.Background(), "MISSING")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_002", appErr.Code)
}

func TestOrderService_CancelOrder_NotCancellable(t *testing.T) {
	f := newOrderServiceFixture(t)

	for _, status := range []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusRejected,
		domain.OrderStatusCancelled,
	} {
		f.repo.EXPECT().GetByRefNo(gomock.Any(), "REF1001").Return(&domain.Order{
			RefNo:  "REF1001",
			Status: status,
		}, nil)

		_, err := f.svc.CancelOrder(context.Background(), "REF1001")
		require.Error(t, err, "status %s", status)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "ORD_003", appErr.Code)
	}
}

func TestOrderService_GetOrder_CachedStatusWins(t *testing.T) {
	f := newOrderServiceFixture(t)

	f.repo.EXPECT().GetByRefNo(gomock.Any(), "REF1001").Return(&domain.Order{
		RefNo:  "REF1001",
		Status: domain.OrderStatusPending,
	}, nil)
	f.cache.EXPECT().Get(gomock.Any(), "REF1001").Return(domain.OrderStatusAccepted, nil)

	order, err := f.svc.GetOrder(context.Background(), "REF1001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAccepted, order.Status)
}

func TestOrderService_GetOrder_CacheMiss(t *testing.T) {
	f := newOrderServiceFixture(t)

	f.repo.EXPECT().GetByRefNo(gomock.Any(), "REF1001").Return(&domain.Order{
		RefNo:  "REF1001",
		Status: domain.OrderStatusAccepted,
	}, nil)
	f.cache.EXPECT().Get(gomock.Any(), "REF1001").Return(domain.OrderStatus(""), nil)

	order, err := f.svc.GetOrder(context.Background(), "REF1001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAccepted, order.Status)
}

func TestOrderService_GetOrder_NotFound(t *testing.T) {
	f := newOrderServiceFixture(t)

	f.repo.EXPECT().GetByRefNo(gomock.Any(), "MISSING").Return(nil, nil)

	_, err := f.svc.GetOrder(context.Background(), "MISSING")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_002", appErr.Code)
}

func TestOrderService_ListOrders_NormalizesPagination(t *testing.T) {
	f := newOrderServiceFixture(t)

	f.repo.EXPECT().
		List(gomock.Any(), ports.OrderListParams{ClientCode: "CLI001", Page: 1, PageSize: 20}).
		Return([]domain.Order{{RefNo: "REF1001"}}, int64(1), nil)

	orders, total, err := f.svc.ListOrders(context.Background(), ports.OrderListParams{ClientCode: "CLI001", Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, orders, 1)
}

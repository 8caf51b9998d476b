package service

import (
	"context"
	"fmt"
	"time"

	"starmf-gateway/internal/bse"
	"starmf-gateway/internal/core/domain"
	"starmf-gateway/internal/core/ports"
	"starmf-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// A claim outlives any plausible retry window for one logical order.
	referenceClaimTTL = 24 * time.Hour
	statusCacheTTL    = time.Hour
)

// OrderServiceImpl implements ports.OrderService.
type OrderServiceImpl struct {
	orderRepo ports.OrderRepository
	guard     ports.ReferenceGuard
	cache     ports.OrderStatusCache
	gateway   ports.ExchangeGateway
	log       zerolog.Logger
}

// NewOrderService creates a new OrderServiceImpl.
func NewOrderService(
	orderRepo ports.OrderRepository,
	guard ports.ReferenceGuard,
	cache ports.OrderStatusCache,
	gateway ports.ExchangeGateway,
	log zerolog.Logger,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		orderRepo: orderRepo,
		guard:     guard,
		cache:     cache,
		gateway:   gateway,
		log:       log,
	}
}

// PlaceOrder claims the caller's reference number, persists the order and
// submits it to the exchange. The claim happens before anything else so a
// duplicate reference is rejected without touching the database or the wire.
// Once a row exists the reference is consumed, whatever the exchange says:
// a rejected order keeps its row, and a retry needs a fresh reference.
func (s *OrderServiceImpl) PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	claimed, err := s.guard.Claim(ctx, req.RefNo, referenceClaimTTL)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("claim reference: %w", err))
	}
	if !claimed {
		return nil, apperror.ErrDuplicateReference()
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.New(),
		RefNo:           req.RefNo,
		ClientCode:      req.ClientCode,
		SchemeCode:      req.SchemeCode,
		TransactionType: req.TransactionType,
		Plan:            req.Plan,
		Amount:          req.Amount,
		Quantity:        req.Quantity,
		FolioNo:         req.FolioNo,
		Status:          domain.OrderStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		// The row never existed, so the reference may be retried.
		if relErr := s.guard.Release(ctx, req.RefNo); relErr != nil {
			s.log.Warn().Err(relErr).Str("ref_no", req.RefNo).Msg("failed to release reference claim")
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create order: %w", err))
	}

	result, gwErr := s.gateway.PlaceOrder(ctx, req)
	if gwErr != nil {
		return nil, s.recordFailure(ctx, order, gwErr)
	}

	order.Status = domain.OrderStatusAccepted
	order.ExchangeOrderID = result.ExchangeOrderID
	order.Remarks = result.Remarks
	if err := s.orderRepo.UpdateOutcome(ctx, order.ID, order.Status, order.ExchangeOrderID, order.Remarks); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("record order outcome: %w", err))
	}
	s.cacheStatus(ctx, order.RefNo, order.Status)

	s.log.Info().
		Str("ref_no", order.RefNo).
		Str("exchange_order_id", order.ExchangeOrderID).
		Str("plan", string(order.Plan)).
		Msg("order accepted")
	return order, nil
}

// CancelOrder submits a cancellation for an accepted order.
func (s *OrderServiceImpl) CancelOrder(ctx context.Context, refNo string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByRefNo(ctx, refNo)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}
	if order.Status != domain.OrderStatusAccepted || order.ExchangeOrderID == "" {
		return nil, apperror.ErrNotCancellable()
	}

	result, gwErr := s.gateway.CancelOrder(ctx, order.ExchangeOrderID, order.ClientCode)
	if gwErr != nil {
		return nil, mapExchangeError(gwErr)
	}

	order.Status = domain.OrderStatusCancelled
	order.Remarks = result.Remarks
	if err := s.orderRepo.UpdateOutcome(ctx, order.ID, order.Status, order.ExchangeOrderID, order.Remarks); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("record cancellation: %w", err))
	}
	s.cacheStatus(ctx, order.RefNo, order.Status)

	s.log.Info().
		Str("ref_no", order.RefNo).
		Str("exchange_order_id", order.ExchangeOrderID).
		Msg("order cancelled")
	return order, nil
}

// GetOrder returns the persisted order for a reference number. The status
// cache is written after the database commit, so on a lagging read it can be
// ahead of the row; a fresher cached status wins.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, refNo string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByRefNo(ctx, refNo)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}

	cached, cacheErr := s.cache.Get(ctx, refNo)
	if cacheErr != nil {
		s.log.Warn().Err(cacheErr).Str("ref_no", refNo).Msg("status cache lookup failed")
	} else if cached != "" && cached != order.Status {
		order.Status = cached
	}
	return order, nil
}

// ListOrders returns a filtered page of orders.
func (s *OrderServiceImpl) ListOrders(ctx context.Context, params ports.OrderListParams) ([]domain.Order, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list orders: %w", err))
	}
	return orders, total, nil
}

// recordFailure persists the exchange's verdict on a failed submission.
// Rejections and validation failures are terminal for the row; a transport
// failure leaves it PENDING because the exchange may have seen the order,
// and the claim stays so the same reference cannot race a second wire call.
func (s *OrderServiceImpl) recordFailure(ctx context.Context, order *domain.Order, gwErr error) error {
	appErr := mapExchangeError(gwErr)

	status := domain.OrderStatusRejected
	if rec, ok := bse.AsErrorRecord(gwErr); ok && rec.Kind == bse.KindTransportError {
		status = domain.OrderStatusPending
	}

	remarks := appErr.Message
	if err := s.orderRepo.UpdateOutcome(ctx, order.ID, status, "", remarks); err != nil {
		s.log.Error().Err(err).Str("ref_no", order.RefNo).Msg("failed to record order failure")
	}
	if status != domain.OrderStatusPending {
		s.cacheStatus(ctx, order.RefNo, status)
	}

	s.log.Warn().
		Str("ref_no", order.RefNo).
		Str("status", string(status)).
		Str("error_code", appErr.Code).
		Msg("order submission failed")
	return appErr
}

// cacheStatus writes the status cache best-effort.
func (s *OrderServiceImpl) cacheStatus(ctx context.Context, refNo string, status domain.OrderStatus) {
	if err := s.cache.Set(ctx, refNo, status, statusCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("ref_no", refNo).Msg("failed to cache order status")
	}
}

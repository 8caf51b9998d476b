package ports

import (
	"context"
	"time"

	"starmf-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByRefNo(ctx context.Context, refNo string) (*domain.Order, error)
	// UpdateOutcome records the exchange's verdict on a submitted order.
	UpdateOutcome(ctx context.Context, id uuid.UUID, status domain.OrderStatus, exchangeOrderID, remarks string) error
	List(ctx context.Context, params OrderListParams) ([]domain.Order, int64, error)
}

// OrderListParams holds filter + pagination for listing orders.
type OrderListParams struct {
	ClientCode string
	Status     *domain.OrderStatus
	Page       int
	PageSize   int
}

// ClientRepository defines persistence operations for client registrations.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByClientCode(ctx context.Context, clientCode string) (*domain.Client, error)
	UpdateStatus(ctx context.Context, clientCode string, status domain.ClientStatus, remarks string) error
}

// UserRepository defines persistence operations for API users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// OrderStatusCache is the Redis-layer order status lookup (fast path).
type OrderStatusCache interface {
	Get(ctx context.Context, refNo string) (domain.OrderStatus, error) // "" when absent
	Set(ctx context.Context, refNo string, status domain.OrderStatus, ttl time.Duration) error
}

// ReferenceGuard enforces at-most-one submission per caller reference
// before any wire call is made.
type ReferenceGuard interface {
	// Claim atomically claims refNo. Returns true if the reference is new,
	// false if a submission already claimed it.
	Claim(ctx context.Context, refNo string, ttl time.Duration) (bool, error)
	// Release frees a claim after a submission that never reached the
	// exchange, so the caller may retry with the same reference.
	Release(ctx context.Context, refNo string) error
}

package ports

import (
	"context"
	"time"

	"starmf-gateway/internal/core/domain"

	"github.com/google/uuid"
)

// ExchangeGateway is the facade over the exchange integration. Implemented
// by the bse package; mocked in service tests.
type ExchangeGateway interface {
	Authenticate(ctx context.Context, passkey string) (*domain.Credential, error)
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResult, error)
	CancelOrder(ctx context.Context, exchangeOrderID, clientCode string) (*domain.OrderResult, error)
	RegisterClient(ctx context.Context, rec domain.ClientRegistrationRecord, opts domain.RegistrationOptions) (*domain.RegistrationResult, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
}

// --- Service Ports (Business Logic) ---

// OrderService defines the order submission business logic.
type OrderService interface {
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
	CancelOrder(ctx context.Context, refNo string) (*domain.Order, error)
	GetOrder(ctx context.Context, refNo string) (*domain.Order, error)
	ListOrders(ctx context.Context, params OrderListParams) ([]domain.Order, int64, error)
}

// ClientService defines client registration business logic.
type ClientService interface {
	RegisterClient(ctx context.Context, rec domain.ClientRegistrationRecord, opts domain.RegistrationOptions) (*domain.Client, error)
	GetClient(ctx context.Context, clientCode string) (*domain.Client, error)
}

// AuthService defines API-user authentication business logic.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
	// AuthenticateExchange opens an exchange session with the given passkey.
	AuthenticateExchange(ctx context.Context, passkey string) (*domain.Credential, error)
}

package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"starmf-gateway/internal/core/domain"
	"starmf-gateway/internal/core/ports"

	"github.com/google/uuid"
)

// --- In-Memory Order Repo ---

type inMemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
	byRef  map[string]uuid.UUID
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{
		orders: make(map[uuid.UUID]*domain.Order),
		byRef:  make(map[string]uuid.UUID),
	}
}

func (r *inMemoryOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byRef[order.RefNo]; ok {
		return fmt.Errorf("ref_no already exists")
	}
	cp := *order
	r.orders[order.ID] = &cp
	r.byRef[order.RefNo] = order.ID
	return nil
}

func (r *inMemoryOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrderRepo) GetByRefNo(ctx context.Context, refNo string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byRef[refNo]
	if !ok {
		return nil, nil
	}
	cp := *r.orders[id]
	return &cp, nil
}

func (r *inMemoryOrderRepo) UpdateOutcome(ctx context.Context, id uuid.UUID, status domain.OrderStatus, exchangeOrderID, remarks string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order not found")
	}
	o.Status = status
	if exchangeOrderID != "" {
		o.ExchangeOrderID = exchangeOrderID
	}
	o.Remarks = remarks
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryOrderRepo) List(ctx context.Context, params ports.OrderListParams) ([]domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Order
	for _, o := range r.orders {
		if params.ClientCode != "" && o.ClientCode != params.ClientCode {
			continue
		}
		if params.Status != nil && o.Status != *params.Status {
			continue
		}
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RefNo < result[j].RefNo })
	total := int64(len(result))

	// Simple pagination
	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Order{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

// --- In-Memory Client Repo ---

type inMemoryClientRepo struct {
	mu      sync.RWMutex
	clients map[string]*domain.Client
}

func newInMemoryClientRepo() *inMemoryClientRepo {
	return &inMemoryClientRepo{clients: make(map[string]*domain.Client)}
}

func (r *inMemoryClientRepo) Create(ctx context.Context, client *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.ClientCode]; ok {
		return fmt.Errorf("client code already exists")
	}
	cp := *client
	r.clients[client.ClientCode] = &cp
	return nil
}

func (r *inMemoryClientRepo) GetByClientCode(ctx context.Context, clientCode string) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[clientCode]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryClientRepo) UpdateStatus(ctx context.Context, clientCode string, status domain.ClientStatus, remarks string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[clientCode]
	if !ok {
		return fmt.Errorf("client not found")
	}
	c.Status = status
	c.Remarks = remarks
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- Fake Exchange Gateway ---

// fakeExchangeGateway accepts everything by default. Tests script failures
// by setting the error fields before firing requests.
type fakeExchangeGateway struct {
	mu        sync.Mutex
	authErr   error
	placeErr  error
	cancelErr error
	regErr    error
	orderSeq  int
}

func newFakeExchangeGateway() *fakeExchangeGateway {
	return &fakeExchangeGateway{}
}

func (g *fakeExchangeGateway) failPlacements(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.placeErr = err
}

func (g *fakeExchangeGateway) Authenticate(ctx context.Context, passkey string) (*domain.Credential, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.authErr != nil {
		return nil, g.authErr
	}
	now := time.Now().UTC()
	return &domain.Credential{
		EncryptedSecret: "fake-session-secret",
		ObtainedAt:      now,
		ValidUntil:      now.Add(time.Hour),
		SourcePasskey:   passkey,
	}, nil
}

func (g *fakeExchangeGateway) PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.placeErr != nil {
		return nil, g.placeErr
	}
	g.orderSeq++
	return &domain.OrderResult{
		RefNo:           req.RefNo,
		ExchangeOrderID: fmt.Sprintf("98%08d", g.orderSeq),
		StatusCode:      "0",
		Remarks:         "ORDER CONFIRMED",
		Succeeded:       true,
	}, nil
}

func (g *fakeExchangeGateway) CancelOrder(ctx context.Context, exchangeOrderID, clientCode string) (*domain.OrderResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancelErr != nil {
		return nil, g.cancelErr
	}
	return &domain.OrderResult{
		ExchangeOrderID: exchangeOrderID,
		StatusCode:      "0",
		Remarks:         "CXL ORDER ENTERED",
		Succeeded:       true,
	}, nil
}

func (g *fakeExchangeGateway) RegisterClient(ctx context.Context, rec domain.ClientRegistrationRecord, opts domain.RegistrationOptions) (*domain.RegistrationResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.regErr != nil {
		return nil, g.regErr
	}
	remarks := "ADDED SUCCESSFULLY"
	if opts.Type == domain.RegistrationModify {
		remarks = "MODIFIED SUCCESSFULLY"
	}
	return &domain.RegistrationResult{
		ClientCode: rec.ClientCode,
		StatusCode: "100",
		Remarks:    remarks,
		Succeeded:  true,
	}, nil
}

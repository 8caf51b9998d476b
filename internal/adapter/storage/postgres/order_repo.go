package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"starmf-gateway/internal/core/domain"
	"starmf-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, ref_no, client_code, scheme_code, transaction_type, plan,
	amount, quantity, folio_no, status, exchange_order_id, remarks, created_at, updated_at`

// Create inserts a new order row.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		o.ID, o.RefNo, o.ClientCode, o.SchemeCode, o.TransactionType, o.Plan,
		o.Amount, o.Quantity, o.FolioNo, o.Status, o.ExchangeOrderID, o.Remarks,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID fetches an order by its UUID.
func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOrder(r.pool.QueryRow(ctx, query, id))
}

// GetByRefNo fetches an order by the caller's reference number.
func (r *OrderRepo) GetByRefNo(ctx context.Context, refNo string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ref_no = $1`
	return r.scanOrder(r.pool.QueryRow(ctx, query, refNo))
}

// UpdateOutcome records the exchange's verdict on a submitted order.
func (r *OrderRepo) UpdateOutcome(ctx context.Context, id uuid.UUID, status domain.OrderStatus, exchangeOrderID, remarks string) error {
	query := `UPDATE orders SET status = $1, exchange_order_id = $2, remarks = $3, updated_at = NOW() WHERE id = $4`

	tag, err := r.pool.Exec(ctx, query, status, exchangeOrderID, remarks, id)
	if err != nil {
		return fmt.Errorf("update order outcome: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}

// List fetches orders with filtering and pagination.
func (r *OrderRepo) List(ctx context.Context, params ports.OrderListParams) ([]domain.Order, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.ClientCode != "" {
		conditions = append(conditions, fmt.Sprintf("client_code = $%d", argIdx))
		args = append(args, params.ClientCode)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT `+orderColumns+` FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o := domain.Order{}
		err := rows.Scan(
			&o.ID, &o.RefNo, &o.ClientCode, &o.SchemeCode, &o.TransactionType, &o.Plan,
			&o.Amount, &o.Quantity, &o.FolioNo, &o.Status, &o.ExchangeOrderID, &o.Remarks,
			&o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, total, nil
}

// scanOrder is a helper to scan a single row into an Order.
func (r *OrderRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.RefNo, &o.ClientCode, &o.SchemeCode, &o.TransactionType, &o.Plan,
		&o.Amount, &o.Quantity, &o.FolioNo, &o.Status, &o.ExchangeOrderID, &o.Remarks,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}

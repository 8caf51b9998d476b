package postgres

import (
	"context"
	"errors"
	"fmt"

	"starmf-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ClientRepo implements ports.ClientRepository.
type ClientRepo struct {
	pool Pool
}

// NewClientRepo creates a new ClientRepo.
func NewClientRepo(pool Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

// Create inserts a new client registration row.
func (r *ClientRepo) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (id, client_code, first_name, last_name, email, status, remarks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.ClientCode, c.FirstName, c.LastName, c.Email,
		c.Status, c.Remarks, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByClientCode fetches a client by its exchange client code.
func (r *ClientRepo) GetByClientCode(ctx context.Context, clientCode string) (*domain.Client, error) {
	query := `SELECT id, client_code, first_name, last_name, email, status, remarks, created_at, updated_at
		FROM clients WHERE client_code = $1`

	c := &domain.Client{}
	err := r.pool.QueryRow(ctx, query, clientCode).Scan(
		&c.ID, &c.ClientCode, &c.FirstName, &c.LastName, &c.Email,
		&c.Status, &c.Remarks, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client by code: %w", err)
	}
	return c, nil
}

// UpdateStatus records the outcome of a registration attempt.
func (r *ClientRepo) UpdateStatus(ctx context.Context, clientCode string, status domain.ClientStatus, remarks string) error {
	query := `UPDATE clients SET status = $1, remarks = $2, updated_at = NOW() WHERE client_code = $3`

	tag, err := r.pool.Exec(ctx, query, status, remarks, clientCode)
	if err != nil {
		return fmt.Errorf("update client status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client not found: %s", clientCode)
	}
	return nil
}

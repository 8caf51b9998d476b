package service

import (
	"context"
	"fmt"
	"time"

	"starmf-gateway/internal/core/domain"
	"starmf-gateway/internal/core/ports"
	"starmf-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ClientServiceImpl implements ports.ClientService.
type ClientServiceImpl struct {
	clientRepo ports.ClientRepository
	gateway    ports.ExchangeGateway
	log        zerolog.Logger
}

// NewClientService creates a new ClientServiceImpl.
func NewClientService(clientRepo ports.ClientRepository, gateway ports.ExchangeGateway, log zerolog.Logger) *ClientServiceImpl {
	return &ClientServiceImpl{
		clientRepo: clientRepo,
		gateway:    gateway,
		log:        log,
	}
}

// RegisterClient submits a client master record to the exchange. A new
// registration creates the local row PENDING before the wire call so the
// client code is reserved even when the exchange rejects; a modification
// requires the row to exist already.
func (s *ClientServiceImpl) RegisterClient(ctx context.Context, rec domain.ClientRegistrationRecord, opts domain.RegistrationOptions) (*domain.Client, error) {
	regnType := opts.Type
	if regnType == "" {
		regnType = domain.RegistrationNew
	}

	existing, err := s.clientRepo.GetByClientCode(ctx, rec.ClientCode)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load client: %w", err))
	}

	var client *domain.Client
	switch regnType {
	case domain.RegistrationNew:
		if existing != nil {
			return nil, apperror.Validation("client code already registered")
		}
		now := time.Now().UTC()
		client = &domain.Client{
			ID:         uuid.New(),
			ClientCode: rec.ClientCode,
			FirstName:  rec.PrimaryHolderFirstName,
			LastName:   rec.PrimaryHolderLastName,
			Email:      rec.Email,
			Status:     domain.ClientStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.clientRepo.Create(ctx, client); err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("create client: %w", err))
		}
	case domain.RegistrationModify:
		if existing == nil {
			return nil, apperror.ErrNotFound("client")
		}
		client = existing
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown registration type %q", regnType))
	}

	result, gwErr := s.gateway.RegisterClient(ctx, rec, opts)
	if gwErr != nil {
		appErr := mapExchangeError(gwErr)
		if regnType == domain.RegistrationNew {
			if upErr := s.clientRepo.UpdateStatus(ctx, rec.ClientCode, domain.ClientStatusRejected, appErr.Message); upErr != nil {
				s.log.Error().Err(upErr).Str("client_code", rec.ClientCode).Msg("failed to record registration failure")
			}
		}
		s.log.Warn().
			Str("client_code", rec.ClientCode).
			Str("regn_type", string(regnType)).
			Str("error_code", appErr.Code).
			Msg("client registration failed")
		return nil, appErr
	}

	if err := s.clientRepo.UpdateStatus(ctx, rec.ClientCode, domain.ClientStatusRegistered, result.Remarks); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("record registration: %w", err))
	}
	client.Status = domain.ClientStatusRegistered
	client.Remarks = result.Remarks

	s.log.Info().
		Str("client_code", rec.ClientCode).
		Str("regn_type", string(regnType)).
		Msg("client registered with exchange")
	return client, nil
}

// GetClient returns the persisted registration state for a client code.
func (s *ClientServiceImpl) GetClient(ctx context.Context, clientCode string) (*domain.Client, error) {
	client, err := s.clientRepo.GetByClientCode(ctx, clientCode)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load client: %w", err))
	}
	if client == nil {
		return nil, apperror.ErrNotFound("client")
	}
	return client, nil
}

package bse

import (
	"context"

	"starmf-gateway/internal/core/domain"

	"github.com/rs/zerolog"
)

// Gateway is the facade over the exchange integration: session lifecycle,
// both codecs and the response parser behind four operations. It is safe
// for concurrent use; the only shared mutable state lives inside the
// session manager. The gateway never retries a wire call — at most one
// request leaves for a given logical order, and retry policy stays with
// the caller.
type Gateway struct {
	session          *SessionManager
	orders           *OrderCodec
	registration     *RegistrationCodec
	transport        Transport
	classifier       *Classifier
	registrationPath string
	log              zerolog.Logger
}

// NewGateway wires the gateway from its collaborators.
func NewGateway(
	session *SessionManager,
	orders *OrderCodec,
	registration *RegistrationCodec,
	transport Transport,
	classifier *Classifier,
	registrationPath string,
	log zerolog.Logger,
) *Gateway {
	return &Gateway{
		session:          session,
		orders:           orders,
		registration:     registration,
		transport:        transport,
		classifier:       classifier,
		registrationPath: registrationPath,
		log:              log.With().Str("component", "bse_gateway").Logger(),
	}
}

// Authenticate obtains a fresh session credential with the given passkey.
func (g *Gateway) Authenticate(ctx context.Context, passkey string) (*domain.Credential, error) {
	return g.session.Authenticate(ctx, passkey)
}

// PlaceOrder validates, encodes and submits one order. Validation runs
// before the credential is touched so an invalid order costs zero
// round-trips, including the renewal that a stale session would trigger.
func (g *Gateway) PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderResult, error) {
	if err := g.orders.Validate(req); err != nil {
		return nil, err
	}

	cred, err := g.session.ValidCredential(ctx)
	if err != nil {
		return nil, err
	}

	op, params, encErr := g.orders.Encode(req, cred)
	if encErr != nil {
		return nil, encErr
	}

	raw, callErr := g.transport.CallRPC(ctx, op, params)
	if callErr != nil {
		g.log.Error().Err(callErr).Str("ref_no", req.RefNo).Msg("order round-trip failed")
		return nil, g.classifier.ClassifyTransport(callErr)
	}

	result, decErr := g.orders.Decode(req.RefNo, raw)
	if decErr != nil {
		g.log.Warn().Str("ref_no", req.RefNo).Str("code", decErr.Code).Msg("order rejected")
		return nil, decErr
	}

	g.log.Info().
		Str("ref_no", req.RefNo).
		Str("exchange_order_id", result.ExchangeOrderID).
		Msg("order accepted")
	return result, nil
}

// CancelOrder submits a cancellation for an exchange-assigned order number.
func (g *Gateway) CancelOrder(ctx context.Context, exchangeOrderID, clientCode string) (*domain.OrderResult, error) {
	cred, err := g.session.ValidCredential(ctx)
	if err != nil {
		return nil, err
	}

	op, params, encErr := g.orders.EncodeCancel(exchangeOrderID, clientCode, cred)
	if encErr != nil {
		return nil, encErr
	}

	raw, callErr := g.transport.CallRPC(ctx, op, params)
	if callErr != nil {
		g.log.Error().Err(callErr).Str("exchange_order_id", exchangeOrderID).Msg("cancel round-trip failed")
		return nil, g.classifier.ClassifyTransport(callErr)
	}

	result, decErr := g.orders.Decode(exchangeOrderID, raw)
	if decErr != nil {
		return nil, decErr
	}

	g.log.Info().Str("exchange_order_id", exchangeOrderID).Msg("order cancelled")
	return result, nil
}

// RegisterClient validates the record, projects it onto the positional
// schema and posts the registration envelope.
func (g *Gateway) RegisterClient(ctx context.Context, rec domain.ClientRegistrationRecord, opts domain.RegistrationOptions) (*domain.RegistrationResult, error) {
	regnType := opts.Type
	if regnType == "" {
		regnType = domain.RegistrationNew
	}
	if err := g.registration.Validate(rec, regnType, opts.RequiredFields); err != nil {
		return nil, err
	}

	cred, err := g.session.ValidCredential(ctx)
	if err != nil {
		return nil, err
	}

	envelope, encErr := g.registration.Envelope(rec, cred, opts)
	if encErr != nil {
		return nil, encErr
	}

	raw, callErr := g.transport.PostEnvelope(ctx, g.registrationPath, envelope)
	if callErr != nil {
		g.log.Error().Err(callErr).Str("client_code", rec.ClientCode).Msg("registration round-trip failed")
		return nil, g.classifier.ClassifyTransport(callErr)
	}

	result, decErr := g.registration.DecodeReply(raw, g.orders.parser, rec.ClientCode)
	if decErr != nil {
		g.log.Warn().Str("client_code", rec.ClientCode).Str("code", decErr.Code).Msg("registration rejected")
		return nil, decErr
	}

	g.log.Info().Str("client_code", rec.ClientCode).Str("regn_type", string(regnType)).Msg("client registered")
	return result, nil
}

// Session exposes the session manager for diagnostics.
func (g *Gateway) Session() *SessionManager {
	return g.session
}

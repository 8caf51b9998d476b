package bse

import (
	"context"
	"sync/atomic"
	"time"

	"starmf-gateway/internal/core/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const opGetPassword = "getPassword"

// SessionManager owns the authenticated-credential lifecycle against the
// exchange. The cached credential is replaced atomically on successful
// authentication and never cleared on failure, so the last-known value
// stays inspectable. Renewal is single-flight: concurrent callers finding
// an expired credential share one network attempt and its outcome.
type SessionManager struct {
	transport  Transport
	parser     *ResponseParser
	classifier *Classifier
	userID     string
	password   string
	validity   time.Duration
	log        zerolog.Logger

	now         func() time.Time
	cred        atomic.Pointer[domain.Credential]
	lastPasskey atomic.Pointer[string]
	group       singleflight.Group
}

// NewSessionManager creates a session manager. validity is the exchange's
// session window measured from issuance.
func NewSessionManager(transport Transport, parser *ResponseParser, classifier *Classifier, userID, password string, validity time.Duration, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		transport:  transport,
		parser:     parser,
		classifier: classifier,
		userID:     userID,
		password:   password,
		validity:   validity,
		now:        time.Now,
		log:        log.With().Str("component", "bse_session").Logger(),
	}
}

// Authenticate performs a network round-trip to obtain a fresh credential
// using the caller-supplied passkey. There is no default passkey: an empty
// one is a validation error, never a fallback.
func (m *SessionManager) Authenticate(ctx context.Context, passkey string) (*domain.Credential, error) {
	if passkey == "" {
		return nil, newValidationError("passkey", "required")
	}
	if !validPasskey(passkey) {
		return nil, newValidationError("passkey", "must be alphanumeric")
	}
	return m.authenticate(ctx, passkey)
}

// ValidCredential returns the cached credential while it is fresh. On
// expiry it renews silently with the last successful passkey; with no
// passkey on file it fails with SessionExpired, which only a fresh
// Authenticate call can clear.
func (m *SessionManager) ValidCredential(ctx context.Context) (*domain.Credential, error) {
	if cred := m.cred.Load(); cred != nil && cred.Valid(m.now()) {
		return cred, nil
	}

	v, err, shared := m.group.Do("renew", func() (any, error) {
		// A waiter that queued behind a finished renewal sees the fresh
		// credential here instead of issuing another attempt.
		if cred := m.cred.Load(); cred != nil && cred.Valid(m.now()) {
			return cred, nil
		}
		passkey := m.lastPasskey.Load()
		if passkey == nil {
			return nil, newSessionExpired("no passkey on file, explicit authentication required")
		}
		m.log.Info().Msg("session expired, renewing silently")
		return m.authenticate(ctx, *passkey)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		m.log.Debug().Msg("renewal shared with concurrent caller")
	}
	return v.(*domain.Credential), nil
}

// Current returns the cached credential, possibly expired, or nil when no
// authentication ever succeeded. Diagnostic use only.
func (m *SessionManager) Current() *domain.Credential {
	return m.cred.Load()
}

func (m *SessionManager) authenticate(ctx context.Context, passkey string) (*domain.Credential, error) {
	params := []Param{
		{Name: "UserId", Value: m.userID},
		{Name: "Password", Value: m.password},
		{Name: "PassKey", Value: passkey},
	}

	raw, err := m.transport.CallRPC(ctx, opGetPassword, params)
	if err != nil {
		m.log.Error().Err(err).Msg("authentication round-trip failed")
		return nil, m.classifier.ClassifyTransport(err)
	}

	result, wireErr := m.parser.Parse(raw)
	if wireErr != nil {
		m.log.Warn().Str("code", wireErr.Code).Msg("exchange rejected authentication")
		return nil, newAuthError(wireErr.Code, wireErr.Message)
	}
	if result.Remarks == "" {
		return nil, newProtocolFault(raw, "success reply without encrypted secret")
	}

	issuedAt := m.now()
	cred := &domain.Credential{
		EncryptedSecret: result.Remarks,
		ObtainedAt:      issuedAt,
		ValidUntil:      issuedAt.Add(m.validity),
		SourcePasskey:   passkey,
	}

	m.cred.Store(cred)
	pk := passkey
	m.lastPasskey.Store(&pk)

	m.log.Info().Time("valid_until", cred.ValidUntil).Msg("authenticated with exchange")
	return cred, nil
}

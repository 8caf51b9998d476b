package bse

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Param is one named parameter of a legacy RPC-envelope call. Order matters:
// the exchange's contract is positional even where names appear on the wire.
type Param struct {
	Name  string
	Value string
}

// RegistrationEnvelope is the outer object of a client registration call.
// Field names and casing are fixed by the exchange.
type RegistrationEnvelope struct {
	UserID     string `json:"UserId"`
	MemberCode string `json:"MemberCode"`
	Password   string `json:"Password"` // Session-encrypted secret
	RegnType   string `json:"RegnType"` // "NEW" or "MOD"
	Param      string `json:"Param"`    // 131-position pipe string
	Filler1    string `json:"Filler1"`
	Filler2    string `json:"Filler2"`
}

// Transport performs one request/response round-trip against the exchange.
// Implementations must bound every call with a timeout; the gateway never
// retries on their behalf.
type Transport interface {
	// CallRPC invokes an operation on the legacy envelope protocol with
	// ordered parameters and returns the raw reply payload.
	CallRPC(ctx context.Context, op string, params []Param) (string, error)

	// PostEnvelope posts a JSON envelope to path below the configured base
	// URL and returns the raw response body.
	PostEnvelope(ctx context.Context, path string, envelope any) (string, error)
}

const (
	envelopeNS = "http://www.w3.org/2003/05/soap-envelope"
	serviceNS  = "http://bsestarmf.in/"
)

// HTTPTransport is the production Transport. RPC operations go to the
// order-entry endpoint wrapped in the exchange's envelope dialect;
// registration envelopes go to base URL + path as JSON.
type HTTPTransport struct {
	baseURL   string
	orderPath string
	client    *http.Client
	log       zerolog.Logger
}

// NewHTTPTransport creates a transport with a bounded per-call timeout.
func NewHTTPTransport(baseURL, orderPath string, timeout time.Duration, log zerolog.Logger) *HTTPTransport {
	return &HTTPTransport{
		baseURL:   strings.TrimRight(baseURL, "/"),
		orderPath: orderPath,
		client:    &http.Client{Timeout: timeout},
		log:       log.With().Str("component", "bse_transport").Logger(),
	}
}

// CallRPC wraps the ordered parameters in the exchange envelope and posts
// them to the order-entry endpoint. The reply payload is the text content
// of the <opResult> element, or the whole body when no such element exists.
func (t *HTTPTransport) CallRPC(ctx context.Context, op string, params []Param) (string, error) {
	body := buildRPCEnvelope(op, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+t.orderPath, strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", `application/soap+xml; charset=utf-8`)
	req.Header.Set("SOAPAction", serviceNS+"MFOrderEntry/"+op)

	t.log.Debug().Str("op", op).Int("params", len(params)).Msg("sending rpc call")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("rpc %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("rpc %s: read reply: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("rpc %s: http status %d", op, resp.StatusCode)
	}

	return extractRPCResult(string(raw), op), nil
}

// PostEnvelope marshals envelope as JSON and posts it below the base URL.
func (t *HTTPTransport) PostEnvelope(ctx context.Context, path string, envelope any) (string, error) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build envelope request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	t.log.Debug().Str("path", path).Msg("posting envelope")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("post %s: read reply: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("post %s: http status %d", path, resp.StatusCode)
	}

	return string(raw), nil
}

// buildRPCEnvelope writes the envelope by hand, element per parameter in
// the order given. Parameter order must survive encoding untouched, which
// rules out marshaling through a map.
func buildRPCEnvelope(op string, params []Param) string {
	var b strings.Builder
	b.WriteString(`<soap:Envelope xmlns:soap="` + envelopeNS + `" xmlns:star="` + serviceNS + `">`)
	b.WriteString(`<soap:Body><star:` + op + `>`)
	for _, p := range params {
		b.WriteString(`<star:` + p.Name + `>`)
		xml.EscapeText(&b, []byte(p.Value)) //nolint:errcheck // strings.Builder cannot fail
		b.WriteString(`</star:` + p.Name + `>`)
	}
	b.WriteString(`</star:` + op + `></soap:Body></soap:Envelope>`)
	return b.String()
}

var xmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// extractRPCResult pulls the text of the <opResult> element out of the
// reply without caring which namespace prefix the exchange used.
func extractRPCResult(body, op string) string {
	marker := op + "Result"
	idx := strings.Index(body, marker)
	if idx < 0 {
		return strings.TrimSpace(body)
	}
	rest := body[idx:]
	open := strings.Index(rest, ">")
	if open < 0 {
		return strings.TrimSpace(body)
	}
	rest = rest[open+1:]
	end := strings.Index(rest, "<")
	if end < 0 {
		return strings.TrimSpace(xmlUnescaper.Replace(rest))
	}
	return strings.TrimSpace(xmlUnescaper.Replace(rest[:end]))
}

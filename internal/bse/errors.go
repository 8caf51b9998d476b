package bse

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind partitions every failure mode of the exchange integration.
type ErrorKind string

const (
	KindAuthError         ErrorKind = "AUTH_ERROR"
	KindSessionExpired    ErrorKind = "SESSION_EXPIRED"
	KindTransportError    ErrorKind = "TRANSPORT_ERROR"
	KindValidationError   ErrorKind = "VALIDATION_ERROR"
	KindProtocolFault     ErrorKind = "PROTOCOL_FAULT"
	KindExchangeRejection ErrorKind = "EXCHANGE_REJECTION"
)

// ErrorRecord is the typed error every gateway operation returns. Retryable
// is a hint for the caller's retry policy — the gateway itself never retries.
type ErrorRecord struct {
	Kind      ErrorKind `json:"kind"`
	Code      string    `json:"code,omitempty"` // Exchange status code, when one was received
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

func (e *ErrorRecord) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AsErrorRecord unwraps err into an *ErrorRecord if it is one.
func AsErrorRecord(err error) (*ErrorRecord, bool) {
	var rec *ErrorRecord
	if errors.As(err, &rec) {
		return rec, true
	}
	return nil, false
}

func newValidationError(field, reason string) *ErrorRecord {
	return &ErrorRecord{
		Kind:    KindValidationError,
		Message: fmt.Sprintf("%s: %s", field, reason),
	}
}

func newSessionExpired(message string) *ErrorRecord {
	return &ErrorRecord{Kind: KindSessionExpired, Message: message}
}

func newAuthError(code, message string) *ErrorRecord {
	return &ErrorRecord{Kind: KindAuthError, Code: code, Message: message}
}

func newProtocolFault(raw string, reason string) *ErrorRecord {
	// The raw payload is preserved verbatim so a rejected reply can be
	// replayed against exchange support tickets.
	return &ErrorRecord{
		Kind:    KindProtocolFault,
		Message: fmt.Sprintf("%s: %q", reason, raw),
	}
}

// rejectionCodes are the exchange rejection codes documented for the auth
// and order-entry services. The set is intentionally data, not logic: BSE
// extends it between circulars, so deployments can overlay their own table.
var rejectionCodes = map[string]string{
	"101": "invalid user id or member code",
	"102": "invalid password",
	"103": "password expired",
	"104": "account locked",
	"105": "invalid passkey",
	"106": "session expired",
	"107": "ip not whitelisted",
	"108": "access denied",
	"109": "user disabled",
	"110": "member disabled",
	"201": "invalid transaction code",
	"202": "invalid scheme code",
	"203": "invalid amount or quantity",
	"204": "invalid folio number",
	"205": "invalid mandate id",
	"206": "invalid sip registration id",
	"207": "invalid order id",
	"208": "duplicate order",
	"209": "order not found",
	"210": "order already cancelled",
	"211": "order modification not allowed",
	"212": "invalid order status",
	"213": "invalid frequency type",
	"214": "invalid start date",
	"215": "invalid number of installments",
	"216": "invalid switch scheme",
	"217": "invalid redemption date",
	"218": "invalid client code",
	"219": "client not registered",
	"220": "kyc not compliant",
	"221": "pan not verified",
	"222": "fatca not compliant",
	"223": "minimum investment criteria not met",
	"224": "maximum investment limit exceeded",
	"225": "cut-off time elapsed",
	"226": "holiday or non-business day",
	"227": "invalid bank details",
	"228": "insufficient balance",
	"229": "units not available",
	"230": "mandate registration pending",
	"231": "mandate amount insufficient",
	"232": "mandate expired",
	"233": "invalid euin",
	"234": "invalid sub-broker arn",
	"235": "invalid dp transaction mode",
}

// Classifier maps transport and protocol signals onto the error taxonomy.
// It is stateless apart from its rejection-code table.
type Classifier struct {
	rejections map[string]string
}

// NewClassifier returns a classifier seeded with the documented exchange
// rejection codes.
func NewClassifier() *Classifier {
	table := make(map[string]string, len(rejectionCodes))
	for code, desc := range rejectionCodes {
		table[code] = desc
	}
	return &Classifier{rejections: table}
}

// WithRejectionCodes overlays extra code descriptions onto the table and
// returns the classifier for chaining.
func (c *Classifier) WithRejectionCodes(codes map[string]string) *Classifier {
	for code, desc := range codes {
		c.rejections[code] = desc
	}
	return c
}

// Known reports whether code is a documented exchange rejection code.
func (c *Classifier) Known(code string) bool {
	_, ok := c.rejections[code]
	return ok
}

// ClassifyStatus maps a non-success exchange status onto an ErrorRecord.
// A recognized code is an ExchangeRejection; anything else is a protocol
// fault because the reply cannot be trusted to mean what it appears to.
func (c *Classifier) ClassifyStatus(code, remark string) *ErrorRecord {
	if desc, ok := c.rejections[code]; ok {
		msg := remark
		if msg == "" {
			msg = desc
		}
		return &ErrorRecord{Kind: KindExchangeRejection, Code: code, Message: msg}
	}
	return &ErrorRecord{
		Kind:    KindProtocolFault,
		Code:    code,
		Message: fmt.Sprintf("unrecognized exchange status %q: %s", code, remark),
	}
}

// ClassifyTransport maps a failed round-trip onto a retryable TransportError.
// Context deadlines, cancellation and network errors all land here.
func (c *Classifier) ClassifyTransport(err error) *ErrorRecord {
	msg := "round-trip failed"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "round-trip timed out"
	case errors.Is(err, context.Canceled):
		msg = "round-trip cancelled"
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			msg = "round-trip timed out"
		}
	}
	return &ErrorRecord{
		Kind:      KindTransportError,
		Message:   fmt.Sprintf("%s: %v", msg, err),
		Retryable: true,
	}
}

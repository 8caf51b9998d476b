package bse

import (
	"strconv"
	"strings"
	"time"

	"starmf-gateway/internal/core/domain"
)

// RPC operations on the order-entry service.
const (
	opOrderEntry    = "orderEntryParam"
	opSIPOrderEntry = "sipOrderEntryParam"
	opCancelOrder   = "cancelOrderParam"
)

// Exchange transaction codes.
const (
	transCodeNew    = "NEW"
	transCodeNewSIP = "NEWSIP"
	transCodeCancel = "CXL"
)

// wireRefNoLen is the exact length the exchange expects for the unique
// reference number on the wire.
const wireRefNoLen = 19

// OrderCodec validates an OrderRequest and serializes it into the
// order-entry request shape. Every validation failure is reported before
// any network traffic; the codec never substitutes silent defaults for
// business identifiers — the only identifiers it derives are the
// structurally composed transaction and reference numbers.
type OrderCodec struct {
	parser     *ResponseParser
	userID     string
	memberCode string
	now        func() time.Time
}

// NewOrderCodec creates a codec bound to the member's exchange identifiers.
func NewOrderCodec(parser *ResponseParser, userID, memberCode string) *OrderCodec {
	return &OrderCodec{
		parser:     parser,
		userID:     userID,
		memberCode: memberCode,
		now:        time.Now,
	}
}

// Encode validates req and returns the RPC operation plus its ordered
// parameters, authorized by cred.
func (c *OrderCodec) Encode(req domain.OrderRequest, cred *domain.Credential) (string, []Param, *ErrorRecord) {
	if err := c.Validate(req); err != nil {
		return "", nil, err
	}
	if req.Plan == domain.PlanSIP {
		return opSIPOrderEntry, c.sipParams(req, cred), nil
	}
	return opOrderEntry, c.lumpsumParams(req, cred), nil
}

// EncodeCancel builds a cancellation request for an exchange order number.
func (c *OrderCodec) EncodeCancel(exchangeOrderID, clientCode string, cred *domain.Credential) (string, []Param, *ErrorRecord) {
	if exchangeOrderID == "" {
		return "", nil, newValidationError("exchange_order_id", "required")
	}
	if clientCode == "" {
		return "", nil, newValidationError("client_code", "required")
	}
	params := []Param{
		{"TransCode", transCodeCancel},
		{"TransNo", c.transactionNumber(exchangeOrderID)},
		{"OrderId", exchangeOrderID},
		{"UserID", c.userID},
		{"MemberId", c.memberCode},
		{"ClientCode", clientCode},
		{"Password", cred.EncryptedSecret},
		{"PassKey", cred.SourcePasskey},
	}
	return opCancelOrder, params, nil
}

// Decode turns a raw order-entry reply into an OrderResult, overlaying the
// exchange-assigned order id and the echoed reference number.
func (c *OrderCodec) Decode(refNo, raw string) (*domain.OrderResult, *ErrorRecord) {
	result, wireErr := c.parser.Parse(raw)
	if wireErr != nil {
		return nil, wireErr
	}
	return &domain.OrderResult{
		RefNo:           refNo,
		ExchangeOrderID: result.ExchangeRef,
		StatusCode:      result.StatusCode,
		Remarks:         result.Remarks,
		Succeeded:       true,
	}, nil
}

func (c *OrderCodec) Validate(req domain.OrderRequest) *ErrorRecord {
	if req.RefNo == "" {
		return newValidationError("ref_no", "required")
	}
	if !validRefNo(req.RefNo) {
		return newValidationError("ref_no", "must be 1-19 alphanumeric characters")
	}
	if req.ClientCode == "" {
		return newValidationError("client_code", "required")
	}
	if req.SchemeCode == "" {
		return newValidationError("scheme_code", "required")
	}
	switch req.TransactionType {
	case domain.TransactionPurchase, domain.TransactionRedemption:
	default:
		return newValidationError("transaction_type", "must be PURCHASE or REDEMPTION")
	}

	hasAmount := req.Amount != ""
	hasQuantity := req.Quantity != ""
	if hasAmount == hasQuantity {
		return newValidationError("amount", "exactly one of amount and quantity must be set")
	}
	if hasAmount && !validAmount(req.Amount) {
		return newValidationError("amount", "must be positive decimal text")
	}
	if hasQuantity && !validAmount(req.Quantity) {
		return newValidationError("quantity", "must be positive decimal text")
	}

	needsFolio := req.TransactionType == domain.TransactionRedemption ||
		req.BuySellType == domain.BuySellAdditional
	if needsFolio && req.FolioNo == "" {
		return newValidationError("folio_no", "required for redemptions and additional purchases")
	}
	if req.AllRedeem && req.TransactionType != domain.TransactionRedemption {
		return newValidationError("all_redeem", "only valid on redemptions")
	}
	if req.EUINDeclared && req.EUIN == "" {
		return newValidationError("euin", "required when euin declaration flag is set")
	}

	if req.Plan == domain.PlanSIP {
		if req.TransactionType != domain.TransactionPurchase {
			return newValidationError("plan", "systematic plans are purchase-only")
		}
		if !hasAmount {
			return newValidationError("amount", "systematic plans are registered by amount")
		}
		if req.StartDate.IsZero() {
			return newValidationError("start_date", "required for systematic plans")
		}
		if req.Frequency == "" {
			return newValidationError("frequency", "required for systematic plans")
		}
		if req.Installments < 1 {
			return newValidationError("installments", "must be at least 1")
		}
	}
	return nil
}

// transactionNumber composes the exchange transaction number from the
// current date, the member id and a caller-scoped sequence component.
func (c *OrderCodec) transactionNumber(seq string) string {
	return c.now().Format("20060102") + "-" + c.memberCode + "-" + seq
}

// wireRefNo pads the caller reference to the wire's fixed length. Padding
// with leading zeros keeps the derivation deterministic and reversible.
func wireRefNo(ref string) string {
	if len(ref) >= wireRefNoLen {
		return ref
	}
	return strings.Repeat("0", wireRefNoLen-len(ref)) + ref
}

func buySellCode(t domain.TransactionType) string {
	if t == domain.TransactionRedemption {
		return "R"
	}
	return "P"
}

func dpTxnCode(m domain.DPTxnMode) string {
	switch m {
	case domain.DPTxnCDSL:
		return "C"
	case domain.DPTxnNSDL:
		return "N"
	default:
		return "P"
	}
}

func buySellTypeCode(t domain.BuySellType) string {
	if t == domain.BuySellAdditional {
		return "ADDITIONAL"
	}
	return "FRESH"
}

func (c *OrderCodec) lumpsumParams(req domain.OrderRequest, cred *domain.Credential) []Param {
	return []Param{
		{"TransCode", transCodeNew},
		{"TransNo", c.transactionNumber(req.RefNo)},
		{"OrderId", ""},
		{"UserID", c.userID},
		{"MemberId", c.memberCode},
		{"ClientCode", req.ClientCode},
		{"SchemeCd", req.SchemeCode},
		{"BuySell", buySellCode(req.TransactionType)},
		{"BuySellType", buySellTypeCode(req.BuySellType)},
		{"DPTxn", dpTxnCode(req.DPTxnMode)},
		{"OrderVal", req.Amount},
		{"Qty", req.Quantity},
		{"AllRedeem", yn(req.AllRedeem)},
		{"FolioNo", req.FolioNo},
		{"Remarks", req.Remarks},
		{"KYCStatus", yn(req.KYCConfirmed)},
		{"RefNo", wireRefNo(req.RefNo)},
		{"SubBrCode", req.SubBrokerARN},
		{"EUIN", req.EUIN},
		{"EUINVal", yn(req.EUINDeclared)},
		{"MinRedeem", yn(req.MinRedeem)},
		{"DPC", yn(req.DPC)},
		{"IPAdd", req.ClientIP},
		{"Password", cred.EncryptedSecret},
		{"PassKey", cred.SourcePasskey},
		{"Parma1", ""},
		{"Parma2", ""},
		{"Parma3", ""},
	}
}

func (c *OrderCodec) sipParams(req domain.OrderRequest, cred *domain.Credential) []Param {
	transMode := "D"
	if req.DPTxnMode == domain.DPTxnPhysical || req.DPTxnMode == "" {
		transMode = "P"
	}
	return []Param{
		{"TransCode", transCodeNewSIP},
		{"TransNo", c.transactionNumber(req.RefNo)},
		{"SchemeCode", req.SchemeCode},
		{"MemberCode", c.memberCode},
		{"ClientCode", req.ClientCode},
		{"UserID", c.userID},
		{"InternalRefNo", wireRefNo(req.RefNo)},
		{"TransMode", transMode},
		{"DpTxnMode", dpTxnCode(req.DPTxnMode)},
		{"StartDate", req.StartDate.Format(wireDateLayout)},
		{"FrequencyType", string(req.Frequency)},
		{"FrequencyAllowed", "1"},
		{"InstallmentAmount", req.Amount},
		{"NoOfInstallment", strconv.Itoa(req.Installments)},
		{"Remarks", req.Remarks},
		{"FolioNo", req.FolioNo},
		{"FirstOrderFlag", yn(req.FirstOrderToday)},
		{"SubberCode", req.SubBrokerARN},
		{"EUIN", req.EUIN},
		{"EUINVal", yn(req.EUINDeclared)},
		{"MandateID", req.MandateID},
		{"DPC", yn(req.DPC)},
		{"IPAdd", req.ClientIP},
		{"Password", cred.EncryptedSecret},
		{"PassKey", cred.SourcePasskey},
		{"Param1", ""},
		{"Param2", ""},
		{"Param3", ""},
	}
}

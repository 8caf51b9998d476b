package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is the direction of a mutual fund order.
type TransactionType string

const (
	TransactionPurchase   TransactionType = "PURCHASE"
	TransactionRedemption TransactionType = "REDEMPTION"
)

// OrderPlan distinguishes one-time orders from systematic investment plans.
type OrderPlan string

const (
	PlanLumpsum OrderPlan = "LUMPSUM"
	PlanSIP     OrderPlan = "SIP"
)

// BuySellType qualifies a purchase against an existing folio.
type BuySellType string

const (
	BuySellFresh      BuySellType = "FRESH"
	BuySellAdditional BuySellType = "ADDITIONAL"
)

// DPTxnMode is the depository transaction mode on the order leg.
type DPTxnMode string

const (
	DPTxnCDSL     DPTxnMode = "CDSL"
	DPTxnNSDL     DPTxnMode = "NSDL"
	DPTxnPhysical DPTxnMode = "PHYSICAL"
)

// SIPFrequency is the installment cadence of a systematic plan.
type SIPFrequency string

const (
	FrequencyMonthly   SIPFrequency = "MONTHLY"
	FrequencyQuarterly SIPFrequency = "QUARTERLY"
	FrequencyWeekly    SIPFrequency = "WEEKLY"
)

// OrderRequest is an immutable, caller-owned instruction for the exchange.
// Amounts and quantities travel as decimal strings because the wire format
// is decimal text; exactly one of Amount/Quantity may be set. RefNo is the
// caller's unique reference for the logical order — the gateway validates
// its shape but uniqueness remains the caller's responsibility.
type OrderRequest struct {
	RefNo           string
	TransactionType TransactionType
	Plan            OrderPlan
	ClientCode      string
	SchemeCode      string
	Amount          string // Rupees, e.g. "5000" or "5000.50"; "" when ordering by units
	Quantity        string // Units; "" when ordering by amount
	FolioNo         string
	BuySellType     BuySellType
	DPTxnMode       DPTxnMode
	AllRedeem       bool // Redeem every unit in the folio
	KYCConfirmed    bool
	MinRedeem       bool
	DPC             bool // Distributor physical confirmation
	EUIN            string
	EUINDeclared    bool
	SubBrokerARN    string
	Remarks         string
	ClientIP        string

	// Systematic plan fields, meaningful only when Plan == PlanSIP.
	StartDate       time.Time
	Frequency       SIPFrequency
	Installments    int
	MandateID       string
	FirstOrderToday bool
}

// OrderResult is the typed outcome of an accepted order-entry round-trip.
type OrderResult struct {
	RefNo           string `json:"ref_no"`
	ExchangeOrderID string `json:"exchange_order_id"`
	StatusCode      string `json:"status_code"`
	Remarks         string `json:"remarks"`
	Succeeded       bool   `json:"succeeded"`
}

// OrderStatus is the lifecycle state of a persisted order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusRejected  OrderStatus = "REJECTED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsTerminal returns true if the order is in a final state.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusRejected || s == OrderStatusCancelled
}

// Order is the persisted record of one logical order sent to the exchange.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	RefNo           string          `json:"ref_no"`
	ClientCode      string          `json:"client_code"`
	SchemeCode      string          `json:"scheme_code"`
	TransactionType TransactionType `json:"transaction_type"`
	Plan            OrderPlan       `json:"plan"`
	Amount          string          `json:"amount,omitempty"`
	Quantity        string          `json:"quantity,omitempty"`
	FolioNo         string          `json:"folio_no,omitempty"`
	Status          OrderStatus     `json:"status"`
	ExchangeOrderID string          `json:"exchange_order_id,omitempty"`
	Remarks         string          `json:"remarks,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

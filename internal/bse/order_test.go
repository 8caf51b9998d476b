package bse

import (
	"testing"
	"time"

	"starmf-gateway/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrderCodec() *OrderCodec {
	codec := NewOrderCodec(newTestParser(), "1809801", "10000")
	codec.now = func() time.Time {
		return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	}
	return codec
}

func testCredential() *domain.Credential {
	return &domain.Credential{
		EncryptedSecret: "enc-secret==",
		ObtainedAt:      time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		ValidUntil:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		SourcePasskey:   "PassKey123",
	}
}

func validPurchase() domain.OrderRequest {
	return domain.OrderRequest{
		RefNo:           "REF1001",
		TransactionType: domain.TransactionPurchase,
		Plan:            domain.PlanLumpsum,
		ClientCode:      "C001",
		SchemeCode:      "RMF-GR",
		Amount:          "5000",
		KYCConfirmed:    true,
		DPC:             true,
	}
}

func TestOrderCodec_Validate_AmountXorQuantity(t *testing.T) {
	codec := newTestOrderCodec()

	tests := []struct {
		name     string
		amount   string
		quantity string
		wantErr  bool
	}{
		{"amount only", "5000", "", false},
		{"quantity only", "", "12.345", false},
		{"both set", "5000", "12.345", true},
		{"neither set", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validPurchase()
			req.Amount = tt.amount
			req.Quantity = tt.quantity

			err := codec.Validate(req)
			if tt.wantErr {
				require.NotNil(t, err)
				assert.Equal(t, KindValidationError, err.Kind)
				assert.Contains(t, err.Message, "amount")
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestOrderCodec_Validate_FieldRules(t *testing.T) {
	codec := newTestOrderCodec()

	tests := []struct {
		name    string
		mutate  func(*domain.OrderRequest)
		wantMsg string
	}{
		{"missing ref no", func(r *domain.OrderRequest) { r.RefNo = "" }, "ref_no"},
		{"ref no too long", func(r *domain.OrderRequest) { r.RefNo = "A123456789012345678X" }, "ref_no"},
		{"ref no bad chars", func(r *domain.OrderRequest) { r.RefNo = "REF-01" }, "ref_no"},
		{"missing client", func(r *domain.OrderRequest) { r.ClientCode = "" }, "client_code"},
		{"missing scheme", func(r *domain.OrderRequest) { r.SchemeCode = "" }, "scheme_code"},
		{"bad transaction type", func(r *domain.OrderRequest) { r.TransactionType = "SWITCH" }, "transaction_type"},
		{"negative amount", func(r *domain.OrderRequest) { r.Amount = "-10" }, "amount"},
		{
			"redemption without folio",
			func(r *domain.OrderRequest) { r.TransactionType = domain.TransactionRedemption },
			"folio_no",
		},
		{
			"additional purchase without folio",
			func(r *domain.OrderRequest) { r.BuySellType = domain.BuySellAdditional },
			"folio_no",
		},
		{
			"all redeem on purchase",
			func(r *domain.OrderRequest) { r.AllRedeem = true },
			"all_redeem",
		},
		{
			"euin declared without euin",
			func(r *domain.OrderRequest) { r.EUINDeclared = true },
			"euin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validPurchase()
			tt.mutate(&req)

			err := codec.Validate(req)
			require.NotNil(t, err)
			assert.Equal(t, KindValidationError, err.Kind)
			assert.Contains(t, err.Message, tt.wantMsg, "error names the offending field")
		})
	}
}

func TestOrderCodec_Encode_Lumpsum(t *testing.T) {
	codec := newTestOrderCodec()

	op, params, err := codec.Encode(validPurchase(), testCredential())
	require.Nil(t, err)
	assert.Equal(t, opOrderEntry, op)

	byName := paramMap(params)
	assert.Equal(t, "NEW", byName["TransCode"])
	assert.Equal(t, "20260302-10000-REF1001", byName["TransNo"])
	assert.Equal(t, "1809801", byName["UserID"])
	assert.Equal(t, "10000", byName["MemberId"])
	assert.Equal(t, "P", byName["BuySell"])
	assert.Equal(t, "FRESH", byName["BuySellType"])
	assert.Equal(t, "P", byName["DPTxn"], "physical is the default depository mode")
	assert.Equal(t, "5000", byName["OrderVal"])
	assert.Equal(t, "", byName["Qty"])
	assert.Equal(t, "Y", byName["KYCStatus"])
	assert.Equal(t, "Y", byName["DPC"])
	assert.Equal(t, "N", byName["AllRedeem"])
	assert.Equal(t, "enc-secret==", byName["Password"])
	assert.Equal(t, "PassKey123", byName["PassKey"])

	// Fixed-length wire reference derived from the caller reference.
	assert.Equal(t, "000000000000REF1001", byName["RefNo"])
	assert.Len(t, byName["RefNo"], wireRefNoLen)

	// The parameter sequence itself is part of the contract.
	assert.Equal(t, "TransCode", params[0].Name)
	assert.Equal(t, "TransNo", params[1].Name)
	assert.Equal(t, "Parma3", params[len(params)-1].Name)
}

func TestOrderCodec_Encode_Redemption(t *testing.T) {
	codec := newTestOrderCodec()

	req := validPurchase()
	req.TransactionType = domain.TransactionRedemption
	req.FolioNo = "123456789/11"
	req.Amount = ""
	req.Quantity = "100.5"
	req.AllRedeem = true
	req.MinRedeem = true
	req.DPTxnMode = domain.DPTxnCDSL

	op, params, err := codec.Encode(req, testCredential())
	require.Nil(t, err)
	assert.Equal(t, opOrderEntry, op)

	byName := paramMap(params)
	assert.Equal(t, "R", byName["BuySell"])
	assert.Equal(t, "C", byName["DPTxn"])
	assert.Equal(t, "100.5", byName["Qty"])
	assert.Equal(t, "Y", byName["AllRedeem"])
	assert.Equal(t, "Y", byName["MinRedeem"])
	assert.Equal(t, "123456789/11", byName["FolioNo"])
}

func TestOrderCodec_Encode_SIP(t *testing.T) {
	codec := newTestOrderCodec()

	req := validPurchase()
	req.Plan = domain.PlanSIP
	req.RefNo = "SIP2001"
	req.StartDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	req.Frequency = domain.FrequencyMonthly
	req.Installments = 12
	req.MandateID = "MAND01"
	req.FirstOrderToday = true

	op, params, err := codec.Encode(req, testCredential())
	require.Nil(t, err)
	assert.Equal(t, opSIPOrderEntry, op)

	byName := paramMap(params)
	assert.Equal(t, "NEWSIP", byName["TransCode"])
	assert.Equal(t, "01/04/2026", byName["StartDate"])
	assert.Equal(t, "MONTHLY", byName["FrequencyType"])
	assert.Equal(t, "12", byName["NoOfInstallment"])
	assert.Equal(t, "5000", byName["InstallmentAmount"])
	assert.Equal(t, "MAND01", byName["MandateID"])
	assert.Equal(t, "Y", byName["FirstOrderFlag"])
}

func TestOrderCodec_Validate_SIPRules(t *testing.T) {
	codec := newTestOrderCodec()

	base := func() domain.OrderRequest {
		req := validPurchase()
		req.Plan = domain.PlanSIP
		req.StartDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		req.Frequency = domain.FrequencyMonthly
		req.Installments = 12
		return req
	}

	t.Run("redemption sip rejected", func(t *testing.T) {
		req := base()
		req.TransactionType = domain.TransactionRedemption
		req.FolioNo = "F1"
		err := codec.Validate(req)
		require.NotNil(t, err)
		assert.Contains(t, err.Message, "purchase-only")
	})

	t.Run("sip by quantity rejected", func(t *testing.T) {
		req := base()
		req.Amount = ""
		req.Quantity = "10"
		err := codec.Validate(req)
		require.NotNil(t, err)
	})

	t.Run("missing start date", func(t *testing.T) {
		req := base()
		req.StartDate = time.Time{}
		err := codec.Validate(req)
		require.NotNil(t, err)
		assert.Contains(t, err.Message, "start_date")
	})

	t.Run("zero installments", func(t *testing.T) {
		req := base()
		req.Installments = 0
		err := codec.Validate(req)
		require.NotNil(t, err)
		assert.Contains(t, err.Message, "installments")
	})
}

func TestOrderCodec_EncodeCancel(t *testing.T) {
	codec := newTestOrderCodec()

	op, params, err := codec.EncodeCancel("20260302000123", "C001", testCredential())
	require.Nil(t, err)
	assert.Equal(t, opCancelOrder, op)

	byName := paramMap(params)
	assert.Equal(t, "CXL", byName["TransCode"])
	assert.Equal(t, "20260302000123", byName["OrderId"])
	assert.Equal(t, "C001", byName["ClientCode"])

	_, _, err = codec.EncodeCancel("", "C001", testCredential())
	require.NotNil(t, err)
	assert.Equal(t, KindValidationError, err.Kind)
}

func TestOrderCodec_Decode(t *testing.T) {
	codec := newTestOrderCodec()

	result, err := codec.Decode("REF1001", "100|ORDER CONFIRMED|20260302000123")
	require.Nil(t, err)

	assert.True(t, result.Succeeded)
	assert.Equal(t, "REF1001", result.RefNo, "caller reference echoed back")
	assert.Equal(t, "20260302000123", result.ExchangeOrderID)
	assert.Equal(t, "ORDER CONFIRMED", result.Remarks)
}

func TestOrderCodec_Decode_Rejection(t *testing.T) {
	codec := newTestOrderCodec()

	result, err := codec.Decode("REF1001", "208|Duplicate order")
	assert.Nil(t, result)
	require.NotNil(t, err)
	assert.Equal(t, KindExchangeRejection, err.Kind)
	assert.Equal(t, "208", err.Code)
}

func paramMap(params []Param) map[string]string {
	m := make(map[string]string, len(params))
	for _, p := range params {
		m[p.Name] = p.Value
	}
	return m
}

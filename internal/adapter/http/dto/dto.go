package dto

import (
	"time"

	"starmf-gateway/internal/core/domain"
)

// RegisterRequest is the request body for API user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for API user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// ExchangeSessionRequest carries the caller's passkey for one exchange
// authentication. The passkey travels only in this request body; it is
// never persisted or read from configuration.
type ExchangeSessionRequest struct {
	Passkey string `json:"passkey" binding:"required,alphanum,max=50"`
}

// ExchangeSessionResponse reports the session window that was opened.
type ExchangeSessionResponse struct {
	ObtainedAt string `json:"obtained_at"`
	ValidUntil string `json:"valid_until"`
}

// OrderRequest is the request body for a lumpsum purchase or redemption.
type OrderRequest struct {
	RefNo           string  `json:"ref_no" binding:"required,alphanum,max=19"`
	TransactionType string  `json:"transaction_type" binding:"required,oneof=PURCHASE REDEMPTION"`
	ClientCode      string  `json:"client_code" binding:"required,safe_id,max=20"`
	SchemeCode      string  `json:"scheme_code" binding:"required,max=20"`
	Amount          string  `json:"amount,omitempty"`
	Quantity        string  `json:"quantity,omitempty"`
	FolioNo         string  `json:"folio_no,omitempty"`
	BuySellType     string  `json:"buy_sell_type,omitempty" binding:"omitempty,oneof=FRESH ADDITIONAL"`
	DPTxnMode       string  `json:"dp_txn_mode,omitempty" binding:"omitempty,oneof=CDSL NSDL PHYSICAL"`
	AllRedeem       bool    `json:"all_redeem,omitempty"`
	KYCConfirmed    bool    `json:"kyc_confirmed"`
	MinRedeem       bool    `json:"min_redeem,omitempty"`
	DPC             bool    `json:"dpc,omitempty"`
	EUIN            string  `json:"euin,omitempty"`
	EUINDeclared    bool    `json:"euin_declared,omitempty"`
	SubBrokerARN    string  `json:"sub_broker_arn,omitempty"`
	Remarks         *string `json:"remarks,omitempty"`
}

// SIPOrderRequest is the request body for a systematic investment plan.
type SIPOrderRequest struct {
	RefNo           string `json:"ref_no" binding:"required,alphanum,max=19"`
	ClientCode      string `json:"client_code" binding:"required,safe_id,max=20"`
	SchemeCode      string `json:"scheme_code" binding:"required,max=20"`
	Amount          string `json:"amount" binding:"required"`
	StartDate       string `json:"start_date" binding:"required,wire_date"`
	Frequency       string `json:"frequency" binding:"required,oneof=MONTHLY QUARTERLY WEEKLY"`
	Installments    int    `json:"installments" binding:"required,gt=0"`
	MandateID       string `json:"mandate_id" binding:"required,max=20"`
	FirstOrderToday bool   `json:"first_order_today,omitempty"`
	FolioNo         string `json:"folio_no,omitempty"`
	KYCConfirmed    bool   `json:"kyc_confirmed"`
	EUIN            string `json:"euin,omitempty"`
	EUINDeclared    bool   `json:"euin_declared,omitempty"`
	SubBrokerARN    string `json:"sub_broker_arn,omitempty"`
}

// OrderResponse is the response body for order state.
type OrderResponse struct {
	ID              string `json:"id"`
	RefNo           string `json:"ref_no"`
	ClientCode      string `json:"client_code"`
	SchemeCode      string `json:"scheme_code"`
	TransactionType string `json:"transaction_type"`
	Plan            string `json:"plan"`
	Amount          string `json:"amount,omitempty"`
	Quantity        string `json:"quantity,omitempty"`
	FolioNo         string `json:"folio_no,omitempty"`
	Status          string `json:"status"`
	ExchangeOrderID string `json:"exchange_order_id,omitempty"`
	Remarks         string `json:"remarks,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// OrderListResponse wraps a paginated order list.
type OrderListResponse struct {
	Items      []OrderResponse `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// BankAccount is one bank account entry on a registration request.
type BankAccount struct {
	AccountType string `json:"account_type" binding:"required,max=4"`
	AccountNo   string `json:"account_no" binding:"required,max=40"`
	MICRNo      string `json:"micr_no,omitempty" binding:"omitempty,micr"`
	IFSCCode    string `json:"ifsc_code" binding:"required,ifsc"`
	Default     bool   `json:"default,omitempty"`
}

// Nominee is one nominee entry on a registration request.
type Nominee struct {
	Name         string `json:"name" binding:"required,max=40"`
	Relationship string `json:"relationship" binding:"required,max=40"`
	Percentage   string `json:"percentage" binding:"required"`
	Minor        bool   `json:"minor,omitempty"`
	DOB          string `json:"dob,omitempty" binding:"omitempty,wire_date"`
	Guardian     string `json:"guardian,omitempty" binding:"omitempty,max=35"`
}

// ClientRegistrationRequest is the request body for client registration and
// modification. It exposes the commonly used subset of the exchange client
// master; dates are DD/MM/YYYY as the exchange consumes them.
type ClientRegistrationRequest struct {
	ClientCode string `json:"client_code" binding:"required,safe_id,max=20"`

	FirstName  string `json:"first_name" binding:"required,max=70"`
	MiddleName string `json:"middle_name,omitempty" binding:"omitempty,max=70"`
	LastName   string `json:"last_name,omitempty" binding:"omitempty,max=70"`
	TaxStatus  string `json:"tax_status" binding:"required,max=2"`
	Gender     string `json:"gender,omitempty" binding:"omitempty,oneof=M F O"`
	DOB        string `json:"dob" binding:"required,wire_date"`
	Occupation string `json:"occupation" binding:"required,max=2"`

	HoldingNature   string `json:"holding_nature" binding:"required,oneof=SI JO AS"`
	DividendPayMode string `json:"dividend_pay_mode" binding:"required,max=2"`

	SecondHolderFirstName string `json:"second_holder_first_name,omitempty" binding:"omitempty,max=70"`
	SecondHolderLastName  string `json:"second_holder_last_name,omitempty" binding:"omitempty,max=70"`
	SecondHolderDOB       string `json:"second_holder_dob,omitempty" binding:"omitempty,wire_date"`
	SecondHolderPAN       string `json:"second_holder_pan,omitempty" binding:"omitempty,pan"`

	GuardianFirstName string `json:"guardian_first_name,omitempty" binding:"omitempty,max=35"`
	GuardianLastName  string `json:"guardian_last_name,omitempty" binding:"omitempty,max=35"`
	GuardianPAN       string `json:"guardian_pan,omitempty" binding:"omitempty,pan"`

	PANExempt       bool   `json:"pan_exempt,omitempty"`
	PAN             string `json:"pan,omitempty" binding:"omitempty,pan"`
	ExemptCategory  string `json:"exempt_category,omitempty" binding:"omitempty,max=2"`
	KYCType         string `json:"kyc_type,omitempty" binding:"omitempty,max=1"`
	CKYCNumber      string `json:"ckyc_number,omitempty" binding:"omitempty,max=14"`
	AadhaarUpdated  bool   `json:"aadhaar_updated,omitempty"`
	PaperlessFlag   string `json:"paperless_flag,omitempty" binding:"omitempty,oneof=P Z"`

	ClientType string `json:"client_type" binding:"required,oneof=D P"`
	DefaultDP  string `json:"default_dp,omitempty" binding:"omitempty,oneof=CDSL NSDL"`
	CDSLDPID   string `json:"cdsl_dp_id,omitempty" binding:"omitempty,max=16"`
	CDSLCLTID  string `json:"cdsl_clt_id,omitempty" binding:"omitempty,max=16"`
	NSDLDPID   string `json:"nsdl_dp_id,omitempty" binding:"omitempty,max=8"`
	NSDLCLTID  string `json:"nsdl_clt_id,omitempty" binding:"omitempty,max=8"`

	BankAccounts []BankAccount `json:"bank_accounts" binding:"required,min=1,max=5,dive"`
	ChequeName   string        `json:"cheque_name,omitempty" binding:"omitempty,max=35"`

	Address1 string `json:"address1" binding:"required,max=40"`
	Address2 string `json:"address2,omitempty" binding:"omitempty,max=40"`
	Address3 string `json:"address3,omitempty" binding:"omitempty,max=40"`
	City     string `json:"city" binding:"required,max=35"`
	State    string `json:"state" binding:"required,max=2"`
	Pincode  string `json:"pincode" binding:"required,pincode"`
	Country  string `json:"country" binding:"required,max=35"`

	Email             string `json:"email" binding:"required,email,max=50"`
	Mobile            string `json:"mobile" binding:"required,in_mobile"`
	ResiPhone         string `json:"resi_phone,omitempty" binding:"omitempty,max=15"`
	OfficePhone       string `json:"office_phone,omitempty" binding:"omitempty,max=15"`
	CommunicationMode string `json:"communication_mode" binding:"required,oneof=P E M"`

	Nominees []Nominee `json:"nominees,omitempty" binding:"omitempty,max=3,dive"`

	// Modification only: the exact fields the exchange should treat as
	// mandatory for this MOD call.
	RequiredFields []string `json:"required_fields,omitempty"`
}

// ClientResponse is the response body for client registration state.
type ClientResponse struct {
	ID         string `json:"id"`
	ClientCode string `json:"client_code"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Status     string `json:"status"`
	Remarks    string `json:"remarks,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// ToOrderRequest converts the DTO into the domain order instruction.
func (r *OrderRequest) ToOrderRequest() domain.OrderRequest {
	req := domain.OrderRequest{
		RefNo:           r.RefNo,
		TransactionType: domain.TransactionType(r.TransactionType),
		Plan:            domain.PlanLumpsum,
		ClientCode:      r.ClientCode,
		SchemeCode:      r.SchemeCode,
		Amount:          r.Amount,
		Quantity:        r.Quantity,
		FolioNo:         r.FolioNo,
		BuySellType:     domain.BuySellType(r.BuySellType),
		DPTxnMode:       domain.DPTxnMode(r.DPTxnMode),
		AllRedeem:       r.AllRedeem,
		KYCConfirmed:    r.KYCConfirmed,
		MinRedeem:       r.MinRedeem,
		DPC:             r.DPC,
		EUIN:            r.EUIN,
		EUINDeclared:    r.EUINDeclared,
		SubBrokerARN:    r.SubBrokerARN,
	}
	if r.Remarks != nil {
		req.Remarks = *r.Remarks
	}
	return req
}

// ToOrderRequest converts the SIP DTO into the domain order instruction.
// StartDate is parsed from wire format; binding has already validated it.
func (r *SIPOrderRequest) ToOrderRequest() domain.OrderRequest {
	startDate, _ := time.Parse("02/01/2006", r.StartDate)
	return domain.OrderRequest{
		RefNo:           r.RefNo,
		TransactionType: domain.TransactionPurchase,
		Plan:            domain.PlanSIP,
		ClientCode:      r.ClientCode,
		SchemeCode:      r.SchemeCode,
		Amount:          r.Amount,
		FolioNo:         r.FolioNo,
		KYCConfirmed:    r.KYCConfirmed,
		EUIN:            r.EUIN,
		EUINDeclared:    r.EUINDeclared,
		SubBrokerARN:    r.SubBrokerARN,
		StartDate:       startDate,
		Frequency:       domain.SIPFrequency(r.Frequency),
		Installments:    r.Installments,
		MandateID:       r.MandateID,
		FirstOrderToday: r.FirstOrderToday,
	}
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

// ToRecord projects the registration DTO onto the exchange client master
// record. Untouched master fields stay empty, which the wire form renders
// as empty positions.
func (r *ClientRegistrationRequest) ToRecord() domain.ClientRegistrationRecord {
	rec := domain.ClientRegistrationRecord{
		ClientCode:              r.ClientCode,
		PrimaryHolderFirstName:  r.FirstName,
		PrimaryHolderMiddleName: r.MiddleName,
		PrimaryHolderLastName:   r.LastName,
		TaxStatus:               r.TaxStatus,
		Gender:                  r.Gender,
		PrimaryHolderDOB:        r.DOB,
		OccupationCode:          r.Occupation,
		HoldingNature:           r.HoldingNature,
		DividendPayMode:         r.DividendPayMode,

		SecondHolderFirstName: r.SecondHolderFirstName,
		SecondHolderLastName:  r.SecondHolderLastName,
		SecondHolderDOB:       r.SecondHolderDOB,
		SecondHolderPAN:       r.SecondHolderPAN,

		GuardianFirstName: r.GuardianFirstName,
		GuardianLastName:  r.GuardianLastName,
		GuardianPAN:       r.GuardianPAN,

		PrimaryHolderPANExempt:      yn(r.PANExempt),
		PrimaryHolderPAN:            r.PAN,
		PrimaryHolderExemptCategory: r.ExemptCategory,
		PrimaryHolderKYCType:        r.KYCType,
		PrimaryHolderCKYCNumber:     r.CKYCNumber,
		AadhaarUpdated:              yn(r.AadhaarUpdated),
		PaperlessFlag:               r.PaperlessFlag,

		ClientType: r.ClientType,
		DefaultDP:  r.DefaultDP,
		CDSLDPID:   r.CDSLDPID,
		CDSLCLTID:  r.CDSLCLTID,
		NSDLDPID:   r.NSDLDPID,
		NSDLCLTID:  r.NSDLCLTID,
		ChequeName: r.ChequeName,

		Address1: r.Address1,
		Address2: r.Address2,
		Address3: r.Address3,
		City:     r.City,
		State:    r.State,
		Pincode:  r.Pincode,
		Country:  r.Country,

		Email:             r.Email,
		IndianMobileNo:    r.Mobile,
		ResiPhone:         r.ResiPhone,
		OfficePhone:       r.OfficePhone,
		CommunicationMode: r.CommunicationMode,
	}

	setBank := func(acct BankAccount, typ, no, micr, ifsc, def *string) {
		*typ = acct.AccountType
		*no = acct.AccountNo
		*micr = acct.MICRNo
		*ifsc = acct.IFSCCode
		*def = yn(acct.Default)
	}
	banks := []struct{ typ, no, micr, ifsc, def *string }{
		{&rec.AccountType1, &rec.AccountNo1, &rec.MICRNo1, &rec.IFSCCode1, &rec.DefaultBankFlag1},
		{&rec.AccountType2, &rec.AccountNo2, &rec.MICRNo2, &rec.IFSCCode2, &rec.DefaultBankFlag2},
		{&rec.AccountType3, &rec.AccountNo3, &rec.MICRNo3, &rec.IFSCCode3, &rec.DefaultBankFlag3},
		{&rec.AccountType4, &rec.AccountNo4, &rec.MICRNo4, &rec.IFSCCode4, &rec.DefaultBankFlag4},
		{&rec.AccountType5, &rec.AccountNo5, &rec.MICRNo5, &rec.IFSCCode5, &rec.DefaultBankFlag5},
	}
	for i, acct := range r.BankAccounts {
		if i >= len(banks) {
			break
		}
		setBank(acct, banks[i].typ, banks[i].no, banks[i].micr, banks[i].ifsc, banks[i].def)
	}

	if len(r.Nominees) > 0 {
		n := r.Nominees[0]
		rec.Nominee1Name = n.Name
		rec.Nominee1Relationship = n.Relationship
		rec.Nominee1Percentage = n.Percentage
		rec.Nominee1MinorFlag = yn(n.Minor)
		rec.Nominee1DOB = n.DOB
		rec.Nominee1Guardian = n.Guardian
	}
	if len(r.Nominees) > 1 {
		n := r.Nominees[1]
		rec.Nominee2Name = n.Name
		rec.Nominee2Relationship = n.Relationship
		rec.Nominee2Percentage = n.Percentage
		rec.Nominee2MinorFlag = yn(n.Minor)
		rec.Nominee2DOB = n.DOB
		rec.Nominee2Guardian = n.Guardian
	}
	if len(r.Nominees) > 2 {
		n := r.Nominees[2]
		rec.Nominee3Name = n.Name
		rec.Nominee3Relationship = n.Relationship
		rec.Nominee3Percentage = n.Percentage
		rec.Nominee3MinorFlag = yn(n.Minor)
		rec.Nominee3DOB = n.DOB
		rec.Nominee3Guardian = n.Guardian
	}

	return rec
}

// FromOrder builds the order response DTO.
func FromOrder(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:              order.ID.String(),
		RefNo:           order.RefNo,
		ClientCode:      order.ClientCode,
		SchemeCode:      order.SchemeCode,
		TransactionType: string(order.TransactionType),
		Plan:            string(order.Plan),
		Amount:          order.Amount,
		Quantity:        order.Quantity,
		FolioNo:         order.FolioNo,
		Status:          string(order.Status),
		ExchangeOrderID: order.ExchangeOrderID,
		Remarks:         order.Remarks,
		CreatedAt:       order.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// FromClient builds the client response DTO.
func FromClient(client *domain.Client) ClientResponse {
	return ClientResponse{
		ID:         client.ID.String(),
		ClientCode: client.ClientCode,
		FirstName:  client.FirstName,
		LastName:   client.LastName,
		Email:      client.Email,
		Status:     string(client.Status),
		Remarks:    client.Remarks,
		CreatedAt:  client.CreatedAt.UTC().Format(time.RFC3339),
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationType selects the exchange registration mode.
type RegistrationType string

const (
	RegistrationNew    RegistrationType = "NEW"
	RegistrationModify RegistrationType = "MOD"
)

// Holding nature codes as the exchange defines them.
const (
	HoldingSingle           = "SI"
	HoldingJoint            = "JO"
	HoldingAnyoneOrSurvivor = "AS"
)

// Depository selection for demat clients.
const (
	DepositoryCDSL = "CDSL"
	DepositoryNSDL = "NSDL"
)

// Client type codes.
const (
	ClientTypeDemat    = "D"
	ClientTypePhysical = "P"
)

// ClientRegistrationRecord carries every field of the exchange's client
// master. The exchange consumes it as a 131-position ordered parameter
// string; the registration codec owns that projection. All values are wire
// text: dates are DD/MM/YYYY, flags are "Y"/"N", unset fields are "".
type ClientRegistrationRecord struct {
	ClientCode string

	// Primary holder identity.
	PrimaryHolderFirstName  string
	PrimaryHolderMiddleName string
	PrimaryHolderLastName   string
	TaxStatus               string
	Gender                  string
	PrimaryHolderDOB        string
	OccupationCode          string
	HoldingNature           string
	DividendPayMode         string

	// Joint holders and guardian.
	SecondHolderFirstName  string
	SecondHolderMiddleName string
	SecondHolderLastName   string
	ThirdHolderFirstName   string
	ThirdHolderMiddleName  string
	ThirdHolderLastName    string
	SecondHolderDOB        string
	ThirdHolderDOB         string
	GuardianFirstName      string
	GuardianMiddleName     string
	GuardianLastName       string
	GuardianDOB            string

	// PAN and exemption.
	PrimaryHolderPANExempt      string
	SecondHolderPANExempt       string
	ThirdHolderPANExempt        string
	GuardianPANExempt           string
	PrimaryHolderPAN            string
	SecondHolderPAN             string
	ThirdHolderPAN              string
	GuardianPAN                 string
	PrimaryHolderExemptCategory string
	SecondHolderExemptCategory  string
	ThirdHolderExemptCategory   string
	GuardianExemptCategory      string

	// Demat details.
	ClientType string
	PMS        string
	DefaultDP  string
	CDSLDPID   string
	CDSLCLTID  string
	CMBPId     string
	NSDLDPID   string
	NSDLCLTID  string

	// Up to five bank accounts.
	AccountType1, AccountNo1, MICRNo1, IFSCCode1, DefaultBankFlag1 string
	AccountType2, AccountNo2, MICRNo2, IFSCCode2, DefaultBankFlag2 string
	AccountType3, AccountNo3, MICRNo3, IFSCCode3, DefaultBankFlag3 string
	AccountType4, AccountNo4, MICRNo4, IFSCCode4, DefaultBankFlag4 string
	AccountType5, AccountNo5, MICRNo5, IFSCCode5, DefaultBankFlag5 string
	ChequeName                                                     string

	// Indian address and contact.
	Address1          string
	Address2          string
	Address3          string
	City              string
	State             string
	Pincode           string
	Country           string
	ResiPhone         string
	ResiFax           string
	OfficePhone       string
	OfficeFax         string
	Email             string
	CommunicationMode string

	// Foreign address, for NRI tax statuses.
	ForeignAddress1         string
	ForeignAddress2         string
	ForeignAddress3         string
	ForeignAddressCity      string
	ForeignAddressPincode   string
	ForeignAddressState     string
	ForeignAddressCountry   string
	ForeignAddressResiPhone string
	ForeignAddressFax       string
	ForeignAddressOffPhone  string
	ForeignAddressOffFax    string
	IndianMobileNo          string

	// Nominees.
	Nominee1Name         string
	Nominee1Relationship string
	Nominee1Percentage   string
	Nominee1MinorFlag    string
	Nominee1DOB          string
	Nominee1Guardian     string
	Nominee2Name         string
	Nominee2Relationship string
	Nominee2Percentage   string
	Nominee2DOB          string
	Nominee2MinorFlag    string
	Nominee2Guardian     string
	Nominee3Name         string
	Nominee3Relationship string
	Nominee3Percentage   string
	Nominee3DOB          string
	Nominee3MinorFlag    string
	Nominee3Guardian     string

	// KYC.
	PrimaryHolderKYCType        string
	PrimaryHolderCKYCNumber     string
	SecondHolderKYCType         string
	SecondHolderCKYCNumber      string
	ThirdHolderKYCType          string
	ThirdHolderCKYCNumber       string
	GuardianKYCType             string
	GuardianCKYCNumber          string
	PrimaryHolderKRAExemptRefNo string
	SecondHolderKRAExemptRefNo  string
	ThirdHolderKRAExemptRefNo   string
	GuardianKRAExemptRefNo      string

	// Declarations and misc.
	AadhaarUpdated        string
	MapinId               string
	PaperlessFlag         string
	LEINo                 string
	LEIValidity           string
	MobileDeclarationFlag string
	EmailDeclarationFlag  string
	Filler3               string
}

// RegistrationOptions carries the caller-supplied policy for one
// registration call. RequiredFields overrides the per-type default; the
// codec does not decide modify-mode requirements itself.
type RegistrationOptions struct {
	Type           RegistrationType
	RequiredFields []string
	Filler1        string
	Filler2        string
}

// RegistrationResult is the typed outcome of a client registration call.
type RegistrationResult struct {
	ClientCode string `json:"client_code"`
	StatusCode string `json:"status_code"`
	Remarks    string `json:"remarks"`
	Succeeded  bool   `json:"succeeded"`
}

// ClientStatus is the lifecycle state of a persisted client record.
type ClientStatus string

const (
	ClientStatusPending    ClientStatus = "PENDING"
	ClientStatusRegistered ClientStatus = "REGISTERED"
	ClientStatusRejected   ClientStatus = "REJECTED"
)

// Client is the persisted registration state for one exchange client code.
type Client struct {
	ID         uuid.UUID    `json:"id"`
	ClientCode string       `json:"client_code"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name,omitempty"`
	Email      string       `json:"email,omitempty"`
	Status     ClientStatus `json:"status"`
	Remarks    string       `json:"remarks,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

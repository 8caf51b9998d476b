package bse

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"starmf-gateway/internal/core/domain"
)

// registrationFieldOrder is the exchange's client-master schema: exactly
// 131 positions, parsed by position alone. The order below is the contract;
// it is defined once here and must never be rearranged. Names match the
// fields of domain.ClientRegistrationRecord, which a package test enforces.
var registrationFieldOrder = []string{
	"ClientCode",
	"PrimaryHolderFirstName",
	"PrimaryHolderMiddleName",
	"PrimaryHolderLastName",
	"TaxStatus",
	"Gender",
	"PrimaryHolderDOB",
	"OccupationCode",
	"HoldingNature",
	"DividendPayMode",
	"SecondHolderFirstName",
	"SecondHolderMiddleName",
	"SecondHolderLastName",
	"ThirdHolderFirstName",
	"ThirdHolderMiddleName",
	"ThirdHolderLastName",
	"SecondHolderDOB",
	"ThirdHolderDOB",
	"GuardianFirstName",
	"GuardianMiddleName",
	"GuardianLastName",
	"GuardianDOB",
	"PrimaryHolderPANExempt",
	"SecondHolderPANExempt",
	"ThirdHolderPANExempt",
	"GuardianPANExempt",
	"PrimaryHolderPAN",
	"SecondHolderPAN",
	"ThirdHolderPAN",
	"GuardianPAN",
	"PrimaryHolderExemptCategory",
	"SecondHolderExemptCategory",
	"ThirdHolderExemptCategory",
	"GuardianExemptCategory",
	"ClientType",
	"PMS",
	"DefaultDP",
	"CDSLDPID",
	"CDSLCLTID",
	"CMBPId",
	"NSDLDPID",
	"NSDLCLTID",
	"AccountType1",
	"AccountNo1",
	"MICRNo1",
	"IFSCCode1",
	"DefaultBankFlag1",
	"AccountType2",
	"AccountNo2",
	"MICRNo2",
	"IFSCCode2",
	"DefaultBankFlag2",
	"AccountType3",
	"AccountNo3",
	"MICRNo3",
	"IFSCCode3",
	"DefaultBankFlag3",
	"AccountType4",
	"AccountNo4",
	"MICRNo4",
	"IFSCCode4",
	"DefaultBankFlag4",
	"AccountType5",
	"AccountNo5",
	"MICRNo5",
	"IFSCCode5",
	"DefaultBankFlag5",
	"ChequeName",
	"Address1",
	"Address2",
	"Address3",
	"City",
	"State",
	"Pincode",
	"Country",
	"ResiPhone",
	"ResiFax",
	"OfficePhone",
	"OfficeFax",
	"Email",
	"CommunicationMode",
	"ForeignAddress1",
	"ForeignAddress2",
	"ForeignAddress3",
	"ForeignAddressCity",
	"ForeignAddressPincode",
	"ForeignAddressState",
	"ForeignAddressCountry",
	"ForeignAddressResiPhone",
	"ForeignAddressFax",
	"ForeignAddressOffPhone",
	"ForeignAddressOffFax",
	"IndianMobileNo",
	"Nominee1Name",
	"Nominee1Relationship",
	"Nominee1Percentage",
	"Nominee1MinorFlag",
	"Nominee1DOB",
	"Nominee1Guardian",
	"Nominee2Name",
	"Nominee2Relationship",
	"Nominee2Percentage",
	"Nominee2DOB",
	"Nominee2MinorFlag",
	"Nominee2Guardian",
	"Nominee3Name",
	"Nominee3Relationship",
	"Nominee3Percentage",
	"Nominee3DOB",
	"Nominee3MinorFlag",
	"Nominee3Guardian",
	"PrimaryHolderKYCType",
	"PrimaryHolderCKYCNumber",
	"SecondHolderKYCType",
	"SecondHolderCKYCNumber",
	"ThirdHolderKYCType",
	"ThirdHolderCKYCNumber",
	"GuardianKYCType",
	"GuardianCKYCNumber",
	"PrimaryHolderKRAExemptRefNo",
	"SecondHolderKRAExemptRefNo",
	"ThirdHolderKRAExemptRefNo",
	"GuardianKRAExemptRefNo",
	"AadhaarUpdated",
	"MapinId",
	"PaperlessFlag",
	"LEINo",
	"LEIValidity",
	"MobileDeclarationFlag",
	"EmailDeclarationFlag",
	"Filler3",
}

// RegistrationFieldCount is the number of positions in the wire schema.
const RegistrationFieldCount = 131

// MinimumNewFields is the default required-field policy for NEW
// registrations, per the exchange's minimum client master.
var MinimumNewFields = []string{
	"ClientCode",
	"PrimaryHolderFirstName",
	"TaxStatus",
	"Gender",
	"PrimaryHolderDOB",
	"OccupationCode",
	"HoldingNature",
	"DividendPayMode",
	"PrimaryHolderPANExempt",
	"AccountType1",
	"AccountNo1",
	"MICRNo1",
	"IFSCCode1",
	"DefaultBankFlag1",
	"Address1",
	"City",
	"State",
	"Pincode",
	"Country",
	"Email",
	"CommunicationMode",
	"MobileDeclarationFlag",
	"EmailDeclarationFlag",
}

// MinimumModifyFields is the default policy for MOD requests: the exchange
// keys the modification on the client code and accepts sparse updates.
var MinimumModifyFields = []string{"ClientCode"}

// RegistrationCodec validates a ClientRegistrationRecord and serializes it
// into the 131-position parameter string plus its outer envelope.
type RegistrationCodec struct {
	userID     string
	memberCode string
	now        func() time.Time
}

// NewRegistrationCodec creates a codec bound to the member's identifiers.
func NewRegistrationCodec(userID, memberCode string) *RegistrationCodec {
	return &RegistrationCodec{userID: userID, memberCode: memberCode, now: time.Now}
}

// WireForm projects the record onto the ordered schema and joins with the
// pipe delimiter. Unset fields project as "", and trailing empties are
// kept: the output always has exactly 131 positions.
func (c *RegistrationCodec) WireForm(rec domain.ClientRegistrationRecord) string {
	v := reflect.ValueOf(rec)
	fields := make([]string, len(registrationFieldOrder))
	for i, name := range registrationFieldOrder {
		fields[i] = strings.TrimSpace(v.FieldByName(name).String())
	}
	return strings.Join(fields, wireDelimiter)
}

// FromWireForm decodes a parameter string produced against the same schema
// back into a record. Surplus positions beyond the schema are ignored.
func (c *RegistrationCodec) FromWireForm(param string) domain.ClientRegistrationRecord {
	var rec domain.ClientRegistrationRecord
	v := reflect.ValueOf(&rec).Elem()
	for i, value := range strings.Split(param, wireDelimiter) {
		if i >= len(registrationFieldOrder) {
			break
		}
		v.FieldByName(registrationFieldOrder[i]).SetString(value)
	}
	return rec
}

// Envelope validates the record under opts and wraps the projected
// parameter string with the session credential into the outer envelope.
func (c *RegistrationCodec) Envelope(rec domain.ClientRegistrationRecord, cred *domain.Credential, opts domain.RegistrationOptions) (*RegistrationEnvelope, *ErrorRecord) {
	regnType := opts.Type
	if regnType == "" {
		regnType = domain.RegistrationNew
	}
	if regnType != domain.RegistrationNew && regnType != domain.RegistrationModify {
		return nil, newValidationError("registration_type", "must be NEW or MOD")
	}
	if err := c.Validate(rec, regnType, opts.RequiredFields); err != nil {
		return nil, err
	}
	return &RegistrationEnvelope{
		UserID:     c.userID,
		MemberCode: c.memberCode,
		Password:   cred.EncryptedSecret,
		RegnType:   string(regnType),
		Param:      c.WireForm(rec),
		Filler1:    opts.Filler1,
		Filler2:    opts.Filler2,
	}, nil
}

// Validate applies the required-field policy and every conditional
// dependency before serialization. Violations name the unmet dependency,
// not just the missing field.
func (c *RegistrationCodec) Validate(rec domain.ClientRegistrationRecord, regnType domain.RegistrationType, required []string) *ErrorRecord {
	if required == nil {
		if regnType == domain.RegistrationModify {
			required = MinimumModifyFields
		} else {
			required = MinimumNewFields
		}
	}

	v := reflect.ValueOf(rec)
	for _, name := range required {
		fv := v.FieldByName(name)
		if !fv.IsValid() {
			return newValidationError(name, "not a schema field")
		}
		if strings.TrimSpace(fv.String()) == "" {
			return newValidationError(name, "required")
		}
	}

	if err := c.validateHolders(rec); err != nil {
		return err
	}
	if err := c.validatePAN(rec); err != nil {
		return err
	}
	if err := c.validateDemat(rec); err != nil {
		return err
	}
	return c.validateFormats(rec)
}

func (c *RegistrationCodec) validateHolders(rec domain.ClientRegistrationRecord) *ErrorRecord {
	switch rec.HoldingNature {
	case domain.HoldingJoint, domain.HoldingAnyoneOrSurvivor:
		if rec.SecondHolderFirstName == "" {
			return newValidationError("SecondHolderFirstName",
				"required when HoldingNature is "+rec.HoldingNature)
		}
		if rec.SecondHolderDOB == "" {
			return newValidationError("SecondHolderDOB",
				"required when HoldingNature is "+rec.HoldingNature)
		}
	}

	// A minor primary holder needs a guardian on record.
	if rec.PrimaryHolderDOB != "" {
		if dob, err := time.Parse(wireDateLayout, rec.PrimaryHolderDOB); err == nil {
			if c.now().Before(dob.AddDate(18, 0, 0)) {
				if rec.GuardianFirstName == "" {
					return newValidationError("GuardianFirstName",
						"required when the primary holder is a minor")
				}
				if rec.GuardianDOB == "" {
					return newValidationError("GuardianDOB",
						"required when the primary holder is a minor")
				}
			}
		}
	}
	return nil
}

func (c *RegistrationCodec) validatePAN(rec domain.ClientRegistrationRecord) *ErrorRecord {
	holders := []struct {
		label, exempt, pan, category string
	}{
		{"PrimaryHolder", rec.PrimaryHolderPANExempt, rec.PrimaryHolderPAN, rec.PrimaryHolderExemptCategory},
		{"SecondHolder", rec.SecondHolderPANExempt, rec.SecondHolderPAN, rec.SecondHolderExemptCategory},
		{"ThirdHolder", rec.ThirdHolderPANExempt, rec.ThirdHolderPAN, rec.ThirdHolderExemptCategory},
		{"Guardian", rec.GuardianPANExempt, rec.GuardianPAN, rec.GuardianExemptCategory},
	}
	for _, h := range holders {
		// Only holders present on the record are judged; absence of the
		// holder shows as all three fields empty.
		if h.exempt == "" && h.pan == "" && h.category == "" {
			continue
		}
		switch h.exempt {
		case "Y":
			if h.category == "" {
				return newValidationError(h.label+"ExemptCategory",
					"required when "+h.label+"PANExempt is Y")
			}
		default:
			if h.pan == "" {
				return newValidationError(h.label+"PAN",
					"required unless "+h.label+"PANExempt is Y")
			}
		}
		if h.pan != "" && !validPAN(h.pan) {
			return newValidationError(h.label+"PAN", "must match AAAAA9999A")
		}
	}
	return nil
}

func (c *RegistrationCodec) validateDemat(rec domain.ClientRegistrationRecord) *ErrorRecord {
	if rec.ClientType != domain.ClientTypeDemat {
		return nil
	}
	switch rec.DefaultDP {
	case domain.DepositoryCDSL:
		if rec.CDSLDPID == "" || rec.CDSLCLTID == "" {
			return newValidationError("CDSLDPID",
				"CDSLDPID and CDSLCLTID required when ClientType is D and DefaultDP is CDSL")
		}
	case domain.DepositoryNSDL:
		if rec.NSDLDPID == "" || rec.NSDLCLTID == "" {
			return newValidationError("NSDLDPID",
				"NSDLDPID and NSDLCLTID required when ClientType is D and DefaultDP is NSDL")
		}
	default:
		return newValidationError("DefaultDP",
			"must be CDSL or NSDL when ClientType is D")
	}
	return nil
}

func (c *RegistrationCodec) validateFormats(rec domain.ClientRegistrationRecord) *ErrorRecord {
	dates := map[string]string{
		"PrimaryHolderDOB": rec.PrimaryHolderDOB,
		"SecondHolderDOB":  rec.SecondHolderDOB,
		"ThirdHolderDOB":   rec.ThirdHolderDOB,
		"GuardianDOB":      rec.GuardianDOB,
		"LEIValidity":      rec.LEIValidity,
	}
	for name, value := range dates {
		if value != "" && !validWireDate(value) {
			return newValidationError(name, "must be DD/MM/YYYY")
		}
	}

	if rec.IFSCCode1 != "" && !validIFSC(rec.IFSCCode1) {
		return newValidationError("IFSCCode1", "must match AAAA0XXXXXX")
	}
	if rec.MICRNo1 != "" && !validMICR(rec.MICRNo1) {
		return newValidationError("MICRNo1", "must be 9 digits")
	}
	if rec.Pincode != "" && !validPincode(rec.Pincode) {
		return newValidationError("Pincode", "must be 6 digits")
	}
	if rec.IndianMobileNo != "" && !validMobile(rec.IndianMobileNo) {
		return newValidationError("IndianMobileNo", "must be a 10-digit Indian mobile number")
	}
	if rec.Email != "" && !strings.Contains(rec.Email, "@") {
		return newValidationError("Email", "must be an email address")
	}

	flags := map[string]string{
		"PrimaryHolderPANExempt": rec.PrimaryHolderPANExempt,
		"DefaultBankFlag1":       rec.DefaultBankFlag1,
		"MobileDeclarationFlag":  rec.MobileDeclarationFlag,
		"EmailDeclarationFlag":   rec.EmailDeclarationFlag,
	}
	for name, value := range flags {
		if value != "" && value != "Y" && value != "N" {
			return newValidationError(name, "must be Y or N")
		}
	}
	return nil
}

// registrationReply is the JSON body the registration endpoint returns.
type registrationReply struct {
	Status  string `json:"Status"`
	Remarks string `json:"Remarks"`
	Filler1 string `json:"Filler1"`
	Filler2 string `json:"Filler2"`
}

// DecodeReply interprets the registration endpoint's response. The body is
// JSON in the current contract; older deployments answered with the pipe
// dialect, so that is kept as a fallback.
func (c *RegistrationCodec) DecodeReply(raw string, parser *ResponseParser, clientCode string) (*domain.RegistrationResult, *ErrorRecord) {
	var reply registrationReply
	if err := json.Unmarshal([]byte(raw), &reply); err == nil && reply.Status != "" {
		if reply.Status != StatusSuccess {
			return nil, parser.classifier.ClassifyStatus(reply.Status, reply.Remarks)
		}
		return &domain.RegistrationResult{
			ClientCode: clientCode,
			StatusCode: reply.Status,
			Remarks:    reply.Remarks,
			Succeeded:  true,
		}, nil
	}

	result, wireErr := parser.Parse(raw)
	if wireErr != nil {
		return nil, wireErr
	}
	return &domain.RegistrationResult{
		ClientCode: clientCode,
		StatusCode: result.StatusCode,
		Remarks:    result.Remarks,
		Succeeded:  true,
	}, nil
}

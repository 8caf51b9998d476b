package bse

import (
	"regexp"
	"strconv"
	"time"
)

// Wire-format validators for exchange fields. Patterns follow the
// exchange's published field specifications.
var (
	refNoPattern   = regexp.MustCompile(`^[A-Za-z0-9]{1,19}$`)
	passkeyPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	panPattern     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscPattern    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	micrPattern    = regexp.MustCompile(`^[0-9]{9}$`)
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
	mobilePattern  = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

// wireDateLayout is the exchange's date format (DD/MM/YYYY).
const wireDateLayout = "02/01/2006"

func validRefNo(ref string) bool {
	return refNoPattern.MatchString(ref)
}

func validPasskey(passkey string) bool {
	return passkeyPattern.MatchString(passkey)
}

func validPAN(pan string) bool {
	return panPattern.MatchString(pan)
}

func validIFSC(code string) bool {
	return ifscPattern.MatchString(code)
}

func validMICR(micr string) bool {
	return micrPattern.MatchString(micr)
}

func validPincode(pin string) bool {
	return pincodePattern.MatchString(pin)
}

func validMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}

func validWireDate(s string) bool {
	_, err := time.Parse(wireDateLayout, s)
	return err == nil
}

// validAmount accepts positive decimal text, the only numeric form the
// exchange takes.
func validAmount(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v > 0
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

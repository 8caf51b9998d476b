package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Field patterns as the exchange publishes them.
var (
	safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
	panRe        = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	ifscRe       = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	micrRe       = regexp.MustCompile(`^[0-9]{9}$`)
	pincodeRe    = regexp.MustCompile(`^[0-9]{6}$`)
	mobileRe     = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
		_ = v.RegisterValidation("pan", validatePAN)
		_ = v.RegisterValidation("ifsc", validateIFSC)
		_ = v.RegisterValidation("micr", validateMICR)
		_ = v.RegisterValidation("pincode", validatePincode)
		_ = v.RegisterValidation("in_mobile", validateIndianMobile)
		_ = v.RegisterValidation("wire_date", validateWireDate)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

func validatePAN(fl validator.FieldLevel) bool {
	return panRe.MatchString(fl.Field().String())
}

func validateIFSC(fl validator.FieldLevel) bool {
	return ifscRe.MatchString(fl.Field().String())
}

func validateMICR(fl validator.FieldLevel) bool {
	return micrRe.MatchString(fl.Field().String())
}

func validatePincode(fl validator.FieldLevel) bool {
	return pincodeRe.MatchString(fl.Field().String())
}

func validateIndianMobile(fl validator.FieldLevel) bool {
	return mobileRe.MatchString(fl.Field().String())
}

// validateWireDate accepts DD/MM/YYYY, the exchange's only date format.
func validateWireDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("02/01/2006", fl.Field().String())
	return err == nil
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

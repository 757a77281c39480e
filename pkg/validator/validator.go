package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// e164Pattern matches strict E.164 numbers: "+", a leading digit 1-9,
// then up to 14 further digits.
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{0,14}$`)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("e164", func(fl validator.FieldLevel) bool {
		return IsE164(fl.Field().String())
	})
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// IsE164 reports whether the given phone number is in strict E.164 form
func IsE164(number string) bool {
	return e164Pattern.MatchString(number)
}

package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// Letters, digits, spaces and common punctuation: . ' - / & ( ) ,
	nameRegex = regexp.MustCompile(`^[\p{L}\p{M}0-9 .'/&(),-]+$`)
)

// New returns a validator with the project's custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
}

// ValidName validates that a string contains only valid name characters
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // use required if needed
	}
	return nameRegex.MatchString(val)
}

package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// Letters, spaces and name punctuation: . ' -
	nameRegex = regexp.MustCompile(`^[\p{L}\p{M} .'-]+$`)

	// Digits with optional leading + and common separators
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-.]+$`)
)

const (
	minPhoneDigits = 7
	maxPhoneLength = 20
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
}

// ValidName rejects digits and symbols. Empty passes; use required for presence.
func ValidName(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" {
		return true
	}
	return nameRegex.MatchString(val)
}

// ValidPhone accepts formatted numbers up to 20 characters with at least 7 digits
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return IsPhone(val)
}

func IsPhone(val string) bool {
	if len(val) > maxPhoneLength || !phoneRegex.MatchString(val) {
		return false
	}
	digits := 0
	for _, r := range val {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= minPhoneDigits
}

// NoEmoji rejects emoji and other symbol runes
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

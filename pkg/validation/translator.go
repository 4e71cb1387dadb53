package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Validator bundles a validator with English messages keyed by JSON field name
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var customMessages = map[string]string{
	"valid_name":  "{0} may only contain letters, spaces and . ' -",
	"valid_phone": "{0} must be a valid phone number (7 to 20 characters)",
	"no_emoji":    "{0} must not contain emoji or symbols",
	"datetime":    "{0} must be a date in YYYY-MM-DD format",
}

func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	RegisterValidators(v)

	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}
	for tag, text := range customMessages {
		tag, text := tag, text
		err := v.RegisterTranslation(tag, trans, func(t ut.Translator) error {
			return t.Add(tag, text, true)
		}, func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field())
			return msg
		})
		if err != nil {
			return nil, err
		}
	}
	return &Validator{validate: v, translator: trans}, nil
}

// MustNew panics when translations cannot be registered
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Struct validates s and returns field messages, nil when valid
func (v *Validator) Struct(s any) map[string]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return v.FieldErrors(err)
}

// FieldErrors converts validator errors into field -> message
func (v *Validator) FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"non_field_errors": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out
}

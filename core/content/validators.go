package content

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vsip/core"
)

// InitValidators registers content library validations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	if err := validate.RegisterValidation("content_subject", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case SubjectReading, SubjectMath:
			return true
		}
		return false
	}); err != nil {
		panic(err)
	}
	core.RegisterCustomTranslation(validate, translator, "content_subject", "{0} must be one of: reading, math")

	if err := validate.RegisterValidation("content_locale", func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, loc := range Locales {
			if val == loc {
				return true
			}
		}
		return false
	}); err != nil {
		panic(err)
	}
	core.RegisterCustomTranslation(validate, translator, "content_locale", "{0} is not a supported locale")
}

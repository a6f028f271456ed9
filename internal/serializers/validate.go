package serializers

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/monocle-dev/timetrack/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

// DefaultCurrency is applied to contracts created without a currency.
var DefaultCurrency = models.DefaultCurrency

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(JSONFieldName)
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

func isEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func isCurrency(code string) bool {
	return validate.Var(code, "required,iso4217") == nil
}

func isUsername(s string) bool {
	return validate.Var(s, "required,username") == nil
}

// text validates a free text field and returns its trimmed value.
func text(errs FieldErrors, field string, value *string, required, partial bool, maxLen int) (string, bool) {
	if value == nil {
		if required && !partial {
			errs.Add(field, msgRequired)
		}
		return "", false
	}

	s := strings.TrimSpace(*value)
	if s == "" && required {
		errs.Add(field, msgBlank)
		return "", false
	}
	if len([]rune(s)) > maxLen {
		errs.Add(field, msgMaxLength(maxLen))
		return "", false
	}
	return s, true
}

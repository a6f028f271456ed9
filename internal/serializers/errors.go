package serializers

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const NonFieldErrors = "non_field_errors"

const (
	msgRequired      = "This field is required."
	msgBlank         = "This field may not be blank."
	msgInvalidNumber = "A valid number is required."
	msgInvalidEmail  = "Enter a valid email address."
	msgDateFormat    = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgNoPermission  = "You do not have permission for this"
	msgNotUnique     = "This field must be unique."
)

func msgMaxLength(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

func msgDoesNotExist(pk uint) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", pk)
}

func msgIncorrectPK(kind string) string {
	return fmt.Sprintf("Incorrect type. Expected pk value, received %s.", kind)
}

// FieldErrors collects validation messages keyed by payload field.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e FieldErrors) Merge(other FieldErrors) {
	for field, messages := range other {
		e[field] = append(e[field], messages...)
	}
}

func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns nil when nothing was collected.
func (e FieldErrors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// FromValidator converts binding failures into field errors keyed by the
// field's JSON name.
func FromValidator(verrs validator.ValidationErrors) FieldErrors {
	errs := FieldErrors{}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			errs.Add(fe.Field(), msgRequired)
		case "max":
			n, _ := strconv.Atoi(fe.Param())
			errs.Add(fe.Field(), msgMaxLength(n))
		default:
			errs.Add(fe.Field(), "Invalid value.")
		}
	}
	return errs
}

// JSONFieldName makes validator report fields by their json tag.
func JSONFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func UserConflict() FieldErrors {
	return FieldErrors{NonFieldErrors: {"A user with that username or email already exists."}}
}

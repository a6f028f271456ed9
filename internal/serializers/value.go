package serializers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Value keeps the literal text of a JSON scalar so that type mistakes surface
// as field errors instead of decode failures.
type Value struct {
	Text   string
	Quoted bool
	Kind   string
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v.Text, v.Quoted, v.Kind = s, true, "str"
	case len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')):
		v.Text, v.Kind = string(b), "int"
	case len(b) > 0 && b[0] == '{':
		v.Text, v.Kind = string(b), "dict"
	case len(b) > 0 && b[0] == '[':
		v.Text, v.Kind = string(b), "list"
	default:
		v.Text, v.Kind = string(b), "bool"
	}
	return nil
}

// PK parses the value as a primary key.
func (v *Value) PK() (uint, string) {
	if v.Kind != "int" && v.Kind != "str" {
		return 0, msgIncorrectPK(v.Kind)
	}

	id, err := strconv.ParseUint(strings.TrimSpace(v.Text), 10, 64)
	if err != nil || id == 0 {
		return 0, msgIncorrectPK("str")
	}
	return uint(id), ""
}

// Decimal parses the value as a fixed point number.
func (v *Value) Decimal() (decimal.Decimal, string) {
	if v.Kind != "int" && v.Kind != "str" {
		return decimal.Zero, msgInvalidNumber
	}

	d, err := decimal.NewFromString(strings.TrimSpace(v.Text))
	if err != nil {
		return decimal.Zero, msgInvalidNumber
	}
	return d, ""
}

// digitsExceeded checks a decimal against max_digits/decimal_places style limits.
func digitsExceeded(d decimal.Decimal, maxDigits, places int) string {
	if -d.Exponent() > int32(places) && !d.Equal(d.Truncate(int32(places))) {
		return "Ensure that there are no more than " + strconv.Itoa(places) + " decimal places."
	}

	whole := d.Abs().Truncate(0).String()
	if whole == "0" {
		whole = ""
	}
	if len(whole) > maxDigits-places {
		return "Ensure that there are no more than " + strconv.Itoa(maxDigits-places) + " digits before the decimal point."
	}
	return ""
}

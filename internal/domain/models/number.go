package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric field kept in the textual form the server sent, so a
// replace-style update writes back exactly what was read.
type Number string

// Float returns the parsed value and whether the text held a finite number.
func (n Number) Float() (float64, bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Value returns the parsed value, or 0 when the text is not numeric.
func (n Number) Value() float64 {
	v, _ := n.Float()
	return v
}

// IsZero reports whether the field is absent.
func (n Number) IsZero() bool { return strings.TrimSpace(string(n)) == "" }

// NumberFromFloat renders v without trailing zeros.
func NumberFromFloat(v float64) Number {
	return Number(strconv.FormatFloat(v, 'f', -1, 64))
}

// UnmarshalJSON accepts JSON strings and numbers. Anything else (null, false,
// objects) yields an empty Number instead of an error.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		*n = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = ""
			return nil
		}
		*n = Number(s)
	default:
		if _, err := strconv.ParseFloat(string(b), 64); err != nil {
			*n = ""
			return nil
		}
		*n = Number(b)
	}
	return nil
}

// MarshalJSON always emits the string form.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(n))
}

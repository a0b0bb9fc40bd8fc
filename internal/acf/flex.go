// Package acf holds the wire shapes of the content API resources and the
// codec for their loosely-typed custom fields.
//
// Every decoder in this package is tolerant: malformed field content decodes
// to the zero value (and sets Invalid where the caller may want to know)
// instead of failing the whole resource.
package acf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotObject is returned when a resource payload is not a JSON object.
var ErrNotObject = errors.New("resource payload is not a JSON object")

// Rendered is the {"rendered": "..."} wrapper used for titles.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// UnmarshalJSON accepts the wrapper object or a bare string.
func (r *Rendered) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var aux struct {
			Rendered FlexString `json:"rendered"`
		}
		_ = decodeTolerant(data, &aux)
		r.Rendered = string(aux.Rendered)
		return nil
	}
	var s FlexString
	_ = s.UnmarshalJSON(data)
	r.Rendered = string(s)
	return nil
}

// FlexString decodes strings and numbers into text. Other values become "".
type FlexString string

// UnmarshalJSON never fails.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = FlexString(v)
	case isNumber(data):
		*s = FlexString(data)
	default:
		*s = ""
	}
	return nil
}

// FlexBool decodes booleans, 0/1 and their string forms.
type FlexBool bool

// UnmarshalJSON never fails.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var text string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			*b = false
			return nil
		}
	} else {
		text = string(data)
	}

	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "1", "yes", "on":
		*b = true
	default:
		*b = false
	}
	return nil
}

// FlexInt decodes integers and their string forms. Other values become 0.
type FlexInt int

// UnmarshalJSON never fails.
func (i *FlexInt) UnmarshalJSON(data []byte) error {
	var s FlexString
	_ = s.UnmarshalJSON(data)
	v, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil {
		*i = 0
		return nil
	}
	*i = FlexInt(int(v))
	return nil
}

// Bag is the custom-field object of a resource. Servers send [] or false for
// posts without fields, which decode to an absent bag.
type Bag[T any] struct {
	Fields  T
	Present bool
}

// UnmarshalJSON never fails.
func (b *Bag[T]) UnmarshalJSON(data []byte) error {
	var fields T
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*b = Bag[T]{Fields: fields}
		return nil
	}
	_ = decodeTolerant(data, &fields)
	*b = Bag[T]{Fields: fields, Present: true}
	return nil
}

// decodeObject decodes a top-level resource. Only syntax errors and non-object
// payloads are reported; mistyped fields are skipped.
func decodeObject(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotObject
	}
	if err := decodeTolerant(trimmed, v); err != nil {
		return fmt.Errorf("decode resource: %w", err)
	}
	return nil
}

// decodeTolerant unmarshals data into v, ignoring type mismatches on
// individual fields. encoding/json keeps filling the remaining fields after a
// mismatch, so the partially decoded value is still usable.
func decodeTolerant(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return err
}

// textOf returns the content of a JSON string, or the raw JSON text of any
// other value. null, false and empty input report ok=false.
func textOf(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("false")) {
		return "", false
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false
		}
		if strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	}
	return string(data), true
}

func isNumber(data []byte) bool {
	_, err := strconv.ParseFloat(string(data), 64)
	return err == nil
}

// openingShape reports the first two structural characters of a JSON array
// document, ignoring whitespace: "[[", "[{", "[]" or "" when text is not an array.
func openingShape(text string) string {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(trimmed, "[") {
		return ""
	}
	rest := strings.TrimLeft(trimmed[1:], " \t\r\n")
	if rest == "" {
		return ""
	}
	return "[" + rest[:1]
}

package candidate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind tags which half of a Value is meaningful
type ValueKind int

const (
	KindUnset ValueKind = iota
	KindNumber
	KindText
)

// Value is a single feature value: a finite number or an enumerated/free text token.
type Value struct {
	kind ValueKind
	num  float64
	text string
}

// Number wraps a finite float. NaN and infinities become text so they survive JSON.
func Number(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Text(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return Value{kind: KindNumber, num: v}
}

// Text wraps a string token.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Coerce is the best-effort conversion used for CSV cells: numeric strings become
// numbers, everything else stays text. Surrounding whitespace is trimmed.
func Coerce(raw string) Value {
	s := strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Value{kind: KindNumber, num: f}
	}
	return Text(s)
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsSet() bool     { return v.kind != KindUnset }
func (v Value) IsNumber() bool  { return v.kind == KindNumber }

// Float returns the numeric value, or false when the value is not a number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String renders the canonical token: shortest round-trip form for numbers.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Value{}
	case float64:
		*v = Number(t)
	case string:
		*v = Text(t)
	case bool:
		*v = Text(strconv.FormatBool(t))
	default:
		return fmt.Errorf("feature value must be a number or string, got %s", string(data))
	}
	return nil
}

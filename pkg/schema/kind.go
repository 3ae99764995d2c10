package schema

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind is the runtime classification of a value held in a property bag.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindString
	KindNumber
	KindBoolean
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindString:    "string",
	KindNumber:    "number",
	KindBoolean:   "boolean",
	KindArray:     "array",
	KindObject:    "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// MarshalJSON encodes the marker as null so that bags containing it stay encodable.
func (undefined) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Undefined marks a key that is present in a bag but has no value. A missing key
// is classified the same way.
var Undefined any = undefined{}

// IsAbsent reports whether v is null or undefined.
func IsAbsent(v any) bool {
	k := KindOf(v)
	return k == KindNull || k == KindUndefined
}

// KindOf classifies v. Pointers are followed; nil pointers, maps, slices and
// interfaces are null.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case undefined:
		return KindUndefined
	case string:
		return KindString
	case bool:
		return KindBoolean
	case json.Number:
		return KindNumber
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case []any:
		if t == nil {
			return KindNull
		}
		return KindArray
	case map[string]any:
		if t == nil {
			return KindNull
		}
		return KindObject
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return KindNull
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Slice:
		if rv.IsNil() {
			return KindNull
		}
		return KindArray
	case reflect.Array:
		return KindArray
	case reflect.Map:
		if rv.IsNil() {
			return KindNull
		}
		return KindObject
	case reflect.Struct:
		return KindObject
	default:
		// Functions, channels and complex numbers have no bag representation.
		return KindObject
	}
}

// Float returns the numeric value of v when KindOf(v) is KindNumber.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// Text returns the string held by v when KindOf(v) is KindString.
func Text(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv, ok := indirect(v)
	if !ok || rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

// Bool returns the boolean held by v when KindOf(v) is KindBoolean.
func Bool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	rv, ok := indirect(v)
	if !ok || rv.Kind() != reflect.Bool {
		return false, false
	}
	return rv.Bool(), true
}

func indirect(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}

// FormatNumber renders f the way ECMAScript's Number-to-String conversion does:
// integral values carry no fraction and very large or small magnitudes use
// exponent notation.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'g', -1, 64)
		s = strings.Replace(s, "e-0", "e-", 1)
		return strings.Replace(s, "e+0", "e+", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

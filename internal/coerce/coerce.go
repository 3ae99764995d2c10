// Package coerce converts property bag values into declared property types.
package coerce

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/propschema/pkg/schema"
)

// To converts value into target. Failures are *schema.CoercionError values naming
// path. Null and undefined values are not handled here; see Property.
func To(value any, target schema.DataType, path string) (any, error) {
	switch target {
	case schema.TypeString:
		return toString(value, path)
	case schema.TypeNumber:
		return toNumber(value, path)
	case schema.TypeBoolean:
		return toBoolean(value, path)
	case schema.TypeArray:
		return toArray(value, path)
	case schema.TypeObject:
		return toObject(value, path)
	default:
		// TypeAny and unknown declared types pass through.
		return value, nil
	}
}

// Property converts value for the property described by def. Null and undefined
// values resolve to the declared default when there is one and are returned
// unchanged otherwise.
func Property(value any, def schema.PropertyDefinition, path string) (any, error) {
	if schema.IsAbsent(value) {
		if def.HasDefault() {
			return def.Default, nil
		}
		return value, nil
	}
	return To(value, def.DataType, path)
}

func toString(value any, path string) (string, error) {
	switch schema.KindOf(value) {
	case schema.KindString:
		s, _ := schema.Text(value)
		return s, nil
	case schema.KindNumber:
		return numberText(value), nil
	case schema.KindBoolean:
		b, _ := schema.Bool(value)
		return strconv.FormatBool(b), nil
	default:
		return "", fail(value, schema.TypeString, path)
	}
}

// numberText keeps integers exact and renders floats like ECMAScript.
func numberText(value any) string {
	switch n := value.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	}
	f, _ := schema.Float(value)
	return schema.FormatNumber(f)
}

func toNumber(value any, path string) (any, error) {
	switch schema.KindOf(value) {
	case schema.KindNumber:
		return value, nil
	case schema.KindString:
		s, _ := schema.Text(value)
		if f, ok := parseNumber(s); ok {
			return f, nil
		}
	}
	return nil, fail(value, schema.TypeNumber, path)
}

// parseNumber follows ECMAScript Number(string): surrounding whitespace is
// ignored, a blank string is zero, and anything yielding NaN fails.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		n, err := strconv.ParseUint(s[2:], prefixBase(lower[1]), 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	}
	// ParseFloat would also accept Go spellings such as "inf", "nan" or "1_000".
	if strings.ContainsAny(lower, "_in") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out-of-range literals saturate to infinity or zero.
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func prefixBase(c byte) int {
	switch c {
	case 'x':
		return 16
	case 'o':
		return 8
	default:
		return 2
	}
}

func toBoolean(value any, path string) (bool, error) {
	switch schema.KindOf(value) {
	case schema.KindBoolean:
		b, _ := schema.Bool(value)
		return b, nil
	case schema.KindString:
		s, _ := schema.Text(value)
		switch strings.ToLower(s) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	case schema.KindNumber:
		f, _ := schema.Float(value)
		return f != 0, nil
	}
	return false, fail(value, schema.TypeBoolean, path)
}

// toArray does not coerce elements.
func toArray(value any, path string) (any, error) {
	if schema.KindOf(value) == schema.KindArray {
		return value, nil
	}
	return nil, fail(value, schema.TypeArray, path)
}

// toObject does not coerce nested fields.
func toObject(value any, path string) (any, error) {
	if schema.KindOf(value) == schema.KindObject {
		return value, nil
	}
	return nil, fail(value, schema.TypeObject, path)
}

func fail(value any, target schema.DataType, path string) error {
	return &schema.CoercionError{Path: path, Target: target, Got: schema.KindOf(value)}
}

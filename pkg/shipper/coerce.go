package shipper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CoerceKind names a coercion strategy. Schemas reference strategies by
// name so they stay serializable.
type CoerceKind string

const (
	CoerceIdentity CoerceKind = "identity"
	CoerceInt      CoerceKind = "int"
	CoerceDecimal  CoerceKind = "decimal"
	CoerceUpper    CoerceKind = "upper"
	CoerceAccents  CoerceKind = "accents"
	CoerceEnum     CoerceKind = "enum"
)

func (k CoerceKind) valid() bool {
	switch k {
	case CoerceIdentity, CoerceInt, CoerceDecimal, CoerceUpper, CoerceAccents, CoerceEnum:
		return true
	}
	return false
}

func coerce(f FieldSpec, v any) (any, error) {
	switch f.Coerce {
	case "", CoerceIdentity:
		return v, nil
	case CoerceInt:
		return toInt(v)
	case CoerceDecimal:
		return toDecimal(v)
	case CoerceUpper:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", v)
		}
		return strings.ToUpper(strings.TrimSpace(s)), nil
	case CoerceAccents:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", v)
		}
		return StripAccents(s)
	case CoerceEnum:
		return mapEnum(f, v)
	default:
		return nil, fmt.Errorf("unknown coercion %q", f.Coerce)
	}
}

// StripAccents removes diacritics, e.g. "Crème brûlée" -> "Creme brulee".
func StripAccents(s string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return "", fmt.Errorf("stripping accents: %w", err)
	}
	return out, nil
}

func toInt(v any) (any, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		if t < math.MinInt || t > math.MaxInt {
			return nil, fmt.Errorf("%d is out of range", t)
		}
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return nil, fmt.Errorf("%v is not a whole number", t)
		}
		if !floatFitsInt(t) {
			return nil, fmt.Errorf("%v is out of range", t)
		}
		return int(t), nil
	case decimal.Decimal:
		if !t.Equal(t.Truncate(0)) {
			return nil, fmt.Errorf("%s is not a whole number", t)
		}
		if !decimalFitsInt(t) {
			return nil, fmt.Errorf("%s is out of range", t)
		}
		return int(t.IntPart()), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", t)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to an integer", v)
	}
}

// float64(math.MaxInt) rounds up to a power of two, so the upper bound is
// exclusive.
func floatFitsInt(f float64) bool {
	return f >= math.MinInt && f < math.MaxInt
}

func decimalFitsInt(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(decimal.NewFromInt(math.MinInt)) &&
		d.LessThanOrEqual(decimal.NewFromInt(math.MaxInt))
}

func toDecimal(v any) (any, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", t)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to a number", v)
	}
}

// mapEnum maps a human label to its code. Codes pass through unchanged;
// unknown values resolve to EnumFallback when the field declares one.
func mapEnum(f FieldSpec, v any) (any, error) {
	for _, code := range f.Enum {
		if sameValue(v, code) {
			return code, nil
		}
	}
	if label, ok := v.(string); ok {
		if code, ok := f.Enum[label]; ok {
			return code, nil
		}
	}
	if f.EnumFallback != nil {
		return f.EnumFallback, nil
	}
	return nil, fmt.Errorf("unknown value %v", v)
}

// conform checks v against the field type, converting lossless numeric
// representations (JSON numbers arrive as float64).
func conform(t FieldType, v any) (any, error) {
	switch t {
	case TypeString:
		if _, ok := v.(string); !ok {
			return nil, fmt.Errorf("expected a string, got %T", v)
		}
		return v, nil
	case TypeInt:
		return toInt(v)
	case TypeDecimal:
		return toDecimal(v)
	case TypeBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return nil, fmt.Errorf("%q is not a boolean", b)
			}
			return parsed, nil
		}
		return nil, fmt.Errorf("expected a boolean, got %T", v)
	default:
		return v, nil
	}
}

// sameValue compares scalars, treating numbers of different Go types as
// equal when they hold the same value.
func sameValue(a, b any) bool {
	da, aNum := numeric(a)
	db, bNum := numeric(b)
	if aNum && bNum {
		return da.Equal(db)
	}
	if aNum || bNum {
		return false
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

func numeric(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	case decimal.Decimal:
		return t, true
	}
	return decimal.Zero, false
}

func contains(values []any, v any) bool {
	for _, candidate := range values {
		if sameValue(candidate, v) {
			return true
		}
	}
	return false
}

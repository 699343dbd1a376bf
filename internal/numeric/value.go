/*
Package numeric
File: value.go
Description:
    Arbitrary-precision decimal used for every game quantity: balances,
    owned counts, costs, multipliers and reductions.

    Value wraps shopspring/decimal so that the rest of the codebase never
    touches float64 for economy math. It serializes as a decimal string in
    both JSON (save blobs, API payloads) and YAML (catalog tables), which
    keeps the round-trip exact at any magnitude.
*/

package numeric

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// powPrecision bounds the fractional digits kept between squarings in PowInt.
// Growth ratios like 1.15 double their fractional digits on every multiply.
const powPrecision = 32

// Value is an immutable arbitrary-precision decimal. The zero Value is 0.
type Value struct {
	d decimal.Decimal
}

var (
	Zero = Value{}
	One  = FromInt(1)
)

// FromInt builds a Value from an integer.
func FromInt(i int64) Value {
	return Value{d: decimal.NewFromInt(i)}
}

// FromDecimal wraps an existing decimal.
func FromDecimal(d decimal.Decimal) Value {
	return Value{d: d}
}

// Parse reads a decimal string such as "10", "1.15" or "1e10000".
func Parse(s string) (Value, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid numeric value %q: %w", s, err)
	}
	return Value{d: d}, nil
}

// MustParse is Parse for literals known at compile time. It panics on bad input.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) Decimal() decimal.Decimal { return v.d }

func (v Value) Add(o Value) Value { return Value{d: v.d.Add(o.d)} }
func (v Value) Sub(o Value) Value { return Value{d: v.d.Sub(o.d)} }
func (v Value) Mul(o Value) Value { return Value{d: v.d.Mul(o.d)} }

// Div divides with decimal.DivisionPrecision fractional digits.
// Division by zero returns Zero instead of panicking.
func (v Value) Div(o Value) Value {
	if o.d.IsZero() {
		return Zero
	}
	return Value{d: v.d.Div(o.d)}
}

// FloorDiv returns the integer quotient v/o truncated toward zero.
// It is exact at any magnitude, unlike Div followed by Floor.
func (v Value) FloorDiv(o Value) Value {
	if o.d.IsZero() {
		return Zero
	}
	q, _ := v.d.QuoRem(o.d, 0)
	return Value{d: q}
}

func (v Value) Floor() Value { return Value{d: v.d.Floor()} }
func (v Value) Neg() Value { return Value{d: v.d.Neg()} }

// PowInt raises v to an integer power by repeated squaring.
// Intermediate results are truncated to powPrecision fractional digits, so the
// result carries a small relative error that grows with the exponent.
func (v Value) PowInt(n int64) Value {
	if n == 0 {
		return One
	}
	if n < 0 {
		return One.Div(v.PowInt(-n))
	}
	result := decimal.NewFromInt(1)
	base := v.d
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Truncate(powPrecision)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base).Truncate(powPrecision)
		}
	}
	return Value{d: result}
}

func (v Value) Cmp(o Value) int { return v.d.Cmp(o.d) }
func (v Value) Equal(o Value) bool { return v.d.Equal(o.d) }
func (v Value) GreaterThan(o Value) bool { return v.d.GreaterThan(o.d) }
func (v Value) GreaterThanOrEqual(o Value) bool { return v.d.GreaterThanOrEqual(o.d) }
func (v Value) LessThan(o Value) bool { return v.d.LessThan(o.d) }
func (v Value) LessThanOrEqual(o Value) bool { return v.d.LessThanOrEqual(o.d) }
func (v Value) IsZero() bool { return v.d.IsZero() }
func (v Value) IsNegative() bool { return v.d.IsNegative() }
func (v Value) IsPositive() bool { return v.d.IsPositive() }
func (v Value) IsInteger() bool { return v.d.IsInteger() }

// Int64 returns the integer part. Values beyond int64 range are undefined.
func (v Value) Int64() int64 { return v.d.IntPart() }

// Clamp bounds v to [lo, hi].
func (v Value) Clamp(lo, hi Value) Value {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

func Max(a, b Value) Value {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func Min(a, b Value) Value {
	if a.LessThan(b) {
		return a
	}
	return b
}

// String is the exact decimal representation used for persistence.
func (v Value) String() string { return v.d.String() }

// StringFixed renders with a fixed number of decimal places for display.
func (v Value) StringFixed(places int32) string { return v.d.StringFixed(places) }

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.d.String())
}

// UnmarshalJSON accepts both quoted strings and bare JSON numbers.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("failed to decode numeric value: %w", err)
	}
	v.d = d
	return nil
}

func (v Value) MarshalYAML() (interface{}, error) {
	return v.d.String(), nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := Parse(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

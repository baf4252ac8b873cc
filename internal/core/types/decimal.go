// Package types provides the numeric value types used for stock and money.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a price or ledger amount. It is exact and JSON-encodes as a string.
type Money = decimal.Decimal

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money.
func Zero() Money {
	return decimal.Zero
}

// Quantity is a fixed-point base-unit quantity with 4 decimal places (scale = 1e4).
// Stored as BIGINT (scaled integer); JSON is a number with up to 4 decimals.
type Quantity int64

const (
	QuantityScale int64 = 10_000
	quantityExp   int32 = -4
)

// ErrQuantityOutOfRange is returned when a value does not fit the fixed-point range.
var ErrQuantityOutOfRange = errors.New("quantity out of range")

// ErrQuantityPrecision is returned when a value has more than 4 decimal places.
var ErrQuantityPrecision = errors.New("quantity has more than 4 decimal places")

// maxQuantityExp bounds the exponent accepted from text input.
const maxQuantityExp = 20

var (
	maxScaled = decimal.NewFromInt(math.MaxInt64)
	minScaled = decimal.NewFromInt(math.MinInt64)
)

// NewQuantityFromFloat64 rounds v to 4 places. Values outside the range saturate.
func NewQuantityFromFloat64(v float64) Quantity {
	scaled := math.Round(v * float64(QuantityScale))
	switch {
	case scaled >= math.MaxInt64:
		return Quantity(math.MaxInt64)
	case scaled <= math.MinInt64:
		return Quantity(math.MinInt64)
	}
	return Quantity(scaled)
}

// NewQuantityFromInt creates a whole-unit quantity.
func NewQuantityFromInt(units int64) Quantity { return Quantity(units * QuantityScale) }

// NewQuantityFromDecimal rounds d half-away-from-zero to 4 places.
func NewQuantityFromDecimal(d decimal.Decimal) (Quantity, error) {
	return fromScaled(d.Shift(-quantityExp).Round(0))
}

func fromScaled(scaled decimal.Decimal) (Quantity, error) {
	if scaled.GreaterThan(maxScaled) || scaled.LessThan(minScaled) {
		return 0, ErrQuantityOutOfRange
	}
	return Quantity(scaled.IntPart()), nil
}

// MustQuantity parses a decimal string, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	q, err := parseQuantityString(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) Float64() float64 { return float64(q) / float64(QuantityScale) }

// Decimal returns q as an exact decimal.
func (q Quantity) Decimal() decimal.Decimal { return decimal.New(int64(q), quantityExp) }

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Abs() Quantity {
	if q < 0 {
		return -q
	}
	return q
}

// MulInt multiplies by a whole number of units (portions sold, for example).
// A product outside the int64 range returns ErrQuantityOutOfRange.
func (q Quantity) MulInt(n int64) (Quantity, error) {
	hi, lo := bits.Mul64(absU64(int64(q)), absU64(n))
	neg := (q < 0) != (n < 0)
	switch {
	case hi != 0:
		return 0, ErrQuantityOutOfRange
	case neg && lo <= 1<<63:
		// two's complement negation also covers lo == 1<<63
		return Quantity(int64(-lo)), nil
	case !neg && lo <= math.MaxInt64:
		return Quantity(lo), nil
	}
	return 0, ErrQuantityOutOfRange
}

func absU64(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

// MulDecimal multiplies by an arbitrary factor, rounding to 4 places.
func (q Quantity) MulDecimal(factor decimal.Decimal) (Quantity, error) {
	return NewQuantityFromDecimal(q.Decimal().Mul(factor))
}

// Times returns q × price as money.
func (q Quantity) Times(price Money) Money { return q.Decimal().Mul(price) }

// WholeUnitsIn returns floor(q / per) for positive per, the number of
// whole portions of size per that q covers. per <= 0 yields -1.
func (q Quantity) WholeUnitsIn(per Quantity) int64 {
	if per <= 0 {
		return -1
	}
	if q <= 0 {
		return 0
	}
	return int64(q) / int64(per)
}

// String renders q with exactly 4 decimal places, e.g. "250.0000".
func (q Quantity) String() string { return q.Decimal().StringFixed(-quantityExp) }

// MarshalJSON writes q as a bare JSON number.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON reads a JSON number or numeric string. null is zero.
// On error q is left unchanged.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	text := string(bytes.TrimSpace(data))
	switch {
	case text == "" || text == "null":
		*q = 0
		return nil
	case strings.HasPrefix(text, `"`):
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("quantity: %w", err)
		}
	}

	parsed, err := parseQuantityString(text)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// parseQuantityString parses a plain or exponent decimal. Values with more
// than 4 decimal places or outside the fixed-point range are rejected.
func parseQuantityString(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	if exp := d.Exponent(); exp > maxQuantityExp || exp < -maxQuantityExp {
		if d.IsZero() {
			return 0, nil
		}
		if exp > 0 {
			return 0, fmt.Errorf("parse quantity %q: %w", s, ErrQuantityOutOfRange)
		}
		return 0, fmt.Errorf("parse quantity %q: %w", s, ErrQuantityPrecision)
	}

	scaled := d.Shift(-quantityExp)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("parse quantity %q: %w", s, ErrQuantityPrecision)
	}
	q, err := fromScaled(scaled)
	if err != nil {
		return 0, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	return q, nil
}

// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer centavos. User input is normalized here before
// it reaches any aggregator, so the rest of the package can assume valid data.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// MaxAmountCents is the largest accepted amount: 999,999,999.99.
const MaxAmountCents int64 = 99_999_999_999

var maxAmount = decimal.NewFromInt(MaxAmountCents)

const currencySymbol = "₱"

// ParseDecimalToCents converts a peso amount string to centavos.
//
// A leading "₱" or "PHP" marker is stripped. The dot is the decimal separator
// and commas group thousands. A single comma followed by one or two digits, with
// no dot anywhere, is read as a decimal comma. More than two fraction digits are
// rejected rather than rounded.
//
// Examples:
//
//	ParseDecimalToCents("1,234.56")  -> 123456, nil
//	ParseDecimalToCents("₱ 12,5")    -> 1250, nil
//	ParseDecimalToCents("12.345")    -> 0, ErrInvalidPrecision
func ParseDecimalToCents(s string) (int64, error) {
	s = stripCurrency(strings.TrimSpace(s))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	s, err := normalizeSeparators(s)
	if err != nil {
		return 0, err
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
		if fracPart == "" {
			return 0, ErrInvalidAmount
		}
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	if len(fracPart) > 2 {
		return 0, ErrInvalidPrecision
	}
	// 12 integer digits already exceed the ceiling; avoid ParseInt overflow
	if len(strings.TrimLeft(intPart, "0")) > 12 {
		return 0, ErrAmountOutOfRange
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	fv, _ := strconv.ParseInt(fracPart, 10, 64)

	cents := iv*100 + fv
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	if cents > MaxAmountCents {
		return 0, ErrAmountOutOfRange
	}
	return cents, nil
}

// ParseAmount is ParseDecimalToCents wrapped in a Money.
func ParseAmount(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

func stripCurrency(s string) string {
	s = strings.TrimPrefix(s, currencySymbol)
	if len(s) >= 3 && strings.EqualFold(s[:3], "PHP") {
		s = s[3:]
	}
	return strings.ReplaceAll(s, " ", "")
}

// normalizeSeparators turns the accepted grouping styles into a plain
// "digits[.digits]" string.
func normalizeSeparators(s string) (string, error) {
	if !strings.Contains(s, ",") {
		return s, nil
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		i := strings.Index(s, ",")
		if n := len(s) - i - 1; n == 1 || n == 2 {
			return s[:i] + "." + s[i+1:], nil
		}
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	groups := strings.Split(intPart, ",")
	if groups[0] == "" || len(groups[0]) > 3 {
		return "", ErrInvalidAmount
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", ErrInvalidAmount
		}
	}
	out := strings.Join(groups, "")
	if hasFrac {
		out += "." + fracPart
	}
	return out, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// NewMoney builds a Money from a whole-peso and centavo pair.
func NewMoney(pesos, centavos int64) Money {
	return Money{Cents: pesos*100 + centavos}
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// ClampZero returns m, or zero when m is negative.
func (m Money) ClampZero() Money {
	if m.Cents < 0 {
		return Money{}
	}
	return m
}

func (m Money) IsZero() bool { return m.Cents == 0 }

// Decimal returns the peso value as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// MoneyFromDecimal rounds d half away from zero to centavos. Values whose
// magnitude exceeds MaxAmountCents are rejected with ErrAmountOutOfRange.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Round(2).Shift(2)
	if cents.Abs().GreaterThan(maxAmount) {
		return Money{}, ErrAmountOutOfRange
	}
	return Money{Cents: cents.IntPart()}, nil
}

// String renders the amount as a plain decimal, e.g. "1234.56".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Format renders the amount for people: ₱1,234.56 or -₱1,234.56.
func (m Money) Format() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	frac := cents % 100
	fracStr := strconv.FormatInt(frac, 10)
	if frac < 10 {
		fracStr = "0" + fracStr
	}
	return sign + currencySymbol + b.String() + "." + fracStr
}

// MarshalJSON encodes the amount as a decimal string so clients never see
// binary floating point.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON accepts a quoted or bare decimal and permits negative values,
// which only derived figures carry.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	if !d.Equal(d.Round(2)) {
		return ErrInvalidPrecision
	}
	v, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	if m.Cents > MaxAmountCents {
		return ErrAmountOutOfRange
	}
	return nil
}

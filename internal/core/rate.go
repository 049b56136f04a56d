package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred     = decimal.NewFromInt(100)
	half        = decimal.New(5, -1)
	maxRatePct  = hundred
	zeroDecimal = decimal.Zero
)

// Rate is an annual interest rate expressed in percent, e.g. 24.99.
type Rate struct {
	d decimal.Decimal
}

// ParseRate reads a percent such as "18", "18.5" or "18.50%".
func ParseRate(s string) (Rate, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return Rate{}, ErrInvalidRate
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, ErrInvalidRate
	}
	r := Rate{d: d}
	if err := r.Validate(); err != nil {
		return Rate{}, err
	}
	return r, nil
}

// MustRate is ParseRate for constants and tests.
func MustRate(s string) Rate {
	r, err := ParseRate(s)
	if err != nil {
		panic(err)
	}
	return r
}

// RateFromBasisPoints builds a Rate from hundredths of a percent (2499 = 24.99%).
func RateFromBasisPoints(bp int64) Rate {
	return Rate{d: decimal.New(bp, -2)}
}

// BasisPoints returns the rate in hundredths of a percent.
func (r Rate) BasisPoints() int64 {
	return r.d.Shift(2).IntPart()
}

func (r Rate) Decimal() decimal.Decimal { return r.d }

func (r Rate) Cmp(o Rate) int { return r.d.Cmp(o.d) }

func (r Rate) String() string { return r.d.StringFixed(2) }

func (r Rate) Validate() error {
	if r.d.LessThan(zeroDecimal) || r.d.GreaterThan(maxRatePct) {
		return ErrInvalidRate
	}
	if !r.d.Equal(r.d.Round(2)) {
		return ErrInvalidPrecision
	}
	return nil
}

func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(r.String())), nil
}

func (r *Rate) UnmarshalJSON(data []byte) error {
	parsed, err := ParseRate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseDueDay reads a day of the month in [1,31].
func ParseDueDay(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidDueDay
	}
	if n < 1 || n > 31 {
		return 0, ErrInvalidDueDay
	}
	return n, nil
}

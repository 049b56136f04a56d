package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		err error
	}{
		{"1", 100, nil},
		{"1.0", 100, nil},
		{"1.23", 123, nil},
		{"1,23", 123, nil},
		{"12,5", 1250, nil},
		{"0.01", 1, nil},
		{" 2.50 ", 250, nil},
		{"₱1,234.56", 123456, nil},
		{"₱ 1,234", 123400, nil},
		{"PHP 15,000.00", 1500000, nil},
		{"php500", 50000, nil},
		{"1,234,567.89", 123456789, nil},
		{"999,999,999.99", MaxAmountCents, nil},
		{"1000000000", 0, ErrAmountOutOfRange},
		{"99999999999999999999", 0, ErrAmountOutOfRange},
		{"1.005", 0, ErrInvalidPrecision},
		{"1,2345", 0, ErrInvalidAmount},
		{"12,34,567", 0, ErrInvalidAmount},
		{"-1", 0, ErrInvalidAmount},
		{"+1", 0, ErrInvalidAmount},
		{"0", 0, ErrInvalidAmount},
		{"0.00", 0, ErrInvalidAmount},
		{"abc", 0, ErrInvalidAmount},
		{"1.2.3", 0, ErrInvalidAmount},
		{"1.", 0, ErrInvalidAmount},
		{"", 0, ErrInvalidAmount},
		{"₱", 0, ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tc.in)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("%q expected %v, got %d (err=%v)", tc.in, tc.err, got, err)
				}
				return
			}
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		})
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "₱0.00"},
		{5, "₱0.05"},
		{123456, "₱1,234.56"},
		{100000000, "₱1,000,000.00"},
		{-270000, "-₱2,700.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Format(); got != tc.want {
			t.Errorf("Format(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: -2700050})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"-27000.50"` {
		t.Fatalf("unexpected JSON %s", b)
	}

	var m Money
	if err := json.Unmarshal([]byte(`1500.5`), &m); err != nil || m.Cents != 150050 {
		t.Fatalf("bare number: got %d err=%v", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`"0.001"`), &m); !errors.Is(err, ErrInvalidPrecision) {
		t.Fatalf("expected precision error, got %v", err)
	}
}

func TestMoneyFromDecimalRoundsHalfAwayFromZero(t *testing.T) {
	cases := map[string]int64{
		"1.005":  101,
		"1.004":  100,
		"-1.005": -101,
		"0.0049": 0,
	}
	for in, want := range cases {
		got, err := MoneyFromDecimal(decimal.RequireFromString(in))
		if err != nil || got.Cents != want {
			t.Errorf("MoneyFromDecimal(%s) = %d, %v, want %d", in, got.Cents, err, want)
		}
	}
}

func TestMoneyFromDecimalRange(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		err  error
	}{
		{"999999999.99", MaxAmountCents, nil},
		{"-999999999.99", -MaxAmountCents, nil},
		{"1000000000", 0, ErrAmountOutOfRange},
		{"-1000000000.00", 0, ErrAmountOutOfRange},
		{"999999999.995", 0, ErrAmountOutOfRange},
		{"92233720368547758.08", 0, ErrAmountOutOfRange},
		{"1e40", 0, ErrAmountOutOfRange},
	}
	for _, tc := range cases {
		got, err := MoneyFromDecimal(decimal.RequireFromString(tc.in))
		if !errors.Is(err, tc.err) || got.Cents != tc.want {
			t.Errorf("MoneyFromDecimal(%s) = %d, %v, want %d, %v", tc.in, got.Cents, err, tc.want, tc.err)
		}
	}

	var m Money
	for _, raw := range []string{`"92233720368547758.08"`, `1e30`, `"1000000000.00"`} {
		if err := json.Unmarshal([]byte(raw), &m); !errors.Is(err, ErrAmountOutOfRange) {
			t.Errorf("Unmarshal(%s) error = %v, want ErrAmountOutOfRange", raw, err)
		}
	}
}

func TestParseRate(t *testing.T) {
	cases := []struct {
		in  string
		bp  int64
		err error
	}{
		{"0", 0, nil},
		{"18", 1800, nil},
		{"24.99", 2499, nil},
		{"24.99%", 2499, nil},
		{"100", 10000, nil},
		{"100.01", 0, ErrInvalidRate},
		{"-1", 0, ErrInvalidRate},
		{"12.345", 0, ErrInvalidPrecision},
		{"abc", 0, ErrInvalidRate},
		{"", 0, ErrInvalidRate},
	}
	for _, tc := range cases {
		r, err := ParseRate(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Errorf("ParseRate(%q) err = %v, want %v", tc.in, err, tc.err)
			}
			continue
		}
		if err != nil || r.BasisPoints() != tc.bp {
			t.Errorf("ParseRate(%q) = %d (err=%v), want %d", tc.in, r.BasisPoints(), err, tc.bp)
		}
	}
}

func TestParseDueDay(t *testing.T) {
	for _, ok := range []string{"1", "15", " 31 "} {
		if _, err := ParseDueDay(ok); err != nil {
			t.Errorf("ParseDueDay(%q) unexpected error %v", ok, err)
		}
	}
	for _, bad := range []string{"0", "32", "-3", "x", "1.5"} {
		if _, err := ParseDueDay(bad); !errors.Is(err, ErrInvalidDueDay) {
			t.Errorf("ParseDueDay(%q) = %v, want ErrInvalidDueDay", bad, err)
		}
	}
}

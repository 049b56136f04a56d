package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2025-03-09"`), &d); err != nil {
		t.Fatal(err)
	}
	if d.Year() != 2025 || d.Month() != time.March || d.Day() != 9 {
		t.Fatalf("unexpected date %v", d)
	}
	b, _ := json.Marshal(d)
	if string(b) != `"2025-03-09"` {
		t.Fatalf("unexpected JSON %s", b)
	}
	if err := json.Unmarshal([]byte(`"09/03/2025"`), &d); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: MaxAmountCents + 1}).Validate(); !errors.Is(err, ErrAmountOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func validDebt() Debt {
	return Debt{
		ID:             "d1",
		UserID:         "u1",
		Name:           "Visa",
		Balance:        Money{Cents: 1_000_000},
		InterestRate:   MustRate("24.99"),
		MinimumPayment: Money{Cents: 50_000},
		DueDay:         15,
		Category:       CreditCard,
		Frequency:      Monthly,
	}
}

func TestDebtValidate(t *testing.T) {
	if err := validDebt().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Debt)
		want   error
	}{
		{"no owner", func(d *Debt) { d.UserID = "" }, ErrMissingOwner},
		{"empty name", func(d *Debt) { d.Name = "  " }, ErrEmptyName},
		{"long name", func(d *Debt) { d.Name = strings.Repeat("x", 101) }, ErrNameTooLong},
		{"zero balance", func(d *Debt) { d.Balance = Money{} }, ErrInvalidAmount},
		{"rate above 100", func(d *Debt) { d.InterestRate = RateFromBasisPoints(10001) }, ErrInvalidRate},
		{"zero minimum", func(d *Debt) { d.MinimumPayment = Money{} }, ErrInvalidAmount},
		{"due day 0", func(d *Debt) { d.DueDay = 0 }, ErrInvalidDueDay},
		{"due day 32", func(d *Debt) { d.DueDay = 32 }, ErrInvalidDueDay},
		{"bad category", func(d *Debt) { d.Category = "payday" }, ErrInvalidCategory},
		{"bad frequency", func(d *Debt) { d.Frequency = "daily" }, ErrInvalidFrequency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDebt()
			tt.mutate(&d)
			if err := d.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPaymentValidate(t *testing.T) {
	good := Payment{ID: "p1", DebtID: "d1", UserID: "u1", Amount: Money{Cents: 100}, PaidAt: NewDate(2025, 1, 1), Kind: ExtraPayment}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Payment{
		{DebtID: "d1", Amount: Money{Cents: 1}, PaidAt: NewDate(2025, 1, 1), Kind: ExtraPayment},
		{UserID: "u1", Amount: Money{Cents: 1}, PaidAt: NewDate(2025, 1, 1), Kind: ExtraPayment},
		{UserID: "u1", DebtID: "d1", PaidAt: NewDate(2025, 1, 1), Kind: ExtraPayment},
		{UserID: "u1", DebtID: "d1", Amount: Money{Cents: 1}, Kind: ExtraPayment},
		{UserID: "u1", DebtID: "d1", Amount: Money{Cents: 1}, PaidAt: NewDate(2025, 1, 1), Kind: "partial"},
	}
	for i, p := range bads {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetItemValidate(t *testing.T) {
	good := BudgetItem{UserID: "u1", Name: "Rent", Amount: Money{Cents: 100}, Category: "housing", Type: Expense}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	noCat := good
	noCat.Category = ""
	if err := noCat.Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
	badType := good
	badType.Type = "transfer"
	if err := badType.Validate(); !errors.Is(err, ErrInvalidItemType) {
		t.Fatalf("expected ErrInvalidItemType, got %v", err)
	}
}

func TestDebtCategoryLabels(t *testing.T) {
	for _, c := range DebtCategories {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
		if c != OtherDebt && c.Label() == "Other" {
			t.Errorf("%q has no label", c)
		}
	}
}

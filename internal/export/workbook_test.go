package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"utang/internal/core"
)

func sampleReport() core.Report {
	debt := core.Debt{
		ID: "d1", UserID: "u1", Name: "Visa", Balance: core.NewMoney(10_000, 0),
		InterestRate: core.MustRate("18"), MinimumPayment: core.NewMoney(500, 0),
		DueDay: 10, Category: core.CreditCard, Frequency: core.Monthly,
	}
	payment := core.Payment{
		ID: "p1", DebtID: "d1", UserID: "u1", Amount: core.NewMoney(2_000, 0),
		PaidAt: core.NewDate(2025, 1, 5), Kind: core.ExtraPayment,
	}
	return core.Report{
		UserID:      "u1",
		GeneratedAt: time.Date(2025, 2, 7, 9, 0, 0, 0, time.UTC),
		Summary:     core.Summary{TotalDebt: core.NewMoney(8_000, 0), DebtCount: 1, BudgetHealth: 54},
		Debts: []core.DebtView{{
			Debt: debt, Payments: []core.Payment{payment},
			TotalPaid: core.NewMoney(2_000, 0), RemainingBalance: core.NewMoney(8_000, 0),
			PercentPaid: 20, Priority: core.PriorityMedium,
		}},
		Budget: core.BudgetSummary{ByCategory: []core.CategoryAmount{
			{Name: "housing", Amount: core.NewMoney(15_000, 0), Percent: 30},
		}},
		Projection: core.Projection{Points: []core.ProjectionPoint{
			{Month: 0, TotalRemaining: core.NewMoney(8_000, 0)},
			{Month: 1, TotalRemaining: core.Money{}},
		}},
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	want := []string{SheetSummary, SheetDebts, SheetPayments, SheetBudget, SheetProjection, SheetUpcoming}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet %d = %q, want %q", i, got[i], want[i])
		}
	}

	raw := excelize.Options{RawCellValue: true}
	cells := []struct {
		sheet, cell, want string
	}{
		{SheetSummary, "A1", "Metric"},
		{SheetSummary, "A3", "Total debt"},
		{SheetSummary, "B3", "8000"},
		{SheetSummary, "B11", "54"},
		{SheetDebts, "A2", "Visa"},
		{SheetDebts, "C2", "18"},
		{SheetDebts, "F2", "8000"},
		{SheetDebts, "J2", "medium"},
		{SheetPayments, "A2", "2025-01-05"},
		{SheetPayments, "C2", "extra"},
		{SheetPayments, "D2", "2000"},
		{SheetBudget, "A2", "housing"},
		{SheetProjection, "B3", "0"},
	}
	for _, c := range cells {
		t.Run(c.sheet+"!"+c.cell, func(t *testing.T) {
			v, err := f.GetCellValue(c.sheet, c.cell, raw)
			if err != nil {
				t.Fatal(err)
			}
			if v != c.want {
				t.Errorf("got %q, want %q", v, c.want)
			}
		})
	}

	// formatted read applies the amount format
	if v, _ := f.GetCellValue(SheetSummary, "B3"); v != "8,000.00" {
		t.Errorf("formatted total debt = %q", v)
	}
}

func TestWriteWorkbook_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, core.Report{UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(SheetDebts)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("empty report should only have the header row, got %d rows", len(rows))
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)); got != "utang_report_20250309.xlsx" {
		t.Errorf("Filename = %q", got)
	}
}

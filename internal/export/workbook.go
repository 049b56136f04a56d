// Package export renders a user's report as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"utang/internal/core"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	SheetSummary    = "Summary"
	SheetDebts      = "Debts"
	SheetPayments   = "Payments"
	SheetBudget     = "Budget"
	SheetProjection = "Projection"
	SheetUpcoming   = "Upcoming"
)

// amountFormat is the built-in "#,##0.00" number format.
const amountFormat = 4

// Filename is the attachment name used for a report generated at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("utang_report_%s.xlsx", t.Format("20060102"))
}

type workbook struct {
	f      *excelize.File
	header int
	amount int
}

// WriteWorkbook writes r as an XLSX file to w.
func WriteWorkbook(w io.Writer, r core.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	wb := &workbook{f: f}
	var err error
	if wb.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if wb.amount, err = f.NewStyle(&excelize.Style{NumFmt: amountFormat}); err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	steps := []func(core.Report) error{
		wb.summary, wb.debts, wb.payments, wb.budget, wb.projection, wb.upcoming,
	}
	for _, step := range steps {
		if err := step(r); err != nil {
			return err
		}
	}

	idx, err := f.GetSheetIndex(SheetSummary)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (wb *workbook) summary(r core.Report) error {
	s := r.Summary
	rows := [][]any{
		{"Generated", r.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Total debt", s.TotalDebt},
		{"Total paid", s.TotalPaid},
		{"Monthly payments", s.MonthlyPayments},
		{"Debt count", s.DebtCount},
		{"Total income", s.TotalIncome},
		{"Total expenses", s.TotalExpenses},
		{"Protected expenses", s.ProtectedAmount},
		{"Available for debt", s.AvailableForDebt},
		{"Budget health (%)", s.BudgetHealth},
		{"Extra pool", s.ExtraPool},
		{"Estimated interest saved", r.Savings.EstimatedSaved},
		{"Months saved", r.Savings.MonthsSaved},
	}
	if err := wb.table(SheetSummary, []string{"Metric", "Value"}, rows); err != nil {
		return err
	}
	return wb.f.SetColWidth(SheetSummary, "A", "A", 26)
}

func (wb *workbook) debts(r core.Report) error {
	rows := make([][]any, 0, len(r.Debts))
	for _, v := range r.Debts {
		rows = append(rows, []any{
			v.Name, string(v.Category), v.InterestRate.Decimal().InexactFloat64(),
			v.Balance, v.TotalPaid, v.RemainingBalance, v.PercentPaid,
			v.MinimumPayment, v.DueDay, string(v.Priority),
		})
	}
	headers := []string{"Name", "Category", "Rate (%)", "Balance", "Paid", "Remaining", "Paid (%)", "Minimum", "Due day", "Priority"}
	if err := wb.newSheet(SheetDebts); err != nil {
		return err
	}
	if err := wb.table(SheetDebts, headers, rows); err != nil {
		return err
	}
	return wb.f.SetColWidth(SheetDebts, "A", "B", 20)
}

func (wb *workbook) payments(r core.Report) error {
	var rows [][]any
	for _, v := range r.Debts {
		for _, p := range v.Payments {
			rows = append(rows, []any{p.PaidAt.Format("2006-01-02"), v.Name, string(p.Kind), p.Amount})
		}
	}
	if err := wb.newSheet(SheetPayments); err != nil {
		return err
	}
	return wb.table(SheetPayments, []string{"Date", "Debt", "Kind", "Amount"}, rows)
}

func (wb *workbook) budget(r core.Report) error {
	rows := make([][]any, 0, len(r.Budget.ByCategory))
	for _, c := range r.Budget.ByCategory {
		rows = append(rows, []any{c.Name, c.Amount, c.Percent, c.Protected})
	}
	if err := wb.newSheet(SheetBudget); err != nil {
		return err
	}
	return wb.table(SheetBudget, []string{"Category", "Amount", "Share of income (%)", "Protected"}, rows)
}

func (wb *workbook) projection(r core.Report) error {
	rows := make([][]any, 0, len(r.Projection.Points))
	for _, p := range r.Projection.Points {
		rows = append(rows, []any{p.Month, p.TotalRemaining})
	}
	if err := wb.newSheet(SheetProjection); err != nil {
		return err
	}
	return wb.table(SheetProjection, []string{"Month", "Remaining"}, rows)
}

func (wb *workbook) upcoming(r core.Report) error {
	rows := make([][]any, 0, len(r.Upcoming))
	for _, it := range r.Upcoming {
		rows = append(rows, []any{it.Name, it.DueDate.Format("2006-01-02"), it.DaysUntilDue, it.MinimumPayment, it.Overdue})
	}
	if err := wb.newSheet(SheetUpcoming); err != nil {
		return err
	}
	return wb.table(SheetUpcoming, []string{"Debt", "Due date", "Days", "Minimum", "Overdue"}, rows)
}

func (wb *workbook) newSheet(name string) error {
	_, err := wb.f.NewSheet(name)
	return err
}

// table writes a bold header row followed by rows. Money values become
// numeric cells with a thousands format.
func (wb *workbook) table(sheet string, headers []string, rows [][]any) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := wb.f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := wb.f.SetCellStyle(sheet, "A1", last, wb.header); err != nil {
		return err
	}

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if m, ok := v.(core.Money); ok {
				if err := wb.f.SetCellValue(sheet, cell, m.Decimal().InexactFloat64()); err != nil {
					return err
				}
				if err := wb.f.SetCellStyle(sheet, cell, cell, wb.amount); err != nil {
					return err
				}
				continue
			}
			if err := wb.f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("%s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

package transfer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"xpense/internal/core"
	"xpense/internal/format"
)

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
)

// WriteXLSX writes a workbook with every transaction and the budget summary
// of one period.
func WriteXLSX(w io.Writer, txns []core.Transaction, summary core.MonthlyBudgetSummary, period core.Period, cfg format.Config) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), transactionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeTransactionsSheet(f, txns, cfg); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, summary, period); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func writeTransactionsSheet(f *excelize.File, txns []core.Transaction, cfg format.Config) error {
	if err := setRow(f, transactionsSheet, 1, "Date", "Description", "Category", "Type", "Amount", "Note"); err != nil {
		return err
	}
	for i, t := range txns {
		kind := "Income"
		if t.IsExpense {
			kind = "Expense"
		}
		if err := setRow(f, transactionsSheet, i+2,
			cfg.Date(t.Date), t.Description, t.Category, kind, t.Amount.InexactFloat64(), t.Note); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s core.MonthlyBudgetSummary, period core.Period) error {
	if err := setRow(f, summarySheet, 1, "Period", period.Label()); err != nil {
		return err
	}
	if err := setRow(f, summarySheet, 3, "Category", "Budget", "Spent", "Remaining", "Used %", "Status"); err != nil {
		return err
	}
	row := 4
	for _, c := range s.CategoryBreakdown {
		if err := setRow(f, summarySheet, row, c.CategoryName,
			c.Budget.InexactFloat64(), c.Spent.InexactFloat64(), c.Remaining.InexactFloat64(),
			c.Percentage, string(c.WarningLevel)); err != nil {
			return err
		}
		row++
	}
	return setRow(f, summarySheet, row+1, "Total",
		s.TotalBudget.InexactFloat64(), s.TotalSpent.InexactFloat64(), s.TotalRemaining.InexactFloat64(),
		s.Percentage, string(s.WarningLevel))
}

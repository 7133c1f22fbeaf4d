package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"

	"xpense/internal/core"
	"xpense/internal/format"
	"xpense/internal/services"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#34C759"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3B30"))
)

// tierStyle colours text with the tier's display colour.
func tierStyle(w core.WarningLevel) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(w.Color())).Bold(w.Severity() >= 2)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func signedPercent(p float64) string {
	if p > 0 {
		return "+" + format.Percent(p)
	}
	return format.Percent(p)
}

// changeText colours a month-over-month change; higherIsBad picks which
// direction is red.
func changeText(cfg format.Config, d decimal.Decimal, pct float64, higherIsBad bool) string {
	sign := ""
	switch d.Sign() {
	case 1:
		sign = "+"
	case -1:
		sign = "-"
	}
	s := fmt.Sprintf("%s%s (%s)", sign, cfg.Amount(d), signedPercent(pct))
	switch {
	case d.IsZero():
		return s
	case d.IsPositive() == higherIsBad:
		return text.FgRed.Sprint(s)
	default:
		return text.FgGreen.Sprint(s)
	}
}

func renderBudget(w io.Writer, r services.BudgetReport, cfg format.Config) {
	s := r.Summary
	fmt.Fprintln(w, titleStyle.Render("Budget "+r.Period.Label()))

	if !s.TotalBudget.IsPositive() {
		fmt.Fprintln(w, subtleStyle.Render(fmt.Sprintf("No budget set. Spent %s this month.", cfg.Amount(s.TotalSpent))))
	} else {
		fmt.Fprintf(w, "%s of %s spent, %s\n",
			cfg.Amount(s.TotalSpent), cfg.Amount(s.TotalBudget),
			tierStyle(s.WarningLevel).Render(format.Percent(s.Percentage)+" "+string(s.WarningLevel)))
	}
	if len(s.CategoryBreakdown) == 0 {
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Spent", "Budget", "Remaining", "Used", "Status"})
	for _, c := range s.CategoryBreakdown {
		remaining := cfg.Amount(c.Remaining)
		if c.IsOverBudget {
			remaining = text.FgRed.Sprint(remaining)
		}
		t.AppendRow(table.Row{
			c.CategoryName,
			cfg.Amount(c.Spent),
			cfg.Amount(c.Budget),
			remaining,
			format.Percent(c.Percentage),
			tierStyle(c.WarningLevel).Render(string(c.WarningLevel)),
		})
	}
	t.AppendFooter(table.Row{"Total", cfg.Amount(s.TotalSpent), cfg.Amount(s.TotalBudget), cfg.Amount(s.TotalRemaining), format.Percent(s.Percentage), ""})
	t.Render()
}

func renderComparison(w io.Writer, r services.BudgetReport, cfg format.Config) {
	c := r.Comparison
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s compared with %s", r.Period.Label(), r.Period.Previous().Label())))

	t := newTable(w)
	t.AppendHeader(table.Row{"", "This month", "Last month", "Change"})
	t.AppendRow(table.Row{"Spent", cfg.Amount(c.CurrentMonth.Spent), cfg.Amount(c.PreviousMonth.Spent),
		changeText(cfg, c.Changes.SpentChange, c.Changes.SpentChangePercent, true)})
	t.AppendRow(table.Row{"Income", cfg.Amount(c.CurrentMonth.Income), cfg.Amount(c.PreviousMonth.Income),
		changeText(cfg, c.Changes.IncomeChange, c.Changes.IncomeChangePercent, false)})
	t.AppendFooter(table.Row{"Net", cfg.Amount(c.CurrentMonth.Net), cfg.Amount(c.PreviousMonth.Net), ""})
	t.Render()
}

func renderCategories(w io.Writer, cats []core.Category, cfg format.Config) {
	if len(cats) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("No categories found. Use 'xpensectl seed' to restore the defaults."))
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Monthly budget", "Description"})
	for _, c := range cats {
		budget := subtleStyle.Render("none")
		if c.HasBudget() {
			budget = cfg.Amount(c.Budget())
		}
		t.AppendRow(table.Row{c.ID, c.Name, budget, c.Description})
	}
	t.Render()
}

func renderRecurring(w io.Writer, items []core.RecurringExpense, cfg format.Config) {
	if len(items) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("No recurring expenses."))
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Description", "Category", "Amount", "Frequency", "Next run", "Active"})
	for _, re := range items {
		active := successStyle.Render("yes")
		if !re.IsActive {
			active = subtleStyle.Render("no")
		}
		t.AppendRow(table.Row{re.ID, re.Description, re.Category, cfg.Amount(re.Amount), re.Frequency, cfg.Date(re.NextRun), active})
	}
	t.Render()
}

func renderImport(w io.Writer, s services.ImportSummary) {
	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("Imported %d transactions", s.Imported)))
	if len(s.NewCategories) > 0 {
		fmt.Fprintf(w, "New categories: %v\n", s.NewCategories)
	}
	if len(s.Errors) > 0 {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("%d rows skipped", len(s.Errors))))
		t := newTable(w)
		t.AppendHeader(table.Row{"Row", "Error"})
		for _, e := range s.Errors {
			t.AppendRow(table.Row{e.Row, e.Error})
		}
		t.Render()
	}
}

func budgetMessage(name string, b *decimal.Decimal) string {
	if b == nil {
		return fmt.Sprintf("Cleared %s budget", name)
	}
	return fmt.Sprintf("Set %s budget to %s", name, b.String())
}

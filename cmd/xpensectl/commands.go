package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"xpense/internal/core"
	"xpense/internal/services"
)

func importCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "import <csv|ofx> <file>",
		Short: "Import transactions from a CSV export or an OFX bank statement",
		Long: `Import transactions into the database.

CSV files need the columns amount, category, description and date. Invalid
rows are skipped and reported. OFX statements carry no categories: rows are
filed under --category unless GEMINI_API_KEY is set.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"csv", "ofx"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, path := strings.ToLower(args[0]), args[1]
			if kind != "csv" && kind != "ofx" {
				return fmt.Errorf("unknown import format %q (want csv or ofx)", args[0])
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			bar := newReadProgress(cmd.ErrOrStderr(), info.Size(), "Reading "+info.Name())
			r := io.TeeReader(f, bar)

			var summary services.ImportSummary
			if kind == "csv" {
				summary, err = current.transfer.ImportCSV(cmd.Context(), r)
			} else {
				summary, err = current.transfer.ImportOFX(cmd.Context(), r, category)
			}
			_ = bar.Finish()
			if err != nil {
				return err
			}
			renderImport(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "Other", "category for OFX rows")
	return cmd
}

func newReadProgress(w io.Writer, size int64, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <csv|xlsx> <file>",
		Short: "Export every transaction to CSV or Excel",
		Long: `Export every stored transaction. The Excel workbook also carries a
Summary sheet with the current month budget.`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"csv", "xlsx"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, path := strings.ToLower(args[0]), args[1]
			if kind != "csv" && kind != "xlsx" {
				return fmt.Errorf("unknown export format %q (want csv or xlsx)", args[0])
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			w := bufio.NewWriter(f)

			if kind == "csv" {
				err = current.transfer.ExportCSV(cmd.Context(), w)
			} else {
				err = current.transfer.ExportXLSX(cmd.Context(), w)
			}
			if err == nil {
				err = w.Flush()
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", kind, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Exported to "+path))
			return nil
		},
	}
}

func budgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Show the current month budget by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := current.budget.Report(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := current.repo.FormatConfig(cmd.Context())
			if err != nil {
				return err
			}
			renderBudget(cmd.OutOrStdout(), report, cfg)
			return nil
		},
	}
}

func compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Compare this month's spending and income with last month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := current.budget.Report(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := current.repo.FormatConfig(cmd.Context())
			if err != nil {
				return err
			}
			renderComparison(cmd.OutOrStdout(), report, cfg)
			return nil
		},
	}
}

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories and set their monthly budgets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cats, err := current.repo.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := current.repo.FormatConfig(cmd.Context())
			if err != nil {
				return err
			}
			renderCategories(cmd.OutOrStdout(), cats, cfg)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "budget <name> <amount|none>",
		Short: "Set or clear the monthly budget of a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := core.ParseBudget(args[1])
			if err != nil {
				return err
			}
			if err := current.repo.SetCategoryBudget(cmd.Context(), args[0], b); err != nil {
				return fmt.Errorf("set budget of %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(budgetMessage(args[0], b)))
			return nil
		},
	})

	return cmd
}

func globalBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "global-budget <amount|none>",
		Short: "Set or clear the budget that overrides the sum of category budgets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := core.ParseBudget(args[0])
			if err != nil {
				return err
			}
			if err := current.repo.SetGlobalBudget(cmd.Context(), b); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(budgetMessage("global", b)))
			return nil
		},
	}
}

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage recurring expenses",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Create the transactions of every due recurring expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			processor := services.NewRecurringProcessor(current.repo, current.transactions)
			n, err := processor.ProcessDue(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Created %d transactions", n)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recurring expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := current.recurring.List(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := current.repo.FormatConfig(cmd.Context())
			if err != nil {
				return err
			}
			renderRecurring(cmd.OutOrStdout(), items, cfg)
			return nil
		},
	})

	var (
		note  string
		start string
	)
	add := &cobra.Command{
		Use:   "add <description> <category> <amount> <daily|weekly|monthly|yearly>",
		Short: "Add a recurring expense",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseAmount(args[2])
			if err != nil {
				return err
			}
			next := time.Now()
			if start != "" {
				if next, err = time.ParseInLocation("2006-01-02", start, time.Local); err != nil {
					return fmt.Errorf("invalid --start %q: %w", start, err)
				}
			}
			re := core.RecurringExpense{
				Description: args[0],
				Category:    args[1],
				Amount:      amount,
				Frequency:   core.Frequency(strings.ToLower(args[3])),
				Note:        note,
				NextRun:     next,
				IsActive:    true,
			}
			saved, err := current.recurring.Add(cmd.Context(), re)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Added recurring expense %d", saved.ID)))
			return nil
		},
	}
	add.Flags().StringVar(&note, "note", "", "note copied to every created transaction")
	add.Flags().StringVar(&start, "start", "", "first run date, YYYY-MM-DD (default: now)")
	cmd.AddCommand(add)

	cmd.AddCommand(recurringUpdateCmd())

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recurring expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := current.recurring.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Deleted recurring expense %d", id)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "skip <id>",
		Short: "Skip the next occurrence of a recurring expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			re, err := current.recurring.Skip(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(
				fmt.Sprintf("Skipped one occurrence of %d, next run %s", id, re.NextRun.Format("2006-01-02"))))
			return nil
		},
	})

	return cmd
}

func recurringUpdateCmd() *cobra.Command {
	var (
		amount, category, description string
		note, frequency, next         string
		anchor                        int
		active                        bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a recurring expense",
		Long: `Change the fields given as flags and keep the others. Moving --next
also moves the day of month later runs aim for, unless --anchor is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var p services.RecurringPatch
			flags := cmd.Flags()
			if flags.Changed("amount") {
				d, err := core.ParseAmount(amount)
				if err != nil {
					return err
				}
				p.Amount = &d
			}
			if flags.Changed("category") {
				p.Category = &category
			}
			if flags.Changed("description") {
				p.Description = &description
			}
			if flags.Changed("note") {
				p.Note = &note
			}
			if flags.Changed("frequency") {
				f := core.Frequency(strings.ToLower(frequency))
				p.Frequency = &f
			}
			if flags.Changed("next") {
				t, err := time.ParseInLocation("2006-01-02", next, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --next %q: %w", next, err)
				}
				p.NextRun = &t
			}
			if flags.Changed("anchor") {
				p.AnchorDay = &anchor
			}
			if flags.Changed("active") {
				p.IsActive = &active
			}

			if _, err := current.recurring.Update(cmd.Context(), id, p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Updated recurring expense %d", id)))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&amount, "amount", "", "amount")
	f.StringVar(&category, "category", "", "category")
	f.StringVar(&description, "description", "", "description")
	f.StringVar(&note, "note", "", "note copied to every created transaction")
	f.StringVar(&frequency, "frequency", "", "daily, weekly, monthly or yearly")
	f.StringVar(&next, "next", "", "next run date, YYYY-MM-DD")
	f.IntVar(&anchor, "anchor", 0, "day of month for monthly and yearly runs")
	f.BoolVar(&active, "active", true, "whether the expense still runs")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func seedCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace every category with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("seed deletes existing categories; rerun with --yes")
			}
			if err := current.repo.SeedDefaultCategories(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Default categories restored"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm")
	return cmd
}

func clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("clear deletes every transaction; rerun with --yes")
			}
			n, err := current.transactions.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Deleted %d transactions", n)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm")
	return cmd
}

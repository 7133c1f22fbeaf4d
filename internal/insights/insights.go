// Package insights asks a language model for spending advice and category
// suggestions.
package insights

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"xpense/internal/core"
	"xpense/internal/format"
)

// Messages returned instead of model output.
const (
	MsgNoAPIKey       = "Please add your Gemini API key in Settings to get AI insights."
	MsgNoTransactions = "No transactions found to analyze."
	MsgNoInsights     = "Could not generate insights."
	MsgUnavailable    = "Unable to generate insights right now."
)

const fallbackCategory = "Other"

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Advisor builds prompts from transactions. A nil Generator means no API key
// is configured and every call degrades to a canned answer.
type Advisor struct {
	gen Generator
}

func NewAdvisor(gen Generator) *Advisor {
	return &Advisor{gen: gen}
}

func (a *Advisor) Enabled() bool {
	return a != nil && a.gen != nil
}

// Insights returns three money saving tips based on txns. It never fails;
// problems are logged and reported with one of the Msg constants.
func (a *Advisor) Insights(ctx context.Context, txns []core.Transaction, cfg format.Config) string {
	if !a.Enabled() {
		return MsgNoAPIKey
	}
	if len(txns) == 0 {
		return MsgNoTransactions
	}

	text, err := a.gen.Generate(ctx, insightsPrompt(txns, cfg))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to generate insights", "error", err, "transactions", len(txns))
		return MsgUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return MsgNoInsights
	}
	return strings.TrimSpace(text)
}

func money(cfg format.Config, d decimal.Decimal) string {
	return cfg.Symbol() + d.StringFixed(2)
}

func insightsPrompt(txns []core.Transaction, cfg format.Config) string {
	stats := core.ComputeStats(txns)
	symbol, code := cfg.Symbol(), cfg.CurrencyCode()

	lines := make([]string, len(txns))
	for i, t := range txns {
		lines[i] = fmt.Sprintf("%s: %s - %s (%s)", cfg.Date(t.Date), t.Description, money(cfg, t.Amount), t.Category)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a friendly financial assistant. Analyze these transactions in %s (%s, symbol: %s).\n\n",
		cfg.CurrencyName(), code, symbol)
	b.WriteString("CONTEXT:\n")
	fmt.Fprintf(&b, "- Total Income: %s\n", money(cfg, stats.TotalIncome))
	fmt.Fprintf(&b, "- Total Expenses: %s\n", money(cfg, stats.TotalExpense))
	fmt.Fprintf(&b, "- Net Balance: %s%s\n", symbol, stats.Balance.StringFixed(2))
	fmt.Fprintf(&b, "- Number of Transactions: %d\n", len(txns))
	fmt.Fprintf(&b, "- Date Format: %s\n\n", cfg.DateFormatName())
	b.WriteString("TRANSACTIONS:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nINSTRUCTIONS:\n")
	b.WriteString("1. Provide 3 short, encouraging, and actionable tips to save money or improve financial health.\n")
	fmt.Fprintf(&b, "2. Use the currency symbol %s when mentioning amounts.\n", symbol)
	b.WriteString("3. Keep the tone friendly, warm, and professional.\n")
	b.WriteString("4. Be specific and reference actual spending patterns from the data.\n")
	b.WriteString("5. Do not use Markdown headers (no # symbols). Use plain text with bullet points or numbered lists.\n")
	b.WriteString("6. Keep each tip to 1-2 sentences maximum.\n\n")
	b.WriteString("Focus on practical advice that the user can implement immediately.")
	return b.String()
}

// SuggestCategory asks the model to file description under one of categories.
// Anything but an exact (case-insensitive) category name yields "Other".
func (a *Advisor) SuggestCategory(ctx context.Context, description string, categories []core.Category, cfg format.Config) string {
	if !a.Enabled() || strings.TrimSpace(description) == "" || len(categories) == 0 {
		return fallbackCategory
	}

	text, err := a.gen.Generate(ctx, categoryPrompt(description, categories, cfg))
	if err != nil {
		slog.WarnContext(ctx, "Category suggestion failed", "error", err)
		return fallbackCategory
	}
	answer := strings.TrimSpace(text)
	for _, c := range categories {
		if strings.EqualFold(c.Name, answer) {
			return c.Name
		}
	}
	return fallbackCategory
}

func categoryPrompt(description string, categories []core.Category, cfg format.Config) string {
	var b strings.Builder
	b.WriteString("You are a smart expense categorization assistant.\n\n")
	fmt.Fprintf(&b, "TASK: Categorize this transaction: %q\n\n", description)
	b.WriteString("AVAILABLE CATEGORIES:\n")
	for _, c := range categories {
		if c.Description != "" {
			fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Description)
		} else {
			fmt.Fprintf(&b, "- %s\n", c.Name)
		}
	}
	b.WriteString("\nCONTEXT:\n")
	fmt.Fprintf(&b, "- User's currency: %s (%s)\n", cfg.CurrencyName(), cfg.CurrencyCode())
	fmt.Fprintf(&b, "- Consider common spending patterns in %s regions\n\n", cfg.CurrencyCode())
	b.WriteString("Return ONLY the category name from the list above. No explanation needed.")
	return b.String()
}

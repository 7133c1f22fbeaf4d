package transfer

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"xpense/internal/core"
)

var (
	severityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)`)
	openTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX repairs formatting quirks that real bank exports carry and
// ofxgo rejects.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRe.ReplaceAllString(content, "$1>")
}

// ParseOFX reads bank and credit card statements. Debits (negative amounts)
// become expenses and credits become income. OFX carries no categories, so
// every transaction is filed under category.
func ParseOFX(r io.Reader, existingCategories []string, category string, now time.Time) (ImportResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read ofx: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse ofx: %w", err)
	}

	var lists [][]ofxgo.Transaction
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList.Transactions)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			lists = append(lists, stmt.BankTranList.Transactions)
		}
	}

	var (
		result  ImportResult
		tracker = newCategoryTracker(existingCategories)
		row     int
	)
	for _, list := range lists {
		for _, st := range list {
			row++
			t, err := convertOFX(st, category, now)
			if err != nil {
				result.Errors = append(result.Errors, RowError{Row: row, Error: err.Error()})
				continue
			}
			tracker.see(t.Category)
			result.Valid = append(result.Valid, t)
		}
	}
	result.NewCategories = tracker.added

	slog.Info("Parsed OFX file",
		"statements", len(lists),
		"valid", len(result.Valid),
		"rejected", len(result.Errors))
	return result, nil
}

func convertOFX(st ofxgo.Transaction, category string, now time.Time) (core.Transaction, error) {
	amount, err := decimal.NewFromString(st.TrnAmt.FloatString(2))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}

	t := core.Transaction{
		Amount:      amount.Abs(),
		Category:    category,
		Description: ofxDescription(st),
		Date:        st.DtPosted.Time,
		IsExpense:   amount.IsNegative(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if memo := strings.TrimSpace(string(st.Memo)); memo != "" && memo != t.Description {
		t.Note = memo
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

func ofxDescription(st ofxgo.Transaction) string {
	if st.Payee != nil && st.Payee.Name != "" {
		return strings.TrimSpace(string(st.Payee.Name))
	}
	if name := strings.TrimSpace(string(st.Name)); name != "" {
		return name
	}
	return strings.TrimSpace(string(st.Memo))
}

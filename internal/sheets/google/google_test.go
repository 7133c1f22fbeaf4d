package google

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"xpense/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), "  ", "")
	if err == nil {
		t.Fatal("expected error for missing spreadsheet ID")
	}
	if err.Error() != "missing spreadsheet ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), "sheet-id", "")
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_AppendValidates(t *testing.T) {
	c := &Client{spreadsheetID: "test"}

	_, err := c.Append(context.Background(), core.Transaction{})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("expected validation error, got %v", err)
	}

	valid := core.Transaction{
		Amount: decimal.NewFromInt(5), Category: "Food", Description: "Lunch",
		Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), IsExpense: true,
	}
	_, err = c.Append(context.Background(), valid)
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("expected not initialized error, got %v", err)
	}
}

func TestTransactionRow(t *testing.T) {
	tx := core.Transaction{
		ID: 7, Amount: decimal.RequireFromString("12.5"), Category: "Food", Description: "Lunch",
		Note: "team", Date: time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC), IsExpense: true,
	}
	row := transactionRow(tx)
	if len(row) != 7 {
		t.Fatalf("expected 7 columns, got %d", len(row))
	}
	if row[0] != "2025-03-01" || row[3] != -12.5 || row[4] != "expense" || row[6] != int64(7) {
		t.Errorf("unexpected row: %v", row)
	}

	tx.IsExpense = false
	if row := transactionRow(tx); row[3] != 12.5 || row[4] != "income" {
		t.Errorf("unexpected income row: %v", row)
	}
}

func TestFirstColumn(t *testing.T) {
	values := [][]any{
		{"Food"},
		{},
		{"  "},
		{"# comment"},
		{"Transport", "ignored"},
		{"Food"},
	}
	got := firstColumn(values)
	if len(got) != 2 || got[0] != "Food" || got[1] != "Transport" {
		t.Errorf("unexpected categories: %v", got)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Transactions", 2025, "2025 Transactions"},
		{"2024 Transactions", 2025, "2024 Transactions"},
		{"  Spese  ", 2025, "2025 Spese"},
		{"", 2025, ""},
		{"1234", 2025, "2025 1234"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

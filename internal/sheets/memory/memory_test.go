package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"xpense/internal/core"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	s := New([]string{"A", "B", "A", " "})
	cats, err := s.ListCategories(context.Background())
	if err != nil || len(cats) != 2 {
		t.Fatalf("unexpected list: cats=%v err=%v", cats, err)
	}

	ref, err := s.Append(context.Background(), core.Transaction{
		Date:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Description: "t",
		Amount:      decimal.NewFromInt(1),
		Category:    "A",
		IsExpense:   true,
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if len(s.Rows()) != 1 {
		t.Fatalf("expected 1 row, got %d", len(s.Rows()))
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New(nil)
	if _, err := s.Append(context.Background(), core.Transaction{}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(s.Rows()) != 0 {
		t.Fatal("invalid transaction must not be stored")
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xpense/internal/core"
	"xpense/internal/services"
	"xpense/internal/storage"
)

func openTestApp(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "xpense.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	current = &app{repo: repo, recurring: services.NewRecurringService(repo)}
	t.Cleanup(func() {
		current = nil
		_ = repo.Close()
	})
	return repo
}

func runRecurring(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := recurringCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func addRent(t *testing.T, repo *storage.SQLiteRepository) core.RecurringExpense {
	t.Helper()
	re, err := repo.AddRecurring(context.Background(), core.RecurringExpense{
		Amount:      dec("900"),
		Category:    "Housing",
		Description: "Rent",
		Frequency:   core.Monthly,
		NextRun:     time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC),
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("add recurring: %v", err)
	}
	return re
}

func TestRecurringSkipCommand(t *testing.T) {
	repo := openTestApp(t)
	re := addRent(t, repo)

	out, err := runRecurring(t, "skip", "1")
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if !strings.Contains(out, "next run 2025-02-28") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := runRecurring(t, "skip", "1"); err != nil {
		t.Fatalf("second skip: %v", err)
	}
	got, err := repo.GetRecurring(context.Background(), re.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if want := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC); !got.NextRun.Equal(want) {
		t.Errorf("next run = %v, want %v", got.NextRun, want)
	}

	if _, err := runRecurring(t, "skip", "abc"); err == nil {
		t.Error("expected an error for a non-numeric id")
	}
	if _, err := runRecurring(t, "skip", "42"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRecurringUpdateCommand(t *testing.T) {
	repo := openTestApp(t)
	re := addRent(t, repo)

	out, err := runRecurring(t, "update", "1", "--amount", "950", "--active=false", "--note", "flat")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(out, "Updated recurring expense 1") {
		t.Errorf("unexpected output:\n%s", out)
	}

	got, err := repo.GetRecurring(context.Background(), re.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Amount.Equal(dec("950")) || got.IsActive || got.Note != "flat" {
		t.Errorf("unexpected template: %+v", got)
	}
	if got.Description != "Rent" || got.Frequency != core.Monthly {
		t.Errorf("flags not given must be kept: %+v", got)
	}

	if _, err := runRecurring(t, "update", "1", "--frequency", "hourly"); !errors.Is(err, core.ErrInvalidFrequency) {
		t.Errorf("expected invalid frequency, got %v", err)
	}
}

func TestRecurringDeleteCommand(t *testing.T) {
	repo := openTestApp(t)
	re := addRent(t, repo)

	if _, err := runRecurring(t, "delete", "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetRecurring(context.Background(), re.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected template to be gone, got %v", err)
	}
	if _, err := runRecurring(t, "delete", "1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}

	out, err := runRecurring(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No recurring expenses") {
		t.Errorf("unexpected list output:\n%s", out)
	}
}

// Package transfer moves transactions in and out of files: CSV export and
// import, OFX bank statement import and XLSX reports.
package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"xpense/internal/core"
)

// CSVHeader is the column order written by WriteCSV.
var CSVHeader = []string{"amount", "category", "description", "note", "date", "isExpense", "createdAt", "updatedAt"}

var requiredColumns = []string{"amount", "category", "description", "date"}

const maxReportedErrors = 5

var (
	ErrEmptyFile     = errors.New("CSV file is empty or has no data rows")
	ErrColumnCount   = errors.New("column count mismatch")
	ErrMissingColumn = errors.New("missing required columns")
)

// RowError describes a rejected input row. Row is 1-based and counts the header.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult is the outcome of parsing an import file. Valid rows are ready
// to store; NewCategories lists category names not yet known, in first-seen order.
type ImportResult struct {
	Valid         []core.Transaction `json:"-"`
	Errors        []RowError         `json:"errors"`
	NewCategories []string           `json:"newCategories"`
}

type categoryTracker struct {
	known map[string]bool
	added []string
}

func newCategoryTracker(existing []string) *categoryTracker {
	known := make(map[string]bool, len(existing))
	for _, name := range existing {
		known[name] = true
	}
	return &categoryTracker{known: known}
}

func (c *categoryTracker) see(name string) {
	if c.known[name] {
		return
	}
	c.known[name] = true
	c.added = append(c.added, name)
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// WriteCSV writes txns with a header row. Amounts are magnitudes; the
// isExpense column carries the direction.
func WriteCSV(w io.Writer, txns []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range txns {
		record := []string{
			t.Amount.String(),
			t.Category,
			t.Description,
			t.Note,
			formatStamp(t.Date),
			strconv.FormatBool(t.IsExpense),
			formatStamp(t.CreatedAt),
			formatStamp(t.UpdatedAt),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write transaction %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseCSV reads and validates an import file. Structural problems (missing
// header columns, a row with the wrong number of fields) abort the import;
// malformed lines and invalid values only reject their own row. Stray quotes
// inside unquoted fields are kept as text.
func ParseCSV(r io.Reader, existingCategories []string, now time.Time) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ImportResult{}, ErrEmptyFile
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv header: %w", err)
	}

	header := make([]string, len(first))
	index := make(map[string]int, len(header))
	for i, h := range first {
		header[i] = strings.ToLower(strings.TrimSpace(h))
		index[header[i]] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return ImportResult{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	var (
		result  ImportResult
		tracker = newCategoryTracker(existingCategories)
		row     = 1
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			result.Errors = append(result.Errors, RowError{Row: row, Error: perr.Err.Error()})
			continue
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) != len(header) {
			return ImportResult{}, fmt.Errorf("row %d: %w (expected %d, got %d)", row, ErrColumnCount, len(header), len(rec))
		}
		field := func(name string) string {
			if j, ok := index[strings.ToLower(name)]; ok {
				return strings.TrimSpace(rec[j])
			}
			return ""
		}

		t, err := parseRow(field, now)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: row, Error: err.Error()})
			continue
		}
		tracker.see(t.Category)
		result.Valid = append(result.Valid, t)
	}
	if row == 1 {
		return ImportResult{}, ErrEmptyFile
	}
	result.NewCategories = tracker.added
	return result, nil
}

func parseRow(field func(string) string, now time.Time) (core.Transaction, error) {
	var t core.Transaction

	amount, err := core.ParseSignedAmount(field("amount"))
	if err != nil {
		return t, errors.New("invalid amount (must be a number)")
	}
	t.IsExpense = true
	if v := field("isExpense"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return t, fmt.Errorf("invalid isExpense value %q", v)
		}
		t.IsExpense = b
	}
	if amount.IsNegative() {
		t.IsExpense = true
		amount = amount.Neg()
	}
	t.Amount = amount

	if t.Category = field("category"); t.Category == "" {
		return t, errors.New("category is required")
	}
	if t.Description = field("description"); t.Description == "" {
		return t, errors.New("description is required")
	}
	t.Note = field("note")

	date, ok := parseDate(field("date"))
	if !ok {
		return t, errors.New("invalid date format (use ISO format: YYYY-MM-DD)")
	}
	t.Date = date

	t.CreatedAt, t.UpdatedAt = now, now
	if c, ok := parseDate(field("createdAt")); ok {
		t.CreatedAt = c
	}
	if u, ok := parseDate(field("updatedAt")); ok {
		t.UpdatedAt = u
	}

	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatValidationErrors renders the first few row errors, one per line.
func FormatValidationErrors(errs []RowError) string {
	if len(errs) == 0 {
		return ""
	}
	lines := make([]string, 0, maxReportedErrors+1)
	for _, e := range errs[:min(len(errs), maxReportedErrors)] {
		lines = append(lines, fmt.Sprintf("Row %d: %s", e.Row, e.Error))
	}
	if len(errs) > maxReportedErrors {
		lines = append(lines, fmt.Sprintf("... and %d more errors", len(errs)-maxReportedErrors))
	}
	return strings.Join(lines, "\n")
}

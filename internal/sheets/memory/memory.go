package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"xpense/internal/core"
	ports "xpense/internal/sheets"
)

var (
	_ ports.TransactionWriter = (*Store)(nil)
	_ ports.CategoryReader    = (*Store)(nil)
)

// Store is an in-process spreadsheet stand-in used when no spreadsheet is
// configured.
type Store struct {
	mu    sync.Mutex
	cats  []string
	items []core.Transaction
}

func New(cats []string) *Store {
	return &Store{cats: dedupe(cats)}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

func (s *Store) ListCategories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cats...), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

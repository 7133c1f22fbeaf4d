package sheets

import (
	"context"

	"xpense/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionWriter mirrors a stored transaction as a spreadsheet row.
	TransactionWriter interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// CategoryReader lists category names maintained in the spreadsheet.
	CategoryReader interface {
		ListCategories(ctx context.Context) ([]string, error)
	}
)

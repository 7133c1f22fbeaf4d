package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"xpense/internal/cache"
	"xpense/internal/core"
	"xpense/internal/format"
	"xpense/internal/insights"
	"xpense/internal/log"
	"xpense/internal/services"
	appweb "xpense/web"
)

// Store is the persistence the API reads and edits directly. Writes that
// must publish events go through the services instead.
type Store interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	SearchTransactions(ctx context.Context, query string) ([]core.Transaction, error)

	ListCategories(ctx context.Context) ([]core.Category, error)
	AddCategory(ctx context.Context, c core.Category) (core.Category, error)
	RenameCategory(ctx context.Context, oldName, newName string) error
	SetCategoryBudget(ctx context.Context, name string, budget *decimal.Decimal) error
	DeleteCategory(ctx context.Context, name string) error

	GlobalBudget(ctx context.Context) (*decimal.Decimal, error)
	SetGlobalBudget(ctx context.Context, budget *decimal.Decimal) error
	FormatConfig(ctx context.Context) (format.Config, error)
	SetFormatConfig(ctx context.Context, cfg format.Config) error

	Ping(ctx context.Context) error
}

// Deps wires the server to the application.
type Deps struct {
	Store        Store
	Transactions *services.TransactionService
	Budget       *services.BudgetService
	Transfer     *services.TransferService
	Recurring    *services.RecurringService
	Advisor      *insights.Advisor // nil disables insights
	Logger       *log.Logger

	CacheSize int
	CacheTTL  time.Duration
	RateLimit int // write requests per client per minute
}

type Server struct {
	http.Server
	deps        Deps
	templates   *template.Template
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	started     time.Time

	// reports caches the budget report per month label; writes purge it.
	reports *cache.LRUCache[services.BudgetReport]
	caches  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.New(log.DefaultConfig())
	}
	if deps.CacheSize <= 0 {
		deps.CacheSize = 100
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = 5 * time.Minute
	}

	mux := http.NewServeMux()
	s := &Server{
		deps:        deps,
		rateLimiter: newRateLimiter(deps.RateLimit),
		metrics:     &securityMetrics{},
		started:     time.Now(),
		reports:     cache.NewLRUCache[services.BudgetReport](deps.CacheSize, deps.CacheTTL),
		caches:      cache.NewManager(),
	}
	s.caches.Register(s.reports)
	s.caches.StartCleanup(10 * time.Minute)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	s.routes(mux)

	handler := s.withSecurity(mux)
	handler = log.Middleware(deps.Logger.WithComponent(log.ComponentHTTP))(handler)
	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions", s.handleClearTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("POST /api/categories/suggest", s.handleSuggestCategory)
	mux.HandleFunc("PUT /api/categories/{name}", s.handleRenameCategory)
	mux.HandleFunc("PUT /api/categories/{name}/budget", s.handleSetCategoryBudget)
	mux.HandleFunc("DELETE /api/categories/{name}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/settings/budget", s.handleGetGlobalBudget)
	mux.HandleFunc("PUT /api/settings/budget", s.handleSetGlobalBudget)
	mux.HandleFunc("GET /api/settings/format", s.handleGetFormat)
	mux.HandleFunc("PUT /api/settings/format", s.handleSetFormat)

	mux.HandleFunc("GET /api/budget", s.handleBudgetSummary)
	mux.HandleFunc("GET /api/budget/compare", s.handleCompare)
	mux.HandleFunc("GET /api/budget/at-risk", s.handleAtRisk)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	mux.HandleFunc("GET /api/recurring", s.handleListRecurring)
	mux.HandleFunc("POST /api/recurring", s.handleAddRecurring)
	mux.HandleFunc("PUT /api/recurring/{id}", s.handleUpdateRecurring)
	mux.HandleFunc("DELETE /api/recurring/{id}", s.handleDeleteRecurring)
	mux.HandleFunc("POST /api/recurring/{id}/skip", s.handleSkipRecurring)

	mux.HandleFunc("POST /api/import/csv", s.handleImportCSV)
	mux.HandleFunc("POST /api/import/ofx", s.handleImportOFX)
	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export/xlsx", s.handleExportXLSX)
	mux.HandleFunc("GET /api/insights", s.handleInsights)
}

// report returns the current month report, served from the cache while fresh.
func (s *Server) report(ctx context.Context) (services.BudgetReport, error) {
	key := core.MonthOf(s.deps.Budget.Clock().Now()).Label()
	if r, ok := s.reports.Get(key); ok {
		return r, nil
	}
	r, err := s.deps.Budget.Report(ctx)
	if err != nil {
		return services.BudgetReport{}, err
	}
	s.reports.Set(key, r)
	return r, nil
}

// invalidate drops cached reports after any write that can change them.
func (s *Server) invalidate() {
	s.reports.Purge()
}

// Shutdown stops background cleanups and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

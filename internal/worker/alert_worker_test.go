package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xpense/internal/amqp"
	"xpense/internal/core"
	"xpense/internal/services"
	"xpense/internal/sheets/memory"
	"xpense/internal/storage"
)

type stubReporter struct {
	report services.BudgetReport
	err    error
}

func (s *stubReporter) Report(context.Context) (services.BudgetReport, error) { return s.report, s.err }

type mapState map[string]string

func (m mapState) GetSetting(_ context.Context, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (m mapState) SetSetting(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

type txReader map[int64]core.Transaction

func (r txReader) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	t, ok := r[id]
	if !ok {
		return core.Transaction{}, storage.ErrNotFound
	}
	return t, nil
}

func reportWith(foodSpent string) services.BudgetReport {
	food := decimal.NewFromInt(100)
	cats := []core.Category{{ID: 1, Name: "Food", MonthlyBudget: &food}}
	txns := []core.Transaction{{
		Category: "Food", Amount: decimal.RequireFromString(foodSpent), Description: "x",
		Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), IsExpense: true,
	}}
	return services.BudgetReport{
		Period:  core.MonthOf(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)),
		Summary: core.AggregateMonthlyBudget(cats, txns, nil),
	}
}

func TestCheckBudgets_AlertsOncePerTier(t *testing.T) {
	rep := &stubReporter{report: reportWith("80")}
	state := mapState{}
	w := NewWorker(rep, state, txReader{}, nil)
	ctx := context.Background()

	alerts, err := w.CheckBudgets(ctx)
	require.NoError(t, err)
	// Food and the overall budget both reach the warning tier.
	require.Len(t, alerts, 2)
	assert.Equal(t, "Food", alerts[0].Category)
	assert.Equal(t, core.WarningWarning, alerts[0].Level)
	assert.True(t, alerts[1].Overall)
	assert.Equal(t, "warning", state["budget-alert:2025-03:category:Food"])
	assert.Equal(t, "warning", state["budget-alert:2025-03:overall"])

	alerts, err = w.CheckBudgets(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts, "same tier must not alert twice")

	rep.report = reportWith("120")
	alerts, err = w.CheckBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, core.WarningExceeded, alerts[0].Level)

	rep.report = reportWith("95")
	alerts, err = w.CheckBudgets(ctx)
	require.NoError(t, err)
	assert.Empty(t, alerts, "a lower tier after a higher one stays quiet")
}

func TestCheckBudgets_CategoryNamedLikeOverall(t *testing.T) {
	total := decimal.NewFromInt(100)
	rent := decimal.NewFromInt(1000)
	cats := []core.Category{
		{ID: 1, Name: "total", MonthlyBudget: &total},
		{ID: 2, Name: "Rent", MonthlyBudget: &rent},
	}
	day := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		{Category: "total", Amount: decimal.NewFromInt(100), Description: "x", Date: day, IsExpense: true},
		{Category: "Rent", Amount: decimal.NewFromInt(950), Description: "y", Date: day, IsExpense: true},
	}
	rep := &stubReporter{report: services.BudgetReport{
		Period:  core.MonthOf(day),
		Summary: core.AggregateMonthlyBudget(cats, txns, nil),
	}}
	require.Equal(t, core.WarningCritical, rep.report.Summary.WarningLevel)

	w := NewWorker(rep, mapState{}, txReader{}, nil)
	alerts, err := w.CheckBudgets(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	assert.Equal(t, "total", alerts[0].Category)
	assert.False(t, alerts[0].Overall)
	assert.Equal(t, core.WarningExceeded, alerts[0].Level)
	assert.Equal(t, "Rent", alerts[1].Category)
	assert.True(t, alerts[2].Overall)
	assert.Equal(t, core.WarningCritical, alerts[2].Level)
}

func TestCheckBudgets_UnderThreshold(t *testing.T) {
	w := NewWorker(&stubReporter{report: reportWith("10")}, mapState{}, txReader{}, nil)
	alerts, err := w.CheckBudgets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestHandleEvent_MirrorsCreated(t *testing.T) {
	tx := core.Transaction{
		ID: 3, Category: "Food", Amount: decimal.NewFromInt(5), Description: "Lunch",
		Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), IsExpense: true,
	}
	mirror := memory.New(nil)
	w := NewWorker(&stubReporter{report: reportWith("10")}, mapState{}, txReader{3: tx}, mirror)
	ctx := context.Background()

	require.NoError(t, w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.EventCreated, 3)))
	require.Len(t, mirror.Rows(), 1)
	assert.Equal(t, "Lunch", mirror.Rows()[0].Description)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.EventUpdated, 3)))
	assert.Len(t, mirror.Rows(), 1, "only created events are mirrored")

	require.NoError(t, w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.EventCreated, 99)),
		"a transaction deleted before mirroring is skipped")
}

func TestHandleEvent_ReportError(t *testing.T) {
	w := NewWorker(&stubReporter{err: errors.New("db down")}, mapState{}, txReader{}, nil)
	err := w.HandleEvent(context.Background(), amqp.NewBatchEvent(amqp.EventImported, 2))
	assert.Error(t, err)
}

func TestSyncCategories(t *testing.T) {
	reader := memory.New([]string{"Food", "Pets"})
	store := &ensureRecorder{}
	n, err := SyncCategories(context.Background(), reader, store)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Food", "Pets"}, store.names)
}

type ensureRecorder struct {
	names []string
}

func (e *ensureRecorder) EnsureCategories(_ context.Context, names []string) ([]string, error) {
	e.names = append(e.names, names...)
	return names, nil
}

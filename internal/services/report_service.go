package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
	"github.com/alexhdezf18/finanzas-pro-check/internal/storage"
)

// MonthlyReport bundles the derived figures for one owner and one calendar
// month: window totals plus a budget line per category, ordered by
// category id.
type MonthlyReport struct {
	Year    int
	Month   time.Month
	Summary core.Summary
	Budgets []core.BudgetStatus
}

// ReportService derives summaries and budget evaluations from stored data.
// It never writes; the heavy lifting is pure so callers can cache results.
type ReportService struct {
	store *storage.Repository
}

func NewReportService(store *storage.Repository) *ReportService {
	return &ReportService{store: store}
}

// Summarize aggregates the owner's transactions inside the window. A zero
// window covers everything on record.
func (s *ReportService) Summarize(ctx context.Context, ownerID int64, w core.Window) (core.Summary, error) {
	txs, err := s.store.ListTransactions(ctx, ownerID, w)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Aggregate(txs, w), nil
}

// Monthly builds the full report for one calendar month: totals plus one
// budget status per category, limited and unlimited alike.
func (s *ReportService) Monthly(ctx context.Context, ownerID int64, year int, month time.Month) (MonthlyReport, error) {
	if month < time.January || month > time.December {
		return MonthlyReport{}, fmt.Errorf("%w: month %d", core.ErrInvalidArgument, month)
	}
	if year < 1970 || year > 9999 {
		return MonthlyReport{}, fmt.Errorf("%w: year %d", core.ErrInvalidArgument, year)
	}

	window := core.MonthWindow(year, month)
	summary, err := s.Summarize(ctx, ownerID, window)
	if err != nil {
		return MonthlyReport{}, err
	}

	categories, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return MonthlyReport{}, err
	}

	budgets := make([]core.BudgetStatus, 0, len(categories))
	for _, c := range categories {
		budgets = append(budgets, core.EvaluateBudget(c, summary.SpentIn(c.ID)))
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].CategoryID < budgets[j].CategoryID })

	return MonthlyReport{
		Year:    year,
		Month:   month,
		Summary: summary,
		Budgets: budgets,
	}, nil
}

package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tek-wizard/spendy-api/internal/reports"
	"github.com/tek-wizard/spendy-api/internal/store"
	"github.com/tek-wizard/spendy-api/internal/utils"
)

// ReportService is the read-only aggregation layer: it fetches rows
// and hands them to the pure shaping functions in internal/reports.
type ReportService struct {
	expenses *store.ExpenseRepo
}

func NewReportService(expenses *store.ExpenseRepo) *ReportService {
	return &ReportService{expenses: expenses}
}

// Summary builds the headline view for [from, to]. Zero times default
// to the epoch and now respectively. The trend compares against the
// equal-length window immediately before the range.
func (s *ReportService) Summary(ctx context.Context, userID uuid.UUID, from, to time.Time) (*reports.Summary, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = time.Unix(0, 0).UTC()
	}

	current, err := s.expenses.Search(ctx, userID, store.ExpenseFilter{From: &from, To: &to})
	if err != nil {
		slog.Error("summary fetch failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}

	prevTo := from.AddDate(0, 0, -1)
	prevFrom := prevTo.Add(-to.Sub(from))
	previous, err := s.expenses.Search(ctx, userID, store.ExpenseFilter{From: &prevFrom, To: &prevTo})
	if err != nil {
		slog.Error("summary trailing-window fetch failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}

	summary := reports.BuildSummary(current, previous)
	return &summary, nil
}

// SearchTransactions runs a filtered search and paginates it, with the
// aggregate metrics covering the complete filtered set.
func (s *ReportService) SearchTransactions(ctx context.Context, userID uuid.UUID, filter store.ExpenseFilter, page, pageSize int) (*reports.SearchResult, error) {
	all, err := s.expenses.Search(ctx, userID, filter)
	if err != nil {
		slog.Error("transaction search failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}

	var start, end time.Time
	if filter.From != nil {
		start = *filter.From
	}
	if filter.To != nil {
		end = *filter.To
	}
	result := reports.BuildSearchResult(all, page, pageSize, start, end)
	return &result, nil
}

// Monthly builds the narrative report for the month containing the
// given time, compared against the month before it.
func (s *ReportService) Monthly(ctx context.Context, userID uuid.UUID, month time.Time) (*reports.MonthlyReport, error) {
	monthStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	prevStart := monthStart.AddDate(0, -1, 0)
	prevEnd := monthStart.AddDate(0, 0, -1)

	current, err := s.expenses.Search(ctx, userID, store.ExpenseFilter{From: &monthStart, To: &monthEnd})
	if err != nil {
		slog.Error("monthly report fetch failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}
	previous, err := s.expenses.Search(ctx, userID, store.ExpenseFilter{From: &prevStart, To: &prevEnd})
	if err != nil {
		slog.Error("monthly report previous-month fetch failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}

	report := reports.BuildMonthly(monthStart, current, previous)
	return &report, nil
}

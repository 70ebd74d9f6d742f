// Package reports shapes raw expense rows into the dashboard's summary
// structures. Everything here is a pure function over already-fetched
// rows: called twice with the same input it returns the same output,
// and an empty input produces zeroed structures, never an error.
package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tek-wizard/spendy-api/internal/models"
)

const dayFormat = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// CategoryTotal is one row of a category breakdown.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// DailyTotal is one day's spend, keyed by calendar date.
type DailyTotal struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// Summary is the dashboard headline view for a date range.
type Summary struct {
	TotalSpent        decimal.Decimal `json:"total_spent"`
	TrendPercent      decimal.Decimal `json:"trend_percent"`
	Sparkline         []DailyTotal    `json:"sparkline"`
	CategoryBreakdown []CategoryTotal `json:"category_breakdown"`
}

// SearchResult is one page of a filtered transaction search plus
// metrics computed over the complete filtered set.
type SearchResult struct {
	Transactions      []models.Expense `json:"transactions"`
	Page              int              `json:"page"`
	PageSize          int              `json:"page_size"`
	TotalCount        int              `json:"total_count"`
	TotalSpent        decimal.Decimal  `json:"total_spent"`
	AverageDailySpend decimal.Decimal  `json:"average_daily_spend"`
	CategoryBreakdown []CategoryTotal  `json:"category_breakdown"`
}

// MonthlyReport is the narrative view for a single month.
type MonthlyReport struct {
	Month                string          `json:"month"`
	TotalSpent           decimal.Decimal `json:"total_spent"`
	TrendPercent         decimal.Decimal `json:"trend_percent"`
	TopCategory          *CategoryTotal  `json:"top_category,omitempty"`
	MostFrequentCategory *CategoryTotal  `json:"most_frequent_category,omitempty"`
	LargestExpense       *models.Expense `json:"largest_expense,omitempty"`
	HighestSpendingDay   *DailyTotal     `json:"highest_spending_day,omitempty"`
	Heatmap              []DailyTotal    `json:"heatmap"`
}

// TotalSpent sums total amounts.
func TotalSpent(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.TotalAmount)
	}
	return total
}

// TrendPercent compares the current total against the previous one:
// 100 when spending appeared from nothing, 0 when both are zero.
func TrendPercent(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

// CategoryBreakdown groups expenses by category, sorted by descending
// total spend.
func CategoryBreakdown(expenses []models.Expense) []CategoryTotal {
	byCategory := make(map[models.Category]*CategoryTotal)
	for _, e := range expenses {
		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			byCategory[e.Category] = ct
		}
		ct.Total = ct.Total.Add(e.TotalAmount)
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		ct.Total = ct.Total.Round(2)
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// DailyTotals groups expenses by calendar day, ascending.
func DailyTotals(expenses []models.Expense) []DailyTotal {
	byDay := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		day := e.Date.Format(dayFormat)
		byDay[day] = byDay[day].Add(e.TotalAmount)
	}

	out := make([]DailyTotal, 0, len(byDay))
	for day, total := range byDay {
		out = append(out, DailyTotal{Date: day, Total: total.Round(2)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// BuildSummary shapes the headline view from the current range's
// expenses and the trailing equal-length window before it.
func BuildSummary(current, previous []models.Expense) Summary {
	return Summary{
		TotalSpent:        TotalSpent(current).Round(2),
		TrendPercent:      TrendPercent(TotalSpent(current), TotalSpent(previous)),
		Sparkline:         DailyTotals(current),
		CategoryBreakdown: CategoryBreakdown(current),
	}
}

// BuildSearchResult paginates the full filtered set and computes the
// aggregate metrics over all of it, not just the returned page.
func BuildSearchResult(all []models.Expense, page, pageSize int, start, end time.Time) SearchResult {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	total := TotalSpent(all).Round(2)
	days := rangeDays(start, end, all)

	lo := (page - 1) * pageSize
	if lo > len(all) {
		lo = len(all)
	}
	hi := lo + pageSize
	if hi > len(all) {
		hi = len(all)
	}

	avg := decimal.Zero
	if len(all) > 0 {
		avg = total.Div(decimal.NewFromInt(int64(days))).Round(2)
	}

	return SearchResult{
		Transactions:      all[lo:hi],
		Page:              page,
		PageSize:          pageSize,
		TotalCount:        len(all),
		TotalSpent:        total,
		AverageDailySpend: avg,
		CategoryBreakdown: CategoryBreakdown(all),
	}
}

// BuildMonthly shapes the month narrative from the month's expenses
// and the previous month's.
func BuildMonthly(month time.Time, current, previous []models.Expense) MonthlyReport {
	report := MonthlyReport{
		Month:        month.Format("2006-01"),
		TotalSpent:   TotalSpent(current).Round(2),
		TrendPercent: TrendPercent(TotalSpent(current), TotalSpent(previous)),
		Heatmap:      DailyTotals(current),
	}

	breakdown := CategoryBreakdown(current)
	if len(breakdown) > 0 {
		top := breakdown[0]
		report.TopCategory = &top

		frequent := breakdown[0]
		for _, ct := range breakdown[1:] {
			if ct.Count > frequent.Count {
				frequent = ct
			}
		}
		report.MostFrequentCategory = &frequent
	}

	for i := range current {
		if report.LargestExpense == nil || current[i].TotalAmount.GreaterThan(report.LargestExpense.TotalAmount) {
			report.LargestExpense = &current[i]
		}
	}

	for i, day := range report.Heatmap {
		if report.HighestSpendingDay == nil || day.Total.GreaterThan(report.HighestSpendingDay.Total) {
			report.HighestSpendingDay = &report.Heatmap[i]
		}
	}

	return report
}

// rangeDays counts the calendar days the metrics cover, at least one.
// When no explicit start was given the earliest matching expense
// anchors the range, which keeps the daily average meaningful.
func rangeDays(start, end time.Time, all []models.Expense) int {
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		for _, e := range all {
			if start.IsZero() || e.Date.Before(start) {
				start = e.Date
			}
		}
	}
	if start.IsZero() || end.Before(start) {
		return 1
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

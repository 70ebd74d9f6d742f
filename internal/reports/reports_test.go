package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tek-wizard/spendy-api/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expense(category models.Category, amount string, date time.Time) models.Expense {
	return models.Expense{
		Category:    category,
		TotalAmount: d(amount),
		Date:        date,
	}
}

func day(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 12, 0, 0, 0, time.UTC)
}

func TestTrendPercent(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		want     string
	}{
		{name: "both zero", current: "0", previous: "0", want: "0"},
		{name: "spend appeared from nothing", current: "500", previous: "0", want: "100"},
		{name: "doubled", current: "200", previous: "100", want: "100"},
		{name: "halved", current: "50", previous: "100", want: "-50"},
		{name: "dropped to zero", current: "0", previous: "300", want: "-100"},
		{name: "rounded to two places", current: "100", previous: "300", want: "-66.67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrendPercent(d(tt.current), d(tt.previous))
			assert.True(t, got.Equal(d(tt.want)), "got %s", got)
		})
	}
}

func TestCategoryBreakdown(t *testing.T) {
	expenses := []models.Expense{
		expense(models.CategoryFood, "120", day(2025, 7, 1)),
		expense(models.CategoryFood, "80", day(2025, 7, 2)),
		expense(models.CategoryTransport, "200", day(2025, 7, 3)),
		expense(models.CategoryRent, "200", day(2025, 7, 4)),
	}

	breakdown := CategoryBreakdown(expenses)
	require.Len(t, breakdown, 3)

	// Ties on total break alphabetically.
	assert.Equal(t, models.CategoryRent, breakdown[0].Category)
	assert.Equal(t, models.CategoryTransport, breakdown[1].Category)
	assert.Equal(t, models.CategoryFood, breakdown[2].Category)
	assert.True(t, breakdown[2].Total.Equal(d("200")))
	assert.Equal(t, 2, breakdown[2].Count)
}

func TestDailyTotals(t *testing.T) {
	expenses := []models.Expense{
		expense(models.CategoryFood, "50", day(2025, 7, 2)),
		expense(models.CategoryFood, "30", day(2025, 7, 1)),
		expense(models.CategoryTransport, "20", day(2025, 7, 2)),
	}

	totals := DailyTotals(expenses)
	require.Len(t, totals, 2)
	assert.Equal(t, "2025-07-01", totals[0].Date)
	assert.True(t, totals[0].Total.Equal(d("30")))
	assert.Equal(t, "2025-07-02", totals[1].Date)
	assert.True(t, totals[1].Total.Equal(d("70")))
}

func TestBuildSummary(t *testing.T) {
	t.Run("empty ranges produce zeroed structures", func(t *testing.T) {
		summary := BuildSummary(nil, nil)

		assert.True(t, summary.TotalSpent.IsZero())
		assert.True(t, summary.TrendPercent.IsZero())
		assert.Empty(t, summary.Sparkline)
		assert.Empty(t, summary.CategoryBreakdown)
	})

	t.Run("trend compares against previous window", func(t *testing.T) {
		current := []models.Expense{expense(models.CategoryFood, "300", day(2025, 7, 10))}
		previous := []models.Expense{expense(models.CategoryFood, "150", day(2025, 6, 10))}

		summary := BuildSummary(current, previous)

		assert.True(t, summary.TotalSpent.Equal(d("300")))
		assert.True(t, summary.TrendPercent.Equal(d("100")))
		require.Len(t, summary.Sparkline, 1)
		assert.Equal(t, "2025-07-10", summary.Sparkline[0].Date)
	})
}

func TestBuildSearchResult(t *testing.T) {
	all := []models.Expense{
		expense(models.CategoryFood, "100", day(2025, 7, 1)),
		expense(models.CategoryFood, "200", day(2025, 7, 2)),
		expense(models.CategoryTransport, "300", day(2025, 7, 3)),
		expense(models.CategoryRent, "400", day(2025, 7, 4)),
		expense(models.CategoryHealth, "500", day(2025, 7, 5)),
	}
	start := day(2025, 7, 1)
	end := day(2025, 7, 5)

	t.Run("page slices while metrics cover the full set", func(t *testing.T) {
		result := BuildSearchResult(all, 2, 2, start, end)

		require.Len(t, result.Transactions, 2)
		assert.True(t, result.Transactions[0].TotalAmount.Equal(d("300")))
		assert.Equal(t, 5, result.TotalCount)
		assert.True(t, result.TotalSpent.Equal(d("1500")))
		// 1500 over 5 calendar days.
		assert.True(t, result.AverageDailySpend.Equal(d("300")))
		assert.Len(t, result.CategoryBreakdown, 4)
	})

	t.Run("page past the end is empty but keeps metrics", func(t *testing.T) {
		result := BuildSearchResult(all, 10, 2, start, end)

		assert.Empty(t, result.Transactions)
		assert.Equal(t, 5, result.TotalCount)
		assert.True(t, result.TotalSpent.Equal(d("1500")))
	})

	t.Run("empty set zeroes the metrics", func(t *testing.T) {
		result := BuildSearchResult(nil, 1, 20, start, end)

		assert.Empty(t, result.Transactions)
		assert.Equal(t, 0, result.TotalCount)
		assert.True(t, result.TotalSpent.IsZero())
		assert.True(t, result.AverageDailySpend.IsZero())
	})

	t.Run("missing start anchors on earliest expense", func(t *testing.T) {
		result := BuildSearchResult(all, 1, 20, time.Time{}, end)

		assert.True(t, result.AverageDailySpend.Equal(d("300")))
	})

	t.Run("page defaults applied", func(t *testing.T) {
		result := BuildSearchResult(all, 0, 0, start, end)

		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 20, result.PageSize)
		assert.Len(t, result.Transactions, 5)
	})
}

func TestBuildMonthly(t *testing.T) {
	month := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty month has no highlights", func(t *testing.T) {
		report := BuildMonthly(month, nil, nil)

		assert.Equal(t, "2025-07", report.Month)
		assert.True(t, report.TotalSpent.IsZero())
		assert.Nil(t, report.TopCategory)
		assert.Nil(t, report.MostFrequentCategory)
		assert.Nil(t, report.LargestExpense)
		assert.Nil(t, report.HighestSpendingDay)
		assert.Empty(t, report.Heatmap)
	})

	t.Run("highlights computed from the month's expenses", func(t *testing.T) {
		current := []models.Expense{
			expense(models.CategoryFood, "50", day(2025, 7, 1)),
			expense(models.CategoryFood, "60", day(2025, 7, 2)),
			expense(models.CategoryFood, "70", day(2025, 7, 3)),
			expense(models.CategoryRent, "900", day(2025, 7, 5)),
		}
		previous := []models.Expense{expense(models.CategoryFood, "540", day(2025, 6, 1))}

		report := BuildMonthly(month, current, previous)

		assert.True(t, report.TotalSpent.Equal(d("1080")))
		assert.True(t, report.TrendPercent.Equal(d("100")))

		require.NotNil(t, report.TopCategory)
		assert.Equal(t, models.CategoryRent, report.TopCategory.Category)

		require.NotNil(t, report.MostFrequentCategory)
		assert.Equal(t, models.CategoryFood, report.MostFrequentCategory.Category)
		assert.Equal(t, 3, report.MostFrequentCategory.Count)

		require.NotNil(t, report.LargestExpense)
		assert.True(t, report.LargestExpense.TotalAmount.Equal(d("900")))

		require.NotNil(t, report.HighestSpendingDay)
		assert.Equal(t, "2025-07-05", report.HighestSpendingDay.Date)
	})
}

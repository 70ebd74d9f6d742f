package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tek-wizard/spendy-api/internal/models"
)

func entry(person string, entryType models.EntryType, amount string) models.LedgerEntry {
	return models.LedgerEntry{
		Person: person,
		Type:   entryType,
		Amount: decimal.RequireFromString(amount),
	}
}

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		name      string
		entryType models.EntryType
		amount    string
		want      string
	}{
		{name: "lent counts positive", entryType: models.EntryLent, amount: "100", want: "100"},
		{name: "paid back counts positive", entryType: models.EntryPaidBack, amount: "40.50", want: "40.50"},
		{name: "borrowed counts negative", entryType: models.EntryBorrowed, amount: "100", want: "-100"},
		{name: "got back counts negative", entryType: models.EntryGotBack, amount: "25", want: "-25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SignedAmount(entry("Rahul", tt.entryType, tt.amount))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestNetBalance(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.LedgerEntry
		want    string
	}{
		{
			name:    "no entries",
			entries: nil,
			want:    "0",
		},
		{
			name: "person owes user after a loan",
			entries: []models.LedgerEntry{
				entry("Rahul", models.EntryLent, "500"),
			},
			want: "500",
		},
		{
			name: "user owes person after borrowing",
			entries: []models.LedgerEntry{
				entry("Rahul", models.EntryBorrowed, "300"),
			},
			want: "-300",
		},
		{
			name: "partial repayment reduces debt",
			entries: []models.LedgerEntry{
				entry("Rahul", models.EntryBorrowed, "300"),
				entry("Rahul", models.EntryPaidBack, "100"),
			},
			want: "-200",
		},
		{
			name: "full cycle nets to zero",
			entries: []models.LedgerEntry{
				entry("Rahul", models.EntryLent, "500"),
				entry("Rahul", models.EntryGotBack, "200"),
				entry("Rahul", models.EntryGotBack, "300"),
			},
			want: "0",
		},
		{
			name: "fractional amounts are exact",
			entries: []models.LedgerEntry{
				entry("Rahul", models.EntryLent, "0.10"),
				entry("Rahul", models.EntryLent, "0.20"),
				entry("Rahul", models.EntryGotBack, "0.30"),
			},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NetBalance(tt.entries)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestDebtDirections(t *testing.T) {
	t.Run("positive balance is owed to user", func(t *testing.T) {
		net := decimal.RequireFromString("120")
		assert.True(t, DebtOwedToUser(net).Equal(net))
		assert.True(t, DebtOwedByUser(net).IsZero())
	})

	t.Run("negative balance is owed by user", func(t *testing.T) {
		net := decimal.RequireFromString("-80")
		assert.True(t, DebtOwedByUser(net).Equal(decimal.RequireFromString("80")))
		assert.True(t, DebtOwedToUser(net).IsZero())
	})

	t.Run("zero balance owes nothing either way", func(t *testing.T) {
		assert.True(t, DebtOwedByUser(decimal.Zero).IsZero())
		assert.True(t, DebtOwedToUser(decimal.Zero).IsZero())
	})
}

func TestPersonBalances(t *testing.T) {
	entries := []models.LedgerEntry{
		entry("Rahul", models.EntryLent, "500"),
		entry("Rahul", models.EntryGotBack, "200"),
		entry("Anita", models.EntryBorrowed, "150"),
		entry("Zoya", models.EntryLent, "75"),
		entry("Zoya", models.EntryGotBack, "75"),
	}

	balances := PersonBalances(entries)

	// Zoya nets to zero and is excluded; output is sorted by name.
	require.Len(t, balances, 2)
	assert.Equal(t, "Anita", balances[0].Person)
	assert.Equal(t, "Borrowed", balances[0].Status)
	assert.True(t, balances[0].NetBalance.Equal(decimal.RequireFromString("-150")))
	assert.Equal(t, "Rahul", balances[1].Person)
	assert.Equal(t, "Lent", balances[1].Status)
	assert.True(t, balances[1].NetBalance.Equal(decimal.RequireFromString("300")))
}

func TestDebtorsAndCreditors(t *testing.T) {
	entries := []models.LedgerEntry{
		entry("Rahul", models.EntryLent, "300"),
		entry("Anita", models.EntryLent, "900"),
		entry("Vikram", models.EntryBorrowed, "50"),
		entry("Meera", models.EntryBorrowed, "400"),
	}

	debtors := Debtors(entries)
	require.Len(t, debtors, 2)
	assert.Equal(t, "Anita", debtors[0].Person)
	assert.Equal(t, "Rahul", debtors[1].Person)

	creditors := Creditors(entries)
	require.Len(t, creditors, 2)
	assert.Equal(t, "Meera", creditors[0].Person)
	assert.Equal(t, "Vikram", creditors[1].Person)
	assert.True(t, creditors[0].NetBalance.IsNegative())
}

// Package ledger holds the pure debt arithmetic: signed balances per
// contact and the settlement planning decision table. Nothing in this
// package touches storage, so every branch is testable in isolation.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tek-wizard/spendy-api/internal/models"
)

// SignedAmount maps an entry to its contribution to the person's net
// balance: inflow types (Borrowed, Got Back) count negative, outflow
// types (Lent, Paid Back) count positive.
func SignedAmount(e models.LedgerEntry) decimal.Decimal {
	if e.Type.Inflow() {
		return e.Amount.Neg()
	}
	return e.Amount
}

// NetBalance sums the signed amounts of all entries with one person.
// Positive means the person owes the user; negative means the user
// owes the person. The balance is always recomputed from the full
// history, never cached.
func NetBalance(entries []models.LedgerEntry) decimal.Decimal {
	net := decimal.Zero
	for _, e := range entries {
		net = net.Add(SignedAmount(e))
	}
	return net
}

// DebtOwedByUser is how much the user owes the person (zero when the
// net balance is not negative).
func DebtOwedByUser(netBalance decimal.Decimal) decimal.Decimal {
	if netBalance.IsNegative() {
		return netBalance.Neg()
	}
	return decimal.Zero
}

// DebtOwedToUser is how much the person owes the user (zero when the
// net balance is not positive).
func DebtOwedToUser(netBalance decimal.Decimal) decimal.Decimal {
	if netBalance.IsPositive() {
		return netBalance
	}
	return decimal.Zero
}

// PersonBalances groups entries by person and returns each non-zero
// net balance rounded to two decimal places, sorted by person name.
func PersonBalances(entries []models.LedgerEntry) []models.PersonBalance {
	byPerson := make(map[string]decimal.Decimal)
	for _, e := range entries {
		byPerson[e.Person] = byPerson[e.Person].Add(SignedAmount(e))
	}

	balances := make([]models.PersonBalance, 0, len(byPerson))
	for person, net := range byPerson {
		net = net.Round(2)
		if net.IsZero() {
			continue
		}
		status := "Lent"
		if net.IsNegative() {
			status = "Borrowed"
		}
		balances = append(balances, models.PersonBalance{
			Person:     person,
			NetBalance: net,
			Status:     status,
		})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].Person < balances[j].Person })
	return balances
}

// Debtors returns the people who owe the user, largest balance first.
func Debtors(entries []models.LedgerEntry) []models.PersonBalance {
	return filterBalances(entries, true)
}

// Creditors returns the people the user owes, largest debt first. The
// returned balances keep their negative sign.
func Creditors(entries []models.LedgerEntry) []models.PersonBalance {
	return filterBalances(entries, false)
}

func filterBalances(entries []models.LedgerEntry, positive bool) []models.PersonBalance {
	var out []models.PersonBalance
	for _, b := range PersonBalances(entries) {
		if b.NetBalance.IsPositive() == positive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NetBalance.Abs().GreaterThan(out[j].NetBalance.Abs())
	})
	return out
}

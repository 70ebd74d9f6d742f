package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tek-wizard/spendy-api/internal/models"
)

// Intent is the user's plain-language framing of a payment.
type Intent string

const (
	IntentGiven    Intent = "Given"    // money left the user's hand
	IntentReceived Intent = "Received" // money entered the user's hand
)

// IsValid reports whether i is a known intent.
func (i Intent) IsValid() bool { return i == IntentGiven || i == IntentReceived }

// PlanKind tags the reconciliation outcome.
type PlanKind int

const (
	// PlanExact covers new loans, new borrowings, and settlements that
	// do not exceed the outstanding debt: a single ledger entry.
	PlanExact PlanKind = iota
	// PlanSettleWithOverpay splits a payment that exceeds what the user
	// owed into a full repayment plus a new loan to the person.
	PlanSettleWithOverpay
	// PlanSettleWithOverCollect splits a collection that exceeds what
	// the person owed into a full collection plus a new borrowing.
	PlanSettleWithOverCollect
)

// PlannedEntry is one ledger entry the plan will create. When
// MirrorCategory is non-empty the entry is an outflow and must be
// mirrored by an expense of the same amount in that category.
type PlannedEntry struct {
	Type           models.EntryType
	Amount         decimal.Decimal
	MirrorCategory models.Category
}

// Plan is the reconciler's decision: which entries (and mirrored
// expenses) one payment produces. Grouped plans are written under a
// shared group id so the records can be displayed and deleted as one.
type Plan struct {
	Kind    PlanKind
	Grouped bool
	Entries []PlannedEntry
}

// Total returns the sum of all planned entry amounts. It always equals
// the input amount of the payment that produced the plan.
func (p Plan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range p.Entries {
		total = total.Add(e.Amount)
	}
	return total
}

// ResolveType translates the user's coarse intent into a concrete
// entry type using the pre-payment net balance. Giving money while in
// debt is a repayment, otherwise a new loan; receiving money while
// owed is a collection, otherwise a new borrowing.
func ResolveType(intent Intent, netBalance decimal.Decimal) (models.EntryType, error) {
	switch intent {
	case IntentGiven:
		if DebtOwedByUser(netBalance).IsPositive() {
			return models.EntryPaidBack, nil
		}
		return models.EntryLent, nil
	case IntentReceived:
		if DebtOwedToUser(netBalance).IsPositive() {
			return models.EntryGotBack, nil
		}
		return models.EntryBorrowed, nil
	default:
		return "", fmt.Errorf("unknown intent %q", intent)
	}
}

// mirrorCategory returns the expense category that mirrors an outflow
// entry type, or "" for inflow types (receiving money is never a
// personal expense).
func mirrorCategory(t models.EntryType) models.Category {
	switch t {
	case models.EntryPaidBack:
		return models.CategoryDebtRepayment
	case models.EntryLent:
		return models.CategoryLoanGiven
	}
	return ""
}

// PlanSettlement maps a payment (intent + amount) against the
// pre-payment net balance with one person onto exactly one plan. The
// decision is total: every combination of intent, balance sign, and
// amount-versus-debt lands in exactly one branch, and the planned
// amounts always sum to the input amount with no rounding drift.
func PlanSettlement(intent Intent, netBalance, amount decimal.Decimal) (Plan, error) {
	if !amount.IsPositive() {
		return Plan{}, fmt.Errorf("amount must be positive, got %s", amount)
	}

	entryType, err := ResolveType(intent, netBalance)
	if err != nil {
		return Plan{}, err
	}

	debtByUser := DebtOwedByUser(netBalance)
	debtToUser := DebtOwedToUser(netBalance)

	switch {
	// Overpayment: settling a debt the user owes with more than is owed.
	// The excess becomes a new loan to the person.
	case entryType == models.EntryPaidBack && amount.GreaterThan(debtByUser):
		overpay := amount.Sub(debtByUser)
		return Plan{
			Kind:    PlanSettleWithOverpay,
			Grouped: true,
			Entries: []PlannedEntry{
				{Type: models.EntryPaidBack, Amount: debtByUser, MirrorCategory: models.CategoryDebtRepayment},
				{Type: models.EntryLent, Amount: overpay, MirrorCategory: models.CategoryLoanGiven},
			},
		}, nil

	// Over-collection: collecting a debt owed to the user with more than
	// is owed. The excess becomes a new borrowing. No expenses: money
	// received is not personal spending.
	case entryType == models.EntryGotBack && amount.GreaterThan(debtToUser):
		over := amount.Sub(debtToUser)
		return Plan{
			Kind:    PlanSettleWithOverCollect,
			Grouped: true,
			Entries: []PlannedEntry{
				{Type: models.EntryGotBack, Amount: debtToUser},
				{Type: models.EntryBorrowed, Amount: over},
			},
		}, nil

	// Exact or non-settlement: a single entry of the resolved type,
	// mirrored as an expense only when money flowed out.
	default:
		return Plan{
			Kind: PlanExact,
			Entries: []PlannedEntry{
				{Type: entryType, Amount: amount, MirrorCategory: mirrorCategory(entryType)},
			},
		}, nil
	}
}

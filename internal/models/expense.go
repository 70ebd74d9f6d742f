package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the closed set of expense categories. The two system
// categories are written only by the settlement reconciler.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryGroceries     Category = "Groceries"
	CategoryTransport     Category = "Transport"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryUtilities     Category = "Utilities"
	CategoryRent          Category = "Rent"
	CategoryHealth        Category = "Health"
	CategoryTravel        Category = "Travel"
	CategoryOther         Category = "Other"

	// System categories, generated when a settlement is recorded.
	CategoryDebtRepayment Category = "Debt Repayment"
	CategoryLoanGiven     Category = "Loan Given"
)

var allCategories = map[Category]bool{
	CategoryFood: true, CategoryGroceries: true, CategoryTransport: true,
	CategoryShopping: true, CategoryEntertainment: true, CategoryUtilities: true,
	CategoryRent: true, CategoryHealth: true, CategoryTravel: true,
	CategoryOther: true, CategoryDebtRepayment: true, CategoryLoanGiven: true,
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool { return allCategories[c] }

// IsSystem reports whether c is reconciler-generated and therefore
// locked from user edits.
func (c Category) IsSystem() bool {
	return c == CategoryDebtRepayment || c == CategoryLoanGiven
}

// SplitDetail is one share of a split expense. LedgerID is a weak
// reference to the "Lent" ledger entry the share spawned; it is used
// for cascade deletes, never enforced by the database.
type SplitDetail struct {
	Person     string          `json:"person"`
	AmountOwed decimal.Decimal `json:"amount_owed"`
	LedgerID   *uuid.UUID      `json:"ledger_id,omitempty"`
}

// Expense is one personal spending record, optionally split among
// contacts. For split expenses PersonalShare plus the split shares must
// sum to TotalAmount within a 0.01 tolerance.
type Expense struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PersonalShare decimal.Decimal `json:"personal_share"`
	Category      Category        `json:"category"`
	Notes         string          `json:"notes,omitempty"`
	Date          time.Time       `json:"date"`
	IsSplit       bool            `json:"is_split"`
	SplitDetails  []SplitDetail   `json:"split_details,omitempty"`
	GroupID       *uuid.UUID      `json:"group_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ExpenseRequest is the create/edit payload for an expense.
type ExpenseRequest struct {
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PersonalShare decimal.Decimal `json:"personal_share"`
	Category      Category        `json:"category"`
	Notes         string          `json:"notes"`
	Date          time.Time       `json:"date"`
	IsSplit       bool            `json:"is_split"`
	SplitDetails  []SplitDetail   `json:"split_details"`
}

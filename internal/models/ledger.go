package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry by the direction money moved and
// whether it opened or settled a debt.
type EntryType string

const (
	EntryLent     EntryType = "Lent"      // user gave money, person now owes user
	EntryBorrowed EntryType = "Borrowed"  // user received money, user now owes person
	EntryGotBack  EntryType = "Got Back"  // user collected money person owed
	EntryPaidBack EntryType = "Paid Back" // user repaid money they owed
)

// IsValid reports whether t is one of the four known entry types.
func (t EntryType) IsValid() bool {
	switch t {
	case EntryLent, EntryBorrowed, EntryGotBack, EntryPaidBack:
		return true
	}
	return false
}

// Inflow reports whether money moved toward the user. Inflow entries
// count negative toward the person's net balance.
func (t EntryType) Inflow() bool {
	return t == EntryBorrowed || t == EntryGotBack
}

// LedgerEntry is one IOU-style record between the user and a contact.
// Entries are append-only: corrections are new entries, never updates.
type LedgerEntry struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Person    string          `json:"person"`
	Amount    decimal.Decimal `json:"amount"` // always positive; sign derives from Type
	Type      EntryType       `json:"type"`
	Notes     string          `json:"notes,omitempty"`
	Date      time.Time       `json:"date"`
	GroupID   *uuid.UUID      `json:"group_id,omitempty"` // links entries created by one settlement
	CreatedAt time.Time       `json:"created_at"`
}

// LedgerDisplay is the shape settlement responses use for entries that
// have no mirrored expense (money collected is not a personal expense).
type LedgerDisplay struct {
	ID          uuid.UUID       `json:"id"`
	Person      string          `json:"person"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	GroupID     *uuid.UUID      `json:"group_id,omitempty"`
}

// SettlementRequest is the client's coarse payment intent: money either
// left the user's hand ("Given") or entered it ("Received"). The
// reconciler infers the concrete entry types.
type SettlementRequest struct {
	Person string          `json:"person"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
	Date   time.Time       `json:"date"`
	Intent string          `json:"intent"`
}

// SettlementResult reports what one reconciliation created.
type SettlementResult struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	CreatedExpenses []Expense       `json:"created_expenses,omitempty"`
	CreatedLedgers  []LedgerDisplay `json:"created_ledgers,omitempty"`
}

// PersonBalance is the signed outstanding amount with one contact.
// Positive means the person owes the user.
type PersonBalance struct {
	Person     string          `json:"person"`
	NetBalance decimal.Decimal `json:"net_balance"`
	Status     string          `json:"status"` // "Lent" when positive, "Borrowed" when negative
}

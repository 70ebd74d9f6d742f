package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tek-wizard/spendy-api/internal/ledger"
	"github.com/tek-wizard/spendy-api/internal/models"
	"github.com/tek-wizard/spendy-api/internal/store"
	"github.com/tek-wizard/spendy-api/internal/utils"
)

const maxNotesLen = 200

// Reconciler turns a coarse payment intent into correctly-typed ledger
// entries and mirrored expenses. The balance read, the planning, and
// every write happen under one per-(user, person) lock and one
// transaction, so concurrent settlements against the same contact
// serialize and a failed write leaves nothing behind.
type Reconciler struct {
	db       store.DB
	ledgers  *store.LedgerRepo
	expenses *store.ExpenseRepo
	locks    *keyedMutex
}

func NewReconciler(db store.DB, ledgers *store.LedgerRepo, expenses *store.ExpenseRepo) *Reconciler {
	return &Reconciler{
		db:       db,
		ledgers:  ledgers,
		expenses: expenses,
		locks:    newKeyedMutex(),
	}
}

func validateSettlementRequest(req models.SettlementRequest) []utils.FieldError {
	var fields []utils.FieldError
	if req.Person == "" {
		fields = append(fields, utils.FieldError{Field: "person", Message: "person is required"})
	}
	if !req.Amount.IsPositive() {
		fields = append(fields, utils.FieldError{Field: "amount", Message: "amount must be greater than zero"})
	}
	if len(req.Notes) > maxNotesLen {
		fields = append(fields, utils.FieldError{Field: "notes", Message: "notes must be 200 characters or fewer"})
	}
	if !ledger.Intent(req.Intent).IsValid() {
		fields = append(fields, utils.FieldError{Field: "intent", Message: `intent must be "Given" or "Received"`})
	}
	return fields
}

// Settle records one payment. The response carries the created
// expenses for outflows; inflow-only entries are remapped into the
// display shape since no expense exists for them.
func (r *Reconciler) Settle(ctx context.Context, userID uuid.UUID, req models.SettlementRequest) (*models.SettlementResult, error) {
	if fields := validateSettlementRequest(req); len(fields) > 0 {
		return nil, utils.NewValidationError(fields)
	}
	return r.reconcile(ctx, userID, req, false)
}

// SettleInFull clears the outstanding balance with one person. The
// offsetting amount and intent are resolved from the history read
// inside the lock and transaction, never from a balance the caller
// observed earlier, so two concurrent settle-ups cannot both decide to
// collect the same debt.
func (r *Reconciler) SettleInFull(ctx context.Context, userID uuid.UUID, person, notes string) (*models.SettlementResult, error) {
	var fields []utils.FieldError
	if person == "" {
		fields = append(fields, utils.FieldError{Field: "person", Message: "person is required"})
	}
	if len(notes) > maxNotesLen {
		fields = append(fields, utils.FieldError{Field: "notes", Message: "notes must be 200 characters or fewer"})
	}
	if len(fields) > 0 {
		return nil, utils.NewValidationError(fields)
	}
	return r.reconcile(ctx, userID, models.SettlementRequest{Person: person, Notes: notes}, true)
}

func (r *Reconciler) reconcile(ctx context.Context, userID uuid.UUID, req models.SettlementRequest, settleInFull bool) (*models.SettlementResult, error) {
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}

	key := userID.String() + "|" + req.Person
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	result := &models.SettlementResult{Success: true}

	err := store.WithinTx(ctx, r.db, func(tx pgx.Tx) error {
		ledgers := r.ledgers.WithTx(tx)
		expenses := r.expenses.WithTx(tx)

		history, err := ledgers.ListByPerson(ctx, userID, req.Person)
		if err != nil {
			return err
		}
		net := ledger.NetBalance(history)

		amount := req.Amount
		intent := ledger.Intent(req.Intent)
		if settleInFull {
			if net.IsZero() {
				return utils.NewConflictError("nothing outstanding to settle with this person")
			}
			amount = net.Abs()
			intent = ledger.IntentReceived
			if net.IsNegative() {
				intent = ledger.IntentGiven
			}
		}

		plan, err := ledger.PlanSettlement(intent, net, amount)
		if err != nil {
			return err
		}

		var groupID *uuid.UUID
		if plan.Grouped {
			g := uuid.New()
			groupID = &g
		}

		for _, pe := range plan.Entries {
			entry := models.LedgerEntry{
				UserID:  userID,
				Person:  req.Person,
				Amount:  pe.Amount,
				Type:    pe.Type,
				Notes:   req.Notes,
				Date:    req.Date,
				GroupID: groupID,
			}
			if err := ledgers.Insert(ctx, &entry); err != nil {
				return err
			}

			if pe.MirrorCategory != "" {
				exp := mirrorExpense(req, entry, pe.MirrorCategory)
				if err := expenses.Insert(ctx, &exp); err != nil {
					return err
				}
				result.CreatedExpenses = append(result.CreatedExpenses, exp)
			} else {
				result.CreatedLedgers = append(result.CreatedLedgers, models.LedgerDisplay{
					ID:          entry.ID,
					Person:      entry.Person,
					TotalAmount: entry.Amount,
					Category:    string(entry.Type),
					Date:        entry.Date,
					GroupID:     entry.GroupID,
				})
			}
		}

		result.Message = planMessage(plan.Kind)
		return nil
	})
	if err != nil {
		if apiErr, ok := err.(*utils.APIError); ok {
			return nil, apiErr
		}
		slog.Error("settlement failed", "user_id", userID, "person", req.Person, "error", err)
		return nil, utils.NewInternalError(err)
	}

	return result, nil
}

// mirrorExpense builds the personal-spending twin of an outflow ledger
// entry. The split line carries the weak ledger reference used for
// cascade deletes; only a new loan leaves the person owing anything.
func mirrorExpense(req models.SettlementRequest, entry models.LedgerEntry, category models.Category) models.Expense {
	owed := decimal.Zero
	if category == models.CategoryLoanGiven {
		owed = entry.Amount
	}
	return models.Expense{
		UserID:        entry.UserID,
		TotalAmount:   entry.Amount,
		PersonalShare: entry.Amount,
		Category:      category,
		Notes:         req.Notes,
		Date:          req.Date,
		IsSplit:       false,
		SplitDetails: []models.SplitDetail{
			{Person: req.Person, AmountOwed: owed, LedgerID: &entry.ID},
		},
		GroupID: entry.GroupID,
	}
}

func planMessage(kind ledger.PlanKind) string {
	switch kind {
	case ledger.PlanSettleWithOverpay:
		return "Payment split into a debt repayment and a new loan"
	case ledger.PlanSettleWithOverCollect:
		return "Collection split into a settlement and a new borrowing"
	default:
		return "Payment recorded"
	}
}

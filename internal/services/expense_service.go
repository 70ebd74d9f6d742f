package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tek-wizard/spendy-api/internal/models"
	"github.com/tek-wizard/spendy-api/internal/store"
	"github.com/tek-wizard/spendy-api/internal/utils"
)

// splitTolerance absorbs client-side rounding when the personal share
// and the split shares are checked against the total.
var splitTolerance = decimal.NewFromFloat(0.01)

// ExpenseService owns expense create/edit/delete, including the split
// linkage into the ledger. Every multi-record path runs in one
// transaction.
type ExpenseService struct {
	db       store.DB
	expenses *store.ExpenseRepo
	ledgers  *store.LedgerRepo
}

func NewExpenseService(db store.DB, expenses *store.ExpenseRepo, ledgers *store.LedgerRepo) *ExpenseService {
	return &ExpenseService{db: db, expenses: expenses, ledgers: ledgers}
}

// validateExpenseRequest collects every field-level problem before any
// write happens. System categories are rejected here: only the
// reconciler may create "Debt Repayment" or "Loan Given" records.
func validateExpenseRequest(req models.ExpenseRequest) []utils.FieldError {
	var fields []utils.FieldError
	if !req.TotalAmount.IsPositive() {
		fields = append(fields, utils.FieldError{Field: "total_amount", Message: "total amount must be greater than zero"})
	}
	if !req.Category.IsValid() {
		fields = append(fields, utils.FieldError{Field: "category", Message: "unknown category"})
	} else if req.Category.IsSystem() {
		fields = append(fields, utils.FieldError{Field: "category", Message: "category is reserved for settlement records"})
	}
	if len(req.Notes) > maxNotesLen {
		fields = append(fields, utils.FieldError{Field: "notes", Message: "notes must be 200 characters or fewer"})
	}
	if req.PersonalShare.IsNegative() {
		fields = append(fields, utils.FieldError{Field: "personal_share", Message: "personal share cannot be negative"})
	}

	if req.IsSplit {
		if len(req.SplitDetails) == 0 {
			fields = append(fields, utils.FieldError{Field: "split_details", Message: "split expenses need at least one split line"})
			return fields
		}
		sum := req.PersonalShare
		for i, sd := range req.SplitDetails {
			if sd.Person == "" {
				fields = append(fields, utils.FieldError{Field: "split_details", Message: "every split line needs a person"})
			}
			if !sd.AmountOwed.IsPositive() {
				fields = append(fields, utils.FieldError{Field: "split_details", Message: "every split amount must be greater than zero"})
			}
			sum = sum.Add(req.SplitDetails[i].AmountOwed)
		}
		if sum.Sub(req.TotalAmount).Abs().GreaterThanOrEqual(splitTolerance) {
			fields = append(fields, utils.FieldError{
				Field:   "split_details",
				Message: "personal share plus split amounts must equal the total amount",
			})
		}
	}
	return fields
}

// Create stores an expense. Each split line spawns a "Lent" ledger
// entry and records its id back onto the line before the expense row
// is written, so every share is dual-represented as a debt.
func (s *ExpenseService) Create(ctx context.Context, userID uuid.UUID, req models.ExpenseRequest) (*models.Expense, error) {
	if fields := validateExpenseRequest(req); len(fields) > 0 {
		return nil, utils.NewValidationError(fields)
	}
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	}

	exp := expenseFromRequest(userID, req)

	err := store.WithinTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := s.createSplitEntries(ctx, tx, &exp); err != nil {
			return err
		}
		return s.expenses.WithTx(tx).Insert(ctx, &exp)
	})
	if err != nil {
		slog.Error("create expense failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}
	return &exp, nil
}

// Update edits an expense. A previously split expense has its old
// ledger linkage deleted wholesale and regenerated from the new split
// lines; there is no diffing.
func (s *ExpenseService) Update(ctx context.Context, userID, id uuid.UUID, req models.ExpenseRequest) (*models.Expense, error) {
	existing, err := s.expenses.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("Expense")
		}
		return nil, utils.NewInternalError(err)
	}
	if existing.Category.IsSystem() {
		return nil, utils.NewConflictError("settlement-generated expenses cannot be edited")
	}
	if fields := validateExpenseRequest(req); len(fields) > 0 {
		return nil, utils.NewValidationError(fields)
	}
	if req.Date.IsZero() {
		req.Date = existing.Date
	}

	updated := expenseFromRequest(userID, req)
	updated.ID = existing.ID
	updated.GroupID = existing.GroupID
	updated.CreatedAt = existing.CreatedAt

	err = store.WithinTx(ctx, s.db, func(tx pgx.Tx) error {
		ledgers := s.ledgers.WithTx(tx)
		if err := ledgers.DeleteByIDs(ctx, userID, linkedLedgerIDs(existing)); err != nil {
			return err
		}
		if err := s.createSplitEntries(ctx, tx, &updated); err != nil {
			return err
		}
		return s.expenses.WithTx(tx).Update(ctx, &updated)
	})
	if err != nil {
		slog.Error("update expense failed", "user_id", userID, "expense_id", id, "error", err)
		return nil, utils.NewInternalError(err)
	}
	return &updated, nil
}

// Delete removes an expense and cascades over its weak references:
// grouped settlement records go together with every sibling sharing
// the group id, split expenses take their linked ledger entries along.
func (s *ExpenseService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	existing, err := s.expenses.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return utils.NewNotFoundError("Expense")
		}
		return utils.NewInternalError(err)
	}

	err = store.WithinTx(ctx, s.db, func(tx pgx.Tx) error {
		ledgers := s.ledgers.WithTx(tx)
		expenses := s.expenses.WithTx(tx)

		if existing.GroupID != nil {
			if _, err := ledgers.DeleteByGroup(ctx, userID, *existing.GroupID); err != nil {
				return err
			}
			_, err := expenses.DeleteByGroup(ctx, userID, *existing.GroupID)
			return err
		}

		if err := ledgers.DeleteByIDs(ctx, userID, linkedLedgerIDs(existing)); err != nil {
			return err
		}
		return expenses.DeleteByID(ctx, userID, id)
	})
	if err != nil {
		slog.Error("delete expense failed", "user_id", userID, "expense_id", id, "error", err)
		return utils.NewInternalError(err)
	}
	return nil
}

// Get fetches one expense by id.
func (s *ExpenseService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Expense, error) {
	exp, err := s.expenses.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, utils.NewNotFoundError("Expense")
		}
		return nil, utils.NewInternalError(err)
	}
	return &exp, nil
}

// createSplitEntries writes one "Lent" ledger entry per split line and
// stamps the resulting id back onto the line.
func (s *ExpenseService) createSplitEntries(ctx context.Context, tx pgx.Tx, exp *models.Expense) error {
	if !exp.IsSplit {
		return nil
	}
	ledgers := s.ledgers.WithTx(tx)
	for i := range exp.SplitDetails {
		sd := &exp.SplitDetails[i]
		entry := models.LedgerEntry{
			UserID: exp.UserID,
			Person: sd.Person,
			Amount: sd.AmountOwed,
			Type:   models.EntryLent,
			Notes:  exp.Notes,
			Date:   exp.Date,
		}
		if err := ledgers.Insert(ctx, &entry); err != nil {
			return err
		}
		sd.LedgerID = &entry.ID
	}
	return nil
}

func expenseFromRequest(userID uuid.UUID, req models.ExpenseRequest) models.Expense {
	exp := models.Expense{
		UserID:        userID,
		TotalAmount:   req.TotalAmount,
		PersonalShare: req.PersonalShare,
		Category:      req.Category,
		Notes:         req.Notes,
		Date:          req.Date,
		IsSplit:       req.IsSplit,
		SplitDetails:  req.SplitDetails,
	}
	if !exp.IsSplit {
		// An unsplit expense is fully the user's own spending.
		exp.PersonalShare = exp.TotalAmount
		exp.SplitDetails = nil
	}
	return exp
}

func linkedLedgerIDs(exp models.Expense) []uuid.UUID {
	var ids []uuid.UUID
	for _, sd := range exp.SplitDetails {
		if sd.LedgerID != nil {
			ids = append(ids, *sd.LedgerID)
		}
	}
	return ids
}

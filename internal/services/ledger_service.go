package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tek-wizard/spendy-api/internal/ledger"
	"github.com/tek-wizard/spendy-api/internal/models"
	"github.com/tek-wizard/spendy-api/internal/store"
	"github.com/tek-wizard/spendy-api/internal/utils"
)

// LedgerService covers the read and delete side of the IOU ledger plus
// the settle-in-full shortcut, which routes through the reconciler.
type LedgerService struct {
	db         store.DB
	ledgers    *store.LedgerRepo
	expenses   *store.ExpenseRepo
	reconciler *Reconciler
}

func NewLedgerService(db store.DB, ledgers *store.LedgerRepo, expenses *store.ExpenseRepo, reconciler *Reconciler) *LedgerService {
	return &LedgerService{db: db, ledgers: ledgers, expenses: expenses, reconciler: reconciler}
}

// List returns the user's entries, optionally filtered to one person.
func (s *LedgerService) List(ctx context.Context, userID uuid.UUID, person string) ([]models.LedgerEntry, error) {
	var (
		entries []models.LedgerEntry
		err     error
	)
	if person != "" {
		entries, err = s.ledgers.ListByPerson(ctx, userID, person)
	} else {
		entries, err = s.ledgers.ListByUser(ctx, userID)
	}
	if err != nil {
		slog.Error("list ledger entries failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}
	return entries, nil
}

// Delete removes a single entry by id.
func (s *LedgerService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	err := s.ledgers.DeleteByID(ctx, userID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return utils.NewNotFoundError("Ledger entry")
	}
	if err != nil {
		slog.Error("delete ledger entry failed", "user_id", userID, "entry_id", id, "error", err)
		return utils.NewInternalError(err)
	}
	return nil
}

// DeleteGroup removes every ledger entry and expense created together
// by one settlement, in one transaction.
func (s *LedgerService) DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	var removed int64
	err := store.WithinTx(ctx, s.db, func(tx pgx.Tx) error {
		n, err := s.ledgers.WithTx(tx).DeleteByGroup(ctx, userID, groupID)
		if err != nil {
			return err
		}
		m, err := s.expenses.WithTx(tx).DeleteByGroup(ctx, userID, groupID)
		if err != nil {
			return err
		}
		removed = n + m
		return nil
	})
	if err != nil {
		slog.Error("delete settlement group failed", "user_id", userID, "group_id", groupID, "error", err)
		return utils.NewInternalError(err)
	}
	if removed == 0 {
		return utils.NewNotFoundError("Settlement group")
	}
	return nil
}

// SettleUp clears the outstanding balance with one person in full. The
// reconciler resolves the amount and direction from the balance it
// reads inside its own lock and transaction, so a settlement that
// commits concurrently cannot leave this one working from a stale net.
func (s *LedgerService) SettleUp(ctx context.Context, userID uuid.UUID, person, notes string) (*models.SettlementResult, error) {
	return s.reconciler.SettleInFull(ctx, userID, person, notes)
}

// Balances returns the non-zero net balance per person.
func (s *LedgerService) Balances(ctx context.Context, userID uuid.UUID) ([]models.PersonBalance, error) {
	entries, err := s.ledgers.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("balances read failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}
	return ledger.PersonBalances(entries), nil
}

// Debtors returns the people who owe the user.
func (s *LedgerService) Debtors(ctx context.Context, userID uuid.UUID) ([]models.PersonBalance, error) {
	entries, err := s.ledgers.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("debtors read failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}
	return ledger.Debtors(entries), nil
}

// Creditors returns the people the user owes.
func (s *LedgerService) Creditors(ctx context.Context, userID uuid.UUID) ([]models.PersonBalance, error) {
	entries, err := s.ledgers.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("creditors read failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}
	return ledger.Creditors(entries), nil
}

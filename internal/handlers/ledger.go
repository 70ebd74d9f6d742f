package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tek-wizard/spendy-api/internal/models"
	"github.com/tek-wizard/spendy-api/internal/services"
	"github.com/tek-wizard/spendy-api/internal/store"
	"github.com/tek-wizard/spendy-api/internal/utils"
)

// LedgerHandler handles the IOU ledger routes: settlements, entry
// deletion, and the per-person balance views.
type LedgerHandler struct {
	users      *store.UserRepo
	ledgerSvc  *services.LedgerService
	reconciler *services.Reconciler
}

func NewLedgerHandler(users *store.UserRepo, ledgerSvc *services.LedgerService, reconciler *services.Reconciler) *LedgerHandler {
	return &LedgerHandler{users: users, ledgerSvc: ledgerSvc, reconciler: reconciler}
}

type settlementPayload struct {
	Person string          `json:"person"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
	Date   string          `json:"date"` // YYYY-MM-DD, defaults to today
	Intent string          `json:"intent"`
}

// CreateSettlement records one payment intent through the reconciler.
// POST /v1/ledger/settlements
func (h *LedgerHandler) CreateSettlement(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	var payload settlementPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}

	var date time.Time
	if payload.Date != "" {
		date, err = time.Parse(dateLayout, payload.Date)
		if err != nil {
			return utils.NewValidationError([]utils.FieldError{
				{Field: "date", Message: "expected YYYY-MM-DD"},
			})
		}
	}

	result, err := h.reconciler.Settle(c.Context(), user.ID, models.SettlementRequest{
		Person: payload.Person,
		Amount: payload.Amount,
		Notes:  payload.Notes,
		Date:   date,
		Intent: payload.Intent,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// List returns ledger entries, optionally for one person.
// GET /v1/ledger?person=
func (h *LedgerHandler) List(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	entries, err := h.ledgerSvc.List(c.Context(), user.ID, c.Query("person"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"entries": entries,
		"total":   len(entries),
	})
}

// Delete removes one ledger entry.
// DELETE /v1/ledger/:id
func (h *LedgerHandler) Delete(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.NewBadRequestError("invalid ledger entry id", nil)
	}

	if err := h.ledgerSvc.Delete(c.Context(), user.ID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Ledger entry deleted"})
}

// DeleteGroup removes every record created by one settlement.
// DELETE /v1/ledger/groups/:groupId
func (h *LedgerHandler) DeleteGroup(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	groupID, err := uuid.Parse(c.Params("groupId"))
	if err != nil {
		return utils.NewBadRequestError("invalid group id", nil)
	}

	if err := h.ledgerSvc.DeleteGroup(c.Context(), user.ID, groupID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Settlement group deleted"})
}

type settleUpPayload struct {
	Person string `json:"person"`
	Notes  string `json:"notes"`
}

// SettleUp clears the full outstanding balance with a person.
// POST /v1/ledger/settle
func (h *LedgerHandler) SettleUp(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	var payload settleUpPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}

	result, err := h.ledgerSvc.SettleUp(c.Context(), user.ID, payload.Person, payload.Notes)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Balances returns every non-zero per-person net balance.
// GET /v1/ledger/balances
func (h *LedgerHandler) Balances(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	balances, err := h.ledgerSvc.Balances(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"balances": balances})
}

// Debtors returns the people who owe the user.
// GET /v1/ledger/debtors
func (h *LedgerHandler) Debtors(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	debtors, err := h.ledgerSvc.Debtors(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"debtors": debtors})
}

// Creditors returns the people the user owes.
// GET /v1/ledger/creditors
func (h *LedgerHandler) Creditors(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	creditors, err := h.ledgerSvc.Creditors(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"creditors": creditors})
}

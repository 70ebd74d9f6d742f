package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tek-wizard/spendy-api/internal/models"
	"github.com/tek-wizard/spendy-api/internal/services"
	"github.com/tek-wizard/spendy-api/internal/store"
	"github.com/tek-wizard/spendy-api/internal/utils"
)

// ExpensesHandler handles expense CRUD and the filtered transaction
// search.
type ExpensesHandler struct {
	users      *store.UserRepo
	expenseSvc *services.ExpenseService
	reportSvc  *services.ReportService
}

func NewExpensesHandler(users *store.UserRepo, expenseSvc *services.ExpenseService, reportSvc *services.ReportService) *ExpensesHandler {
	return &ExpensesHandler{users: users, expenseSvc: expenseSvc, reportSvc: reportSvc}
}

type splitLinePayload struct {
	Person     string          `json:"person"`
	AmountOwed decimal.Decimal `json:"amount_owed"`
}

type expensePayload struct {
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PersonalShare decimal.Decimal    `json:"personal_share"`
	Category      string             `json:"category"`
	Notes         string             `json:"notes"`
	Date          string             `json:"date"` // YYYY-MM-DD
	IsSplit       bool               `json:"is_split"`
	SplitDetails  []splitLinePayload `json:"split_details"`
}

func (p expensePayload) toRequest() (models.ExpenseRequest, error) {
	var date time.Time
	if p.Date != "" {
		var err error
		date, err = time.Parse(dateLayout, p.Date)
		if err != nil {
			return models.ExpenseRequest{}, utils.NewValidationError([]utils.FieldError{
				{Field: "date", Message: "expected YYYY-MM-DD"},
			})
		}
	}
	details := make([]models.SplitDetail, len(p.SplitDetails))
	for i, sd := range p.SplitDetails {
		details[i] = models.SplitDetail{Person: sd.Person, AmountOwed: sd.AmountOwed}
	}
	return models.ExpenseRequest{
		TotalAmount:   p.TotalAmount,
		PersonalShare: p.PersonalShare,
		Category:      models.Category(p.Category),
		Notes:         p.Notes,
		Date:          date,
		IsSplit:       p.IsSplit,
		SplitDetails:  details,
	}, nil
}

// Create stores a new expense with its split-ledger linkage.
// POST /v1/expenses
func (h *ExpensesHandler) Create(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	var payload expensePayload
	if err := c.Bind().JSON(&payload); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}
	req, err := payload.toRequest()
	if err != nil {
		return err
	}

	exp, err := h.expenseSvc.Create(c.Context(), user.ID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"expense": exp,
		"message": "Expense created",
	})
}

// Get fetches one expense.
// GET /v1/expenses/:id
func (h *ExpensesHandler) Get(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.NewBadRequestError("invalid expense id", nil)
	}

	exp, err := h.expenseSvc.Get(c.Context(), user.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"expense": exp})
}

// Update edits an expense, regenerating its ledger linkage.
// PUT /v1/expenses/:id
func (h *ExpensesHandler) Update(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.NewBadRequestError("invalid expense id", nil)
	}

	var payload expensePayload
	if err := c.Bind().JSON(&payload); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}
	req, err := payload.toRequest()
	if err != nil {
		return err
	}

	exp, err := h.expenseSvc.Update(c.Context(), user.ID, id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"expense": exp,
		"message": "Expense updated",
	})
}

// Delete removes an expense and cascades over its linked records.
// DELETE /v1/expenses/:id
func (h *ExpensesHandler) Delete(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.NewBadRequestError("invalid expense id", nil)
	}

	if err := h.expenseSvc.Delete(c.Context(), user.ID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Expense deleted"})
}

// Search returns a filtered, paginated transaction page with
// aggregate metrics over the full filtered set.
// GET /v1/expenses?from=&to=&categories=&min_amount=&max_amount=&is_split=&q=&page=&page_size=
func (h *ExpensesHandler) Search(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	filter, err := parseExpenseFilter(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if pageSize > 100 {
		pageSize = 100
	}

	result, err := h.reportSvc.SearchTransactions(c.Context(), user.ID, filter, page, pageSize)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func parseExpenseFilter(c fiber.Ctx) (store.ExpenseFilter, error) {
	var filter store.ExpenseFilter

	from, err := parseDateQuery(c, "from")
	if err != nil {
		return filter, err
	}
	if !from.IsZero() {
		filter.From = &from
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return filter, err
	}
	if !to.IsZero() {
		filter.To = &to
	}

	if raw := c.Query("categories"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			cat := models.Category(strings.TrimSpace(part))
			if !cat.IsValid() {
				return filter, utils.NewBadRequestError("unknown category: "+string(cat), nil)
			}
			filter.Categories = append(filter.Categories, cat)
		}
	}

	if raw := c.Query("min_amount"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, utils.NewBadRequestError("invalid min_amount", nil)
		}
		filter.MinAmount = &min
	}
	if raw := c.Query("max_amount"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, utils.NewBadRequestError("invalid max_amount", nil)
		}
		filter.MaxAmount = &max
	}

	if raw := c.Query("is_split"); raw != "" {
		split, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, utils.NewBadRequestError("invalid is_split", nil)
		}
		filter.IsSplit = &split
	}

	filter.NoteQuery = c.Query("q")
	return filter, nil
}

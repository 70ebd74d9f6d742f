package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tek-wizard/spendy-api/internal/models"
	"github.com/tek-wizard/spendy-api/internal/store"
	"github.com/tek-wizard/spendy-api/internal/utils"
)

// budgetCooldown is how long a budget change locks further edits.
const budgetCooldown = 7 * 24 * time.Hour

// UserService manages the profile fields this service owns: the
// monthly budget and the embedded contact list.
type UserService struct {
	users *store.UserRepo
}

func NewUserService(users *store.UserRepo) *UserService {
	return &UserService{users: users}
}

// budgetCooldownRemaining reports how long until the budget may change
// again. Zero means the change is allowed.
func budgetCooldownRemaining(lastUpdated *time.Time, now time.Time) time.Duration {
	if lastUpdated == nil {
		return 0
	}
	remaining := budgetCooldown - now.Sub(*lastUpdated)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// UpdateBudget sets the user's budget, enforcing the 7-day cooldown.
func (s *UserService) UpdateBudget(ctx context.Context, user models.User, budget decimal.Decimal) error {
	if budget.IsNegative() {
		return utils.NewValidationError([]utils.FieldError{
			{Field: "budget", Message: "budget cannot be negative"},
		})
	}

	now := time.Now().UTC()
	if remaining := budgetCooldownRemaining(user.BudgetUpdatedAt, now); remaining > 0 {
		days := int(remaining.Hours()/24) + 1
		return utils.NewConflictError(fmt.Sprintf("budget can be changed once every 7 days; try again in %d day(s)", days))
	}

	if err := s.users.UpdateBudget(ctx, user.ID, budget, now); err != nil {
		slog.Error("budget update failed", "user_id", user.ID, "error", err)
		return utils.NewInternalError(err)
	}
	return nil
}

// AddContact appends a contact, enforcing case-insensitive name
// uniqueness within the user's list.
func (s *UserService) AddContact(ctx context.Context, user models.User, contact models.Contact) ([]models.Contact, error) {
	contact.Name = strings.TrimSpace(contact.Name)
	if contact.Name == "" {
		return nil, utils.NewValidationError([]utils.FieldError{
			{Field: "name", Message: "contact name is required"},
		})
	}
	for _, existing := range user.Contacts {
		if strings.EqualFold(existing.Name, contact.Name) {
			return nil, utils.NewConflictError("a contact with this name already exists")
		}
	}

	contacts := append(user.Contacts, contact)
	if err := s.users.UpdateContacts(ctx, user.ID, contacts); err != nil {
		slog.Error("add contact failed", "user_id", user.ID, "error", err)
		return nil, utils.NewInternalError(err)
	}
	return contacts, nil
}

// RemoveContact deletes a contact by name, matched case-insensitively.
func (s *UserService) RemoveContact(ctx context.Context, user models.User, name string) ([]models.Contact, error) {
	contacts := make([]models.Contact, 0, len(user.Contacts))
	found := false
	for _, existing := range user.Contacts {
		if strings.EqualFold(existing.Name, name) {
			found = true
			continue
		}
		contacts = append(contacts, existing)
	}
	if !found {
		return nil, utils.NewNotFoundError("Contact")
	}

	if err := s.users.UpdateContacts(ctx, user.ID, contacts); err != nil {
		slog.Error("remove contact failed", "user_id", user.ID, "error", err)
		return nil, utils.NewInternalError(err)
	}
	return contacts, nil
}

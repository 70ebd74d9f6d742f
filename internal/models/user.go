package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contact is an embedded entry in the user's contact list. Names are
// unique per user, compared case-insensitively.
type Contact struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// User holds profile fields owned by this service. Identity itself
// lives with the auth provider; ClerkUserID ties the two together.
type User struct {
	ID              uuid.UUID        `json:"id"`
	ClerkUserID     string           `json:"clerk_user_id"`
	Email           string           `json:"email"`
	Budget          *decimal.Decimal `json:"budget,omitempty"`
	BudgetUpdatedAt *time.Time       `json:"budget_updated_at,omitempty"`
	Contacts        []Contact        `json:"contacts"`
	CreatedAt       time.Time        `json:"created_at"`
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tek-wizard/spendy-api/internal/models"
)

// UserRepo persists user profile rows. Identity rows are provisioned
// by the Clerk webhook; everything else is keyed off the resulting
// local uuid.
type UserRepo struct {
	db Querier
}

func NewUserRepo(db Querier) *UserRepo {
	return &UserRepo{db: db}
}

// WithTx returns a copy of the repo bound to the given transaction.
func (r *UserRepo) WithTx(tx pgx.Tx) *UserRepo {
	return &UserRepo{db: tx}
}

// Upsert creates the local row for an authenticated identity, or
// refreshes the email on repeat webhook deliveries.
func (r *UserRepo) Upsert(ctx context.Context, clerkUserID, email string) (models.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, clerk_user_id, email, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (clerk_user_id) DO UPDATE
		SET email = EXCLUDED.email,
		    updated_at = now()
		RETURNING id, clerk_user_id, email, budget::text, budget_updated_at, contacts, created_at
	`, uuid.New(), clerkUserID, email)
	return scanUserRow(row)
}

// GetByClerkID resolves the authenticated Clerk subject to the local
// user row. Every protected handler goes through this lookup.
func (r *UserRepo) GetByClerkID(ctx context.Context, clerkUserID string) (models.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, clerk_user_id, email, budget::text, budget_updated_at, contacts, created_at
		FROM users
		WHERE clerk_user_id = $1
	`, clerkUserID)
	return scanUserRow(row)
}

// UpdateBudget sets the budget and stamps the cooldown clock.
func (r *UserRepo) UpdateBudget(ctx context.Context, userID uuid.UUID, budget decimal.Decimal, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET budget = $2::numeric,
		    budget_updated_at = $3,
		    updated_at = now()
		WHERE id = $1
	`, userID, budget.StringFixed(2), at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateContacts replaces the embedded contact list.
func (r *UserRepo) UpdateContacts(ctx context.Context, userID uuid.UUID, contacts []models.Contact) error {
	if contacts == nil {
		contacts = []models.Contact{}
	}
	b, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("marshal contacts: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET contacts = $2,
		    updated_at = now()
		WHERE id = $1
	`, userID, b)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanUserRow(row pgx.Row) (models.User, error) {
	var (
		u             models.User
		budget        *string
		contactsBytes []byte
	)
	err := row.Scan(&u.ID, &u.ClerkUserID, &u.Email, &budget, &u.BudgetUpdatedAt, &contactsBytes, &u.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	if budget != nil {
		d, err := decimal.NewFromString(*budget)
		if err != nil {
			return models.User{}, fmt.Errorf("parse budget: %w", err)
		}
		u.Budget = &d
	}
	if err := json.Unmarshal(contactsBytes, &u.Contacts); err != nil {
		return models.User{}, fmt.Errorf("unmarshal contacts: %w", err)
	}
	return u, nil
}

package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrations are applied in order at startup. Statements are idempotent
// so restarts are safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		clerk_user_id TEXT UNIQUE NOT NULL,
		email TEXT NOT NULL,
		budget NUMERIC(12,2),
		budget_updated_at TIMESTAMPTZ,
		contacts JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		person TEXT NOT NULL,
		amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
		entry_type TEXT NOT NULL CHECK (entry_type IN ('Lent','Borrowed','Got Back','Paid Back')),
		notes TEXT NOT NULL DEFAULT '',
		entry_date DATE NOT NULL,
		group_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_user_person ON ledger_entries (user_id, person)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_user_group ON ledger_entries (user_id, group_id)`,

	`CREATE TABLE IF NOT EXISTS expenses (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		total_amount NUMERIC(12,2) NOT NULL CHECK (total_amount > 0),
		personal_share NUMERIC(12,2) NOT NULL CHECK (personal_share >= 0),
		category TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		spent_on DATE NOT NULL,
		is_split BOOLEAN NOT NULL DEFAULT false,
		split_details JSONB NOT NULL DEFAULT '[]'::jsonb,
		group_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses (user_id, spent_on)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_user_group ON expenses (user_id, group_id)`,
}

// Migrate applies the schema. Called once from main before the server
// starts accepting requests.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}

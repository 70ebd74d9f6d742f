package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tek-wizard/spendy-api/internal/models"
)

const ledgerColumns = `id, user_id, person, amount::text, entry_type, notes, entry_date, group_id, created_at`

// LedgerRepo persists ledger entries. Entries are append-only; the
// only mutation is deletion (individual, by id set, or by group).
type LedgerRepo struct {
	db Querier
}

func NewLedgerRepo(db Querier) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// WithTx returns a copy of the repo bound to the given transaction.
func (r *LedgerRepo) WithTx(tx pgx.Tx) *LedgerRepo {
	return &LedgerRepo{db: tx}
}

// Insert writes a new entry, generating its id when unset.
func (r *LedgerRepo) Insert(ctx context.Context, e *models.LedgerEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO ledger_entries (id, user_id, person, amount, entry_type, notes, entry_date, group_id, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9)
	`, e.ID, e.UserID, e.Person, e.Amount.StringFixed(2), string(e.Type), e.Notes, e.Date, e.GroupID, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByUser returns every entry the user owns, newest first.
func (r *LedgerRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY entry_date DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return scanLedgerRows(rows)
}

// ListByPerson returns the full history with one contact, oldest
// first. This is the balance calculator's input and must never be
// filtered or truncated.
func (r *LedgerRepo) ListByPerson(ctx context.Context, userID uuid.UUID, person string) ([]models.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE user_id = $1 AND person = $2
		ORDER BY entry_date ASC, created_at ASC
	`, userID, person)
	if err != nil {
		return nil, err
	}
	return scanLedgerRows(rows)
}

// GetByID fetches one entry scoped to its owner.
func (r *LedgerRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (models.LedgerEntry, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE user_id = $1 AND id = $2
	`, userID, id)
	return scanLedgerRow(row)
}

// DeleteByID removes one entry. Returns pgx.ErrNoRows when the entry
// does not exist or belongs to another user.
func (r *LedgerRepo) DeleteByID(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ledger_entries WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteByIDs removes the given entries. Used for cascade deletes from
// split-expense linkage; missing ids are not an error.
func (r *LedgerRepo) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM ledger_entries WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	return err
}

// DeleteByGroup removes every entry stamped with the group id and
// reports how many went.
func (r *LedgerRepo) DeleteByGroup(ctx context.Context, userID, groupID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM ledger_entries WHERE user_id = $1 AND group_id = $2`, userID, groupID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanLedgerRow(row pgx.Row) (models.LedgerEntry, error) {
	var (
		e      models.LedgerEntry
		amount string
		typ    string
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Person, &amount, &typ, &e.Notes, &e.Date, &e.GroupID, &e.CreatedAt)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	e.Type = models.EntryType(typ)
	e.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("parse ledger amount: %w", err)
	}
	return e, nil
}

func scanLedgerRows(rows pgx.Rows) ([]models.LedgerEntry, error) {
	defer rows.Close()
	entries := make([]models.LedgerEntry, 0)
	for rows.Next() {
		e, err := scanLedgerRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

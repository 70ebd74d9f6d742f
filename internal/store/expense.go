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

const expenseColumns = `id, user_id, total_amount::text, personal_share::text, category, notes, spent_on, is_split, split_details, group_id, created_at`

// ExpenseFilter narrows a transaction search. Nil fields are ignored.
type ExpenseFilter struct {
	From       *time.Time
	To         *time.Time
	Categories []models.Category
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	IsSplit    *bool
	NoteQuery  string
}

// ExpenseRepo persists expenses, including the jsonb split linkage
// back to ledger entries.
type ExpenseRepo struct {
	db Querier
}

func NewExpenseRepo(db Querier) *ExpenseRepo {
	return &ExpenseRepo{db: db}
}

// WithTx returns a copy of the repo bound to the given transaction.
func (r *ExpenseRepo) WithTx(tx pgx.Tx) *ExpenseRepo {
	return &ExpenseRepo{db: tx}
}

// Insert writes a new expense, generating its id when unset.
func (r *ExpenseRepo) Insert(ctx context.Context, e *models.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	details, err := marshalSplitDetails(e.SplitDetails)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO expenses (id, user_id, total_amount, personal_share, category, notes, spent_on, is_split, split_details, group_id, created_at)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6, $7, $8, $9, $10, $11)
	`, e.ID, e.UserID, e.TotalAmount.StringFixed(2), e.PersonalShare.StringFixed(2),
		string(e.Category), e.Notes, e.Date, e.IsSplit, details, e.GroupID, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// Update replaces every editable field of an existing expense.
func (r *ExpenseRepo) Update(ctx context.Context, e *models.Expense) error {
	details, err := marshalSplitDetails(e.SplitDetails)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE expenses
		SET total_amount = $3::numeric,
		    personal_share = $4::numeric,
		    category = $5,
		    notes = $6,
		    spent_on = $7,
		    is_split = $8,
		    split_details = $9
		WHERE user_id = $1 AND id = $2
	`, e.UserID, e.ID, e.TotalAmount.StringFixed(2), e.PersonalShare.StringFixed(2),
		string(e.Category), e.Notes, e.Date, e.IsSplit, details)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetByID fetches one expense scoped to its owner.
func (r *ExpenseRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (models.Expense, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE user_id = $1 AND id = $2
	`, userID, id)
	return scanExpenseRow(row)
}

// DeleteByID removes one expense. Returns pgx.ErrNoRows when absent.
func (r *ExpenseRepo) DeleteByID(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListByGroup returns the expenses stamped with one settlement group.
func (r *ExpenseRepo) ListByGroup(ctx context.Context, userID, groupID uuid.UUID) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE user_id = $1 AND group_id = $2
	`, userID, groupID)
	if err != nil {
		return nil, err
	}
	return scanExpenseRows(rows)
}

// DeleteByGroup removes every expense stamped with the group id.
func (r *ExpenseRepo) DeleteByGroup(ctx context.Context, userID, groupID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE user_id = $1 AND group_id = $2`, userID, groupID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Search returns the full filtered set, newest first. Pagination and
// aggregate metrics happen in the reporting layer so they cover the
// whole result, not one page.
func (r *ExpenseRepo) Search(ctx context.Context, userID uuid.UUID, f ExpenseFilter) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = $1`
	args := []any{userID}

	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(" AND spent_on >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(" AND spent_on <= $%d", len(args))
	}
	if len(f.Categories) > 0 {
		cats := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			cats[i] = string(c)
		}
		args = append(args, cats)
		query += fmt.Sprintf(" AND category = ANY($%d)", len(args))
	}
	if f.MinAmount != nil {
		args = append(args, f.MinAmount.StringFixed(2))
		query += fmt.Sprintf(" AND total_amount >= $%d::numeric", len(args))
	}
	if f.MaxAmount != nil {
		args = append(args, f.MaxAmount.StringFixed(2))
		query += fmt.Sprintf(" AND total_amount <= $%d::numeric", len(args))
	}
	if f.IsSplit != nil {
		args = append(args, *f.IsSplit)
		query += fmt.Sprintf(" AND is_split = $%d", len(args))
	}
	if f.NoteQuery != "" {
		args = append(args, "%"+f.NoteQuery+"%")
		query += fmt.Sprintf(" AND notes ILIKE $%d", len(args))
	}
	query += " ORDER BY spent_on DESC, created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanExpenseRows(rows)
}

func marshalSplitDetails(details []models.SplitDetail) ([]byte, error) {
	if details == nil {
		details = []models.SplitDetail{}
	}
	b, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("marshal split details: %w", err)
	}
	return b, nil
}

func scanExpenseRow(row pgx.Row) (models.Expense, error) {
	var (
		e            models.Expense
		total, share string
		category     string
		detailsBytes []byte
	)
	err := row.Scan(&e.ID, &e.UserID, &total, &share, &category, &e.Notes,
		&e.Date, &e.IsSplit, &detailsBytes, &e.GroupID, &e.CreatedAt)
	if err != nil {
		return models.Expense{}, err
	}
	e.Category = models.Category(category)
	if e.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return models.Expense{}, fmt.Errorf("parse total amount: %w", err)
	}
	if e.PersonalShare, err = decimal.NewFromString(share); err != nil {
		return models.Expense{}, fmt.Errorf("parse personal share: %w", err)
	}
	if err := json.Unmarshal(detailsBytes, &e.SplitDetails); err != nil {
		return models.Expense{}, fmt.Errorf("unmarshal split details: %w", err)
	}
	return e, nil
}

func scanExpenseRows(rows pgx.Rows) ([]models.Expense, error) {
	defer rows.Close()
	expenses := make([]models.Expense, 0)
	for rows.Next() {
		e, err := scanExpenseRow(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

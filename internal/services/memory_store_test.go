package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/tek-wizard/spendy-api/internal/models"
)

// memoryStore is an in-memory store.DB for service tests. It answers
// the exact SQL the repos issue, so services run unmodified against it:
// direct calls hit the live dataset, Begin hands out a snapshot that is
// written back on Commit and discarded on Rollback.
type memoryStore struct {
	mu   sync.Mutex
	data dataset
}

func newMemoryStore() *memoryStore { return &memoryStore{} }

func (m *memoryStore) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.exec(sql, args)
}

func (m *memoryStore) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.query(sql, args)
}

func (m *memoryStore) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.queryRow(sql, args)
}

func (m *memoryStore) Begin(ctx context.Context) (pgx.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &memoryTx{store: m, data: m.data.clone()}, nil
}

func (m *memoryStore) snapshot() dataset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.clone()
}

func (m *memoryStore) seedLedger(e models.LedgerEntry) models.LedgerEntry {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.ledgers = append(m.data.ledgers, e)
	return e
}

func (m *memoryStore) seedExpense(e models.Expense) models.Expense {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.expenses = append(m.data.expenses, e)
	return e
}

// memoryTx works on a private copy of the dataset, mimicking snapshot
// isolation. Only Commit makes its writes visible.
type memoryTx struct {
	store *memoryStore
	data  dataset
	done  bool
}

func (t *memoryTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.data.exec(sql, args)
}

func (t *memoryTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.data.query(sql, args)
}

func (t *memoryTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.data.queryRow(sql, args)
}

func (t *memoryTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.mu.Lock()
	t.store.data = t.data
	t.store.mu.Unlock()
	return nil
}

func (t *memoryTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	return nil
}

func (t *memoryTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (t *memoryTx) CopyFrom(ctx context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not supported")
}

func (t *memoryTx) SendBatch(ctx context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }

func (t *memoryTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *memoryTx) Prepare(ctx context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("prepare not supported")
}

func (t *memoryTx) Conn() *pgx.Conn { return nil }

type dataset struct {
	ledgers  []models.LedgerEntry
	expenses []models.Expense
}

func (d dataset) clone() dataset {
	out := dataset{
		ledgers:  make([]models.LedgerEntry, len(d.ledgers)),
		expenses: make([]models.Expense, len(d.expenses)),
	}
	copy(out.ledgers, d.ledgers)
	copy(out.expenses, d.expenses)
	return out
}

func (d *dataset) exec(sql string, args []any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "INSERT INTO ledger_entries"):
		amount, err := decimal.NewFromString(args[3].(string))
		if err != nil {
			return pgconn.CommandTag{}, err
		}
		d.ledgers = append(d.ledgers, models.LedgerEntry{
			ID:        args[0].(uuid.UUID),
			UserID:    args[1].(uuid.UUID),
			Person:    args[2].(string),
			Amount:    amount,
			Type:      models.EntryType(args[4].(string)),
			Notes:     args[5].(string),
			Date:      args[6].(time.Time),
			GroupID:   args[7].(*uuid.UUID),
			CreatedAt: args[8].(time.Time),
		})
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case strings.Contains(sql, "INSERT INTO expenses"):
		total, err := decimal.NewFromString(args[2].(string))
		if err != nil {
			return pgconn.CommandTag{}, err
		}
		share, err := decimal.NewFromString(args[3].(string))
		if err != nil {
			return pgconn.CommandTag{}, err
		}
		var details []models.SplitDetail
		if err := json.Unmarshal(args[8].([]byte), &details); err != nil {
			return pgconn.CommandTag{}, err
		}
		d.expenses = append(d.expenses, models.Expense{
			ID:            args[0].(uuid.UUID),
			UserID:        args[1].(uuid.UUID),
			TotalAmount:   total,
			PersonalShare: share,
			Category:      models.Category(args[4].(string)),
			Notes:         args[5].(string),
			Date:          args[6].(time.Time),
			IsSplit:       args[7].(bool),
			SplitDetails:  details,
			GroupID:       args[9].(*uuid.UUID),
			CreatedAt:     args[10].(time.Time),
		})
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case strings.Contains(sql, "UPDATE expenses"):
		userID, id := args[0].(uuid.UUID), args[1].(uuid.UUID)
		total, err := decimal.NewFromString(args[2].(string))
		if err != nil {
			return pgconn.CommandTag{}, err
		}
		share, err := decimal.NewFromString(args[3].(string))
		if err != nil {
			return pgconn.CommandTag{}, err
		}
		var details []models.SplitDetail
		if err := json.Unmarshal(args[8].([]byte), &details); err != nil {
			return pgconn.CommandTag{}, err
		}
		var n int64
		for i := range d.expenses {
			e := &d.expenses[i]
			if e.UserID != userID || e.ID != id {
				continue
			}
			e.TotalAmount = total
			e.PersonalShare = share
			e.Category = models.Category(args[4].(string))
			e.Notes = args[5].(string)
			e.Date = args[6].(time.Time)
			e.IsSplit = args[7].(bool)
			e.SplitDetails = details
			n++
		}
		return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", n)), nil

	case strings.Contains(sql, "DELETE FROM ledger_entries"):
		userID := args[0].(uuid.UUID)
		match := ledgerDeleteMatcher(sql, args)
		kept := d.ledgers[:0:0]
		var n int64
		for _, e := range d.ledgers {
			if e.UserID == userID && match(e) {
				n++
				continue
			}
			kept = append(kept, e)
		}
		d.ledgers = kept
		return pgconn.NewCommandTag(fmt.Sprintf("DELETE %d", n)), nil

	case strings.Contains(sql, "DELETE FROM expenses"):
		userID := args[0].(uuid.UUID)
		byGroup := strings.Contains(sql, "group_id")
		kept := d.expenses[:0:0]
		var n int64
		for _, e := range d.expenses {
			hit := e.UserID == userID
			if byGroup {
				hit = hit && e.GroupID != nil && *e.GroupID == args[1].(uuid.UUID)
			} else {
				hit = hit && e.ID == args[1].(uuid.UUID)
			}
			if hit {
				n++
				continue
			}
			kept = append(kept, e)
		}
		d.expenses = kept
		return pgconn.NewCommandTag(fmt.Sprintf("DELETE %d", n)), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unhandled exec: %s", sql)
}

func ledgerDeleteMatcher(sql string, args []any) func(models.LedgerEntry) bool {
	switch {
	case strings.Contains(sql, "ANY($2)"):
		ids := args[1].([]uuid.UUID)
		return func(e models.LedgerEntry) bool {
			for _, id := range ids {
				if e.ID == id {
					return true
				}
			}
			return false
		}
	case strings.Contains(sql, "group_id"):
		gid := args[1].(uuid.UUID)
		return func(e models.LedgerEntry) bool {
			return e.GroupID != nil && *e.GroupID == gid
		}
	default:
		id := args[1].(uuid.UUID)
		return func(e models.LedgerEntry) bool { return e.ID == id }
	}
}

func (d *dataset) query(sql string, args []any) (pgx.Rows, error) {
	rows, err := d.rows(sql, args)
	if err != nil {
		return nil, err
	}
	return &fakeRows{rows: rows}, nil
}

func (d *dataset) queryRow(sql string, args []any) pgx.Row {
	rows, err := d.rows(sql, args)
	if err != nil {
		return fakeRow{err: err}
	}
	if len(rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{values: rows[0]}
}

func (d *dataset) rows(sql string, args []any) ([][]any, error) {
	userID := args[0].(uuid.UUID)
	switch {
	case strings.Contains(sql, "FROM ledger_entries"):
		var out []models.LedgerEntry
		for _, e := range d.ledgers {
			if e.UserID != userID {
				continue
			}
			switch {
			case strings.Contains(sql, "person = $2"):
				if e.Person != args[1].(string) {
					continue
				}
			case strings.Contains(sql, "id = $2"):
				if e.ID != args[1].(uuid.UUID) {
					continue
				}
			}
			out = append(out, e)
		}
		asc := strings.Contains(sql, "ASC")
		sort.SliceStable(out, func(i, j int) bool {
			if asc {
				return out[i].Date.Before(out[j].Date)
			}
			return out[j].Date.Before(out[i].Date)
		})
		rows := make([][]any, len(out))
		for i, e := range out {
			rows[i] = []any{
				e.ID, e.UserID, e.Person, e.Amount.StringFixed(2), string(e.Type),
				e.Notes, e.Date, e.GroupID, e.CreatedAt,
			}
		}
		return rows, nil

	case strings.Contains(sql, "FROM expenses"):
		var out []models.Expense
		for _, e := range d.expenses {
			if e.UserID != userID {
				continue
			}
			switch {
			case strings.Contains(sql, "group_id = $2"):
				if e.GroupID == nil || *e.GroupID != args[1].(uuid.UUID) {
					continue
				}
			case strings.Contains(sql, "id = $2"):
				if e.ID != args[1].(uuid.UUID) {
					continue
				}
			}
			out = append(out, e)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[j].Date.Before(out[i].Date) })
		rows := make([][]any, len(out))
		for i, e := range out {
			details, err := json.Marshal(e.SplitDetails)
			if err != nil {
				return nil, err
			}
			rows[i] = []any{
				e.ID, e.UserID, e.TotalAmount.StringFixed(2), e.PersonalShare.StringFixed(2),
				string(e.Category), e.Notes, e.Date, e.IsSplit, details, e.GroupID, e.CreatedAt,
			}
		}
		return rows, nil
	}
	return nil, fmt.Errorf("unhandled query: %s", sql)
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool                                   { r.idx++; return r.idx <= len(r.rows) }
func (r *fakeRows) Scan(dest ...any) error                       { return scanInto(r.rows[r.idx-1], dest) }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.idx-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(r.values, dest)
}

func scanInto(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(values), len(dest))
	}
	for i, v := range values {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(v))
	}
	return nil
}

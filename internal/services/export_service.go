package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tek-wizard/spendy-api/internal/models"
	"github.com/tek-wizard/spendy-api/internal/store"
	"github.com/tek-wizard/spendy-api/internal/utils"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportService renders a date range of expenses and ledger entries
// into an XLSX workbook, archives it in S3, and returns a presigned
// download URL.
type ExportService struct {
	storage  *StorageService
	expenses *store.ExpenseRepo
	ledgers  *store.LedgerRepo
	expiry   int // presigned URL lifetime in minutes
}

func NewExportService(storage *StorageService, expenses *store.ExpenseRepo, ledgers *store.LedgerRepo, expiryMinutes int) *ExportService {
	if expiryMinutes <= 0 {
		expiryMinutes = 60
	}
	return &ExportService{storage: storage, expenses: expenses, ledgers: ledgers, expiry: expiryMinutes}
}

// ExportResult points the client at the generated workbook.
type ExportResult struct {
	Key         string `json:"key"`
	DownloadURL string `json:"download_url"`
	ExpiresIn   int    `json:"expires_in_minutes"`
}

// Export builds and archives the workbook for [from, to].
func (s *ExportService) Export(ctx context.Context, userID uuid.UUID, from, to time.Time) (*ExportResult, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = time.Unix(0, 0).UTC()
	}

	expenses, err := s.expenses.Search(ctx, userID, store.ExpenseFilter{From: &from, To: &to})
	if err != nil {
		slog.Error("export expense fetch failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}
	entries, err := s.ledgers.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("export ledger fetch failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}

	workbook, err := buildWorkbook(expenses, filterEntriesByRange(entries, from, to))
	if err != nil {
		slog.Error("export workbook build failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}
	buf, err := workbook.WriteToBuffer()
	if err != nil {
		slog.Error("export workbook encode failed", "user_id", userID, "error", err)
		return nil, utils.NewInternalError(err)
	}

	key, err := s.storage.GenerateExportKey(userID.String(), from, to)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	if err := s.storage.Upload(ctx, key, xlsxContentType, buf); err != nil {
		slog.Error("export upload failed", "user_id", userID, "key", key, "error", err)
		return nil, utils.NewInternalError(err)
	}
	url, err := s.storage.GeneratePresignedGetURL(key, s.expiry)
	if err != nil {
		slog.Error("export presign failed", "user_id", userID, "key", key, "error", err)
		return nil, utils.NewInternalError(err)
	}

	return &ExportResult{Key: key, DownloadURL: url, ExpiresIn: s.expiry}, nil
}

// DeleteExport removes an archived workbook. Keys are namespaced per
// user, so anything outside the caller's prefix is rejected before it
// reaches storage.
func (s *ExportService) DeleteExport(ctx context.Context, userID uuid.UUID, key string) error {
	if key == "" || !strings.HasPrefix(key, "exports/"+userID.String()+"/") {
		return utils.NewValidationError([]utils.FieldError{
			{Field: "key", Message: "key must reference one of your exports"},
		})
	}
	if err := s.storage.DeleteFile(ctx, key); err != nil {
		slog.Error("export delete failed", "user_id", userID, "key", key, "error", err)
		return utils.NewInternalError(err)
	}
	return nil
}

func filterEntriesByRange(entries []models.LedgerEntry, from, to time.Time) []models.LedgerEntry {
	out := make([]models.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func buildWorkbook(expenses []models.Expense, entries []models.LedgerEntry) (*excelize.File, error) {
	f := excelize.NewFile()

	const expenseSheet = "Expenses"
	if err := f.SetSheetName(f.GetSheetName(0), expenseSheet); err != nil {
		return nil, err
	}
	header := []any{"Date", "Category", "Notes", "Total Amount", "Personal Share", "Split"}
	if err := f.SetSheetRow(expenseSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, e := range expenses {
		row := []any{
			e.Date.Format("2006-01-02"),
			string(e.Category),
			e.Notes,
			e.TotalAmount.InexactFloat64(),
			e.PersonalShare.InexactFloat64(),
			e.IsSplit,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(expenseSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	const ledgerSheet = "Ledger"
	if _, err := f.NewSheet(ledgerSheet); err != nil {
		return nil, err
	}
	header = []any{"Date", "Person", "Type", "Amount", "Notes"}
	if err := f.SetSheetRow(ledgerSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, e := range entries {
		row := []any{
			e.Date.Format("2006-01-02"),
			e.Person,
			string(e.Type),
			e.Amount.InexactFloat64(),
			e.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ledgerSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/tek-wizard/spendy-api/internal/services"
	"github.com/tek-wizard/spendy-api/internal/store"
	"github.com/tek-wizard/spendy-api/internal/utils"
)

// ReportsHandler serves the read-only aggregation views and the XLSX
// export.
type ReportsHandler struct {
	users     *store.UserRepo
	reportSvc *services.ReportService
	exportSvc *services.ExportService
}

func NewReportsHandler(users *store.UserRepo, reportSvc *services.ReportService, exportSvc *services.ExportService) *ReportsHandler {
	return &ReportsHandler{users: users, reportSvc: reportSvc, exportSvc: exportSvc}
}

// Summary returns total spend, trend, sparkline, and category
// breakdown for a date range.
// GET /v1/reports/summary?from=&to=
func (h *ReportsHandler) Summary(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	from, err := parseDateQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return err
	}

	summary, err := h.reportSvc.Summary(c.Context(), user.ID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// Monthly returns the narrative report for one month.
// GET /v1/reports/monthly?month=YYYY-MM
func (h *ReportsHandler) Monthly(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	month := time.Now().UTC()
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			return utils.NewBadRequestError("invalid month, expected YYYY-MM", nil)
		}
		month = parsed
	}

	report, err := h.reportSvc.Monthly(c.Context(), user.ID, month)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// Export builds an XLSX workbook for the range, archives it, and
// returns a presigned download URL.
// GET /v1/reports/export?from=&to=
func (h *ReportsHandler) Export(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	from, err := parseDateQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		return err
	}

	result, err := h.exportSvc.Export(c.Context(), user.ID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// DeleteExport removes a previously archived workbook from storage.
// DELETE /v1/reports/export?key=
func (h *ReportsHandler) DeleteExport(c fiber.Ctx) error {
	user, err := currentUser(c, h.users)
	if err != nil {
		return err
	}

	if err := h.exportSvc.DeleteExport(c.Context(), user.ID, c.Query("key")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Export deleted"})
}

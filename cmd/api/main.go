package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tek-wizard/spendy-api/internal/config"
	"github.com/tek-wizard/spendy-api/internal/database"
	"github.com/tek-wizard/spendy-api/internal/handlers"
	"github.com/tek-wizard/spendy-api/internal/middleware"
	"github.com/tek-wizard/spendy-api/internal/services"
	"github.com/tek-wizard/spendy-api/internal/store"
	"github.com/tek-wizard/spendy-api/internal/utils"
	"github.com/tek-wizard/spendy-api/pkg/logging"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment variables")
	}

	logging.Setup()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConnections)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to database")

	storageService, err := services.NewStorageService(cfg.S3Bucket, cfg.S3Region, cfg.AWSEndpoint)
	if err != nil {
		slog.Error("failed to initialize storage service", "error", err)
		os.Exit(1)
	}

	// Repositories
	users := store.NewUserRepo(pool)
	ledgers := store.NewLedgerRepo(pool)
	expenses := store.NewExpenseRepo(pool)

	// Services
	reconciler := services.NewReconciler(pool, ledgers, expenses)
	expenseService := services.NewExpenseService(pool, expenses, ledgers)
	ledgerService := services.NewLedgerService(pool, ledgers, expenses, reconciler)
	reportService := services.NewReportService(expenses)
	exportService := services.NewExportService(storageService, expenses, ledgers, int(cfg.ExportExpiry.Minutes()))
	userService := services.NewUserService(users)

	// Handlers
	usersHandler := handlers.NewUsersHandler(users, userService)
	ledgerHandler := handlers.NewLedgerHandler(users, ledgerService, reconciler)
	expensesHandler := handlers.NewExpensesHandler(users, expenseService, reportService)
	reportsHandler := handlers.NewReportsHandler(users, reportService, exportService)

	app := fiber.New(fiber.Config{
		AppName:      "spendy API v1.0",
		ErrorHandler: utils.ErrorHandler,
	})

	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(middleware.Metrics())

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "spendy-api",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")

	// Internal routes (webhook callbacks; secure with a webhook secret in production)
	internal := v1.Group("/internal")
	internal.Post("/users", usersHandler.CreateUser)

	// Protected routes
	protected := v1.Group("", middleware.ClerkAuth(cfg.ClerkSecretKey))

	protected.Get("/user", usersHandler.GetUser)
	protected.Put("/user/budget", usersHandler.UpdateBudget)
	protected.Post("/user/contacts", usersHandler.AddContact)
	protected.Delete("/user/contacts/:name", usersHandler.RemoveContact)

	protected.Get("/ledger", ledgerHandler.List)
	protected.Post("/ledger/settlements", ledgerHandler.CreateSettlement)
	protected.Post("/ledger/settle", ledgerHandler.SettleUp)
	protected.Get("/ledger/balances", ledgerHandler.Balances)
	protected.Get("/ledger/debtors", ledgerHandler.Debtors)
	protected.Get("/ledger/creditors", ledgerHandler.Creditors)
	protected.Delete("/ledger/groups/:groupId", ledgerHandler.DeleteGroup)
	protected.Delete("/ledger/:id", ledgerHandler.Delete)

	protected.Post("/expenses", expensesHandler.Create)
	protected.Get("/expenses", expensesHandler.Search)
	protected.Get("/expenses/:id", expensesHandler.Get)
	protected.Put("/expenses/:id", expensesHandler.Update)
	protected.Delete("/expenses/:id", expensesHandler.Delete)

	protected.Get("/reports/summary", reportsHandler.Summary)
	protected.Get("/reports/monthly", reportsHandler.Monthly)
	protected.Get("/reports/export", reportsHandler.Export)
	protected.Delete("/reports/export", reportsHandler.DeleteExport)

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("spendy API is running", "addr", addr, "environment", cfg.Environment)
	if err := app.Listen(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

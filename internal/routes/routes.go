package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sango-bank/sango_bank/internal/account"
	"github.com/sango-bank/sango_bank/internal/config"
	"github.com/sango-bank/sango_bank/internal/lock"
	"github.com/sango-bank/sango_bank/internal/middleware"
	"github.com/sango-bank/sango_bank/internal/notification"
	"github.com/sango-bank/sango_bank/internal/transaction"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	// Storage backends: Postgres when configured, shared in-memory state
	// otherwise (dev and tests).
	var accountRepo account.Repository
	var store transaction.Store
	if d.DB != nil {
		accountRepo = account.NewPostgresRepository(d.DB)
		store = transaction.NewPostgresStore(d.DB)
	} else {
		mem := transaction.NewInMemory()
		accountRepo = mem
		store = mem
	}

	var locker lock.Locker
	if d.Cache != nil {
		locker = lock.NewRedisLocker(d.Cache, d.Cfg.LockLease, d.Cfg.LockWait, d.Logger)
	} else {
		locker = lock.NewMemory()
	}

	accountSvc := account.NewService(accountRepo)
	notifier := notification.NewLoggerNotifier(d.Logger)
	engine := transaction.NewEngine(store, locker, notifier)

	accountHandler := account.NewHandler(accountSvc)
	transactionHandler := transaction.NewHandler(engine, accountRepo)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAccountRoutes(api, accountHandler, transactionHandler)
	RegisterTransactionRoutes(api, transactionHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/smsrent/rental-system/internal/api/handler"
	"github.com/smsrent/rental-system/internal/api/middleware"
	"github.com/smsrent/rental-system/internal/core/domain"
	"github.com/smsrent/rental-system/internal/core/service"
	mongorepo "github.com/smsrent/rental-system/internal/infrastructure/db/mongo"
	redisinfra "github.com/smsrent/rental-system/internal/infrastructure/db/redis"
	"github.com/smsrent/rental-system/internal/infrastructure/http/handlers"
	"github.com/smsrent/rental-system/internal/infrastructure/provider"
	"github.com/smsrent/rental-system/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("smsrental"))

	// --- Infrastructure ---
	accountRepo := mongorepo.NewAccountRepository(db)
	ledgerRepo := mongorepo.NewLedgerRepository(db.Client(), db)
	rentalRepo := mongorepo.NewRentalRepository(db)
	messageRepo := mongorepo.NewMessageRepository(db)

	notifier := redisinfra.NewNotifier(rdb, log)
	balanceCache := redisinfra.NewProviderBalanceCache(rdb)

	daisy := provider.NewDaisySMS(log, cfg.Daisy.APIURL, cfg.Daisy.APIKey,
		&http.Client{Timeout: cfg.Daisy.Timeout})

	// --- Services ---
	authService := service.NewAuthService(accountRepo, cfg.JWTSecret, 24*time.Hour)
	rentalService := service.NewRentalService(accountRepo, ledgerRepo, rentalRepo, daisy, notifier, log)
	settlementService := service.NewSettlementService(rentalRepo, messageRepo, daisy, log)
	adminService := service.NewAdminService(accountRepo, ledgerRepo, daisy, notifier, balanceCache, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountRepo)
	rentalHandler := handler.NewRentalHandler(rentalService, settlementService)
	adminHandler := handler.NewAdminHandler(adminService)

	// --- Auth routes (public) ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", middleware.Auth(cfg.JWTSecret))
	v1.GET("/balance", accountHandler.Balance)
	v1.GET("/rentals", rentalHandler.List)
	v1.POST("/rentals", rentalHandler.Create)
	v1.GET("/rentals/:id/poll", rentalHandler.Poll)
	v1.GET("/rentals/:id/messages", rentalHandler.Messages)

	// --- Admin routes ---
	// RBAC rejects non-admin tokens cheaply; AdminOnly re-checks the stored
	// account so demotions and suspensions apply before token expiry.
	admin := v1.Group("/admin", middleware.RBAC(domain.RoleAdmin), middleware.AdminOnly(accountRepo))
	admin.GET("/accounts", adminHandler.ListAccounts)
	admin.GET("/accounts/:id", adminHandler.GetAccount)
	admin.PATCH("/accounts/:id", adminHandler.UpdateAccountStatus)
	admin.POST("/accounts/:id/credits", adminHandler.AdjustCredits)
	admin.POST("/accounts/bulk-credits", adminHandler.BulkAdjustCredits)
	admin.GET("/transactions", adminHandler.ListTransactions)
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/provider-balance", adminHandler.ProviderBalance)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}

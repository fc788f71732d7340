package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"paylink_backend/internal/config"
	"paylink_backend/internal/email"
	"paylink_backend/internal/handlers"
	"paylink_backend/internal/logger"
	"paylink_backend/internal/middleware"
	"paylink_backend/internal/models"
	"paylink_backend/internal/payroute"
	"paylink_backend/internal/repositories"
	"paylink_backend/internal/routes"
	"paylink_backend/internal/services"
	"paylink_backend/internal/validator"
	"paylink_backend/internal/verifier"
	"paylink_backend/internal/workers"
	"paylink_backend/internal/workspace"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	logger.Info("database connected")

	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.PaymentRequest{},
		&models.OutgoingPayment{},
		&models.LedgerEntry{},
	); err != nil {
		logger.Fatal("auto-migration failed", "error", err)
	}

	ginRouter, scheduler := SetupRouter(cfg, gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("server startup error", "error", err)
	}
}

// SetupRouter wires repositories, services and handlers and returns the gin
// engine plus the scheduler worker (not yet started).
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *workers.SchedulerWorker) {
	// Repositories
	userRepo := repositories.NewUserRepository(gormDB)
	walletRepo := repositories.NewWalletRepository(gormDB)
	requestRepo := repositories.NewPaymentRequestRepository(gormDB)
	outgoingRepo := repositories.NewOutgoingPaymentRepository(gormDB)
	ledgerRepo := repositories.NewLedgerRepository(gormDB)

	// External collaborators
	var notifier email.Provider = email.NewSMTPSender(cfg)

	var mirror workspace.Mirror = workspace.NoopMirror{}
	if cfg.Workspace.Enabled {
		mirror = workspace.NewHTTPMirror(cfg.Workspace.BaseURL, cfg.Workspace.Token)
	}

	facilitator := verifier.NewFacilitatorClient(cfg.Verifier.BaseURL, cfg.Verifier.APIKey)

	// Route registry: derived cache, rebuilt from the durable store.
	registry := payroute.NewRegistry()
	restored, err := registry.RebuildFromStorage(requestRepo)
	if err != nil {
		logger.Fatal("route registry rebuild failed", "error", err)
	}
	logger.Info("route registry rebuilt", "routes", restored)

	// Services
	authService := services.NewAuthService(userRepo)
	walletService := services.NewWalletService(walletRepo)
	ledgerService := services.NewLedgerService(ledgerRepo)
	requestService := services.NewPaymentRequestService(
		requestRepo, outgoingRepo, ledgerRepo, registry, notifier, mirror, cfg.Server.PublicBaseURL)
	outgoingService := services.NewOutgoingPaymentService(
		outgoingRepo, ledgerRepo, facilitator, requestService, 30*time.Second)
	verificationService := services.NewVerificationService(
		registry, walletService, facilitator, requestService,
		services.VerificationPolicy{
			VerifyTimeout:           time.Duration(cfg.Verifier.VerifyTimeout) * time.Second,
			OptimisticTimeoutAccept: cfg.Verifier.OptimisticTimeoutAccept,
		})

	// Handlers
	base := handlers.NewBaseHandler(validator.New())
	appHandlers := &handlers.AppHandlers{
		AuthHandler:            handlers.NewAuthHandler(base, authService),
		PaymentRequestHandler:  handlers.NewPaymentRequestHandler(base, requestService, ledgerService),
		OutgoingPaymentHandler: handlers.NewOutgoingPaymentHandler(base, outgoingService),
		WalletHandler:          handlers.NewWalletHandler(base, walletService),
		PayHandler:             handlers.NewPayHandler(base, verificationService),
	}

	scheduler := workers.NewSchedulerWorker(
		requestService,
		outgoingService,
		time.Duration(cfg.Scheduler.ActivationInterval)*time.Second,
		time.Duration(cfg.Scheduler.OutgoingInterval)*time.Second,
		time.Duration(cfg.Scheduler.RefundInterval)*time.Second,
	)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.RequestLogger())

	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter, scheduler
}

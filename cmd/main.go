package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sellerhub/internal/config"
	"sellerhub/internal/controller"
	"sellerhub/internal/middleware"
	"sellerhub/internal/model"
	"sellerhub/internal/platform"
	"sellerhub/internal/repository"
	"sellerhub/internal/router"
	"sellerhub/internal/service"
	"sellerhub/internal/task"
	"sellerhub/internal/vault"
	"sellerhub/pkg/database"
	"sellerhub/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.JWTSecret != "" {
		jwtCfg := middleware.DefaultJWTConfig()
		jwtCfg.SecretKey = cfg.JWTSecret
		middleware.SetJWTConfig(jwtCfg)
	}

	db := initDatabase(cfg)
	deps := initDependencies(cfg, db, log)

	initTasks(deps)

	r := gin.Default()
	router.InitRoutes(r,
		deps.Controllers.Auth,
		deps.Controllers.User,
		deps.Controllers.Product,
		deps.Controllers.Sync,
		deps.Controllers.Automation,
		deps.Controllers.AI,
		deps.Controllers.Notification,
	)

	startServer(r, cfg.ServerPort, log, deps)
}

// ==================== Dependency containers ====================

type Dependencies struct {
	DB          *gorm.DB
	Logger      *zap.Logger
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	Tasks       *Tasks
}

type Repositories struct {
	User          repository.UserRepository
	Integration   repository.IntegrationRepository
	Product       repository.ProductRepository
	Listing       repository.ListingRepository
	Rule          repository.AutomationRuleRepository
	AutomationLog repository.AutomationLogRepository
	Notification  repository.NotificationRepository
}

type Services struct {
	Auth         *service.AuthService
	User         *service.UserService
	Product      *service.ProductService
	Sync         *service.SyncService
	Automation   *service.AutomationService
	Notification *service.NotificationService
	AI           *service.AIService
}

type Controllers struct {
	Auth         *controller.AuthController
	User         *controller.UserController
	Product      *controller.ProductController
	Sync         *controller.SyncController
	Automation   *controller.AutomationController
	AI           *controller.AIController
	Notification *controller.NotificationController
}

type Tasks struct {
	Token      *task.TokenTask
	Automation *task.AutomationTask
}

// ==================== Initialization ====================

func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.DatabaseDSN,
		&model.SysUser{},
		&model.Integration{},
		&model.Product{}, &model.ProductListing{},
		&model.AutomationRule{}, &model.AutomationLog{},
		&model.Notification{},
	)
}

func initDependencies(cfg *config.Config, db *gorm.DB, log *zap.Logger) *Dependencies {
	repos := &Repositories{
		User:          repository.NewUserRepository(db),
		Integration:   repository.NewIntegrationRepository(db),
		Product:       repository.NewProductRepository(db),
		Listing:       repository.NewListingRepository(db),
		Rule:          repository.NewAutomationRuleRepository(db),
		AutomationLog: repository.NewAutomationLogRepository(db),
		Notification:  repository.NewNotificationRepository(db),
	}

	tokenVault := initVault(cfg, db)
	registry := platform.NewRegistry(cfg, log)

	notificationSvc := service.NewNotificationService(repos.Notification, log)
	services := &Services{
		Auth:         service.NewAuthService(repos.Integration, registry, tokenVault, log),
		User:         service.NewUserService(repos.User, log),
		Product:      service.NewProductService(repos.Product, log),
		Sync:         service.NewSyncService(repos.Product, repos.Listing, registry, tokenVault, log),
		Notification: notificationSvc,
		Automation: service.NewAutomationService(
			repos.Rule, repos.AutomationLog, repos.Product, repos.Listing, notificationSvc, log),
		AI: service.NewAIService(cfg.GeminiAPIKey, repos.Product, log),
	}

	controllers := &Controllers{
		Auth:         controller.NewAuthController(services.Auth, cfg),
		User:         controller.NewUserController(services.User),
		Product:      controller.NewProductController(services.Product),
		Sync:         controller.NewSyncController(services.Sync, services.Auth),
		Automation:   controller.NewAutomationController(services.Automation),
		AI:           controller.NewAIController(services.AI, services.Sync),
		Notification: controller.NewNotificationController(services.Notification),
	}

	return &Dependencies{
		DB:          db,
		Logger:      log,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		Tasks: &Tasks{
			Token:      task.NewTokenTask(repos.Integration, services.Auth, log),
			Automation: task.NewAutomationTask(services.Automation, log),
		},
	}
}

// initVault prefers the local AES vault when a key is configured and falls
// back to the database's encrypt_token/decrypt_token functions.
func initVault(cfg *config.Config, db *gorm.DB) vault.TokenVault {
	if cfg.VaultKey != "" {
		v, err := vault.NewAESVault(cfg.VaultKey)
		if err != nil {
			panic(err)
		}
		return v
	}
	return vault.NewPgVault(db)
}

func initTasks(deps *Dependencies) {
	deps.Tasks.Token.Start()
	deps.Tasks.Automation.Start()
}

// ==================== Server lifecycle ====================

func startServer(r *gin.Engine, port string, log *zap.Logger, deps *Dependencies) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	deps.Tasks.Token.Stop()
	deps.Tasks.Automation.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

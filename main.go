package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"foodbank-backend/config"
	"foodbank-backend/controllers"
	"foodbank-backend/models"
	"foodbank-backend/routes"
	"foodbank-backend/services"
	"foodbank-backend/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load(os.Getenv("FOODBANK_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := utils.NewLogger(cfg.App.Env)
	slog.SetDefault(log)
	utils.ConfigureJWT(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Инициализация базы данных
	db, err := models.InitDB(cfg.Database.URL, cfg.Database.SQLitePath)
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}

	// Администратор по умолчанию
	initDefaultAdmin(db, cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := newServer(cfg, db, log, registry)
	go srv.hub.Run(ctx)
	app := srv.app

	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		startExpiryDigest(ctx, cfg, srv.newView, log)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("shutdown failed", "err", err)
		}
	}()

	log.Info("server starting", "port", cfg.HTTP.Port)
	if err := app.Listen(":" + cfg.HTTP.Port); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("graceful shutdown complete")
}

// server собранное приложение со всеми зависимостями
type server struct {
	app     *fiber.App
	hub     *services.Hub
	blobs   *services.BlobStore
	newView services.ViewFactory
}

// newServer связывает хранилища, сервисы, контроллеры и маршруты.
// Хаб нужно запустить отдельно через hub.Run.
func newServer(cfg config.Config, db *gorm.DB, log *slog.Logger, registry *prometheus.Registry) *server {
	metrics := services.NewMetrics(registry)

	blobs := services.NewBlobStore(cfg.Storage.Dir, cfg.Storage.PublicURL, utils.JWTSecret(), cfg.Storage.URLTTL)
	documents := services.NewDocumentStore(db)
	newView := func() *services.InventoryView {
		return services.NewInventoryView(documents, blobs,
			services.WithLogger(log),
			services.WithMetrics(metrics),
			services.WithResolveConcurrency(cfg.Inventory.ResolveConcurrency),
		)
	}

	// WebSocket хаб событий инвентаря
	hub := services.NewHub(utils.JWTSecret, log)
	inventoryService := services.NewInventoryService(db, hub, log)

	app := newApp(cfg)

	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	routes.SetupAuthRoutes(app, controllers.NewAuthController(db))
	routes.SetupUserRoutes(app, controllers.NewUserController(db))
	routes.SetupInventoryRoutes(app, controllers.NewInventoryController(inventoryService, newView, blobs))
	routes.SetupImageRoutes(app, controllers.NewImageController(db, blobs))
	routes.SetupScanRoutes(app, controllers.NewScanController(inventoryService))
	routes.SetupRealtimeRoutes(app, hub)

	return &server{app: app, hub: hub, blobs: blobs, newView: newView}
}

// newApp создает Fiber приложение с общими middleware
func newApp(cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
				"code":    code,
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"message":   "Food bank inventory backend is running",
			"timestamp": time.Now().Unix(),
		})
	})

	return app
}

// startExpiryDigest запускает рассылку сводки о скоро истекающих продуктах в Telegram
func startExpiryDigest(ctx context.Context, cfg config.Config, newView services.ViewFactory, log *slog.Logger) {
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram bot init failed, expiry digest disabled", "err", err)
		return
	}

	notifier := services.NewExpiryNotifier(newView, bot, cfg.Telegram.ChatID, cfg.Telegram.DigestInterval, log)
	go func() {
		if err := notifier.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("expiry digest stopped", "err", err)
		}
	}()
	log.Info("expiry digest enabled", "chat_id", cfg.Telegram.ChatID, "interval", cfg.Telegram.DigestInterval)
}

// initDefaultAdmin создает администратора из конфигурации, если его еще нет
func initDefaultAdmin(db *gorm.DB, cfg config.Config, log *slog.Logger) {
	email := strings.ToLower(strings.TrimSpace(cfg.Admin.Email))
	if email == "" || cfg.Admin.Password == "" {
		log.Warn("admin credentials not configured, skipping admin bootstrap")
		return
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		log.Info("admin user already exists", "email", email)
		return
	}

	hash, err := utils.HashPassword(cfg.Admin.Password)
	if err != nil {
		log.Error("failed to hash admin password", "err", err)
		return
	}

	admin := models.User{
		Name:         cfg.Admin.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Error("failed to create admin user", "email", email, "err", err)
		return
	}
	log.Info("admin user created", "email", email)
}

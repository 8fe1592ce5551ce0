package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"shopmall-api/internal/events"
	"shopmall-api/internal/handler"
	"shopmall-api/internal/middleware"
	"shopmall-api/internal/model"
	"shopmall-api/internal/repository"
	"shopmall-api/internal/service"
	"shopmall-api/internal/ws"
	"shopmall-api/pkg/config"
	"shopmall-api/pkg/database"
	"shopmall-api/pkg/jwt"
	"shopmall-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. Load env and config
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Setup database. Connecting, migrating and seeding happen in the
	// background so the API is up even while the database is not.
	store, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("invalid database configuration", zap.Error(err))
	}

	// 3. Migrate and seed bootstrap admin once reachable
	userRepo := repository.NewUserRepo(store.DB)
	store.OnReady(func() error {
		if err := store.Migrate(); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		seedAdmin(cfg, userRepo, zlog)
		return nil
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go store.Monitor(ctx, cfg.DBHealthInterval)

	// 4. Event fan-out: admin websocket feed plus the order-events topic
	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run(ctx)

	var stream events.Publisher = events.NopPublisher{}
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, zlog.Named("kafka"))
		stream = kafkaPublisher
		zlog.Info("publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	publisher := events.Fanout{wsHub, stream}

	// 5. Dependency injection
	productRepo := repository.NewProductRepo(store.DB)
	orderRepo := repository.NewOrderRepo(store.DB)
	transactor := repository.NewTransactor(store.DB)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTExpire, "shopmall-api")

	authService := service.NewAuthService(userRepo, tokens, service.NewGoogleVerifier(cfg.GoogleClientID), zlog)
	userService := service.NewUserService(userRepo, zlog)
	productService := service.NewProductService(productRepo, zlog)
	orderService := service.NewOrderService(productRepo, orderRepo, transactor, publisher, zlog)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	healthHandler := handler.NewHealthHandler(store)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "shopmall-api",
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handler.ErrorHandler(zlog),
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New(corsConfig(cfg)))

	// 7. Routes
	app.Get("/", healthHandler.Root)

	api := app.Group("/api")
	api.Get("/health", healthHandler.Health)

	requireAuth := middleware.RequireAuth(authService)
	requireAdmin := middleware.RequireAdmin()

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/social", authHandler.SocialLogin)
	auth.Get("/me", requireAuth, authHandler.Me)

	users := api.Group("/users")
	users.Get("/", userHandler.GetUsers)
	users.Get("/:id", userHandler.GetUser)
	users.Post("/", userHandler.CreateUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Delete("/:id", userHandler.DeleteUser)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)
	products.Post("/", requireAuth, requireAdmin, productHandler.CreateProduct)
	products.Put("/:id", requireAuth, requireAdmin, productHandler.UpdateProduct)
	products.Delete("/:id", requireAuth, requireAdmin, productHandler.DeleteProduct)

	orders := api.Group("/orders", requireAuth)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Put("/:id/status", requireAdmin, orderHandler.UpdateStatus)
	orders.Put("/:id/payment", orderHandler.UpdatePayment)

	// Admin realtime feed
	app.Get("/ws", ws.Upgrade, middleware.RequireSocketAuth(authService), requireAdmin, wsHub.Handler())

	// 8. Graceful shutdown
	go func() {
		zlog.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	stop()

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			zlog.Warn("kafka writer close", zap.Error(err))
		}
	}
	if err := store.Close(); err != nil {
		zlog.Warn("database close", zap.Error(err))
	}
	zlog.Info("server exited")
}

func corsConfig(cfg *config.Config) cors.Config {
	if len(cfg.ClientURL) == 0 {
		return cors.ConfigDefault
	}
	c := cors.ConfigDefault
	c.AllowOrigins = strings.Join(cfg.ClientURL, ",")
	c.AllowCredentials = true
	return c
}

// seedAdmin creates the bootstrap admin if its email is not registered yet
func seedAdmin(cfg *config.Config, userRepo repository.UserRepository, log *zap.Logger) {
	_, err := userRepo.FindByEmail(cfg.AdminEmail)
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("admin seed lookup failed", zap.Error(err))
		return
	}

	admin := &model.User{
		Email: model.NormalizeEmail(cfg.AdminEmail),
		Name:  cfg.AdminName,
		Role:  model.RoleAdmin,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.Warn("failed to hash admin password", zap.Error(err))
		return
	}
	if err := userRepo.Create(admin); err != nil {
		log.Warn("failed to create admin user", zap.Error(err))
		return
	}
	log.Info("admin user created", zap.String("email", admin.Email))
}

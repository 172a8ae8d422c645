package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopledger/cache"
	"shopledger/config"
	"shopledger/database"
	"shopledger/events"
	"shopledger/handlers"
	"shopledger/insights"
	"shopledger/logger"
	"shopledger/middleware"
	"shopledger/repository"
	"shopledger/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	h := handlers.Handler{
		Shops:           repository.NewShopRepository(db),
		Users:           repository.NewUserRepository(db),
		Products:        repository.NewProductRepository(db),
		Transactions:    repository.NewTransactionRepository(db),
		Log:             zlog,
		JWTSecret:       []byte(cfg.JWT.Secret),
		TokenTTL:        cfg.JWT.TTL,
		DefaultTimezone: cfg.Server.DefaultTimezone,
		Ping:            db.PingContext,
	}

	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zlog.Warn("redis unavailable, storefront cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			h.Cache = cache.NewRedisStore(rdb, cfg.Redis.TTL)
			zlog.Info("storefront cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		h.Events = publisher
		zlog.Info("transaction events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	if cfg.Gemini.APIKey != "" {
		generator, err := insights.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			zlog.Warn("gemini unavailable, insights disabled", zap.Error(err))
		} else {
			defer generator.Close()
			h.Insights = generator
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "shopledger",
		ErrorHandler: handlers.ErrorHandler(zlog),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.Server.CORSOrigins}))
	app.Use(middleware.RequestLogger(zlog))

	routes.SetupRoutes(app, handlers.New(h))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		zlog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("server starting", zap.String("addr", cfg.Server.Addr), zap.String("env", cfg.Server.AppEnv))
	if err := app.Listen(cfg.Server.Addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

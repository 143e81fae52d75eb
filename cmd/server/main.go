package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/songorder/internal/adapter/ai"
	"github.com/seu-repo/songorder/internal/adapter/cache"
	"github.com/seu-repo/songorder/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/songorder/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/songorder/internal/adapter/messaging/whatsapp"
	"github.com/seu-repo/songorder/internal/adapter/queue"
	"github.com/seu-repo/songorder/internal/adapter/storage/memory"
	"github.com/seu-repo/songorder/internal/adapter/storage/postgres"
	"github.com/seu-repo/songorder/internal/adapter/vault"
	wsAdapter "github.com/seu-repo/songorder/internal/adapter/websocket"
	"github.com/seu-repo/songorder/internal/observability/telemetry"
	"github.com/seu-repo/songorder/internal/ports"
	"github.com/seu-repo/songorder/internal/service/conversation"
	"github.com/seu-repo/songorder/internal/service/health"
	"github.com/seu-repo/songorder/internal/service/slotfill"
	"github.com/seu-repo/songorder/pkg/config"
)

const (
	serviceName    = "songorder"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// 2. Initialize Logger
	logger, err := telemetry.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	version := cfg.App.Version
	if version == "" {
		version = serviceVersion
	}
	logger.Info("Starting song order service",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Overlay secrets from Vault
	if cfg.Vault.Enabled {
		sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Vault", zap.Error(err))
		}
		if err := sm.Apply(ctx, cfg); err != nil {
			logger.Fatal("Failed to read secrets", zap.Error(err))
		}
	}

	// 4. Initialize Tracing
	if cfg.OpenTelemetry.Enabled {
		tp, err := telemetry.InitTracer(cfg.OpenTelemetry, version)
		if err != nil {
			logger.Error("Failed to initialize tracer", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	// 5. Initialize Conversation Cache (Redis, or in-process for single-node runs)
	var sessionCache ports.Cache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		sessionCache = redisCache
	} else {
		logger.Warn("redis.url not set, conversations are kept in memory")
		sessionCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer sessionCache.Close()
	store := cache.NewConversationStore(sessionCache, cfg.Dialog.SessionTTL)

	// 6. Initialize Order Repository
	var (
		orders ports.OrderRepository
		db     *gorm.DB
	)
	if cfg.Database.URL != "" {
		db, err = postgres.NewConnection(cfg.Database, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer postgres.Close(db)

		if cfg.Database.AutoMigrate {
			if err := postgres.RunMigrations(db); err != nil {
				logger.Fatal("Failed to run migrations", zap.Error(err))
			}
		}
		orders = postgres.NewOrderRepository(db, logger)
	} else {
		logger.Warn("database.url not set, orders are kept in memory")
		orders = memory.NewOrderRepository()
	}

	// 7. Initialize Funnel Event Publisher
	events, err := queue.NewEventPublisher(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize event publisher", zap.Error(err))
	}

	// 8. Initialize Oracle and Slot-Filling Engine
	oracle, err := ai.NewOracle(ctx, cfg.Oracle, cfg.CircuitBreaker, logger)
	if err != nil {
		logger.Fatal("Failed to initialize oracle", zap.Error(err))
	}
	engine := slotfill.NewEngine(oracle, slotfill.Options{
		OracleTimeout:     cfg.Oracle.Timeout,
		KnownArtists:      cfg.Dialog.KnownArtists,
		StoryQualityCheck: cfg.Dialog.StoryQualityCheck,
	}, logger)

	// 9. Initialize Conversation Service
	conversationService := conversation.NewService(engine, store, orders, events, logger)

	// 10. Initialize Health Checks
	healthService := health.NewService(version, logger)
	healthService.RegisterPing("cache", sessionCache.Ping, true)
	if db != nil {
		healthService.RegisterPing("database", func(ctx context.Context) error {
			return postgres.Ping(ctx, db)
		}, true)
	}
	healthService.RegisterPing("oracle", func(context.Context) error {
		if oracle.State() == gobreaker.StateOpen {
			return errors.New("circuit open")
		}
		return nil
	}, false)

	// 11. Initialize Fiber App
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}
	if cfg.CircuitBreaker.Enabled {
		app.Use(middleware.CircuitBreaker(cfg.CircuitBreaker, logger))
	}

	// Health Check Endpoints
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metrics(c.Context())
			return nil
		})
	}

	// API v1 Routes
	var guards []fiber.Handler
	if cfg.JWT.Secret != "" {
		guards = append(guards, middleware.GatewayAuth(cfg.JWT, logger))
	} else {
		logger.Warn("jwt.secret not set, API routes are unauthenticated")
	}
	v1 := app.Group("/api/v1", guards...)
	handlers.NewConversationHandler(conversationService, logger).RegisterRoutes(v1)

	// WhatsApp webhook (Twilio signs it, no gateway token)
	var whatsappHandler *handlers.WhatsAppHandler
	if cfg.WhatsApp.Enabled {
		messenger, err := whatsapp.NewTwilioMessenger(cfg.WhatsApp, logger)
		if err != nil {
			logger.Fatal("Failed to initialize WhatsApp messenger", zap.Error(err))
		}
		whatsappHandler = handlers.NewWhatsAppHandler(conversationService, messenger, cfg.WhatsApp.AuthToken, cfg.WhatsApp.WebhookURL, logger)
		whatsappHandler.RegisterRoutes(app)
	}

	// WebSocket chat
	hub := wsAdapter.NewHub()
	go hub.Run(ctx)
	wsAdapter.NewChatStreamHandler(conversationService, hub, logger).RegisterRoutes(app, guards...)

	// 12. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 13. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if whatsappHandler != nil {
		whatsappHandler.Wait()
	}
	stop()

	if err := events.Close(); err != nil {
		logger.Warn("Failed to close event publisher", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

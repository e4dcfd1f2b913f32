package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/Ken-Miles/farm-computer/internal/api/handlers"
	"github.com/Ken-Miles/farm-computer/internal/bot"
	"github.com/Ken-Miles/farm-computer/internal/cache"
	redisstore "github.com/Ken-Miles/farm-computer/internal/cache/redis"
	"github.com/Ken-Miles/farm-computer/internal/lookup"
	"github.com/Ken-Miles/farm-computer/internal/metrics"
	"github.com/Ken-Miles/farm-computer/internal/middleware/ratelimit"
	"github.com/Ken-Miles/farm-computer/internal/middleware/security"
	"github.com/Ken-Miles/farm-computer/internal/storage/sqlite"
	"github.com/Ken-Miles/farm-computer/internal/wiki"
	"github.com/Ken-Miles/farm-computer/pkg/config"
	appLogger "github.com/Ken-Miles/farm-computer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Farm Computer")

	metrics.Init()

	db, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	client := wiki.NewClient(
		cfg.Wiki.BaseURL,
		cfg.Wiki.UserAgent,
		time.Duration(cfg.Wiki.TimeoutSec)*time.Second,
		appLogger.Log,
	)

	index := wiki.NewPageIndex(
		client,
		cfg.Wiki.IndexStartPath,
		time.Duration(cfg.Wiki.IndexRefreshMinutes)*time.Minute,
		appLogger.Log,
	)

	extractor := wiki.NewExtractor(client, appLogger.Log)
	resolver := wiki.NewResolver(client, index, appLogger.Log)

	cacheOpts := []cache.Option{}
	if cfg.Redis.Enabled {
		retention := 2 * time.Duration(cfg.Cache.TTLHours) * time.Hour
		store, err := redisstore.NewStore(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, retention)
		if err != nil {
			appLogger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer store.Close()
		cacheOpts = append(cacheOpts, cache.WithStore(store))
	}
	pageCache := cache.New(extractor, cfg.Cache.TTLHours, appLogger.Log, cacheOpts...)

	service := lookup.NewService(resolver, pageCache, cfg.Wiki.BaseURL, db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	index.Start(ctx)
	defer index.Stop()

	discordBot, err := bot.New(cfg.Discord, service, index, db, appLogger.Log)
	if err != nil {
		appLogger.Fatal("Failed to create bot", zap.Error(err))
	}
	if err := discordBot.Start(); err != nil {
		appLogger.Fatal("Failed to start bot", zap.Error(err))
	}
	defer discordBot.Stop()

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequests: 60,
		Window:      time.Minute,
		Logger:      appLogger.Log,
	})
	defer limiter.Stop()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(security.HeadersMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, OPTIONS",
	}))
	app.Use(limiter.Middleware())

	wikiHandler := handlers.NewWikiHandler(service)
	statsHandler := handlers.NewStatsHandler(db)

	api := app.Group("/api/v1")
	api.Get("/wiki", wikiHandler.HandleLookup)
	api.Get("/stats", statsHandler.HandleStats)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("API server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("API server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Stopped")
}

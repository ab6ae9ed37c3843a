package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"jobscout/internal/api/routes"
	"jobscout/internal/browser"
	"jobscout/internal/collector"
	"jobscout/internal/config"
	"jobscout/internal/dedup"
	"jobscout/internal/heartbeat"
	"jobscout/internal/logging"
	"jobscout/internal/orchestrator"
	"jobscout/internal/scraper/challenge"
	"jobscout/internal/scraper/feed"
	"jobscout/internal/settings"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.Initialize(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logger.Close()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Starting scrape bot", map[string]interface{}{
		"bot_id": cfg.Bot.ID,
		"tag":    cfg.Bot.Tag,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := collector.NewClient(cfg.Collector.BaseURL, cfg.Collector.Timeout)
	settingsCache := settings.NewCache(client)
	reporter := heartbeat.NewReporter(cfg.Bot.ID, client)

	// Background keep-alive tick, independent of cycle progress.
	go reporter.Run(ctx, func(ctx context.Context) time.Duration {
		s, _ := settingsCache.Get(ctx, cfg.Bot.ID)
		return s.HeartbeatInterval()
	})

	var seenCache *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Warn("Invalid redis URL, seen-cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			seenCache = redis.NewClient(opts)
			if err := seenCache.Ping(ctx).Err(); err != nil {
				logger.Warn("Redis unreachable, seen-cache disabled", map[string]interface{}{
					"error": err.Error(),
				})
				seenCache.Close()
				seenCache = nil
			}
		}
	}
	filter := dedup.NewFilter(client, seenCache, cfg.Redis.SeenTTL)

	surface, err := browser.NewRodSurface(cfg)
	if err != nil {
		logger.Fatal("Failed to start rendering surface", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer surface.Close()

	var solver challenge.Solver
	switch cfg.Challenge.Solver {
	case "2captcha":
		solver = challenge.NewTwoCaptchaSolver(cfg.Challenge.Captcha.APIKey, cfg.Challenge.Captcha.Timeout)
	default:
		solver = challenge.NewCommandSolver(cfg.Challenge.ClickCommand)
	}
	challenges := challenge.NewHandler(surface, reporter, solver, cfg.Challenge.MaxAttempts)

	harvester := feed.NewHarvester(cfg.Target.BaseURL)

	orch := orchestrator.New(orchestrator.Options{
		BotID:        cfg.Bot.ID,
		TargetBase:   cfg.Target.BaseURL,
		DefaultQuery: cfg.Target.SearchQuery,
		DumpDir:      cfg.Scraper.DumpDir,
	}, surface, settingsCache, reporter, filter, client, challenges, harvester)

	// Local observation endpoints; failure to bind is not fatal to scraping.
	e := echo.New()
	e.HideBanner = true
	routes.SetupRoutes(e, reporter)
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := e.Start(address); err != nil {
			logger.Warn("Status server stopped", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Error stopping status server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	err = orch.Run(ctx)
	switch {
	case errors.Is(err, orchestrator.ErrLoginRedirect):
		// Exit non-zero so the supervisor knows the session needs attention.
		logger.Error("Login redirect detected, exiting for supervisor restart")
		surface.Close()
		logger.Close()
		os.Exit(1)
	case errors.Is(err, context.Canceled):
		logger.Info("Shutdown complete")
	case err != nil:
		logger.Error("Orchestrator stopped", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

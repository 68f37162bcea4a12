package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/graceful"
	"github.com/deniskrds/tixplore-app/internal/metrics"
	"github.com/deniskrds/tixplore-app/internal/orchestrator"
	"github.com/deniskrds/tixplore-app/internal/repositories"
	"github.com/deniskrds/tixplore-app/internal/scraper"
	"github.com/deniskrds/tixplore-app/internal/scraper/sites"
	"github.com/deniskrds/tixplore-app/internal/service"
	telegramBot "github.com/deniskrds/tixplore-app/internal/telegram"
	"github.com/deniskrds/tixplore-app/internal/transport/httpServer"
	"github.com/deniskrds/tixplore-app/internal/transport/httpServer/handlers"
	myMiddleware "github.com/deniskrds/tixplore-app/internal/transport/httpServer/middleware"
	"github.com/deniskrds/tixplore-app/internal/transport/httpServer/routers"
	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запускает HTTP API и, если задан scraper.interval, периодический сбор афиши.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	repositoryService, err := repositories.New(ctx, log, cfg)
	if err != nil {
		return err
	}

	m := metrics.New()

	scraperService := scraper.New(log, cfg, repositoryService, m, buildSites(log, cfg)...)
	tgBot, err := telegramBot.New(log, cfg)
	if err != nil {
		return err
	}
	orchestratorService := orchestrator.New(log, cfg, scraperService, tgBot, scraperService.CompletedReportsChan)

	eventService := service.NewEventService(log, cfg, repositoryService)
	userService := service.NewUserService(log, repositoryService)

	limiter, redisClient := buildLimiter(ctx, log, cfg)

	// HTTP Server
	eventHandler := handlers.NewEventHandler(log, eventService)
	userHandler := handlers.NewUserHandler(log, userService)
	router := routers.NewRouter(log, cfg.HttpServer, eventHandler, userHandler, limiter, m)
	httpSrv := httpServer.NewHttpServer(log, router, cfg)

	ops := map[string]graceful.Operation{
		"Scraper service": func(ctx context.Context) error {
			return scraperService.Shutdown(ctx)
		},
		"Orchestrator service": func(ctx context.Context) error {
			return orchestratorService.Shutdown(ctx)
		},
		"Repository service": func(ctx context.Context) error {
			return repositoryService.Shutdown(ctx)
		},
		"Telegram bot": func(ctx context.Context) error {
			return tgBot.Shutdown(ctx)
		},
		"HTTP server": func(ctx context.Context) error {
			return httpSrv.Shutdown(ctx)
		},
	}
	if redisClient != nil {
		ops["Redis"] = func(context.Context) error {
			return redisClient.Close()
		}
	}

	waitShutdown := graceful.GracefulShutdown(ctx, shutdownTimeout, ops, log)

	go scraperService.Start()
	orchestratorService.Start()
	go httpSrv.Listen()

	<-waitShutdown

	return nil
}

// buildSites создаёт скраперы включённых в конфиге продавцов.
func buildSites(log *slog.Logger, cfg *config.Config) []sites.Site {
	var registered []sites.Site

	if cfg.ScraperConfig.Bubilet.Enabled {
		registered = append(registered, sites.NewBubilet(log, cfg.ScraperConfig))
	}
	if cfg.ScraperConfig.Passo.Enabled {
		registered = append(registered, sites.NewPasso(log, cfg.ScraperConfig))
	}

	return registered
}

// buildLimiter возвращает redis-лимитер, если redis настроен и доступен, иначе лимитер в памяти.
// nil означает, что ограничение частоты выключено.
func buildLimiter(ctx context.Context, log *slog.Logger, cfg *config.Config) (myMiddleware.Limiter, *redis.Client) {
	op := "main.buildLimiter()"
	log = log.With(slog.String("op", op))

	rl := cfg.HttpServer.RateLimit
	if !rl.Enabled {
		log.Info("rate limiting disabled")
		return nil, nil
	}

	if cfg.RedisConfig.Addr == "" {
		log.Info("rate limiting in memory", slog.Int("requests", rl.Requests), slog.Duration("window", rl.Window))
		return myMiddleware.NewMemoryLimiter(rl.Requests, rl.Window), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Error("redis unavailable, falling back to in-memory rate limiting",
			slog.String("addr", cfg.RedisConfig.Addr),
			sl.Err(fmt.Errorf("ping: %w", err)),
		)
		_ = client.Close()
		return myMiddleware.NewMemoryLimiter(rl.Requests, rl.Window), nil
	}

	log.Info("rate limiting in redis", slog.String("addr", cfg.RedisConfig.Addr))

	return myMiddleware.NewRedisLimiter(client, rl.Requests, rl.Window, rl.Prefix), client
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tickstats/internal/adapters/cache"
	"tickstats/internal/adapters/source"
	"tickstats/internal/adapters/storage"
	"tickstats/internal/app"
	"tickstats/internal/config"
	"tickstats/internal/httpapi"
	"tickstats/internal/logging"
	"tickstats/internal/ports"
	"tickstats/internal/stats"
)

const usageText = `Usage:
  tickstats [--port <N>] [--config <path>] [--test-mode]
  tickstats --help

Options:
  --port N        HTTP port (overrides env SERVER_PORT)
  --config PATH   JSON config file (overrides env)
  --test-mode     Attach the synthetic tick generator
`

func main() {
	portFlag := flag.Int("port", 0, "HTTP port (overrides env SERVER_PORT)")
	configFlag := flag.String("config", "", "JSON config file")
	testMode := flag.Bool("test-mode", false, "Attach the synthetic tick generator")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Print(usageText)
		return
	}

	logger := logging.NewLogger(slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("tickstats starting")

	cfg := config.FromEnv()
	if *configFlag != "" {
		fileCfg, err := config.Load(*configFlag)
		if err != nil {
			logger.Error("failed to load config file", "path", *configFlag, "err", err)
			os.Exit(1)
		}
		cfg = fileCfg
	}
	if *portFlag != 0 {
		cfg.HTTPPort = *portFlag
	}

	cacheTTL := config.ParseDuration(cfg.Redis.TTL, 2*time.Minute)

	// cache: Redis when reachable, process memory otherwise
	var c ports.Cache
	redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cacheTTL)
	if err != nil {
		logger.Warn("redis not available, using in-memory cache", "err", err)
		c = cache.NewMemoryCache(cacheTTL)
	} else {
		logger.Info("redis cache connected", "addr", cfg.Redis.Addr)
		c = redisCache
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("error closing cache", "err", err)
		}
	}()

	engine := stats.NewEngine()
	svc := app.NewService(logger, engine, c)

	if *testMode {
		instruments := []string{"AAPL", "GOOG", "MSFT", "TSLA", "AMZN"}
		svc.AttachSource(source.NewGeneratorSource("GENERATOR", instruments, 200*time.Millisecond))
	}
	for i, addr := range cfg.Sources.TCPAddrs {
		svc.AttachSource(source.NewTCPSource(fmt.Sprintf("TCP%d", i+1), addr))
	}
	for i, url := range cfg.Sources.WSURLs {
		svc.AttachSource(source.NewWSSource(fmt.Sprintf("WS%d", i+1), url))
	}

	svc.StartSources(ctx)

	// storage is optional; without it the minute flusher stays off
	var repo ports.Repository
	if cfg.Postgres.DSN != "" {
		pgRepo, err := storage.NewPostgresRepo(ctx, cfg.Postgres.DSN)
		if err != nil {
			logger.Warn("postgres not available, continuing without persistent storage", "err", err)
		} else {
			logger.Info("postgres connected")
			repo = pgRepo
			defer func() {
				if err := pgRepo.Close(); err != nil {
					logger.Warn("error closing pg repo", "err", err)
				}
			}()
		}
	}
	if repo != nil {
		svc.StartFlusher(ctx, repo, time.Minute)
	} else {
		logger.Warn("minute flusher disabled (no postgres)")
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpSrv := httpapi.NewServer(addr, svc, logger).WithCache(c).WithRepo(repo)

	if err := httpSrv.Start(ctx); err != nil {
		logger.Error("http server failed", "err", err)
		stop()
	}

	<-ctx.Done()
	logger.Info("shutdown initiated")

	svc.Stop()
	logger.Info("tickstats stopped")
}

// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"course-ai-platform/internal/config"
	pg "course-ai-platform/internal/infra/db/postgres"
	"course-ai-platform/internal/infra/delegator"
	"course-ai-platform/internal/infra/logging"
	"course-ai-platform/internal/infra/metrics"
	red "course-ai-platform/internal/infra/redis"
	"course-ai-platform/internal/infra/web"
	"course-ai-platform/internal/infra/worker"
	"course-ai-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	jobRepo := pg.NewGenerationJobRepo(pool)
	artifactRepo := pg.NewArtifactRepo(pool)
	catalogRepo := pg.NewCatalogRepo(pool)

	// ---- AI worker client & dispatch pool ----
	workerClient := delegator.NewHTTPClient(cfg.Worker, logger)
	pool2 := worker.NewPool(cfg.Worker.PoolWorkers)
	pool2.Start(ctx)
	defer pool2.Stop()

	// ---- Use cases ----
	guard := usecase.NewAuthGuard(catalogRepo)
	jobLC := usecase.NewJobLifecycle(jobRepo, artifactRepo, txManager, locker, cfg.Redis.LockTTL, logger)
	genUC := usecase.NewGenerationUseCase(guard, jobLC, catalogRepo, artifactRepo, workerClient, pool2, cfg.Worker.ResponseTimeout, logger)
	streamUC := usecase.NewStreamUseCase(guard, workerClient, genUC, logger)
	callbackUC := usecase.NewCallbackUseCase(cfg.Worker.SecretKey, catalogRepo, jobLC, logger)

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Auth.HMACSecret)
	srv := web.NewServer(genUC, streamUC, callbackUC, auth, logger)
	router := srv.Routes()
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}

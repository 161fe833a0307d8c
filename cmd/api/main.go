package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saityagci/newBackendFrontend-sub001/internal/agents"
	"github.com/saityagci/newBackendFrontend-sub001/internal/auth"
	"github.com/saityagci/newBackendFrontend-sub001/internal/calllog"
	"github.com/saityagci/newBackendFrontend-sub001/internal/callsync"
	"github.com/saityagci/newBackendFrontend-sub001/internal/config"
	"github.com/saityagci/newBackendFrontend-sub001/internal/httpapi"
	"github.com/saityagci/newBackendFrontend-sub001/internal/provider/elevenlabs"
	"github.com/saityagci/newBackendFrontend-sub001/pkg/logger"
	"github.com/saityagci/newBackendFrontend-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional env file for local runs; real deployments inject env directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	callRepo := calllog.NewPostgresRepo(db)
	agentRepo := agents.NewPostgresRepo(db)

	elClient := newElevenLabsClient(cfg.ElevenLabs)
	orchestrator := callsync.NewOrchestrator(calllog.ProviderElevenLabs, elClient, callRepo, log)
	agentSyncer := agents.NewSyncer(calllog.ProviderElevenLabs, elClient, agentRepo, log)

	// One scheduled pass refreshes the agent catalog first, then pulls call
	// records. A catalog failure is logged but does not block the call sync.
	scheduledRun := func(ctx context.Context) (callsync.Summary, error) {
		if _, err := agentSyncer.Run(ctx); err != nil {
			log.Warn("agent catalog sync failed", "provider", calllog.ProviderElevenLabs, "err", err)
		}
		return orchestrator.Run(ctx)
	}
	scheduler := callsync.NewScheduler(callsync.SchedulerConfig{
		Name:         "elevenlabs",
		Interval:     cfg.Sync.Interval,
		InitialDelay: cfg.Sync.InitialDelay,
		Retry: callsync.RetryPolicy{
			MaxAttempts: cfg.Sync.RetryMaxAttempts,
			BaseDelay:   cfg.Sync.RetryBaseDelay,
			MaxDelay:    cfg.Sync.RetryMaxDelay,
		},
		Lock:    callsync.NewRedisLocker(rdb, uuid.NewString()),
		LockTTL: cfg.Sync.LockTTL,
	}, scheduledRun, log)
	scheduler.Start(rootCtx)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		cfg:       cfg,
		authMW:    auth.RequireAccessToken(authManager),
		db:        db,
		callStore: callRepo,
		handlers: httpapi.Handlers{
			Auth:      authManager,
			Calls:     calllog.NewService(callRepo),
			RunSync:   orchestrator.Run,
			AgentSync: agentSyncer.Run,
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}

func newElevenLabsClient(cfg config.ElevenLabsConfig) *elevenlabs.Client {
	opts := []elevenlabs.Option{elevenlabs.WithDetailFetch(cfg.FetchDetails)}
	if cfg.BaseURL != "" {
		opts = append(opts, elevenlabs.WithBaseURL(cfg.BaseURL))
	}
	return elevenlabs.NewClient(cfg.APIKey, opts...)
}

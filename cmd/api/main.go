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

	"github.com/baharkarakas/points-backend/internal/api"
	"github.com/baharkarakas/points-backend/internal/auth"
	"github.com/baharkarakas/points-backend/internal/config"
	"github.com/baharkarakas/points-backend/internal/db"
	"github.com/baharkarakas/points-backend/internal/logger"
	"github.com/baharkarakas/points-backend/internal/metrics"
	repo "github.com/baharkarakas/points-backend/internal/repository"
	"github.com/baharkarakas/points-backend/internal/repository/memory"
	"github.com/baharkarakas/points-backend/internal/repository/postgres"
	"github.com/baharkarakas/points-backend/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repos repo.Repositories
	switch cfg.Storage {
	case "memory":
		log.Warn("using in-memory storage; data is lost on restart")
		repos = memory.New().Repositories()
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		if cfg.Migrate {
			if err := db.RunMigrations(ctx, pool); err != nil {
				return err
			}
		}
		repos = postgres.NewRepositories(pool)
	}

	var locker services.Locker = services.NewLocalLocker()
	if cfg.RedisURL != "" {
		rl, client, err := services.NewRedisLockerFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		locker = rl
		log.Info("confirm lock backed by redis")
	}

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	userSvc := services.NewUserService(repos.Users, cfg.DefaultPoints)
	balanceSvc := services.NewBalanceService(repos.Accounts)
	transferSvc := services.NewTransferService(repos, locker, services.TransferOptions{
		Window:           cfg.TransferWindow,
		RecheckOnConfirm: cfg.ConfirmRecheckBalance,
	})

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:         cfg,
		TM:          tm,
		UserSvc:     userSvc,
		BalanceSvc:  balanceSvc,
		TransferSvc: transferSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/gamehub-auth/internal/cache"
	"github.com/pribylovaa/gamehub-auth/internal/config"
	"github.com/pribylovaa/gamehub-auth/internal/email"
	"github.com/pribylovaa/gamehub-auth/internal/metrics"
	"github.com/pribylovaa/gamehub-auth/internal/pkg/log"
	"github.com/pribylovaa/gamehub-auth/internal/ratelimit"
	"github.com/pribylovaa/gamehub-auth/internal/service"
	"github.com/pribylovaa/gamehub-auth/internal/session"
	"github.com/pribylovaa/gamehub-auth/internal/storage/postgres"
	"github.com/pribylovaa/gamehub-auth/internal/token"
	opsgrpc "github.com/pribylovaa/gamehub-auth/internal/transport/grpc"
	httpapi "github.com/pribylovaa/gamehub-auth/internal/transport/http"
	"github.com/pribylovaa/gamehub-auth/internal/users"
	"github.com/pribylovaa/gamehub-auth/internal/verification"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	lg := log.New(cfg.Env, os.Stdout)
	slog.SetDefault(lg)
	lg.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	if err := run(rootCtx, cfg, lg); err != nil {
		lg.Error("service_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}

	lg.Info("service_stopped")
}

func run(ctx context.Context, cfg *config.Config, lg *slog.Logger) error {
	// Подключение к БД c таймаутом.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	str, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
	dbCancel()
	if err != nil {
		return err
	}
	defer str.Close()
	lg.Info("postgres_connected")

	redisCtx, redisCancel := context.WithTimeout(ctx, 5*time.Second)
	rc, err := cache.NewRedisCache(redisCtx, cfg.Redis.RedisURL, cfg.Redis.Prefix)
	redisCancel()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	lg.Info("redis_connected")

	// Go/process-коллекторы и метрики go-grpc-prometheus живут в DefaultRegisterer.
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	svc, err := wire(cfg, str, rc, m, lg)
	if err != nil {
		return err
	}
	lg.Info("service_initialized")

	var ready atomic.Bool
	readyFn := func() bool {
		return ready.Load() && depsAlive(ctx, str, rc, lg)
	}

	router := httpapi.NewRouter(svc, httpapi.Options{
		Logger:   lg,
		Timeout:  cfg.Timeouts.Service,
		BasePath: cfg.HTTP.BasePath,
		Metrics:  m,
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
		Ready:    readyFn,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv := opsgrpc.New(opsgrpc.Options{
		Logger:     lg,
		Timeout:    cfg.Timeouts.Service,
		Reflection: cfg.Env == log.EnvLocal || cfg.Env == log.EnvDev,
		Metrics:    true,
	})

	listener, err := net.Listen("tcp", cfg.GRPC.Addr())
	if err != nil {
		return err
	}

	serveErrCh := make(chan error, 2)

	go func() {
		lg.Info("http_listen_start", slog.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
	}()

	go func() {
		if err := grpcSrv.Serve(listener); err != nil {
			serveErrCh <- err
		}
	}()

	// Сервис готов: health -> SERVING и readiness=1.
	grpcSrv.SetServing(true)
	ready.Store(true)

	var serveErr error
	select {
	case <-ctx.Done():
		lg.Info("shutdown_requested")
	case serveErr = <-serveErrCh:
		lg.Error("serve_failed", slog.String("err", serveErr.Error()))
	}

	ready.Store(false)
	grpcSrv.SetServing(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("http_shutdown_failed", slog.String("err", err.Error()))
	}
	grpcSrv.Stop(shutdownCtx)

	return serveErr
}

// depsAlive пингует PostgreSQL и Redis для /healthz.
func depsAlive(ctx context.Context, str *postgres.Storage, rc *cache.RedisCache, lg *slog.Logger) bool {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := str.Ping(ctx); err != nil {
		lg.Warn("readiness_postgres_failed", slog.String("err", err.Error()))
		return false
	}

	if err := rc.Ping(ctx); err != nil {
		lg.Warn("readiness_redis_failed", slog.String("err", err.Error()))
		return false
	}

	return true
}

// wire собирает граф зависимостей сценариев auth.
func wire(cfg *config.Config, str *postgres.Storage, c cache.Cache, m *metrics.Metrics, lg *slog.Logger) (*service.Service, error) {
	sessions := session.New(c, cfg.Auth.AccessTokenTTL)
	userSvc := users.New(str, sessions)

	mail, err := email.NewGateway(cfg.Env, email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, lg)
	if err != nil {
		return nil, err
	}

	codes := verification.New(str, c, ratelimit.New(c, cfg.Code.Cooldown), userSvc, mail,
		verification.Config{TTL: cfg.Code.TTL, Length: cfg.Code.Length})

	tokens := token.New(cfg.Auth, c, sessions)

	svc := service.New(service.Deps{
		Users:    str,
		UserSvc:  userSvc,
		Codes:    codes,
		Tokens:   tokens,
		Sessions: sessions,
		Mail:     mail,
		Metrics:  m,
	}, cfg.Auth)

	return svc, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codefreela/userhub/internal/cache"
	"github.com/codefreela/userhub/internal/config"
	"github.com/codefreela/userhub/internal/db"
	httpx "github.com/codefreela/userhub/internal/http"
	"github.com/codefreela/userhub/internal/observability"
	"github.com/codefreela/userhub/internal/redisclient"
	"github.com/codefreela/userhub/internal/repo/memory"
	"github.com/codefreela/userhub/internal/repo/postgres"
	"github.com/codefreela/userhub/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, cfg.TracingEnabled)
	slog.SetDefault(log)

	if cfg.TracingEnabled {
		shutdownTracer, err := observability.InitTracer(context.Background(), "userhub", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(3 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	// storage: postgres when configured, in-memory reference store otherwise

	var (
		repo service.Repository
		ping func() error
	)

	if cfg.DBURL != "" {
		pool, err := db.NewPool(cfg.DBURL)

		if err != nil {
			log.Error("db connection failed", "err", err)
			os.Exit(1)
		}

		defer pool.Close()

		repo = postgres.NewUsersRepo(pool, prom)

		ping = func() error {
			ctx, cancel := config.WithTimeout(1 * time.Second)
			defer cancel()

			return pool.Ping(ctx)
		}

		log.Info("using postgres store")
	} else {
		repo = memory.NewUsersRepo()

		log.Info("using in-memory store")
	}

	var redisClient *redisclient.Client

	if cfg.RedisAddr != "" {
		redisClient = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		defer redisClient.Close()

		ctx, cancel := config.WithTimeout(2 * time.Second)
		err := redisClient.Ping(ctx)
		cancel()

		if err != nil {
			log.Error("redis connection failed", "err", err)
			os.Exit(1)
		}
	}

	router := httpx.NewRouter(httpx.Deps{
		Cfg:       cfg,
		Log:       log,
		Users:     service.NewUsers(repo),
		Ping:      ping,
		Registry:  registry,
		Prom:      prom,
		Redis:     redisClient,
		ListCache: cache.New(cfg.ListCacheTTL),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

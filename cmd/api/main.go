package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	server "hotel_value/internal/adapters/http_server"
	"hotel_value/internal/adapters/observability"
	redisad "hotel_value/internal/adapters/redis"
	"hotel_value/internal/app"
	"hotel_value/internal/domain"
	"hotel_value/internal/shared"
	"hotel_value/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api", cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx := context.Background()
	repo, closer, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store")
	}
	defer closer.Close()
	log.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	// without REDIS_ADDR every request reads the store
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, serving uncached")
		} else {
			cache = rc
			defer rc.Close()
		}
	}
	q := app.NewQueryService(repo, cache, cfg.CacheTTL())

	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, DefaultN: cfg.TopN})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

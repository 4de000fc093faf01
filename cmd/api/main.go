package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"catalog-api/internal/app"
	"catalog-api/internal/cache"
	"catalog-api/internal/config"
	"catalog-api/internal/handlers"
	"catalog-api/internal/logger"
	"catalog-api/internal/middleware"
	"catalog-api/internal/routes"
	"catalog-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New("info", "console")
		log.Fatal().Err(err).Msg("❌ config")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.Debug {
		cfg.GinMode = gin.DebugMode
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("❌ store connection failed")
	}
	defer store.Close()

	backend, err := app.OpenCache(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.CacheDriver).Msg("❌ cache setup failed")
	}
	facade := cache.NewFacade(backend, cfg.CachePrefix, app.TTLs(cfg), log)
	defer facade.Close()

	svc := service.NewProductService(store.Reader, facade, log)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.ProcessTime(),
		middleware.RequestLogger(log),
		gin.Recovery(),
		middleware.CORS(cfg.CORSOrigins),
		middleware.Timeout(cfg.RequestTimeout),
	)
	routes.RegisterRoutes(router,
		handlers.NewProductHandler(svc),
		handlers.NewHealthHandler(svc, cfg.ServiceName, cfg.Version, cfg.APIPrefix),
		cfg.APIPrefix,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", store.Driver).
			Str("cache", cfg.CacheDriver).
			Msg("🚀 Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("❌ server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ graceful shutdown failed")
	}
	log.Info().Msg("👋 Server stopped")
}

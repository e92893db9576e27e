package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-route-api/internal/core/cache"
	"fleet-route-api/internal/core/config"
	"fleet-route-api/internal/core/httpclient"
	"fleet-route-api/internal/core/logger"
	"fleet-route-api/internal/core/proxy"
	"fleet-route-api/internal/core/server"
	carrieradapter "fleet-route-api/internal/features/carrier/adapters"
	carrierhandler "fleet-route-api/internal/features/carrier/handler"
	carrierservice "fleet-route-api/internal/features/carrier/service"
	optimizationadapter "fleet-route-api/internal/features/optimization/adapters"
	optimizationhandler "fleet-route-api/internal/features/optimization/handler"
	optimizationservice "fleet-route-api/internal/features/optimization/service"
	pipelinehandler "fleet-route-api/internal/features/pipeline/handler"
	pipelineservice "fleet-route-api/internal/features/pipeline/service"

	"go.uber.org/zap"
)

const cacheKeyPrefix = "fleet-route-api:"

// detailCache is the cache backend selected by configuration.
type detailCache interface {
	cache.Cache
	cache.StatsProvider
}

func newDetailCache(cfg config.CacheConfig) (detailCache, error) {
	if cfg.Backend == "redis" {
		return cache.NewRedisAdapter(cfg.RedisURL, cacheKeyPrefix)
	}
	return cache.NewMemoryAdapter(cfg.MaxEntries), nil
}

// @title Fleet Route API
// @version 1.0
// @description Colis Privé tour retrieval and Mapbox route optimization.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	proxySettings := proxy.FromConfig(cfg.Proxy)
	if proxySettings.HasProxy() {
		l.Info("Outbound proxy enabled", zap.String("proxy", proxySettings.HostPort()))
	}
	transport := httpclient.NewTransport(proxySettings)

	// Initialize Detail Cache
	details, err := newDetailCache(cfg.Cache)
	if err != nil {
		l.Fatal("Failed to initialize detail cache", zap.Error(err))
	}
	defer details.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := details.Ping(pingCtx); err != nil {
		l.Warn("Detail cache unreachable, lookups will miss", zap.Error(err))
	}
	cancelPing()

	// Initialize Carrier Adapter, Service & Handler
	colisPrive := carrieradapter.NewColisPriveAdapter(cfg.ColisPrive, httpclient.NewClient(cfg.ColisPrive.RequestTimeout, transport))
	cachedDetails := carrieradapter.NewCachedDetailFetcher(colisPrive, details, cfg.Cache.DetailTTL)
	sessions := carrierservice.NewSessionService(colisPrive)

	carrierSvc := carrierservice.NewCarrierService(sessions, colisPrive, cachedDetails)
	carrierHdl := carrierhandler.NewCarrierHandler(carrierSvc, details)

	// Initialize Optimization Adapter, Service & Handler
	mapbox := optimizationadapter.NewMapboxAdapter(cfg.Optimizer, httpclient.NewClient(cfg.Optimizer.RequestTimeout, transport))
	optimizationSvc := optimizationservice.NewOptimizationService(mapbox, optimizationservice.Settings{
		ServiceDuration: cfg.Optimizer.ServiceDuration,
		PollInterval:    cfg.Optimizer.PollInterval,
		MaxWait:         cfg.Optimizer.MaxWait,
	})
	optimizationHdl := optimizationhandler.NewOptimizationHandler(optimizationSvc)

	// Initialize Pipeline Service & Handler
	pipelineSvc := pipelineservice.NewPipelineService(sessions, colisPrive, cachedDetails, optimizationSvc, pipelineservice.Settings{
		Timeout:       cfg.Pipeline.Timeout,
		EnrichDetails: cfg.Pipeline.EnrichDetails,
	})
	pipelineHdl := pipelinehandler.NewPipelineHandler(pipelineSvc)

	srv := server.New(cfg)
	srv.AddHealthCheck("cache", details.Ping)

	// Register Routes
	api := srv.App.Group("/api")
	api.Post("/colis-prive/auth", carrierHdl.Authenticate)
	api.Post("/colis-prive/packages", carrierHdl.GetPackages)
	api.Post("/colis-prive/details", carrierHdl.GetDetails)
	api.Get("/cache/stats", carrierHdl.CacheStats)
	api.Post("/optimization/optimize", optimizationHdl.Optimize)
	api.Post("/tournees/optimize", pipelineHdl.OptimizeTour)

	go func() {
		if err := srv.Run(); err != nil {
			l.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.Timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error("Server shutdown failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"whatsapp-relay/internal/broker"
	"whatsapp-relay/internal/config"
	"whatsapp-relay/internal/constants"
	"whatsapp-relay/internal/dedup"
	"whatsapp-relay/internal/ingestion"
	"whatsapp-relay/internal/logger"
	"whatsapp-relay/internal/transport"
	"whatsapp-relay/internal/whitelist"
	"whatsapp-relay/pkg/bootstrap"
	"whatsapp-relay/pkg/circuitbreaker"
	"whatsapp-relay/pkg/health"
	"whatsapp-relay/pkg/metrics"
	"whatsapp-relay/pkg/middleware"
	"whatsapp-relay/pkg/ratelimit"
	"whatsapp-relay/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	registry       *whitelist.Registry
	redis          *redis.Client
	queue          *transport.Queue
	coordinator    *ingestion.Coordinator
	rateLimits     *ratelimit.Store
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceNameRelay)
	}
	return &App{
		Base: bootstrap.NewBase(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	registry, err := whitelist.Load(a.Config.Whitelist)
	if err != nil {
		return fmt.Errorf("failed to load whitelist: %w", err)
	}
	a.registry = registry
	a.Logger.InfowCtx(ctx, "Whitelist loaded", "participants", registry.Len())

	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceNameRelay)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterIngestionMetrics()
	metrics.RegisterBrokerMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	if err := a.WaitForBroker(ctx); err != nil {
		return err
	}
	if err := a.InitProducer(); err != nil {
		return err
	}

	if err := a.initCoordinator(ctx); err != nil {
		return fmt.Errorf("failed to initialize coordinator: %w", err)
	}

	a.initHTTPServer()
	return nil
}

func (a *App) initCoordinator(ctx context.Context) error {
	var pubOpts []ingestion.PublisherOption
	if a.Config.CircuitBreaker.Enabled {
		cb := circuitbreaker.NewWrapper(circuitbreaker.FromSettings("kafka-publish", a.Config.CircuitBreaker))
		pubOpts = append(pubOpts, ingestion.WithCircuitBreaker(cb))
		a.Logger.InfowCtx(ctx, "Circuit breaker enabled for Kafka publishes")
	}
	publisher := ingestion.NewBrokerPublisher(a.Producer, a.Config.Broker.Kafka.Topic, pubOpts...)

	opts := []ingestion.CoordinatorOption{
		ingestion.WithMaxConcurrency(a.Config.Ingestion.MaxConcurrency),
	}

	if a.Config.Deduplication.Enabled {
		rdb, err := bootstrap.InitRedis(ctx, a.Config.Database.Redis, a.Logger)
		if err != nil {
			return err
		}
		a.redis = rdb

		var repo dedup.Repository = dedup.NewRepository(rdb)
		if a.Config.CircuitBreaker.Enabled {
			repo = dedup.NewCircuitBreakerRepository(repo, a.Config.CircuitBreaker)
		}
		opts = append(opts, ingestion.WithDuplicateGuard(dedup.NewGuard(repo, a.Config.Deduplication, a.Logger)))
		a.Logger.InfowCtx(ctx, "Deduplication enabled",
			"ttl_seconds", a.Config.Deduplication.TTLSeconds,
			"on_redis_error", a.Config.Deduplication.OnRedisError,
		)
	}

	a.coordinator = ingestion.NewCoordinator(
		ingestion.NewNormalizer(),
		ingestion.NewFilter(a.registry),
		publisher,
		a.Logger,
		opts...,
	)
	a.queue = transport.NewQueue(a.Config.Ingestion.QueueSize)
	return nil
}

func (a *App) initHTTPServer() {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceNameRelay))
	}
	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger, "/health", "/metrics"))

	healthRegistry := health.NewCheckerRegistry()
	kafkaCfg := a.Config.Broker.Kafka
	healthRegistry.Register(health.NewFuncChecker("kafka", func(ctx context.Context) error {
		return broker.Ping(ctx, kafkaCfg)
	}))
	if a.redis != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redis))
	}

	router.GET("/health", func(c *gin.Context) {
		h := healthRegistry.Check(c.Request.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("")
	if a.Config.Ingestion.RateLimit.Enabled {
		a.rateLimits = ratelimit.NewStore(ratelimit.FromSettings(a.Config.Ingestion.RateLimit))
		api.Use(ratelimit.Middleware(a.rateLimits))
	}
	transport.NewHandler(a.queue, a.Logger).RegisterRoutes(api)

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeout(),
		WriteTimeout: a.Config.Server.WriteTimeout(),
	}
}

// Run serves until ctx is done. On the way out the HTTP server stops first,
// then the queue is closed and the coordinator drains what was already
// accepted before Run returns.
func (a *App) Run(ctx context.Context) error {
	drained := make(chan error, 1)
	go func() {
		// Accepted batches are still published after a shutdown signal.
		drained <- a.coordinator.Run(context.WithoutCancel(ctx), a.queue.Batches())
	}()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", err)
		}
		return nil
	})

	if a.rateLimits != nil {
		g.Go(func() error {
			a.rateLimits.RunCleanup(gCtx)
			return nil
		})
	}

	err := g.Wait()

	a.queue.Close()
	a.Logger.InfowCtx(ctx, "Draining queued batches", "pending", a.queue.Len())
	if drainErr := <-drained; drainErr != nil && err == nil {
		err = drainErr
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				errs = append(errs, fmt.Errorf("redis close error: %w", err))
			}
		}
		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}

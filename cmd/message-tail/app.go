package main

import (
	"context"
	"fmt"

	"whatsapp-relay/internal/config"
	"whatsapp-relay/internal/constants"
	"whatsapp-relay/internal/logger"
	"whatsapp-relay/internal/tail"
	"whatsapp-relay/pkg/bootstrap"
	"whatsapp-relay/pkg/logging"
	"whatsapp-relay/pkg/metrics"
	"whatsapp-relay/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	tracerProvider *tracing.TracerProvider
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceNameTail)
	}
	return &App{Base: bootstrap.NewBase(cfg, log)}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceNameTail)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterBrokerMetrics()

	if err := a.WaitForBroker(ctx); err != nil {
		return err
	}
	return a.InitConsumer(constants.ServiceNameTail)
}

func (a *App) Run(ctx context.Context) error {
	ctx = logging.WithServiceName(ctx, constants.ServiceNameTail)
	a.Logger.InfowCtx(ctx, "Tailing messages",
		"topic", a.Config.Broker.Kafka.Topic,
		"group_id", a.Config.Broker.Kafka.GroupID,
	)
	return a.Consumer.Consume(ctx, a.Config.Broker.Kafka.Topic, tail.NewHandler(a.Logger))
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.Base.Shutdown(ctx, func(ctx context.Context) []error {
		if a.tracerProvider == nil {
			return nil
		}
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			return []error{fmt.Errorf("tracer provider shutdown error: %w", err)}
		}
		return nil
	})
}

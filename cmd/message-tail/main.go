package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"whatsapp-relay/internal/config"
	"whatsapp-relay/internal/constants"
	"whatsapp-relay/internal/logger"
	"whatsapp-relay/pkg/logging"
)

var (
	configFile string
	groupID    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "message-tail",
		Short: "Log messages published by the WhatsApp relay",
		Long:  "Consumes the messages topic and logs every decoded message, for checking what downstream services receive",
		RunE:  run,
	}

	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to config file (required)")
	rootCmd.Flags().StringVar(&groupID, "group", "", "Consumer group id (default from config)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	earlyLog := logging.NewEarlyLog()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return err
	}
	if groupID != "" {
		cfg.Broker.Kafka.GroupID = groupID
	}
	if cfg.Broker.Kafka.GroupID == "" {
		cfg.Broker.Kafka.GroupID = constants.DefaultTailGroupID
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return err
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := NewApp(cfg, log)
	if err := app.Initialize(ctx); err != nil {
		log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
		return err
	}

	runErr := app.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	if runErr != nil {
		log.ErrorwCtx(ctx, "Application error", "error", runErr)
	}

	if err := app.Shutdown(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

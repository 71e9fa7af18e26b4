package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "whatsapp-relay/cmd/whatsapp-service/docs"
	"whatsapp-relay/internal/config"
	"whatsapp-relay/internal/constants"
	"whatsapp-relay/internal/logger"
	"whatsapp-relay/pkg/logging"
)

var (
	configFile string
)

// @title           WhatsApp Relay API
// @version         1.0
// @description     Ingress for WhatsApp message notifications relayed to Kafka

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http

func main() {
	rootCmd := &cobra.Command{
		Use:   "whatsapp-service",
		Short: "WhatsApp to Kafka message relay",
		Long:  "Receives WhatsApp message notifications, keeps the ones from whitelisted participants and publishes them to Kafka",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(whitelistCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(earlyLog *logging.EarlyLog) (*config.Config, error) {
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, err
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			earlyLog := logging.NewEarlyLog()

			cfg, err := loadConfig(earlyLog)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				earlyLog.Error("Failed to init logger: %v", err)
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			ctx = logging.WithServiceName(ctx, constants.ServiceNameRelay)
			log.InfowCtx(ctx, "Starting WhatsApp relay")

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
				if shutdownErr := app.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
					log.ErrorwCtx(ctx, "Shutdown error", "error", shutdownErr)
				}
				return err
			}

			runErr := app.Run(ctx)
			if runErr != nil {
				log.ErrorwCtx(ctx, "Application error", "error", runErr)
			}

			if err := app.Shutdown(context.WithoutCancel(ctx)); err != nil {
				log.ErrorwCtx(ctx, "Shutdown error", "error", err)
				if runErr == nil {
					runErr = err
				}
			}
			return runErr
		},
	}
}

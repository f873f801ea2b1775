package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/knocoin/console/api"
	"github.com/knocoin/console/internal/config"
	"github.com/knocoin/console/pkg/backend"
	"github.com/knocoin/console/pkg/pricefeed"
	"github.com/knocoin/console/pkg/store"
)

var (
	cfgFile string
	logger  *logrus.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kno-console",
		Short: "Management console for KNO trading bots",
		Long:  `Serves the browser dashboard for a fleet of automated KNO trading bots: bot configuration, start/stop control, balances, profit and transaction history, backed by the remote trading API`,
		Run:   runConsole,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runConsole(cmd *cobra.Command, args []string) {
	// Initialize logger
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Local .env is optional
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.WithError(err).Error("Invalid log level, using INFO")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backend client
	client := backend.NewHTTPClient(cfg.Backend.BaseURL, cfg.Backend.Email, cfg.Backend.Password, logger)
	if cfg.Backend.Token != "" {
		client.Session().SetToken(cfg.Backend.Token)
	}

	// Price feed
	prices := pricefeed.NewClient(cfg.Price.URL, logger)

	// Store and background refresh
	st := store.New(client, prices, logger)
	poller := store.NewPoller(st, cfg.PollInterval(), logger)
	poller.Start(ctx)

	// Start console server
	server := api.NewServer(st, logger, fmt.Sprintf("%d", cfg.Server.Port))
	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Failed to start console server")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("KNO console is running. Press Ctrl+C to stop.")

	<-sigChan
	logger.Info("Received shutdown signal")

	// Graceful shutdown
	poller.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Console server shutdown failed")
	}

	logger.Info("KNO console stopped")
}

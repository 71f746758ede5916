package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/de-tools/price-atlas/pkg/metrics"
	"github.com/de-tools/price-atlas/pkg/runtime/app"
	"github.com/de-tools/price-atlas/pkg/server"
	"github.com/de-tools/price-atlas/pkg/services/config"
	"github.com/de-tools/price-atlas/pkg/services/reload"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Price Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the config file (defaults and PRICEATLAS_* environment variables otherwise)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	a, err := app.Open(ctx, cfg, app.Options{Recorder: m})
	if err != nil {
		return fmt.Errorf("failed to initialise price atlas: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to release resources")
		}
	}()

	if cfg.Server.ReloadSchedule != "" {
		scheduler, err := reload.NewScheduler(a.Prices, m, time.Minute)
		if err != nil {
			return fmt.Errorf("failed to create reload scheduler: %w", err)
		}
		if err := scheduler.Start(ctx, cfg.Server.ReloadSchedule); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	api := server.NewWebAPI(server.Config{
		Addr:            addr,
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Prices:  a.Prices,
			Logger:  logger,
			Metrics: m,
		},
	})

	logger.Info().Msgf("starting server on %s", addr)
	return api.Start()
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ForensicFlow/internal/api"
	"ForensicFlow/internal/config"
	"ForensicFlow/internal/logging"
	"ForensicFlow/internal/query"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ff-api",
	Short: "Serve assembled reports and monthly statistics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(verbose)

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		var querier query.Querier
		if cfg.Export.ClickHouse.Enabled {
			querier, err = query.NewClickHouseQuerier(cfg.Export.ClickHouse)
			if err != nil {
				return err
			}
			defer querier.Close()
		} else {
			log.Warn("clickhouse store disabled, /api/v1/months will answer 503")
		}

		server := &http.Server{
			Addr:    cfg.API.ListenAddr,
			Handler: api.NewServer(cfg.Analyzer.OutputDir, querier, log).Router(),
		}

		go func() {
			log.Info("API server listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("API server failed", "error", err)
				os.Exit(1)
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()
		log.Info("API server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func main() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to YAML configuration file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

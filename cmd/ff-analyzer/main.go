package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ForensicFlow/internal/analyzer"
	"ForensicFlow/internal/api"
	"ForensicFlow/internal/config"
	"ForensicFlow/internal/event"
	"ForensicFlow/internal/logging"
)

var (
	configPath string
	verbose    bool

	inputDir      string
	outputDir     string
	outputFormats []string

	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "ff-analyzer",
	Short: "ForensicFlow DDoS forensics CSV analyzer",
	Long: `ff-analyzer ingests DDoS forensics CSV exports, computes monthly and
holistic attack statistics in bounded-memory chunks, and writes report
documents plus optional ClickHouse exports and NATS events.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ff-analyzer %s\n", version)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze every CSV and ZIP under the input directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(verbose)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if inputDir != "" {
			cfg.Analyzer.InputDir = inputDir
		}
		if outputDir != "" {
			cfg.Analyzer.OutputDir = outputDir
		}
		if len(outputFormats) > 0 {
			cfg.Analyzer.OutputFormats = outputFormats
		}
		if cfg.Analyzer.InputDir == "" {
			return fmt.Errorf("no input directory: set analyzer.input_dir or pass --input")
		}

		a, err := analyzer.New(cfg, log, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return a.RunBatch(ctx)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Daemon mode: analyze files on NATS request, expose metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(verbose)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := analyzer.New(cfg, log, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sub, err := event.NewSubscriber(cfg.Events.NATS, log)
		if err != nil {
			return err
		}
		defer sub.Close()

		if err := sub.Start(func(req event.AnalyzeRequest) {
			log.Info("received analyze request", "path", req.Path)
			if _, err := a.ProcessFile(ctx, req.Path); err != nil {
				log.Error("file analysis failed", "file", req.Path, "error", err)
			}
		}); err != nil {
			return err
		}

		// Metrics and report API while watching.
		server := &http.Server{
			Addr:    cfg.API.ListenAddr,
			Handler: api.NewServer(cfg.Analyzer.OutputDir, nil, log).Router(),
		}
		go func() {
			log.Info("metrics server listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", "error", err)
			}
		}()

		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadConfig(configPath)
	}
	cfg := &config.Config{}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	runCmd.Flags().StringVar(&inputDir, "input", "", "Input directory of CSV/ZIP exports (overrides config)")
	runCmd.Flags().StringVar(&outputDir, "output", "", "Report output directory (overrides config)")
	runCmd.Flags().StringSliceVar(&outputFormats, "formats", nil, "Report formats to write (json, html)")

	rootCmd.AddCommand(runCmd, watchCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

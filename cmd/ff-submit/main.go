package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ForensicFlow/internal/config"
	"ForensicFlow/internal/event"
	"ForensicFlow/internal/logging"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ff-submit <file>...",
	Short: "Publish analyze requests to a watching ff-analyzer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(verbose)

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		pub, err := event.NewPublisher(cfg.Events.NATS, log)
		if err != nil {
			return err
		}
		defer pub.Close()

		for _, path := range args {
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("failed to resolve %q: %w", path, err)
			}
			if _, err := os.Stat(abs); err != nil {
				return fmt.Errorf("cannot submit %q: %w", path, err)
			}
			if err := pub.PublishRequest(event.AnalyzeRequest{Path: abs}); err != nil {
				return fmt.Errorf("failed to publish request for %q: %w", path, err)
			}
			log.Info("analyze request submitted", "file", abs)
		}
		return nil
	},
}

func main() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to YAML configuration file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

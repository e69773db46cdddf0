package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"helphands-go/internal/config"
	"helphands-go/pkg/logger"
)

var (
	configPath string
	log        logger.Logger
	cfg        config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "helphands",
		Short:         "HelpHands volunteer coordination backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log = logger.NewFromEnv()

			loaded, err := config.Load(log, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "Path to a YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		if log != nil {
			log.Critical("helphands: command failed", "err", err)
			_ = log.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

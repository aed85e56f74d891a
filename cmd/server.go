package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viktsys/itchvwap/api"
	"github.com/viktsys/itchvwap/config"
	"github.com/viktsys/itchvwap/database"
	"github.com/viktsys/itchvwap/logging"
)

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Start the VWAP stats API server",
	Long:  `Start the HTTP API server exposing persisted hourly VWAP rows and metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if err := database.InitDB(cfg); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		r := api.SetupRoutes()

		logging.Logger.Info("starting server", zap.String("addr", cfg.ListenAddr))
		if err := r.Run(cfg.ListenAddr); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/wfunc/cardserver/config"
	"github.com/wfunc/cardserver/logger"
	"github.com/wfunc/cardserver/persistence"
	"github.com/wfunc/cardserver/server"
)

func newCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "cardserver",
		Short:         "Real-time room server for a turn-based matching card game.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yaml")

	return cmd
}

func run(configPath string) error {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database (optional)
	var store persistence.Store
	switch cfg.Database.Driver {
	case "gorm":
		store, err = persistence.NewGormPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
	case "pq":
		store, err = persistence.NewPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
	case "", "none":
		logger.Log.Warn("Running without persistence.")
	default:
		logger.Log.Fatalf("Unknown database driver: %s", cfg.Database.Driver)
	}
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	if store != nil {
		logger.Log.Info("Database connection successful.")
		defer store.Close()
	}

	// Initialize and start the game server
	gameServer := server.NewGameServer(cfg, store)
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	return gameServer.Start()
}

func main() {
	cobra.CheckErr(newCmd().Execute())
}

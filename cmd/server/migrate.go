package main

import (
	"github.com/fadilmartias/interview-coach/internal/config"
	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/fadilmartias/interview-coach/internal/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Enable pgvector and create the question cache tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		appConfig := config.LoadAppConfig()
		log, err := logger.New(appConfig.LogJSON, appConfig.LogDebug)
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := ConnectDB()
		if err != nil {
			return err
		}
		if err := repository.Migrate(db); err != nil {
			return err
		}
		log.Info("migration complete", zap.String("database", config.LoadDBConfig().Name))
		return nil
	},
}

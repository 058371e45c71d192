package cli

import (
	"fmt"

	"taskly/internal/config"
	"taskly/internal/repository"
	"taskly/pkg/database"
	"taskly/pkg/logger"

	"github.com/spf13/cobra"
)

// openDB connects to Postgres and wires the repositories. The caller closes config.DB.
func openDB() error {
	db, err := database.ConnectDB(config.Settings)
	if err != nil {
		return err
	}
	config.DB = db
	config.Users = repository.NewUserStore(db)
	config.Tasks = repository.NewTaskStore(db)
	logger.SystemLogger.Info("Database Connected")
	return nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users and tasks tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := openDB(); err != nil {
				return err
			}
			defer config.DB.Close()

			if err := repository.CreateTableIfNotExists(cmd.Context(), config.DB); err != nil {
				return err
			}
			logger.SystemLogger.Info("Tables created")
			cmd.Println("Tables are up to date.")
			return nil
		},
	}
}

func newDropDBCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "dropdb",
		Short: "Drop the users and tasks tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to drop tables without --yes")
			}
			if err := openDB(); err != nil {
				return err
			}
			defer config.DB.Close()

			if err := repository.DeleteAllTable(cmd.Context(), config.DB); err != nil {
				return err
			}
			logger.SystemLogger.Warn("Tables dropped")
			cmd.Println("Tables dropped.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm dropping every table")
	return cmd
}

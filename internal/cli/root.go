// Package cli holds the taskly command line: serve, migrate, dropdb and createsuperuser.
package cli

import (
	"fmt"

	"taskly/configs"
	"taskly/internal/config"
	"taskly/pkg/logger"

	"github.com/spf13/cobra"
)

var configFile string

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskly",
		Short: "Taskly - personal task manager",
		Long: `Taskly is a small multi-user task manager served as HTML pages,
with a bearer-token JSON API and live dashboard updates.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configs.LoadConfig(configFile)
			if err != nil {
				return err
			}
			config.Settings = cfg
			if err := logger.InitLoggers(cfg.LogDir); err != nil {
				return fmt.Errorf("init loggers: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.SyncLoggers()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: taskly.yaml)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newDropDBCommand())
	rootCmd.AddCommand(newCreateSuperuserCommand())

	return rootCmd
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"taskly/internal/config"
	"taskly/internal/repository"
	"taskly/internal/server"
	"taskly/internal/websocket"
	"taskly/pkg/database"
	"taskly/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg := config.Settings
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	if err := openDB(); err != nil {
		logger.ErrorLogger.Error("Database connection failed", zap.Error(err))
		return err
	}
	defer config.DB.Close()

	// Buat tabel jika belum ada
	if err := repository.CreateTableIfNotExists(ctx, config.DB); err != nil {
		return err
	}

	redisClient, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.ErrorLogger.Error("Redis connection failed", zap.Error(err))
		return err
	}
	if redisClient != nil {
		config.RedisClient = redisClient
		defer redisClient.Close()
		logger.SystemLogger.Info("Redis Connected", zap.String("addr", cfg.RedisAddr()))
	} else {
		logger.SystemLogger.Info("No Redis host configured, using in-memory storage")
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	config.Hub = websocket.NewHub()
	go config.Hub.Run(hubCtx)

	app := server.New()

	errCh := make(chan error, 1)
	go func() {
		logger.SystemLogger.Info("Application ready", zap.String("addr", cfg.ListenAddr()))
		errCh <- app.Listen(cfg.ListenAddr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	logger.SystemLogger.Info("Shutting down")
	stopHub()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.ErrorLogger.Error("Shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

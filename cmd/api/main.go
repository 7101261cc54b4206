package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/timmy/contextual/internal/api"
	"github.com/timmy/contextual/internal/app"
	"github.com/timmy/contextual/internal/config"
	"github.com/timmy/contextual/internal/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "contextual",
	Short: "Semantic GIF search with Tenor fallback and conversation tone suggestions",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		log := logger.New(logger.LoadFromEnv())
		logger.SetDefaultLogger(log)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset-index",
	Short: "Drop and recreate the vector collection (destructive)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return resetIndex(cmd.Context())
	},
}

func init() {
	// Support CONFIG_PATH environment variable for production deployments
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to config.yaml")
	rootCmd.AddCommand(serveCmd, resetCmd)
}

func main() {
	defer logger.Sync()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return app.New(ctx, cfg, app.Options{})
}

func serve(ctx context.Context) error {
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	router := api.SetupRouter(a, logger.GetDefault())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server: port=%d, mode=%s", a.Config.Server.Port, a.Config.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

func resetIndex(ctx context.Context) error {
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	collection, err := a.Search.Reset(ctx)
	if err != nil {
		return err
	}
	logger.Info("Vector index reset: collection=%s", collection)
	return nil
}

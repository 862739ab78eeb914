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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-checklist/backend/internal/config"
	"go-checklist/backend/internal/logger"
	"go-checklist/backend/internal/routes"
	"go-checklist/backend/internal/services"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newRootCmd はchecklist-apiのコマンドツリーを組み立てます。
func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:          "checklist-api",
		Short:        "Multi-user checklist API server",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until SIGINT/SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), envFile, runServe)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the SQL tables and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), envFile, runMigrate)
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd)
	return rootCmd
}

// withApp は設定とロガーを用意してからfnを実行します。
func withApp(ctx context.Context, envFile string, fn func(context.Context, *config.Config, *zap.Logger) error) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := fn(ctx, cfg, log); err != nil {
		log.Error("Command failed", zap.Error(err))
		return err
	}
	return nil
}

func runMigrate(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.StoreDriver == config.DriverFirestore {
		log.Info("Firestore needs no migration")
		return nil
	}
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	log.Info("Schema is up to date", zap.String("driver", cfg.StoreDriver))
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	jwtService, err := services.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}

	router := routes.SetupRouter(routes.Dependencies{
		Checklists:       st.checklists,
		Users:            st.users,
		JWT:              jwtService,
		Logger:           log,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, cfg.ShutdownTimeout, log)
}

// serve はctxがキャンセルされるまでsrvを動かし、その後shutdownTimeout以内に停止させます。
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"winelist/internal/config"
	"winelist/internal/logger"
	"winelist/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "winelist",
	Short: "Wine list backend",
	Long: `Serves the restaurant wine list: one JSON document with wines, wineries,
menu, glossary and assistant instructions, pushed to every connected tablet
whenever it changes.

Without a subcommand it runs the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and Socket.IO server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, exportCmd, importCmd, restoreCmd, auditCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	srv, err := server.New(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("wine list server listening",
			zap.String("addr", srv.HTTP.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("redis_relay", cfg.Realtime.RedisAddr != ""),
		)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("http server error", zap.Error(err))
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
			return err
		}
	case <-quit:
	}

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("server shutdown", zap.Error(err))
	}
	log.Info("server exiting")
	return nil
}

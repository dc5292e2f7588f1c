package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/hearthd/hearthd/api"
	"github.com/hearthd/hearthd/auth"
	"github.com/hearthd/hearthd/config"
	bboltstorage "github.com/hearthd/hearthd/storage/bbolt"
	"github.com/hearthd/hearthd/web"
	"github.com/hearthd/hearthd/ws"
)

var (
	flagPort    int
	flagDataDir string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = flagPort
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.Server.DataDir = flagDataDir
		}

		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

		if err := os.MkdirAll(cfg.Server.DataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		store, err := bboltstorage.NewStoreFromFile(filepath.Join(cfg.Server.DataDir, "hearth.db"), nil)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer store.Close()

		secret, err := auth.LoadOrCreateSecret(filepath.Join(cfg.Server.DataDir, "secret.key"))
		if err != nil {
			return fmt.Errorf("failed to load signing secret: %w", err)
		}
		tokens := auth.NewTokenService(secret, cfg.Auth.TokenLifetime)

		accounts := auth.NewAccounts(store)
		created, err := accounts.Bootstrap(cfg.Auth.BootstrapPassword)
		if err != nil {
			return fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
		if created {
			logger.Info("bootstrapped default admin account",
				"username", auth.BootstrapUsername)
			fmt.Printf("Created default admin account %q; change its password after first login.\n",
				auth.BootstrapUsername)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		hub := ws.NewHub(logger)
		go hub.Run(ctx)
		go ws.RunClock(ctx, hub, cfg.WS.ClockInterval)

		a := api.New(store, tokens,
			api.WithLogger(logger),
			api.WithHub(hub),
			api.WithRateLimit(cfg.Auth.RateLimitMaxAttempts, cfg.Auth.RateLimitWindow),
			api.WithUpstreams(cfg.Upstream.WeatherURL, cfg.Upstream.InfraURL),
			api.WithAlertFunc(func(ev api.AlertEvent) {
				logger.Warn("security alert",
					"type", string(ev.Type), "message", ev.Message,
					"count", ev.Count, "threshold", ev.Threshold)
			}),
		)

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		r.Use(api.SecurityHeaders)

		r.Mount("/api", a.Router())
		r.Get("/ws", a.WebSocket)

		webHandler, err := web.Handler()
		if err != nil {
			return err
		}
		r.Handle("/*", webHandler)

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Starting server on port %d (data: %s)...\n", cfg.Server.Port, cfg.Server.DataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			cancel()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&flagPort, "port", "p", 8099, "Port to listen on")
	serverCmd.Flags().StringVar(&flagDataDir, "data-dir", "./data", "Directory for persistent data")
}

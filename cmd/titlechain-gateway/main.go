package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	attestation "github.com/prgi-labs/titlechain/internal/attestation/domain"
	"github.com/prgi-labs/titlechain/internal/chains"
	"github.com/prgi-labs/titlechain/internal/config"
	lookup "github.com/prgi-labs/titlechain/internal/lookup/domain"
	"github.com/prgi-labs/titlechain/internal/observability/metrics"
	"github.com/prgi-labs/titlechain/internal/orchestrator"
	"github.com/prgi-labs/titlechain/internal/registry"
	"github.com/prgi-labs/titlechain/internal/server"
	"github.com/prgi-labs/titlechain/internal/storage"
	verification "github.com/prgi-labs/titlechain/internal/verification/domain"
	"github.com/prgi-labs/titlechain/internal/wallet"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "titlechain-gateway",
		Short:   "Titlechain gateway - title verification and attestation over HTTP",
		Version: version,
	}

	// Default behavior (no subcommand) is to serve
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe()
	}

	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg)
	logger.Info("starting titlechain-gateway", "version", version)

	metrics.Init(cfg.Server.MetricsEnabled)

	// Session journal: in-memory, discarded when the gateway exits.
	journal, err := storage.NewJournal(logger)
	if err != nil {
		return fmt.Errorf("opening session journal: %w", err)
	}
	defer journal.Close()

	contract, err := registry.NewContract(
		cfg.Registry.ContractAddress,
		time.Duration(cfg.Registry.ConfirmPollSeconds)*time.Second,
		time.Duration(cfg.Registry.ConfirmTimeoutSecs)*time.Second,
	)
	if err != nil {
		return fmt.Errorf("invalid registry configuration: %w", err)
	}

	dialCtx, cancelDial := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelDial()

	// A wallet RPC endpoint is optional: without one the gateway still
	// verifies and looks up, it just cannot sign registrations.
	var walletProvider wallet.Provider
	if walletRPC := os.Getenv("TITLECHAIN_WALLET_RPC"); walletRPC != "" {
		provider, err := wallet.DialRPC(dialCtx, walletRPC)
		if err != nil {
			return fmt.Errorf("connecting to wallet RPC: %w", err)
		}
		defer provider.Close()
		walletProvider = provider
	}
	session := wallet.NewSession(walletProvider, logger)
	defer session.Close()

	var fallback wallet.Provider
	if cfg.Registry.RPCURL != "" {
		provider, err := wallet.DialRPC(dialCtx, cfg.Registry.RPCURL)
		if err != nil {
			logger.Warn("public RPC endpoint unavailable", "url", cfg.Registry.RPCURL, "error", err)
		} else {
			defer provider.Close()
			fallback = provider
		}
	}

	if session.HasProvider() {
		session.Resume(context.Background())
	}

	catalog := chains.DefaultCatalog()
	verifier := verification.NewClient(cfg.Verifier.BaseURL, time.Duration(cfg.Verifier.TimeoutSeconds)*time.Second, logger)
	attester := attestation.NewService(contract, catalog, cfg.Registry.ChainID, logger)
	lookups := lookup.NewService(contract, session, fallback, logger)

	orch := orchestrator.New(verifier, attester, lookups, session, journal, logger)
	srv := server.New(cfg, orch, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("gateway stopped")
	return nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

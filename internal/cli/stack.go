package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	attestation "github.com/prgi-labs/titlechain/internal/attestation/domain"
	"github.com/prgi-labs/titlechain/internal/chains"
	"github.com/prgi-labs/titlechain/internal/config"
	lookup "github.com/prgi-labs/titlechain/internal/lookup/domain"
	"github.com/prgi-labs/titlechain/internal/registry"
	verification "github.com/prgi-labs/titlechain/internal/verification/domain"
	"github.com/prgi-labs/titlechain/internal/wallet"
)

// loadConfig loads the layered configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagVerifierURL != "" {
		cfg.Verifier.BaseURL = flagVerifierURL
	}
	if flagContract != "" {
		cfg.Registry.ContractAddress = flagContract
	}
	if flagChainID != "" {
		cfg.Registry.ChainID = flagChainID
	}
	if flagRPCURL != "" {
		cfg.Registry.RPCURL = flagRPCURL
	}
	return cfg, nil
}

// cliLogger keeps command output clean: structured logs go to stderr and only
// warnings and errors surface.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// stack bundles the wired services a command needs.
type stack struct {
	cfg      *config.Config
	verifier *verification.Client
	contract *registry.Contract
	catalog  *chains.Catalog
	session  *wallet.Session
	attester *attestation.Service
	lookups  *lookup.Service

	closers []func()
}

// Close releases RPC connections held by the stack.
func (s *stack) Close() {
	for _, closeFn := range s.closers {
		closeFn()
	}
}

// buildStack wires the domain services from configuration. withWallet dials
// the wallet RPC endpoint; commands that only read can leave it false.
func buildStack(ctx context.Context, withWallet bool) (*stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := cliLogger()

	contract, err := registry.NewContract(
		cfg.Registry.ContractAddress,
		time.Duration(cfg.Registry.ConfirmPollSeconds)*time.Second,
		time.Duration(cfg.Registry.ConfirmTimeoutSecs)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid registry configuration: %w", err)
	}

	s := &stack{
		cfg:      cfg,
		verifier: verification.NewClient(cfg.Verifier.BaseURL, time.Duration(cfg.Verifier.TimeoutSeconds)*time.Second, logger),
		contract: contract,
		catalog:  chains.DefaultCatalog(),
	}

	var walletProvider wallet.Provider
	if withWallet {
		walletRPC := getWalletRPC()
		if walletRPC == "" {
			return nil, fmt.Errorf("no wallet RPC endpoint configured (set TITLECHAIN_WALLET_RPC or --wallet-rpc)")
		}
		provider, err := wallet.DialRPC(ctx, walletRPC)
		if err != nil {
			return nil, fmt.Errorf("connecting to wallet RPC: %w", err)
		}
		s.closers = append(s.closers, provider.Close)
		walletProvider = provider
	}
	s.session = wallet.NewSession(walletProvider, logger)
	s.closers = append(s.closers, func() { s.session.Close() })

	var fallback wallet.Provider
	if cfg.Registry.RPCURL != "" {
		provider, err := wallet.DialRPC(ctx, cfg.Registry.RPCURL)
		if err != nil {
			logger.Warn("public RPC endpoint unavailable", "url", cfg.Registry.RPCURL, "error", err)
		} else {
			s.closers = append(s.closers, provider.Close)
			fallback = provider
		}
	}

	s.attester = attestation.NewService(contract, s.catalog, cfg.Registry.ChainID, logger)
	s.lookups = lookup.NewService(contract, s.session, fallback, logger)

	return s, nil
}

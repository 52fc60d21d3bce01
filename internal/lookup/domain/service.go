// Package domain contains the business logic for public hash lookup against
// the on-chain title registry.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/prgi-labs/titlechain/internal/registry"
	"github.com/prgi-labs/titlechain/internal/validation"
	"github.com/prgi-labs/titlechain/internal/wallet"
)

// ErrLookupFailed wraps any transport or contract-call failure during a
// lookup. The contract exposes only a presence bit, so there is nothing more
// granular to surface.
var ErrLookupFailed = errors.New("blockchain query failed")

// Result is the ephemeral outcome of one lookup; recomputed per query.
type Result struct {
	QueriedHash  string `json:"queriedHash"`
	IsRegistered bool   `json:"isRegistered"`
}

// Service answers public is-this-hash-registered queries. It works
// identically with or without a wallet: auditing is independent of wallet
// possession, so a missing wallet provider falls back to the configured
// public read-only endpoint.
type Service struct {
	contract *registry.Contract
	session  *wallet.Session
	fallback wallet.Provider
	logger   *slog.Logger
}

// NewService creates a lookup service. fallback may be nil when only wallet
// queries are wanted, though a public endpoint is the normal setup.
func NewService(contract *registry.Contract, session *wallet.Session, fallback wallet.Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		contract: contract,
		session:  session,
		fallback: fallback,
		logger:   logger,
	}
}

// Lookup validates the hash shape, then queries the contract read-only.
// Malformed input fails with validation.ErrInvalidHashFormat before any
// network traffic.
func (s *Service) Lookup(ctx context.Context, hashText string) (*Result, error) {
	if err := validation.ValidateTitleHash(hashText); err != nil {
		return nil, err
	}

	provider := s.pickProvider()
	if provider == nil {
		return nil, fmt.Errorf("%w: no wallet provider and no fallback endpoint configured", ErrLookupFailed)
	}

	registered, err := s.contract.IsRegistered(ctx, provider, common.HexToHash(hashText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	s.logger.Info("hash lookup", "hash", hashText, "registered", registered)
	return &Result{
		QueriedHash:  hashText,
		IsRegistered: registered,
	}, nil
}

// pickProvider prefers the wallet provider when one is present; connection
// state does not matter for a read-only call.
func (s *Service) pickProvider() wallet.Provider {
	if s.session != nil && s.session.HasProvider() {
		return s.session.Provider()
	}
	return s.fallback
}

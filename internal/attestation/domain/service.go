package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prgi-labs/titlechain/internal/chains"
	"github.com/prgi-labs/titlechain/internal/registry"
	"github.com/prgi-labs/titlechain/internal/titlehash"
	verification "github.com/prgi-labs/titlechain/internal/verification/domain"
	"github.com/prgi-labs/titlechain/internal/wallet"
)

// Errors returned by the attestation service. All are terminal: the core
// never retries on the user's behalf.
var (
	ErrWalletRequired = errors.New("wallet connection required")
	ErrNotApproved    = errors.New("title is not approved for registration")
	ErrWrongNetwork   = errors.New("wallet is on the wrong network")
)

// Service registers approved titles on the registry contract.
//
// The contract itself is the source of truth for duplicate registration:
// there is deliberately no isRegistered pre-check before submitting, which
// would only race against other registrants; a duplicate simply reverts.
type Service struct {
	contract      *registry.Contract
	catalog       *chains.Catalog
	targetChainID string
	logger        *slog.Logger
}

// NewService creates an attestation service targeting one network.
func NewService(contract *registry.Contract, catalog *chains.Catalog, targetChainID string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		contract:      contract,
		catalog:       catalog,
		targetChainID: targetChainID,
		logger:        logger,
	}
}

// Submit validates preconditions, hashes the verified title, and submits the
// registration transaction. On success the returned record is Pending with
// its transaction hash visible before confirmation. When submission itself
// fails (user declines signing, RPC error), a Failed record is returned
// together with the error so the attempt stays observable.
//
// Precondition failures (wallet, approval, network) return a nil record.
func (s *Service) Submit(ctx context.Context, verdict *verification.Verdict, session *wallet.Session) (*Record, error) {
	if !session.HasProvider() || !session.Connected() {
		return nil, ErrWalletRequired
	}
	if !verdict.Approved {
		return nil, ErrNotApproved
	}

	// The cached chain id may be stale after a chainChanged event; the
	// live value decides.
	liveChainID, err := session.LiveChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrongNetwork, err)
	}
	if liveChainID != s.targetChainID {
		return nil, fmt.Errorf("%w: connected to %s, expected %s",
			ErrWrongNetwork, s.catalog.Name(liveChainID), s.catalog.Name(s.targetChainID))
	}

	// Hash the exact title string that was scored, so the on-chain digest
	// is bound to the approved verdict.
	hash, err := titlehash.Hash(verdict.Title)
	if err != nil {
		return nil, fmt.Errorf("hashing verified title: %w", err)
	}

	rec := &Record{
		ID:        uuid.NewString(),
		Title:     verdict.Title,
		TitleHash: hash.Hex(),
		Status:    StatusPending,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	txHash, err := s.contract.Register(ctx, session.Provider(), session.Address(), hash)
	if err != nil {
		rec.Status = StatusFailed
		rec.Reason = failureReason(err)
		s.logger.Warn("attestation submission failed", "title_hash", rec.TitleHash, "error", err)
		return rec, err
	}

	rec.TxHash = txHash
	rec.ExplorerURL = s.catalog.ExplorerTxURL(s.targetChainID, txHash)
	s.logger.Info("attestation submitted", "title_hash", rec.TitleHash, "tx_hash", txHash)
	return rec, nil
}

// Await blocks until the submitted transaction confirms, reverts, or times
// out, and returns a copy of the record in its terminal state. The input
// record is not mutated, keeping the Pending snapshot intact for observers.
func (s *Service) Await(ctx context.Context, session *wallet.Session, rec *Record) *Record {
	done := *rec

	err := s.contract.WaitConfirmation(ctx, session.Provider(), rec.TxHash)
	switch {
	case err == nil:
		done.Status = StatusConfirmed
		s.logger.Info("attestation confirmed", "tx_hash", rec.TxHash)
	case errors.Is(err, registry.ErrReverted):
		done.Status = StatusFailed
		done.Reason = "transaction reverted: title hash is already registered"
		s.logger.Warn("attestation reverted", "tx_hash", rec.TxHash)
	default:
		done.Status = StatusFailed
		done.Reason = failureReason(err)
		s.logger.Warn("attestation confirmation failed", "tx_hash", rec.TxHash, "error", err)
	}
	return &done
}

// failureReason surfaces the provider's human-readable reason when there is
// one, with a generic fallback.
func failureReason(err error) string {
	if err == nil || err.Error() == "" {
		return "transaction failed"
	}
	return err.Error()
}
